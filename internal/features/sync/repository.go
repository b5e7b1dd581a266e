package sync

import (
	"context"
	"errors"

	"go-syncbridge/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SyncRunRepository persists runs and their logs for the history endpoints.
type SyncRunRepository interface {
	Create(ctx context.Context, run *SyncRun) error
	Update(ctx context.Context, run *SyncRun) error
	Get(ctx context.Context, id string) (*SyncRun, error)
	List(ctx context.Context, limit int64) ([]SyncRun, error)
}

type SyncRunRepositoryImpl struct {
	collection *mongo.Collection
}

func NewSyncRunRepository(db *database.MongodbDB) SyncRunRepository {
	return &SyncRunRepositoryImpl{
		collection: db.DB.Collection("sync_runs"),
	}
}

func (r *SyncRunRepositoryImpl) Create(ctx context.Context, run *SyncRun) error {
	_, err := r.collection.InsertOne(ctx, run)
	return err
}

func (r *SyncRunRepositoryImpl) Update(ctx context.Context, run *SyncRun) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": run.ID}, run)
	return err
}

func (r *SyncRunRepositoryImpl) Get(ctx context.Context, id string) (*SyncRun, error) {
	var run SyncRun
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&run)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *SyncRunRepositoryImpl) List(ctx context.Context, limit int64) ([]SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}
	opts := options.Find().
		SetSort(bson.M{"start_time": -1}).
		SetLimit(limit).
		SetProjection(bson.M{"log": 0})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var runs []SyncRun
	if err = cursor.All(ctx, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}
