package mapping

import (
	"context"
	"errors"
	"time"

	"go-syncbridge/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MappingRepository persists mapping sets between sessions.
type MappingRepository interface {
	Create(ctx context.Context, set *MappingSet) error
	Get(ctx context.Context, id primitive.ObjectID) (*MappingSet, error)
	List(ctx context.Context) ([]MappingSet, error)
	Update(ctx context.Context, set *MappingSet) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type MappingRepositoryImpl struct {
	collection *mongo.Collection
}

func NewMappingRepository(db *database.MongodbDB) MappingRepository {
	return &MappingRepositoryImpl{
		collection: db.DB.Collection("mapping_sets"),
	}
}

func (r *MappingRepositoryImpl) Create(ctx context.Context, set *MappingSet) error {
	now := time.Now()
	set.CreatedAt = now
	set.UpdatedAt = now
	res, err := r.collection.InsertOne(ctx, set)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		set.ID = oid
	}
	return nil
}

func (r *MappingRepositoryImpl) Get(ctx context.Context, id primitive.ObjectID) (*MappingSet, error) {
	var set MappingSet
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&set)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &set, nil
}

func (r *MappingRepositoryImpl) List(ctx context.Context) ([]MappingSet, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sets []MappingSet
	if err = cursor.All(ctx, &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

func (r *MappingRepositoryImpl) Update(ctx context.Context, set *MappingSet) error {
	set.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": set.ID}, set)
	return err
}

func (r *MappingRepositoryImpl) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
