package connection

import (
	"context"
	"errors"
	"time"

	common_models "go-syncbridge/internal/common/models"
	"go-syncbridge/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectionRepository is the injectable persistence backend for stored
// credentials. The Mongo implementation is the default; tests swap it out.
type ConnectionRepository interface {
	Upsert(ctx context.Context, conn *Connection) error
	Get(ctx context.Context, service common_models.Service) (*Connection, error)
	List(ctx context.Context) ([]Connection, error)
	Delete(ctx context.Context, service common_models.Service) error
}

type ConnectionRepositoryImpl struct {
	collection *mongo.Collection
}

func NewConnectionRepository(db *database.MongodbDB) ConnectionRepository {
	return &ConnectionRepositoryImpl{
		collection: db.DB.Collection("connections"),
	}
}

func (r *ConnectionRepositoryImpl) Upsert(ctx context.Context, conn *Connection) error {
	if conn.ConnectedAt.IsZero() {
		conn.ConnectedAt = time.Now()
	}
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"service": conn.Service}, conn, opts)
	return err
}

func (r *ConnectionRepositoryImpl) Get(ctx context.Context, service common_models.Service) (*Connection, error) {
	var conn Connection
	err := r.collection.FindOne(ctx, bson.M{"service": service}).Decode(&conn)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *ConnectionRepositoryImpl) List(ctx context.Context) ([]Connection, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var conns []Connection
	if err = cursor.All(ctx, &conns); err != nil {
		return nil, err
	}
	return conns, nil
}

func (r *ConnectionRepositoryImpl) Delete(ctx context.Context, service common_models.Service) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"service": service})
	return err
}
