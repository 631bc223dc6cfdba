package audit

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultQueryLimit = 100

// Repository persists audit entries.
type Repository interface {
	Insert(ctx context.Context, e *Entry) error
	Find(ctx context.Context, f Filter) ([]*Entry, error)
}

// MongoRepository implements Repository on a Mongo collection.
type MongoRepository struct {
	col *mongo.Collection
}

// NewMongoRepository creates the repository and ensures the query indexes.
func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	ctx := context.Background()
	col.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "entityType", Value: 1}, {Key: "entityId", Value: 1}}})
	col.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}}})
	col.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "action", Value: 1}}})
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Insert(ctx context.Context, e *Entry) error {
	_, err := r.col.InsertOne(ctx, e)
	return err
}

func (r *MongoRepository) Find(ctx context.Context, f Filter) ([]*Entry, error) {
	filter := bson.M{}
	if f.UserID != "" {
		filter["userId"] = f.UserID
	}
	if f.Action != "" {
		filter["action"] = f.Action
	}
	if f.EntityType != "" {
		filter["entityType"] = f.EntityType
	}
	if f.EntityID != "" {
		filter["entityId"] = f.EntityID
	}
	limit := f.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}).SetLimit(limit)
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*Entry{}
	for cur.Next(ctx) {
		var e Entry
		if err := cur.Decode(&e); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, cur.Err()
}
