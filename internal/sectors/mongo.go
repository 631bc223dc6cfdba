package sectors

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/assinei/assinei-backend/internal/document"
)

// MongoRepository stores sectors with a unique index on name.
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, s *Sector) (*Sector, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	_, err := r.col.InsertOne(ctx, s)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, document.ErrConflict
		}
		return nil, err
	}
	return s, nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*Sector, error) {
	var s Sector
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, document.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *MongoRepository) List(ctx context.Context) ([]*Sector, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*Sector{}
	for cur.Next(ctx) {
		var s Sector
		if err := cur.Decode(&s); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, cur.Err()
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return document.ErrNotFound
	}
	return nil
}
