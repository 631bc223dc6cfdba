package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/assinei/assinei-backend/internal/document"
)

// MongoRepo stores each document as a single Mongo document with its
// signatories embedded, so every workflow transition is one ReplaceOne.
// Signatures go to their own collection; they are side records and are never
// read back to derive workflow state.
type MongoRepo struct {
	docs       *mongo.Collection
	signatures *mongo.Collection
}

// NewMongoRepo creates the repository and ensures the query indexes.
func NewMongoRepo(docs, signatures *mongo.Collection) *MongoRepo {
	ctx := context.Background()
	docs.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "ownerId", Value: 1}}})
	docs.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "signatories.userId", Value: 1}}})
	signatures.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "documentId", Value: 1}, {Key: "userId", Value: 1}}})
	return &MongoRepo{docs: docs, signatures: signatures}
}

func (m *MongoRepo) Create(ctx context.Context, doc *document.Document) (string, error) {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = doc.CreatedAt
	if _, err := m.docs.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", document.ErrConflict
		}
		return "", err
	}
	return doc.ID, nil
}

func (m *MongoRepo) Get(ctx context.Context, id string) (*document.Document, error) {
	var d document.Document
	if err := m.docs.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, document.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (m *MongoRepo) List(ctx context.Context) ([]*document.Document, error) {
	return m.find(ctx, bson.M{})
}

func (m *MongoRepo) ListForUser(ctx context.Context, userID string) ([]*document.Document, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"ownerId": userID},
		bson.M{"signatories.userId": userID},
	}}
	return m.find(ctx, filter)
}

func (m *MongoRepo) find(ctx context.Context, filter bson.M) ([]*document.Document, error) {
	cur, err := m.docs.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*document.Document{}
	for cur.Next(ctx) {
		var d document.Document
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, cur.Err()
}

func (m *MongoRepo) Update(ctx context.Context, doc *document.Document) error {
	doc.UpdatedAt = time.Now().UTC()
	res, err := m.docs.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return document.ErrNotFound
	}
	return nil
}

func (m *MongoRepo) Delete(ctx context.Context, id string) error {
	res, err := m.docs.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return document.ErrNotFound
	}
	// cascade: drop the document's signature records too
	_, err = m.signatures.DeleteMany(ctx, bson.M{"documentId": id})
	return err
}

func (m *MongoRepo) FindPendingSignatory(ctx context.Context, documentID, userID string) (*document.DocumentSignatory, error) {
	d, err := m.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	for _, s := range d.Signatories {
		if s.UserID == userID && s.Status == document.SignatoryPending {
			row := s
			return &row, nil
		}
	}
	return nil, document.ErrNotFound
}

func (m *MongoRepo) FindSignatoriesByIDs(ctx context.Context, documentID string, ids []string) ([]document.DocumentSignatory, error) {
	d, err := m.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := []document.DocumentSignatory{}
	for _, s := range d.Signatories {
		if want[s.ID] {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *MongoRepo) CreateSignature(ctx context.Context, sig *document.Signature) (string, error) {
	if sig.ID == "" {
		sig.ID = uuid.NewString()
	}
	if sig.Timestamp.IsZero() {
		sig.Timestamp = time.Now().UTC()
	}
	if _, err := m.signatures.InsertOne(ctx, sig); err != nil {
		return "", err
	}
	return sig.ID, nil
}

func (m *MongoRepo) ListSignatures(ctx context.Context, documentID string) ([]*document.Signature, error) {
	cur, err := m.signatures.Find(ctx, bson.M{"documentId": documentID}, options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*document.Signature{}
	for cur.Next(ctx) {
		var s document.Signature
		if err := cur.Decode(&s); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, cur.Err()
}
