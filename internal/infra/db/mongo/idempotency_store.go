package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"villacove/internal/app/middleware"
)

// IdempotencyStore persists replay records with a TTL so retried booking
// requests return the original result instead of double-charging.
type IdempotencyStore struct {
	col *mongo.Collection
	ttl time.Duration
}

func NewIdempotencyStore(db *mongo.Database, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{col: db.Collection("app_idempotency"), ttl: ttl}
}

// EnsureIndexes creates the TTL index on the record timestamp.
func (s *IdempotencyStore) EnsureIndexes(ctx context.Context) error {
	ttl := s.ttl
	if ttl <= 0 {
		ttl = 168 * time.Hour
	}
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "occurred_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(ttl / time.Second)),
	}
	_, err := s.col.Indexes().CreateOne(ctx, idx)
	return err
}

type idempotencyDocument struct {
	Key        string    `bson:"_id"`
	Payload    []byte    `bson:"payload"`
	Error      string    `bson:"error"`
	OccurredAt time.Time `bson:"occurred_at"`
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	var doc idempotencyDocument
	if err := s.col.FindOne(ctx, bson.M{"_id": key}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return middleware.IdempotencyRecord{}, false, nil
		}
		return middleware.IdempotencyRecord{}, false, err
	}
	return middleware.IdempotencyRecord{
		Key:        doc.Key,
		Payload:    doc.Payload,
		Error:      doc.Error,
		OccurredAt: doc.OccurredAt,
	}, true, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, rec middleware.IdempotencyRecord) error {
	doc := idempotencyDocument{
		Key:        rec.Key,
		Payload:    rec.Payload,
		Error:      rec.Error,
		OccurredAt: rec.OccurredAt,
	}
	opts := options.Replace().SetUpsert(true)
	_, err := s.col.ReplaceOne(ctx, bson.M{"_id": rec.Key}, doc, opts)
	return err
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
