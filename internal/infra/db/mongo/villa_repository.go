package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"villacove/internal/domain/shared/money"
	domainvilla "villacove/internal/domain/villa"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type VillaRepository struct {
	col *mongo.Collection
}

func NewVillaRepository(db *mongo.Database) *VillaRepository {
	return &VillaRepository{col: db.Collection("agg_villa")}
}

// EnsureIndexes creates the unique slug index.
func (r *VillaRepository) EnsureIndexes(ctx context.Context) error {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, err := r.col.Indexes().CreateOne(ctx, idx)
	return err
}

func (r *VillaRepository) ByID(ctx context.Context, id domainvilla.VillaID) (*domainvilla.Villa, error) {
	var doc villaDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainvilla.ErrVillaNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *VillaRepository) BySlug(ctx context.Context, slug string) (*domainvilla.Villa, error) {
	var doc villaDocument
	if err := r.col.FindOne(ctx, bson.M{"slug": slug}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainvilla.ErrVillaNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *VillaRepository) Save(ctx context.Context, v *domainvilla.Villa) error {
	doc := newVillaDocument(v)
	filter := bson.M{"_id": doc.ID, "version": v.Version}
	doc.Version = v.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	v.Version = doc.Version
	return nil
}

func (r *VillaRepository) List(ctx context.Context, onlyPublished bool) ([]*domainvilla.Villa, error) {
	filter := bson.M{}
	if onlyPublished {
		filter["state"] = string(domainvilla.StatePublished)
	}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []*domainvilla.Villa
	for cursor.Next(ctx) {
		var doc villaDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

type moneyDocument struct {
	Amount   int64  `bson:"amount"`
	Currency string `bson:"currency"`
}

func newMoneyDocument(m money.Money) moneyDocument {
	return moneyDocument{Amount: m.Amount, Currency: m.Currency}
}

func (d moneyDocument) toMoney() money.Money {
	return money.Money{Amount: d.Amount, Currency: d.Currency}
}

type villaDocument struct {
	ID            string        `bson:"_id"`
	Name          string        `bson:"name"`
	Slug          string        `bson:"slug"`
	Description   string        `bson:"description"`
	Location      string        `bson:"location"`
	Capacity      int           `bson:"capacity"`
	MinStayNights int           `bson:"min_stay_nights"`
	NightlyRate   moneyDocument `bson:"nightly_rate"`
	CleaningFee   moneyDocument `bson:"cleaning_fee"`
	ServiceFee    moneyDocument `bson:"service_fee"`
	Amenities     []string      `bson:"amenities"`
	Photos        []string      `bson:"photos"`
	State         string        `bson:"state"`
	CreatedAt     int64         `bson:"created_at"`
	UpdatedAt     int64         `bson:"updated_at"`
	Version       int64         `bson:"version"`
}

func newVillaDocument(v *domainvilla.Villa) villaDocument {
	return villaDocument{
		ID:            string(v.ID),
		Name:          v.Name,
		Slug:          v.Slug,
		Description:   v.Description,
		Location:      v.Location,
		Capacity:      v.Capacity,
		MinStayNights: v.MinStayNights,
		NightlyRate:   newMoneyDocument(v.NightlyRate),
		CleaningFee:   newMoneyDocument(v.CleaningFee),
		ServiceFee:    newMoneyDocument(v.ServiceFee),
		Amenities:     v.Amenities,
		Photos:        v.Photos,
		State:         string(v.State),
		CreatedAt:     v.CreatedAt.UnixMilli(),
		UpdatedAt:     v.UpdatedAt.UnixMilli(),
		Version:       v.Version,
	}
}

func (d villaDocument) toAggregate() *domainvilla.Villa {
	return &domainvilla.Villa{
		ID:            domainvilla.VillaID(d.ID),
		Name:          d.Name,
		Slug:          d.Slug,
		Description:   d.Description,
		Location:      d.Location,
		Capacity:      d.Capacity,
		MinStayNights: d.MinStayNights,
		NightlyRate:   d.NightlyRate.toMoney(),
		CleaningFee:   d.CleaningFee.toMoney(),
		ServiceFee:    d.ServiceFee.toMoney(),
		Amenities:     d.Amenities,
		Photos:        d.Photos,
		State:         domainvilla.VillaState(d.State),
		CreatedAt:     timestampToTime(d.CreatedAt),
		UpdatedAt:     timestampToTime(d.UpdatedAt),
		Version:       d.Version,
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

var _ domainvilla.Repository = (*VillaRepository)(nil)
