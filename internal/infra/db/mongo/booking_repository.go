package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "villacove/internal/domain/booking"
	domainpricing "villacove/internal/domain/pricing"
	domainrange "villacove/internal/domain/shared/daterange"
	domainvilla "villacove/internal/domain/villa"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection("agg_booking")}
}

// EnsureIndexes creates the unique reference index and the villa lookup index.
func (r *BookingRepository) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "reference", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "villa_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}
	_, err := r.col.Indexes().CreateMany(ctx, models)
	return err
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) ByReference(ctx context.Context, reference string) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"reference": reference}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
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
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) ListByVilla(ctx context.Context, villaID domainvilla.VillaID) ([]*domainbooking.Booking, error) {
	filter := bson.M{"villa_id": string(villaID)}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []*domainbooking.Booking
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

type rangeDocument struct {
	CheckIn  int64 `bson:"check_in"`
	CheckOut int64 `bson:"check_out"`
}

type quoteDocument struct {
	Nights      int           `bson:"nights"`
	NightlyRate moneyDocument `bson:"nightly_rate"`
	CleaningFee moneyDocument `bson:"cleaning_fee"`
	ServiceFee  moneyDocument `bson:"service_fee"`
	Total       moneyDocument `bson:"total"`
}

type bookingDocument struct {
	ID         string        `bson:"_id"`
	VillaID    string        `bson:"villa_id"`
	Reference  string        `bson:"reference"`
	GuestName  string        `bson:"guest_name"`
	GuestEmail string        `bson:"guest_email"`
	Guests     int           `bson:"guests"`
	Range      rangeDocument `bson:"range"`
	Price      quoteDocument `bson:"price"`
	State      string        `bson:"state"`
	CreatedAt  int64         `bson:"created_at"`
	UpdatedAt  int64         `bson:"updated_at"`
	Version    int64         `bson:"version"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:         string(b.ID),
		VillaID:    string(b.VillaID),
		Reference:  b.Reference,
		GuestName:  b.GuestName,
		GuestEmail: b.GuestEmail,
		Guests:     b.Guests,
		Range:      rangeDocument{CheckIn: b.Range.CheckIn.UnixMilli(), CheckOut: b.Range.CheckOut.UnixMilli()},
		Price: quoteDocument{
			Nights:      b.Price.Nights,
			NightlyRate: newMoneyDocument(b.Price.NightlyRate),
			CleaningFee: newMoneyDocument(b.Price.CleaningFee),
			ServiceFee:  newMoneyDocument(b.Price.ServiceFee),
			Total:       newMoneyDocument(b.Price.Total),
		},
		State:     string(b.State),
		CreatedAt: b.CreatedAt.UnixMilli(),
		UpdatedAt: b.UpdatedAt.UnixMilli(),
		Version:   b.Version,
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	dr := domainrange.DateRange{CheckIn: timestampToTime(d.Range.CheckIn), CheckOut: timestampToTime(d.Range.CheckOut)}
	return &domainbooking.Booking{
		ID:         domainbooking.BookingID(d.ID),
		VillaID:    domainvilla.VillaID(d.VillaID),
		Reference:  d.Reference,
		GuestName:  d.GuestName,
		GuestEmail: d.GuestEmail,
		Guests:     d.Guests,
		Range:      dr,
		Price: domainpricing.Quote{
			Nights:      d.Price.Nights,
			NightlyRate: d.Price.NightlyRate.toMoney(),
			CleaningFee: d.Price.CleaningFee.toMoney(),
			ServiceFee:  d.Price.ServiceFee.toMoney(),
			Total:       d.Price.Total.toMoney(),
		},
		State:     domainbooking.BookingState(d.State),
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
		Version:   d.Version,
	}
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
