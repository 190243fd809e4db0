package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainavailability "villacove/internal/domain/availability"
	domainbooking "villacove/internal/domain/booking"
	"villacove/internal/domain/shared/daterange"
	domainvilla "villacove/internal/domain/villa"
)

// BlockedDateRepository persists one row per blocked villa night. The
// unique (villa_id, date) index is what closes the race between two
// guests booking the same night: the second insert hits a duplicate key
// and the whole transaction aborts.
type BlockedDateRepository struct {
	col *mongo.Collection
}

func NewBlockedDateRepository(db *mongo.Database) *BlockedDateRepository {
	return &BlockedDateRepository{col: db.Collection("calendar_blocked")}
}

// EnsureIndexes creates the unique (villa_id, date) index.
func (r *BlockedDateRepository) EnsureIndexes(ctx context.Context) error {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "villa_id", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, err := r.col.Indexes().CreateOne(ctx, idx)
	return err
}

func (r *BlockedDateRepository) ForVilla(ctx context.Context, villaID domainvilla.VillaID) ([]domainavailability.BlockedDate, error) {
	filter := bson.M{"villa_id": string(villaID)}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []domainavailability.BlockedDate
	for cursor.Next(ctx) {
		var doc blockedDateDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toDomain())
	}
	return out, cursor.Err()
}

// InsertMany writes the batch ordered. A duplicate key surfaces as
// ErrDateAlreadyBlocked; the surrounding transaction rollback discards
// any rows inserted before the conflict.
func (r *BlockedDateRepository) InsertMany(ctx context.Context, dates []domainavailability.BlockedDate) error {
	if len(dates) == 0 {
		return nil
	}
	docs := make([]any, 0, len(dates))
	for _, row := range dates {
		docs = append(docs, newBlockedDateDocument(row))
	}
	opts := options.InsertMany().SetOrdered(true)
	if _, err := r.col.InsertMany(ctx, docs, opts); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainavailability.ErrDateAlreadyBlocked
		}
		return err
	}
	return nil
}

func (r *BlockedDateRepository) DeleteByBooking(ctx context.Context, villaID domainvilla.VillaID, bookingID domainbooking.BookingID) (int64, error) {
	if bookingID == "" {
		return 0, nil
	}
	filter := bson.M{"villa_id": string(villaID), "booking_id": string(bookingID)}
	res, err := r.col.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *BlockedDateRepository) DeleteManual(ctx context.Context, villaID domainvilla.VillaID, dates []time.Time) (int64, error) {
	if len(dates) == 0 {
		return 0, nil
	}
	keys := make([]string, 0, len(dates))
	for _, d := range dates {
		keys = append(keys, daterange.DayKey(d))
	}
	filter := bson.M{
		"villa_id":   string(villaID),
		"booking_id": "",
		"date":       bson.M{"$in": keys},
	}
	res, err := r.col.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Dates are stored as day keys so the unique index compares calendar
// days, not instants.
type blockedDateDocument struct {
	VillaID   string `bson:"villa_id"`
	Date      string `bson:"date"`
	BookingID string `bson:"booking_id"`
	Reason    string `bson:"reason"`
	CreatedAt int64  `bson:"created_at"`
}

func newBlockedDateDocument(row domainavailability.BlockedDate) blockedDateDocument {
	return blockedDateDocument{
		VillaID:   string(row.VillaID),
		Date:      daterange.DayKey(row.Date),
		BookingID: string(row.BookingID),
		Reason:    string(row.Reason),
		CreatedAt: row.CreatedAt.UnixMilli(),
	}
}

func (d blockedDateDocument) toDomain() domainavailability.BlockedDate {
	date, _ := time.Parse("2006-01-02", d.Date)
	return domainavailability.BlockedDate{
		VillaID:   domainvilla.VillaID(d.VillaID),
		Date:      date.UTC(),
		BookingID: domainbooking.BookingID(d.BookingID),
		Reason:    domainavailability.BlockReason(d.Reason),
		CreatedAt: timestampToTime(d.CreatedAt),
	}
}

var _ domainavailability.Repository = (*BlockedDateRepository)(nil)
