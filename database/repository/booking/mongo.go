package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"crewbook/models"
)

const (
	bookingsCollection = "bookings"
	locksCollection    = "professional_locks"
)

var _ BookingRepository = (*MongoBookingRepo)(nil)

type MongoBookingRepo struct {
	coll  *mongo.Collection
	locks *mongo.Collection
}

// NewMongoBookingRepo constructs a MongoDB BookingRepository on db.
func NewMongoBookingRepo(db *mongo.Database) *MongoBookingRepo {
	return &MongoBookingRepo{
		coll:  db.Collection(bookingsCollection),
		locks: db.Collection(locksCollection),
	}
}

func newContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booking %s: %w", id, err)
	}
	return &booking, nil
}

func (r *MongoBookingRepo) FindActiveBookingsForProfessional(ctx context.Context, professionalID string, statuses ...models.BookingStatus) ([]models.Booking, error) {
	filter := bson.M{
		"professional_id": professionalID,
		"status":          bson.M{"$in": statusesOrActive(statuses)},
	}
	return r.find(ctx, filter)
}

func (r *MongoBookingRepo) Insert(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to insert booking: %w", err)
	}
	return booking, nil
}

// UpdateStatusIfCurrent moves the booking from expected to next in one conditional
// write, so two transitions read from the same status cannot both land.
func (r *MongoBookingRepo) UpdateStatusIfCurrent(ctx context.Context, id string, expected, next models.BookingStatus, fields models.StatusFields) (*models.Booking, error) {
	set := bson.M{
		"status":     next,
		"updated_at": fields.UpdatedAt,
	}
	if fields.ConfirmedAt != nil {
		set["confirmed_at"] = fields.ConfirmedAt
	}
	if fields.CompletedAt != nil {
		set["completed_at"] = fields.CompletedAt
	}
	if fields.CancelledAt != nil {
		set["cancelled_at"] = fields.CancelledAt
	}
	if fields.CancellationReason != "" {
		set["cancellation_reason"] = fields.CancellationReason
	}
	return r.conditionalUpdate(ctx, id, expected, bson.M{"$set": set})
}

func (r *MongoBookingRepo) UpdateTermsIfCurrent(ctx context.Context, id string, expected models.BookingStatus, terms models.Terms, updatedAt time.Time) (*models.Booking, error) {
	update := bson.M{"$set": bson.M{
		"rate":       terms.Rate,
		"currency":   terms.Currency,
		"updated_at": updatedAt,
	}}
	return r.conditionalUpdate(ctx, id, expected, update)
}

func (r *MongoBookingRepo) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	query := bson.M{}
	if filter.Status != nil {
		query["status"] = *filter.Status
	}
	if filter.ProfessionalID != nil {
		query["professional_id"] = *filter.ProfessionalID
	}
	if filter.EventPlannerID != nil {
		query["event_planner_id"] = *filter.EventPlannerID
	}
	if filter.EventID != nil {
		query["event_id"] = *filter.EventID
	}
	return r.find(ctx, query)
}

// RunForProfessional runs fn inside a session transaction that first bumps the
// professional's lock document. Concurrent transactions for the same professional
// write-conflict on that document and the driver retries the loser, so fn always sees
// the other's committed bookings.
func (r *MongoBookingRepo) RunForProfessional(ctx context.Context, professionalID string, fn func(ctx context.Context) error) error {
	if err := r.ensureLock(ctx, professionalID); err != nil {
		return err
	}

	sess, err := r.coll.Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) (interface{}, error) {
		_, err := r.locks.UpdateOne(sc,
			bson.M{"professional_id": professionalID},
			bson.M{
				"$inc": bson.M{"seq": 1},
				"$set": bson.M{"locked_at": time.Now().UTC()},
			},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to take professional lock: %w", err)
		}
		return nil, fn(sc)
	}

	_, err = sess.WithTransaction(ctx, txnFn)
	return err
}

// ensureLock creates the professional's lock document outside any transaction. Two
// first-time transactions would otherwise both upsert it and the loser would abort on the
// unique index with an error the driver does not retry.
func (r *MongoBookingRepo) ensureLock(ctx context.Context, professionalID string) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	_, err := r.locks.UpdateOne(ctx,
		bson.M{"professional_id": professionalID},
		bson.M{"$setOnInsert": bson.M{"seq": 0}},
		options.Update().SetUpsert(true),
	)
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("failed to create professional lock: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) conditionalUpdate(ctx context.Context, id string, expected models.BookingStatus, update bson.M) (*models.Booking, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Booking
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id, "status": expected}, update, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to update booking %s: %w", id, err)
	}

	count, err := r.coll.CountDocuments(ctx, bson.M{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to check booking %s: %w", id, err)
	}
	if count == 0 {
		return nil, ErrNotFound
	}
	return nil, ErrStaleStatus
}

func (r *MongoBookingRepo) find(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}, {Key: "id", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []models.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}
