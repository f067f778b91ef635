package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the booking queries rely on.
func (r *MongoBookingRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	bookingIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// conflict detection and professional listings
		{
			Keys:    bson.D{{Key: "professional_id", Value: 1}, {Key: "status", Value: 1}, {Key: "start_date", Value: 1}},
			Options: options.Index().SetName("professional_status_start_idx"),
		},
		{
			Keys:    bson.D{{Key: "professional_id", Value: 1}, {Key: "event_id", Value: 1}},
			Options: options.Index().SetName("professional_event_idx"),
		},
		{
			Keys:    bson.D{{Key: "event_planner_id", Value: 1}, {Key: "start_date", Value: 1}},
			Options: options.Index().SetName("planner_start_idx"),
		},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, bookingIndexes); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}

	lockIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "professional_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("unique_professional"),
	}
	if _, err := r.locks.Indexes().CreateOne(ctx, lockIndex); err != nil {
		return fmt.Errorf("failed to create professional lock index: %w", err)
	}
	return nil
}
