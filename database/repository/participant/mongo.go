package participantRepo

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

type MongoParticipantRepo struct {
	professionals *mongo.Collection
	planners      *mongo.Collection
	users         *mongo.Collection
}

var _ ParticipantRepository = (*MongoParticipantRepo)(nil)

func NewMongoParticipantRepo(db *mongo.Database) *MongoParticipantRepo {
	return &MongoParticipantRepo{
		professionals: db.Collection("professionals"),
		planners:      db.Collection("planners"),
		users:         db.Collection("users"),
	}
}

func (r *MongoParticipantRepo) GetParticipant(ctx context.Context, role models.Role, id string) (*models.Participant, error) {
	coll, err := r.collectionFor(role)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOne().SetProjection(bson.M{"id": 1, "userId": 1, "name": 1})
	var participant models.Participant
	err = coll.FindOne(ctx, bson.M{"id": id}, opts).Decode(&participant)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s %s: %w", role, id, err)
	}
	participant.Role = role
	return &participant, nil
}

func (r *MongoParticipantRepo) GetDeviceToken(ctx context.Context, userID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOne().SetProjection(bson.M{"id": 1, "fcmToken": 1})
	var device models.UserDevice
	err := r.users.FindOne(ctx, bson.M{"id": userID}, opts).Decode(&device)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to fetch device for user %s: %w", userID, err)
	}
	return device.FCMToken, nil
}

func (r *MongoParticipantRepo) collectionFor(role models.Role) (*mongo.Collection, error) {
	switch role {
	case models.RoleProfessional:
		return r.professionals, nil
	case models.RolePlanner:
		return r.planners, nil
	default:
		return nil, fmt.Errorf("unknown participant role %q", role)
	}
}
