package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/estately/estate-service/internal/platform/logger"
	"github.com/estately/estate-service/internal/user"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const userCollectionName = "users"

// UserRepository reads profile projections from the users collection. The
// collection is owned by the authentication provider; this service never
// writes to it.
type UserRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewUserRepository(db *mongo.Database, log *logger.Logger) *UserRepository {
	return &UserRepository{
		collection: db.Collection(userCollectionName),
		logger:     log.Named("UserRepository"),
	}
}

// GetProfile retrieves a single user projection.
func (r *UserRepository) GetProfile(ctx context.Context, userID string) (*user.Profile, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, user.ErrUserNotFound
	}

	var doc userDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.Warn("User not found", zap.String("user_id", userID))
			return nil, user.ErrUserNotFound
		}
		r.logger.Error("Failed to get user profile", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("db findone failed: %w", err)
	}
	return doc.toProfile(), nil
}

// GetProfiles retrieves a batch of user projections keyed by ID. Missing
// users are absent from the map.
func (r *UserRepository) GetProfiles(ctx context.Context, userIDs []string) (map[string]*user.Profile, error) {
	profiles := make(map[string]*user.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return profiles, nil
	}

	oids := make([]primitive.ObjectID, 0, len(userIDs))
	for _, id := range userIDs {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		oids = append(oids, oid)
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		r.logger.Error("Failed to find user profiles", zap.Error(err))
		return nil, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*userDocument
	if err = cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode user profiles", zap.Error(err))
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}

	for _, doc := range docs {
		p := doc.toProfile()
		profiles[p.ID] = p
	}
	return profiles, nil
}
