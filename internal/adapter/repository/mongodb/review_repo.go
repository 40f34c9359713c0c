package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/estately/estate-service/internal/platform/logger"
	"github.com/estately/estate-service/internal/review/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const reviewCollectionName = "reviews"

// ReviewRepository implements domain.ReviewRepository using MongoDB.
type ReviewRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

// NewReviewRepository creates the repository and ensures its indexes.
// uniquePerPair installs the compound unique index that turns repeated
// reviews by the same reviewer of the same target into
// domain.ErrReviewAlreadyExists; the default product behavior leaves
// repeats permitted.
func NewReviewRepository(db *mongo.Database, log *logger.Logger, uniquePerPair bool) (*ReviewRepository, error) {
	collection := db.Collection(reviewCollectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "post_to", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "post_by", Value: 1}}},
	}
	if uniquePerPair {
		indexes = append(indexes, mongo.IndexModel{
			Keys:    bson.D{{Key: "post_by", Value: 1}, {Key: "post_to", Value: 1}},
			Options: options.Index().SetUnique(true),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Error("Failed to create indexes for reviews collection", zap.Error(err))
	} else {
		log.Info("Successfully ensured indexes for reviews collection", zap.Bool("unique_per_pair", uniquePerPair))
	}

	return &ReviewRepository{
		collection: collection,
		logger:     log.Named("ReviewRepository"),
	}, nil
}

// Create inserts a new review.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	r.logger.Info("Creating review in DB", zap.String("post_by", review.PostByID), zap.String("post_to", review.PostToID))

	doc, err := fromDomainReview(review)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	review.ID = doc.ID.Hex()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
		review.CreatedAt = doc.CreatedAt
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			r.logger.Warn("Duplicate key error on review creation",
				zap.String("post_by", review.PostByID), zap.String("post_to", review.PostToID))
			return domain.ErrReviewAlreadyExists
		}
		r.logger.Error("Failed to insert review into DB", zap.Error(err))
		return fmt.Errorf("db insert failed: %w", err)
	}

	r.logger.Info("Review created successfully in DB", zap.String("review_id", review.ID))
	return nil
}

// GetByID retrieves a review by its ID.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var doc reviewDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.Warn("Review not found in DB", zap.String("review_id", id))
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to get review by ID", zap.Error(err), zap.String("review_id", id))
		return nil, fmt.Errorf("db findone failed: %w", err)
	}
	return doc.toDomain(), nil
}

// FindByPostTo retrieves all reviews received by a user, newest first.
func (r *ReviewRepository) FindByPostTo(ctx context.Context, userID string) ([]*domain.Review, error) {
	r.logger.Debug("Finding reviews by post_to", zap.String("user_id", userID))

	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"post_to": userID}, findOptions)
	if err != nil {
		r.logger.Error("Failed to find reviews by post_to", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*reviewDocument
	if err = cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode reviews by post_to", zap.Error(err))
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}

	reviews := make([]*domain.Review, len(docs))
	for i, doc := range docs {
		reviews[i] = doc.toDomain()
	}
	return reviews, nil
}

// GetReputationSummary computes the count and mean rating of reviews
// received by the user. Zero reviews yield {0, 0}.
func (r *ReviewRepository) GetReputationSummary(ctx context.Context, userID string) (*domain.ReputationSummary, error) {
	r.logger.Debug("Computing reputation summary", zap.String("user_id", userID))

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "post_to", Value: userID},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$post_to"},
			{Key: "average_rating", Value: bson.D{{Key: "$avg", Value: "$rating"}}},
			{Key: "total_reviews", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		r.logger.Error("Failed to aggregate reputation summary", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("db aggregate failed: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		AverageRating float64 `bson:"average_rating"`
		TotalReviews  int64   `bson:"total_reviews"`
	}
	if err = cursor.All(ctx, &results); err != nil {
		r.logger.Error("Failed to decode reputation summary aggregation", zap.Error(err))
		return nil, fmt.Errorf("db cursor all for aggregate failed: %w", err)
	}

	if len(results) == 0 {
		return &domain.ReputationSummary{AverageRating: 0, TotalReviews: 0}, nil
	}
	return &domain.ReputationSummary{
		AverageRating: results[0].AverageRating,
		TotalReviews:  results[0].TotalReviews,
	}, nil
}
