package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/estately/estate-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const savedCollectionName = "saved_listings"

// SavedListingRepository reads the bookmark relation. The unique compound
// index guarantees at most one row per (user, listing) pair; writes happen
// elsewhere in the product, this service only resolves and counts.
type SavedListingRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewSavedListingRepository(db *mongo.Database, log *logger.Logger) (*SavedListingRepository, error) {
	collection := db.Collection(savedCollectionName)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "listing_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "listing_id", Value: 1}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Error("Failed to create indexes for saved_listings collection", zap.Error(err))
	}

	return &SavedListingRepository{
		collection: collection,
		logger:     log.Named("SavedListingRepository"),
	}, nil
}

// Exists reports whether the user bookmarked the listing.
func (r *SavedListingRepository) Exists(ctx context.Context, userID, listingID string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx,
		bson.M{"user_id": userID, "listing_id": listingID},
		options.Count().SetLimit(1),
	)
	if err != nil {
		r.logger.Error("Failed to check saved listing", zap.Error(err),
			zap.String("user_id", userID), zap.String("listing_id", listingID))
		return false, fmt.Errorf("db count failed: %w", err)
	}
	return count > 0, nil
}

// CountByListingIDs aggregates saved-counts for a batch of listings in one
// round trip. Listings nobody saved are absent from the result.
func (r *SavedListingRepository) CountByListingIDs(ctx context.Context, listingIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(listingIDs))
	if len(listingIDs) == 0 {
		return counts, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "listing_id", Value: bson.D{{Key: "$in", Value: listingIDs}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$listing_id"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		r.logger.Error("Failed to aggregate saved counts", zap.Error(err))
		return nil, fmt.Errorf("db aggregate failed: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		ListingID string `bson:"_id"`
		Count     int64  `bson:"count"`
	}
	if err = cursor.All(ctx, &results); err != nil {
		r.logger.Error("Failed to decode saved count aggregation", zap.Error(err))
		return nil, fmt.Errorf("db cursor all for aggregate failed: %w", err)
	}

	for _, res := range results {
		counts[res.ListingID] = res.Count
	}
	return counts, nil
}
