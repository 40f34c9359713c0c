package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/estately/estate-service/internal/listing/domain"
	"github.com/estately/estate-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	listingCollectionName = "listings"
	detailCollectionName  = "listing_details"
)

// ListingRepository implements domain.ListingRepository on MongoDB. It keeps
// a handle on the client so multi-document operations (create, update,
// delete of listing+detail) can run inside a session transaction.
type ListingRepository struct {
	client   *mongo.Client
	listings *mongo.Collection
	details  *mongo.Collection
	logger   *logger.Logger
}

// NewListingRepository creates the repository and ensures its indexes.
func NewListingRepository(client *mongo.Client, db *mongo.Database, log *logger.Logger) (*ListingRepository, error) {
	listings := db.Collection(listingCollectionName)
	details := db.Collection(detailCollectionName)

	listingIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "city", Value: 1}, {Key: "type", Value: 1}, {Key: "property", Value: 1}}},
		{Keys: bson.D{{Key: "price", Value: 1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
	}
	detailIndexes := []mongo.IndexModel{
		// One detail per listing, enforced at the store level.
		{Keys: bson.D{{Key: "listing_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := listings.Indexes().CreateMany(ctx, listingIndexes); err != nil {
		log.Error("Failed to create indexes for listings collection", zap.Error(err))
	}
	if _, err := details.Indexes().CreateMany(ctx, detailIndexes); err != nil {
		log.Error("Failed to create indexes for listing_details collection", zap.Error(err))
	}

	return &ListingRepository{
		client:   client,
		listings: listings,
		details:  details,
		logger:   log.Named("ListingRepository"),
	}, nil
}

// withTransaction runs fn inside a single session transaction so the
// listing and its detail mutate as one unit.
func (r *ListingRepository) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("db start session failed: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// CreateWithDetail inserts the listing and its detail atomically. A listing
// without its detail is never observable.
func (r *ListingRepository) CreateWithDetail(ctx context.Context, listing *domain.Listing, detail *domain.ListingDetail) error {
	r.logger.Info("Creating listing with detail in DB", zap.String("owner_id", listing.OwnerID), zap.String("city", listing.City))

	doc, err := fromDomainListing(listing)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.Views = 0

	listing.ID = doc.ID.Hex()
	listing.CreatedAt = now
	listing.Views = 0

	detail.ListingID = listing.ID
	detailDoc, err := fromDomainDetail(detail)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if detailDoc.ID.IsZero() {
		detailDoc.ID = primitive.NewObjectID()
	}
	detail.ID = detailDoc.ID.Hex()

	err = r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := r.listings.InsertOne(sc, doc); err != nil {
			return err
		}
		if _, err := r.details.InsertOne(sc, detailDoc); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to insert listing with detail", zap.Error(err))
		return fmt.Errorf("db insert failed: %w", err)
	}

	r.logger.Info("Listing created successfully in DB", zap.String("listing_id", listing.ID))
	return nil
}

// buildListingQuery translates the optional search predicates into a Mongo
// filter. Omitted predicates are simply not part of the query; price bounds
// are inclusive on both ends.
func buildListingQuery(filter domain.Filter) bson.M {
	query := bson.M{}
	if filter.City != "" {
		query["city"] = filter.City
	}
	if filter.Type != "" {
		query["type"] = string(filter.Type)
	}
	if filter.Property != "" {
		query["property"] = filter.Property
	}
	if filter.Bedrooms != nil {
		query["bedrooms"] = *filter.Bedrooms
	}
	price := bson.M{}
	if filter.MinPrice != nil {
		price["$gte"] = *filter.MinPrice
	}
	if filter.MaxPrice != nil {
		price["$lte"] = *filter.MaxPrice
	}
	if len(price) > 0 {
		query["price"] = price
	}
	return query
}

// FindByFilter retrieves listings matching the given optional predicates.
func (r *ListingRepository) FindByFilter(ctx context.Context, filter domain.Filter) ([]*domain.Listing, error) {
	r.logger.Debug("Finding listings by filter", zap.Any("filter", filter))

	cursor, err := r.listings.Find(ctx, buildListingQuery(filter))
	if err != nil {
		r.logger.Error("Failed to find listings by filter", zap.Error(err))
		return nil, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*listingDocument
	if err = cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode listings", zap.Error(err))
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}
	return toDomainListings(docs), nil
}

// FindByID retrieves a single listing without touching the view counter.
func (r *ListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// A malformed ID cannot reference an existing listing.
		return nil, domain.ErrListingNotFound
	}

	var doc listingDocument
	err = r.listings.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrListingNotFound
		}
		r.logger.Error("Failed to get listing by ID", zap.Error(err), zap.String("listing_id", id))
		return nil, fmt.Errorf("db findone failed: %w", err)
	}
	return doc.toDomain(), nil
}

// FindByIDAndIncrementViews bumps the view counter by exactly one and
// returns the post-increment listing. The increment and the existence check
// are a single FindOneAndUpdate, so concurrent fetches never lose updates
// and a missing listing is never incremented.
func (r *ListingRepository) FindByIDAndIncrementViews(ctx context.Context, id string) (*domain.Listing, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrListingNotFound
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc listingDocument
	err = r.listings.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$inc": bson.M{"views": 1}},
		opts,
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.Warn("Listing not found for view increment", zap.String("listing_id", id))
			return nil, domain.ErrListingNotFound
		}
		r.logger.Error("Failed to increment listing views", zap.Error(err), zap.String("listing_id", id))
		return nil, fmt.Errorf("db findoneandupdate failed: %w", err)
	}
	return doc.toDomain(), nil
}

// FindDetailByListingID retrieves the descriptive payload of a listing.
func (r *ListingRepository) FindDetailByListingID(ctx context.Context, listingID string) (*domain.ListingDetail, error) {
	var doc listingDetailDocument
	err := r.details.FindOne(ctx, bson.M{"listing_id": listingID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Invariant violation: a listing must always have its detail.
			r.logger.Error("Listing detail missing for existing listing", zap.String("listing_id", listingID))
			return nil, domain.ErrListingNotFound
		}
		return nil, fmt.Errorf("db findone failed: %w", err)
	}
	return doc.toDomain(), nil
}

// UpdateWithDetail applies partial updates to the listing and its detail as
// one transactional operation.
func (r *ListingRepository) UpdateWithDetail(ctx context.Context, id string, upd domain.ListingUpdate, detailUpd domain.DetailUpdate) error {
	r.logger.Info("Updating listing with detail in DB", zap.String("listing_id", id))

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrListingNotFound
	}

	listingSet := bson.M{}
	if upd.Title != nil {
		listingSet["title"] = *upd.Title
	}
	if upd.City != nil {
		listingSet["city"] = *upd.City
	}
	if upd.Type != nil {
		listingSet["type"] = string(*upd.Type)
	}
	if upd.Property != nil {
		listingSet["property"] = *upd.Property
	}
	if upd.Bedrooms != nil {
		listingSet["bedrooms"] = *upd.Bedrooms
	}
	if upd.Price != nil {
		listingSet["price"] = *upd.Price
	}

	detailSet := bson.M{}
	if detailUpd.Description != nil {
		detailSet["description"] = *detailUpd.Description
	}
	if detailUpd.Amenities != nil {
		detailSet["amenities"] = *detailUpd.Amenities
	}
	if detailUpd.Utilities != nil {
		detailSet["utilities"] = *detailUpd.Utilities
	}
	if detailUpd.Size != nil {
		detailSet["size"] = *detailUpd.Size
	}

	err = r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if len(listingSet) > 0 {
			result, err := r.listings.UpdateOne(sc, bson.M{"_id": oid}, bson.M{"$set": listingSet})
			if err != nil {
				return err
			}
			if result.MatchedCount == 0 {
				return domain.ErrListingNotFound
			}
		}
		if len(detailSet) > 0 {
			if _, err := r.details.UpdateOne(sc, bson.M{"listing_id": id}, bson.M{"$set": detailSet}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			return domain.ErrListingNotFound
		}
		r.logger.Error("Failed to update listing with detail", zap.Error(err), zap.String("listing_id", id))
		return fmt.Errorf("db update failed: %w", err)
	}

	r.logger.Info("Listing updated successfully in DB", zap.String("listing_id", id))
	return nil
}

// DeleteWithDetail removes the detail first, then the listing, inside one
// transaction. Either both rows go or neither does, so no orphan detail can
// survive a partial failure.
func (r *ListingRepository) DeleteWithDetail(ctx context.Context, id string) error {
	r.logger.Info("Deleting listing with detail from DB", zap.String("listing_id", id))

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrListingNotFound
	}

	err = r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := r.details.DeleteMany(sc, bson.M{"listing_id": id}); err != nil {
			return err
		}
		result, err := r.listings.DeleteOne(sc, bson.M{"_id": oid})
		if err != nil {
			return err
		}
		if result.DeletedCount == 0 {
			return domain.ErrListingNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			r.logger.Warn("Listing not found for deletion", zap.String("listing_id", id))
			return domain.ErrListingNotFound
		}
		r.logger.Error("Failed to delete listing with detail", zap.Error(err), zap.String("listing_id", id))
		return fmt.Errorf("db delete failed: %w", err)
	}

	r.logger.Info("Listing deleted successfully from DB", zap.String("listing_id", id))
	return nil
}

// AddPhoto appends an uploaded photo URL to the listing.
func (r *ListingRepository) AddPhoto(ctx context.Context, id, photoURL string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrListingNotFound
	}

	result, err := r.listings.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$push": bson.M{"photos": photoURL}})
	if err != nil {
		r.logger.Error("Failed to add photo to listing", zap.Error(err), zap.String("listing_id", id))
		return fmt.Errorf("db update failed: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}
