package mongodb

import (
	"fmt"
	"time"

	listingdomain "github.com/estately/estate-service/internal/listing/domain"
	reviewdomain "github.com/estately/estate-service/internal/review/domain"
	"github.com/estately/estate-service/internal/user"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// listingDocument is the MongoDB shape of a listing.
type listingDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	OwnerID   string             `bson:"owner_id"`
	Title     string             `bson:"title"`
	City      string             `bson:"city"`
	Type      string             `bson:"type"`
	Property  string             `bson:"property"`
	Bedrooms  int32              `bson:"bedrooms"`
	Price     int64              `bson:"price"`
	Photos    []string           `bson:"photos,omitempty"`
	Views     int64              `bson:"views"`
	CreatedAt time.Time          `bson:"created_at"`
}

// listingDetailDocument holds the descriptive payload, one per listing.
// ListingID mirrors the listing's hex ID so cross-references stay plain
// strings, same as in the saved_listings collection.
type listingDetailDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	ListingID   string             `bson:"listing_id"`
	Description string             `bson:"description"`
	Amenities   string             `bson:"amenities"`
	Utilities   string             `bson:"utilities"`
	Size        int32              `bson:"size"`
}

type savedListingDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"user_id"`
	ListingID string             `bson:"listing_id"`
	CreatedAt time.Time          `bson:"created_at"`
}

type reviewDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	PostBy    string             `bson:"post_by"`
	PostTo    string             `bson:"post_to"`
	Rating    int32              `bson:"rating"`
	Review    string             `bson:"review"`
	Grade     string             `bson:"grade,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
}

type userDocument struct {
	ID       primitive.ObjectID `bson:"_id"`
	Username string             `bson:"username"`
	Email    string             `bson:"email"`
	Avatar   string             `bson:"avatar,omitempty"`
}

func objectIDFromDomain(id string) (primitive.ObjectID, error) {
	if id == "" {
		return primitive.NilObjectID, nil
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid ID format %q: %w", id, err)
	}
	return oid, nil
}

func fromDomainListing(l *listingdomain.Listing) (*listingDocument, error) {
	if l == nil {
		return nil, nil
	}
	oid, err := objectIDFromDomain(l.ID)
	if err != nil {
		return nil, err
	}
	return &listingDocument{
		ID:        oid,
		OwnerID:   l.OwnerID,
		Title:     l.Title,
		City:      l.City,
		Type:      string(l.Type),
		Property:  l.Property,
		Bedrooms:  l.Bedrooms,
		Price:     l.Price,
		Photos:    l.Photos,
		Views:     l.Views,
		CreatedAt: l.CreatedAt,
	}, nil
}

func (d *listingDocument) toDomain() *listingdomain.Listing {
	if d == nil {
		return nil
	}
	return &listingdomain.Listing{
		ID:        d.ID.Hex(),
		OwnerID:   d.OwnerID,
		Title:     d.Title,
		City:      d.City,
		Type:      listingdomain.ListingType(d.Type),
		Property:  d.Property,
		Bedrooms:  d.Bedrooms,
		Price:     d.Price,
		Photos:    d.Photos,
		Views:     d.Views,
		CreatedAt: d.CreatedAt,
	}
}

func toDomainListings(docs []*listingDocument) []*listingdomain.Listing {
	listings := make([]*listingdomain.Listing, 0, len(docs))
	for _, doc := range docs {
		listings = append(listings, doc.toDomain())
	}
	return listings
}

func fromDomainDetail(d *listingdomain.ListingDetail) (*listingDetailDocument, error) {
	if d == nil {
		return nil, nil
	}
	oid, err := objectIDFromDomain(d.ID)
	if err != nil {
		return nil, err
	}
	return &listingDetailDocument{
		ID:          oid,
		ListingID:   d.ListingID,
		Description: d.Description,
		Amenities:   d.Amenities,
		Utilities:   d.Utilities,
		Size:        d.Size,
	}, nil
}

func (d *listingDetailDocument) toDomain() *listingdomain.ListingDetail {
	if d == nil {
		return nil
	}
	return &listingdomain.ListingDetail{
		ID:          d.ID.Hex(),
		ListingID:   d.ListingID,
		Description: d.Description,
		Amenities:   d.Amenities,
		Utilities:   d.Utilities,
		Size:        d.Size,
	}
}

func fromDomainReview(r *reviewdomain.Review) (*reviewDocument, error) {
	if r == nil {
		return nil, nil
	}
	oid, err := objectIDFromDomain(r.ID)
	if err != nil {
		return nil, err
	}
	return &reviewDocument{
		ID:        oid,
		PostBy:    r.PostByID,
		PostTo:    r.PostToID,
		Rating:    r.Rating,
		Review:    r.Review,
		Grade:     string(r.Grade),
		CreatedAt: r.CreatedAt,
	}, nil
}

func (d *reviewDocument) toDomain() *reviewdomain.Review {
	if d == nil {
		return nil
	}
	return &reviewdomain.Review{
		ID:        d.ID.Hex(),
		PostByID:  d.PostBy,
		PostToID:  d.PostTo,
		Rating:    d.Rating,
		Review:    d.Review,
		Grade:     reviewdomain.Grade(d.Grade),
		CreatedAt: d.CreatedAt,
	}
}

func (d *userDocument) toProfile() *user.Profile {
	if d == nil {
		return nil
	}
	return &user.Profile{
		ID:       d.ID.Hex(),
		Username: d.Username,
		Email:    d.Email,
		Avatar:   d.Avatar,
	}
}
