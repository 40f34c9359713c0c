package domain

import "time"

// ListingType distinguishes rental listings from sales.
type ListingType string

const (
	TypeRent ListingType = "rent"
	TypeSale ListingType = "sale"
)

// IsValid checks the type against the defined constants.
func (t ListingType) IsValid() bool {
	return t == TypeRent || t == TypeSale
}

// Listing is a property record searchable and viewable by any caller.
// Views is monotonic and only ever mutated through an atomic increment at
// the store level.
type Listing struct {
	ID        string
	OwnerID   string
	Title     string
	City      string
	Type      ListingType
	Property  string // e.g. apartment, house, condo, land
	Bedrooms  int32
	Price     int64
	Photos    []string
	Views     int64
	CreatedAt time.Time
}

// ListingDetail is the extended descriptive payload owned by exactly one
// Listing. It is created and deleted together with its listing.
type ListingDetail struct {
	ID          string
	ListingID   string
	Description string
	Amenities   string
	Utilities   string
	Size        int32
}

// SavedListing is the bookmark relation between a user and a listing,
// unique per (UserID, ListingID) pair.
type SavedListing struct {
	ID        string
	UserID    string
	ListingID string
	CreatedAt time.Time
}

// Filter holds the optional search predicates. Nil/empty fields are not
// applied; they never match against the zero value.
type Filter struct {
	City     string
	Type     ListingType
	Property string
	Bedrooms *int32
	MinPrice *int64
	MaxPrice *int64
}

// SearchResult is a listing projection annotated with the number of users
// who saved it. The count is computed per query, never materialized.
type SearchResult struct {
	Listing
	SavedCount int64
}

// OwnerProjection is the slice of the owner's profile a detail view may
// expose. Email and contact fields are deliberately absent.
type OwnerProjection struct {
	Username string
	Avatar   string
}

// DetailView is the full response of a detail fetch.
type DetailView struct {
	Listing Listing
	Detail  ListingDetail
	Owner   OwnerProjection
	IsSaved bool
}

// ListingUpdate carries partial updates for the listing row. Nil fields are
// left untouched.
type ListingUpdate struct {
	Title    *string
	City     *string
	Type     *ListingType
	Property *string
	Bedrooms *int32
	Price    *int64
}

// DetailUpdate carries partial updates for the detail row.
type DetailUpdate struct {
	Description *string
	Amenities   *string
	Utilities   *string
	Size        *int32
}

// IsZero reports whether no listing field is set.
func (u ListingUpdate) IsZero() bool {
	return u.Title == nil && u.City == nil && u.Type == nil && u.Property == nil && u.Bedrooms == nil && u.Price == nil
}

// IsZero reports whether no detail field is set.
func (u DetailUpdate) IsZero() bool {
	return u.Description == nil && u.Amenities == nil && u.Utilities == nil && u.Size == nil
}
