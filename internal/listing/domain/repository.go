package domain

import "context"

// ListingRepository is the persistence port for listings and their details.
// Create, update and delete touch both rows as one transactional unit so a
// listing without its detail is never observable.
type ListingRepository interface {
	CreateWithDetail(ctx context.Context, listing *Listing, detail *ListingDetail) error
	FindByFilter(ctx context.Context, filter Filter) ([]*Listing, error)
	FindByID(ctx context.Context, id string) (*Listing, error)
	// FindByIDAndIncrementViews atomically increments the view counter and
	// returns the post-increment listing. A missing listing returns
	// ErrListingNotFound without any side effect.
	FindByIDAndIncrementViews(ctx context.Context, id string) (*Listing, error)
	FindDetailByListingID(ctx context.Context, listingID string) (*ListingDetail, error)
	UpdateWithDetail(ctx context.Context, id string, upd ListingUpdate, detailUpd DetailUpdate) error
	DeleteWithDetail(ctx context.Context, id string) error
	AddPhoto(ctx context.Context, id, photoURL string) error
}

// SavedListingRepository reads the bookmark relation. Bookmark creation and
// removal happen outside this service.
type SavedListingRepository interface {
	Exists(ctx context.Context, userID, listingID string) (bool, error)
	// CountByListingIDs returns the saved-count per listing ID. Listings
	// nobody saved are absent from the map.
	CountByListingIDs(ctx context.Context, listingIDs []string) (map[string]int64, error)
}
