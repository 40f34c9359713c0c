package domain

import "context"

// ReviewRepository defines the persistence port for reviews. Methods operate
// on the clean domain.Review entity; database mapping lives in the adapter.
type ReviewRepository interface {
	Create(ctx context.Context, review *Review) error
	GetByID(ctx context.Context, id string) (*Review, error)

	// FindByPostTo retrieves all reviews received by a user, newest first.
	FindByPostTo(ctx context.Context, userID string) ([]*Review, error)

	// GetReputationSummary computes the count and mean rating of all reviews
	// received by the user. A user with no reviews yields {0, 0}, not an
	// error.
	GetReputationSummary(ctx context.Context, userID string) (*ReputationSummary, error)
}
