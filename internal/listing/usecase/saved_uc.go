package usecase

import (
	"context"

	"github.com/estately/estate-service/internal/auth"
	"github.com/estately/estate-service/internal/listing/domain"
	"github.com/estately/estate-service/internal/platform/logger"
	"go.uber.org/zap"
)

// SavedResolver answers whether an identity bookmarked a listing. It is a
// pure predicate; creating and removing bookmarks happens elsewhere.
type SavedResolver struct {
	repo   domain.SavedListingRepository
	logger *logger.Logger
}

func NewSavedResolver(repo domain.SavedListingRepository, log *logger.Logger) *SavedResolver {
	return &SavedResolver{
		repo:   repo,
		logger: log.Named("SavedResolver"),
	}
}

// IsSaved resolves the bookmark state for the given identity. An anonymous
// identity is always unsaved and never touches the store.
func (r *SavedResolver) IsSaved(ctx context.Context, identity auth.Identity, listingID string) (bool, error) {
	if identity.IsAnonymous() {
		return false, nil
	}
	saved, err := r.repo.Exists(ctx, identity.UserID, listingID)
	if err != nil {
		r.logger.Error("Failed to resolve saved state", zap.Error(err),
			zap.String("user_id", identity.UserID), zap.String("listing_id", listingID))
		return false, err
	}
	return saved, nil
}
