package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/estately/estate-service/internal/adapter/messaging/nats"
	"github.com/estately/estate-service/internal/auth"
	"github.com/estately/estate-service/internal/listing/domain"
	"github.com/estately/estate-service/internal/platform/logger"
	"github.com/estately/estate-service/internal/user"
	"go.uber.org/zap"
)

// EventPublisher decouples the use cases from the concrete broker client.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

// CreateListingInput carries the fields of a new listing and its detail.
type CreateListingInput struct {
	Title    string
	City     string
	Type     domain.ListingType
	Property string
	Bedrooms int32
	Price    int64
	Photos   []string

	Description string
	Amenities   string
	Utilities   string
	Size        int32
}

type ListingUsecase struct {
	repo      domain.ListingRepository
	savedRepo domain.SavedListingRepository
	resolver  *SavedResolver
	users     user.ProfileRepository
	publisher EventPublisher
	storage   PhotoStorage
	logger    *logger.Logger
}

func NewListingUsecase(
	repo domain.ListingRepository,
	savedRepo domain.SavedListingRepository,
	resolver *SavedResolver,
	users user.ProfileRepository,
	publisher EventPublisher,
	storage PhotoStorage,
	log *logger.Logger,
) *ListingUsecase {
	return &ListingUsecase{
		repo:      repo,
		savedRepo: savedRepo,
		resolver:  resolver,
		users:     users,
		publisher: publisher,
		storage:   storage,
		logger:    log.Named("ListingUsecase"),
	}
}

// Search returns the listings matching the filter, each annotated with how
// many users saved it. Omitted filter fields do not constrain the result.
func (uc *ListingUsecase) Search(ctx context.Context, filter domain.Filter) ([]*domain.SearchResult, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	listings, err := uc.repo.FindByFilter(ctx, filter)
	if err != nil {
		uc.logger.Error("Failed to search listings", zap.Error(err))
		return nil, err
	}
	if len(listings) == 0 {
		return []*domain.SearchResult{}, nil
	}

	ids := make([]string, 0, len(listings))
	for _, l := range listings {
		ids = append(ids, l.ID)
	}
	counts, err := uc.savedRepo.CountByListingIDs(ctx, ids)
	if err != nil {
		uc.logger.Error("Failed to count saved listings", zap.Error(err))
		return nil, err
	}

	results := make([]*domain.SearchResult, 0, len(listings))
	for _, l := range listings {
		results = append(results, &domain.SearchResult{
			Listing:    *l,
			SavedCount: counts[l.ID],
		})
	}
	return results, nil
}

// GetDetail assembles the full detail view of a listing and counts the view.
// The view counter is bumped atomically together with the existence check, so
// a missing listing is never counted.
func (uc *ListingUsecase) GetDetail(ctx context.Context, id string, identity auth.Identity) (*domain.DetailView, error) {
	listing, err := uc.repo.FindByIDAndIncrementViews(ctx, id)
	if err != nil {
		return nil, err
	}

	detail, err := uc.repo.FindDetailByListingID(ctx, listing.ID)
	if err != nil {
		uc.logger.Error("Failed to load listing detail", zap.Error(err), zap.String("listing_id", listing.ID))
		return nil, err
	}

	owner := domain.OwnerProjection{}
	profile, err := uc.users.GetProfile(ctx, listing.OwnerID)
	if err != nil {
		// Orphaned listings still render, just without owner info.
		uc.logger.Warn("Owner profile unavailable", zap.Error(err), zap.String("owner_id", listing.OwnerID))
	} else {
		owner.Username = profile.Username
		owner.Avatar = profile.Avatar
	}

	isSaved, err := uc.resolver.IsSaved(ctx, identity, listing.ID)
	if err != nil {
		return nil, err
	}

	return &domain.DetailView{
		Listing: *listing,
		Detail:  *detail,
		Owner:   owner,
		IsSaved: isSaved,
	}, nil
}

// Create stores a listing and its detail as a single unit owned by ownerID.
func (uc *ListingUsecase) Create(ctx context.Context, ownerID string, in CreateListingInput) (*domain.Listing, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", domain.ErrInvalidInput)
	}
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if !in.Type.IsValid() {
		return nil, fmt.Errorf("%w: unknown listing type %q", domain.ErrInvalidInput, in.Type)
	}
	if in.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", domain.ErrInvalidInput)
	}
	if in.Bedrooms < 0 {
		return nil, fmt.Errorf("%w: bedrooms must not be negative", domain.ErrInvalidInput)
	}

	listing := &domain.Listing{
		OwnerID:   ownerID,
		Title:     in.Title,
		City:      in.City,
		Type:      in.Type,
		Property:  in.Property,
		Bedrooms:  in.Bedrooms,
		Price:     in.Price,
		Photos:    in.Photos,
		CreatedAt: time.Now().UTC(),
	}
	detail := &domain.ListingDetail{
		Description: in.Description,
		Amenities:   in.Amenities,
		Utilities:   in.Utilities,
		Size:        in.Size,
	}

	if err := uc.repo.CreateWithDetail(ctx, listing, detail); err != nil {
		uc.logger.Error("Failed to create listing", zap.Error(err), zap.String("owner_id", ownerID))
		return nil, err
	}
	uc.publish(ctx, nats.SubjectListingCreated, listing)

	uc.logger.Info("Listing created", zap.String("listing_id", listing.ID), zap.String("owner_id", ownerID))
	return listing, nil
}

// Update applies the partial updates to a listing owned by callerID. The
// listing and detail rows change together or not at all.
func (uc *ListingUsecase) Update(ctx context.Context, id, callerID string, upd domain.ListingUpdate, dupd domain.DetailUpdate) (*domain.Listing, error) {
	listing, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != callerID {
		return nil, domain.ErrForbidden
	}
	if err := validateUpdate(upd); err != nil {
		return nil, err
	}
	if upd.IsZero() && dupd.IsZero() {
		return listing, nil
	}

	if err := uc.repo.UpdateWithDetail(ctx, id, upd, dupd); err != nil {
		uc.logger.Error("Failed to update listing", zap.Error(err), zap.String("listing_id", id))
		return nil, err
	}
	applyUpdate(listing, upd)
	uc.publish(ctx, nats.SubjectListingUpdated, listing)

	uc.logger.Info("Listing updated", zap.String("listing_id", id))
	return listing, nil
}

// Delete removes a listing and its detail. Only the owner may delete.
func (uc *ListingUsecase) Delete(ctx context.Context, id, callerID string) error {
	listing, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if listing.OwnerID != callerID {
		return domain.ErrForbidden
	}

	if err := uc.repo.DeleteWithDetail(ctx, id); err != nil {
		uc.logger.Error("Failed to delete listing", zap.Error(err), zap.String("listing_id", id))
		return err
	}
	uc.publish(ctx, nats.SubjectListingDeleted, map[string]string{"id": id})

	uc.logger.Info("Listing deleted", zap.String("listing_id", id))
	return nil
}

func (uc *ListingUsecase) publish(ctx context.Context, subject string, payload interface{}) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.Publish(ctx, subject, payload); err != nil {
		uc.logger.Warn("Failed to publish event", zap.Error(err), zap.String("subject", subject))
	}
}

func validateFilter(f domain.Filter) error {
	if f.Type != "" && !f.Type.IsValid() {
		return fmt.Errorf("%w: unknown listing type %q", domain.ErrInvalidInput, f.Type)
	}
	if f.Bedrooms != nil && *f.Bedrooms < 0 {
		return fmt.Errorf("%w: bedrooms must not be negative", domain.ErrInvalidInput)
	}
	if f.MinPrice != nil && *f.MinPrice < 0 {
		return fmt.Errorf("%w: minPrice must not be negative", domain.ErrInvalidInput)
	}
	if f.MaxPrice != nil && *f.MaxPrice < 0 {
		return fmt.Errorf("%w: maxPrice must not be negative", domain.ErrInvalidInput)
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return fmt.Errorf("%w: minPrice exceeds maxPrice", domain.ErrInvalidInput)
	}
	return nil
}

func validateUpdate(u domain.ListingUpdate) error {
	if u.Type != nil && !u.Type.IsValid() {
		return fmt.Errorf("%w: unknown listing type %q", domain.ErrInvalidInput, *u.Type)
	}
	if u.Price != nil && *u.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", domain.ErrInvalidInput)
	}
	if u.Bedrooms != nil && *u.Bedrooms < 0 {
		return fmt.Errorf("%w: bedrooms must not be negative", domain.ErrInvalidInput)
	}
	return nil
}

func applyUpdate(l *domain.Listing, u domain.ListingUpdate) {
	if u.Title != nil {
		l.Title = *u.Title
	}
	if u.City != nil {
		l.City = *u.City
	}
	if u.Type != nil {
		l.Type = *u.Type
	}
	if u.Property != nil {
		l.Property = *u.Property
	}
	if u.Bedrooms != nil {
		l.Bedrooms = *u.Bedrooms
	}
	if u.Price != nil {
		l.Price = *u.Price
	}
}
