package usecase

import (
	"context"
	"fmt"

	"github.com/estately/estate-service/internal/adapter/messaging/nats"
	"github.com/estately/estate-service/internal/platform/logger"
	"github.com/estately/estate-service/internal/review/domain"
	"github.com/estately/estate-service/internal/user"
	"go.uber.org/zap"
)

// EventPublisher decouples the use case from the concrete broker client.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

// Notifier sends the reviewee a heads-up about a fresh review. Delivery is
// best effort and never fails the submission.
type Notifier interface {
	SendReviewReceivedEmail(toEmail, reviewerName string, rating int32) error
}

// SubmitReviewInput carries the client-controlled fields of a review. The
// reviewer is taken from the verified identity, never from the payload.
type SubmitReviewInput struct {
	PostToID string
	Rating   int32
	Review   string
	Grade    domain.Grade
}

type ReviewUsecase struct {
	repo            domain.ReviewRepository
	users           user.ProfileRepository
	publisher       EventPublisher
	notifier        Notifier
	allowSelfReview bool
	logger          *logger.Logger
}

func NewReviewUsecase(
	repo domain.ReviewRepository,
	users user.ProfileRepository,
	publisher EventPublisher,
	notifier Notifier,
	allowSelfReview bool,
	log *logger.Logger,
) *ReviewUsecase {
	return &ReviewUsecase{
		repo:            repo,
		users:           users,
		publisher:       publisher,
		notifier:        notifier,
		allowSelfReview: allowSelfReview,
		logger:          log.Named("ReviewUsecase"),
	}
}

// Submit records a review authored by reviewerID about another user.
func (uc *ReviewUsecase) Submit(ctx context.Context, reviewerID string, in SubmitReviewInput) (*domain.Review, error) {
	review, err := domain.NewReview(reviewerID, in.PostToID, in.Review, in.Rating, in.Grade)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, err)
	}
	if !uc.allowSelfReview && reviewerID == in.PostToID {
		return nil, fmt.Errorf("%w: users cannot review themselves", domain.ErrInvalidInput)
	}

	target, err := uc.users.GetProfile(ctx, in.PostToID)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.Create(ctx, review); err != nil {
		uc.logger.Error("Failed to create review", zap.Error(err),
			zap.String("post_by", reviewerID), zap.String("post_to", in.PostToID))
		return nil, err
	}
	uc.logger.Info("Review created", zap.String("review_id", review.ID),
		zap.String("post_by", reviewerID), zap.String("post_to", in.PostToID))

	if uc.publisher != nil {
		if err := uc.publisher.Publish(ctx, nats.SubjectReviewCreated, review); err != nil {
			uc.logger.Warn("Failed to publish review event", zap.Error(err))
		}
	}
	uc.notify(ctx, reviewerID, target, review)

	return review, nil
}

// Get returns a review enriched with both profile projections.
func (uc *ReviewUsecase) Get(ctx context.Context, id string) (*domain.ReviewWithAuthors, error) {
	review, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	profiles, err := uc.users.GetProfiles(ctx, []string{review.PostByID, review.PostToID})
	if err != nil {
		uc.logger.Error("Failed to load review profiles", zap.Error(err), zap.String("review_id", id))
		return nil, err
	}
	return enrich(review, profiles), nil
}

// ListReceived returns the reviews a user has received, newest first, each
// enriched with the parties' profiles.
func (uc *ReviewUsecase) ListReceived(ctx context.Context, userID string) ([]*domain.ReviewWithAuthors, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}

	reviews, err := uc.repo.FindByPostTo(ctx, userID)
	if err != nil {
		uc.logger.Error("Failed to list reviews", zap.Error(err), zap.String("user_id", userID))
		return nil, err
	}
	if len(reviews) == 0 {
		return []*domain.ReviewWithAuthors{}, nil
	}

	seen := make(map[string]struct{}, len(reviews)*2)
	ids := make([]string, 0, len(reviews)*2)
	for _, r := range reviews {
		for _, id := range []string{r.PostByID, r.PostToID} {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	profiles, err := uc.users.GetProfiles(ctx, ids)
	if err != nil {
		uc.logger.Error("Failed to load review profiles", zap.Error(err), zap.String("user_id", userID))
		return nil, err
	}

	enriched := make([]*domain.ReviewWithAuthors, 0, len(reviews))
	for _, r := range reviews {
		enriched = append(enriched, enrich(r, profiles))
	}
	return enriched, nil
}

// Summary computes the reputation aggregate for a user. A user with no
// reviews yields an explicit zero summary.
func (uc *ReviewUsecase) Summary(ctx context.Context, userID string) (*domain.ReputationSummary, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	summary, err := uc.repo.GetReputationSummary(ctx, userID)
	if err != nil {
		uc.logger.Error("Failed to compute reputation", zap.Error(err), zap.String("user_id", userID))
		return nil, err
	}
	return summary, nil
}

func (uc *ReviewUsecase) notify(ctx context.Context, reviewerID string, target *user.Profile, review *domain.Review) {
	if uc.notifier == nil || target.Email == "" {
		return
	}
	reviewerName := reviewerID
	if reviewer, err := uc.users.GetProfile(ctx, reviewerID); err == nil && reviewer.Username != "" {
		reviewerName = reviewer.Username
	}
	if err := uc.notifier.SendReviewReceivedEmail(target.Email, reviewerName, review.Rating); err != nil {
		uc.logger.Warn("Failed to send review notification", zap.Error(err),
			zap.String("post_to", target.ID))
	}
}

func enrich(r *domain.Review, profiles map[string]*user.Profile) *domain.ReviewWithAuthors {
	out := &domain.ReviewWithAuthors{Review: *r}
	if p, ok := profiles[r.PostByID]; ok {
		out.PostBy = *p
	}
	if p, ok := profiles[r.PostToID]; ok {
		out.PostTo = *p
	}
	return out
}
