package domain

import (
	"errors"
	"time"

	"github.com/estately/estate-service/internal/user"
)

var (
	// ErrNotFound indicates that a requested review was not found.
	ErrNotFound = errors.New("review not found")
	// ErrInvalidInput indicates that the provided review data is invalid.
	ErrInvalidInput = errors.New("invalid input data")
	// ErrReviewAlreadyExists is returned when the pair-uniqueness policy is
	// enabled and the reviewer already reviewed this user.
	ErrReviewAlreadyExists = errors.New("review already exists for this reviewer and target")
	// ErrRepository indicates a generic data persistence error.
	ErrRepository = errors.New("repository error")
)

// Grade is the categorical qualifier attached to a review.
type Grade string

const (
	GradeExcellent Grade = "excellent"
	GradeGood      Grade = "good"
	GradeAverage   Grade = "average"
	GradePoor      Grade = "poor"
)

// IsValid checks the grade against the defined constants. An empty grade is
// allowed; the qualifier is optional.
func (g Grade) IsValid() bool {
	switch g {
	case "", GradeExcellent, GradeGood, GradeAverage, GradePoor:
		return true
	}
	return false
}

// Review is a rating one user submits about another. PostByID is always the
// verified identity of the submitter, never client-supplied.
type Review struct {
	ID        string
	PostByID  string
	PostToID  string
	Rating    int32 // 1-5
	Review    string
	Grade     Grade
	CreatedAt time.Time
}

// NewReview validates and builds a review instance.
func NewReview(postByID, postToID, text string, rating int32, grade Grade) (*Review, error) {
	if postByID == "" {
		return nil, errors.New("reviewer ID cannot be empty")
	}
	if postToID == "" {
		return nil, errors.New("target user ID cannot be empty")
	}
	if rating < 1 || rating > 5 {
		return nil, errors.New("rating must be between 1 and 5")
	}
	if !grade.IsValid() {
		return nil, errors.New("unknown grade value")
	}
	return &Review{
		PostByID:  postByID,
		PostToID:  postToID,
		Rating:    rating,
		Review:    text,
		Grade:     grade,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// ReviewWithAuthors is a review enriched with the profile projections of
// both parties.
type ReviewWithAuthors struct {
	Review
	PostBy user.Profile
	PostTo user.Profile
}

// ReputationSummary is the derived aggregate over all reviews a user has
// received. It is recomputed per request; no cached copy exists.
type ReputationSummary struct {
	AverageRating float64
	TotalReviews  int64
}
