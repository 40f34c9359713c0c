package handler

import (
	"encoding/json"
	"net/http"

	"github.com/estately/estate-service/internal/api/middleware"
	"github.com/estately/estate-service/internal/platform/logger"
	"github.com/estately/estate-service/internal/platform/metrics"
	"github.com/estately/estate-service/internal/review/domain"
	"github.com/estately/estate-service/internal/review/usecase"
	"github.com/estately/estate-service/internal/user"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ReviewHandler exposes the review use cases over HTTP.
type ReviewHandler struct {
	uc      *usecase.ReviewUsecase
	metrics *metrics.Manager
	logger  *logger.Logger
}

func NewReviewHandler(uc *usecase.ReviewUsecase, m *metrics.Manager, log *logger.Logger) *ReviewHandler {
	return &ReviewHandler{
		uc:      uc,
		metrics: m,
		logger:  log.Named("ReviewHandler"),
	}
}

type reviewResponse struct {
	ID        string `json:"id"`
	PostByID  string `json:"postById"`
	PostToID  string `json:"postToId"`
	Rating    int32  `json:"rating"`
	Review    string `json:"review"`
	Grade     string `json:"grade,omitempty"`
	CreatedAt string `json:"createdAt"`
}

type profileResponse struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
	Email    string `json:"email,omitempty"`
}

type reviewWithAuthorsResponse struct {
	reviewResponse
	PostBy profileResponse `json:"postBy"`
	PostTo profileResponse `json:"postTo"`
}

func toReviewResponse(rv domain.Review) reviewResponse {
	return reviewResponse{
		ID:        rv.ID,
		PostByID:  rv.PostByID,
		PostToID:  rv.PostToID,
		Rating:    rv.Rating,
		Review:    rv.Review,
		Grade:     string(rv.Grade),
		CreatedAt: rv.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func toProfileResponse(p user.Profile) profileResponse {
	return profileResponse{Username: p.Username, Avatar: p.Avatar, Email: p.Email}
}

func toReviewWithAuthorsResponse(rv *domain.ReviewWithAuthors) reviewWithAuthorsResponse {
	return reviewWithAuthorsResponse{
		reviewResponse: toReviewResponse(rv.Review),
		PostBy:         toProfileResponse(rv.PostBy),
		PostTo:         toProfileResponse(rv.PostTo),
	}
}

type submitReviewRequest struct {
	PostToID string `json:"postToId"`
	Rating   int32  `json:"rating"`
	Review   string `json:"review"`
	Grade    string `json:"grade"`
}

// HandleSubmit serves POST /api/reviews. The reviewer is always the
// verified caller; a postById in the payload is ignored.
func (h *ReviewHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for submit review", zap.Error(err))
		respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}
	identity := middleware.IdentityFromContext(r.Context())

	review, err := h.uc.Submit(r.Context(), identity.UserID, usecase.SubmitReviewInput{
		PostToID: req.PostToID,
		Rating:   req.Rating,
		Review:   req.Review,
		Grade:    domain.Grade(req.Grade),
	})
	if err != nil {
		respondWithError(w, err, "/api/reviews", h.logger, h.metrics)
		return
	}
	if h.metrics != nil {
		h.metrics.ReviewsCreatedTotal.Inc()
	}
	respondWithJSON(w, http.StatusCreated, toReviewResponse(*review))
}

// HandleGet serves GET /api/reviews/{id}.
func (h *ReviewHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	review, err := h.uc.Get(r.Context(), id)
	if err != nil {
		respondWithError(w, err, "/api/reviews/{id}", h.logger, h.metrics)
		return
	}
	respondWithJSON(w, http.StatusOK, toReviewWithAuthorsResponse(review))
}

// HandleListMy serves GET /api/reviews/my: the reviews the caller received.
func (h *ReviewHandler) HandleListMy(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())

	reviews, err := h.uc.ListReceived(r.Context(), identity.UserID)
	if err != nil {
		respondWithError(w, err, "/api/reviews/my", h.logger, h.metrics)
		return
	}
	out := make([]reviewWithAuthorsResponse, 0, len(reviews))
	for _, rv := range reviews {
		out = append(out, toReviewWithAuthorsResponse(rv))
	}
	respondWithJSON(w, http.StatusOK, out)
}

// HandleMyStats serves GET /api/reviews/my/stats: the caller's reputation
// aggregate.
func (h *ReviewHandler) HandleMyStats(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())

	summary, err := h.uc.Summary(r.Context(), identity.UserID)
	if err != nil {
		respondWithError(w, err, "/api/reviews/my/stats", h.logger, h.metrics)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"averageRating": summary.AverageRating,
		"totalReviews":  summary.TotalReviews,
	})
}
