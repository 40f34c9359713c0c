package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/estately/estate-service/internal/auth"
	listingdomain "github.com/estately/estate-service/internal/listing/domain"
	"github.com/estately/estate-service/internal/platform/logger"
	"github.com/estately/estate-service/internal/platform/metrics"
	reviewdomain "github.com/estately/estate-service/internal/review/domain"
	"github.com/estately/estate-service/internal/user"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// respondWithError maps domain errors to HTTP statuses. Store internals are
// never leaked; anything unclassified becomes a generic 500.
func respondWithError(w http.ResponseWriter, err error, route string, log *logger.Logger, m *metrics.Manager) {
	status := http.StatusInternalServerError
	errorType := "internal"
	message := "Internal server error"

	switch {
	case errors.Is(err, auth.ErrAuthRequired):
		status, errorType, message = http.StatusUnauthorized, "auth", "Unauthorized"
	case errors.Is(err, listingdomain.ErrForbidden):
		status, errorType, message = http.StatusForbidden, "forbidden", "Forbidden"
	case errors.Is(err, listingdomain.ErrListingNotFound),
		errors.Is(err, reviewdomain.ErrNotFound),
		errors.Is(err, user.ErrUserNotFound):
		status, errorType, message = http.StatusNotFound, "not_found", err.Error()
	case errors.Is(err, reviewdomain.ErrReviewAlreadyExists):
		status, errorType, message = http.StatusConflict, "conflict", err.Error()
	case errors.Is(err, listingdomain.ErrInvalidInput),
		errors.Is(err, reviewdomain.ErrInvalidInput):
		status, errorType, message = http.StatusBadRequest, "invalid_input", err.Error()
	}

	if status >= http.StatusInternalServerError {
		log.Error("Request failed", zap.String("route", route), zap.Error(err))
	}
	if m != nil {
		m.APIErrorsTotal.WithLabelValues(route, errorType).Inc()
	}
	respondWithJSON(w, status, errorResponse{Error: message})
}
