package router

import (
	"github.com/estately/estate-service/internal/api/handler"
	"github.com/estately/estate-service/internal/api/middleware"
	"github.com/estately/estate-service/internal/auth"
	"github.com/estately/estate-service/internal/platform/logger"
	"github.com/estately/estate-service/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
)

// New assembles the full route tree. Public reads carry an optional
// identity; every mutation and caller-scoped read requires one.
func New(
	listingHandler *handler.ListingHandler,
	reviewHandler *handler.ReviewHandler,
	verifier *auth.Verifier,
	log *logger.Logger,
	m *metrics.Manager,
) *chi.Mux {
	mux := chi.NewRouter()
	mux.Use(middleware.Logger(log, m))

	// Public listing reads. Detail resolves the caller when a token is
	// present, so isSaved can be answered.
	mux.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(verifier))

		r.Get("/api/posts", listingHandler.HandleSearch)
		r.Get("/api/posts/{id}", listingHandler.HandleGetDetail)
	})

	mux.Get("/api/reviews/{id}", reviewHandler.HandleGet)

	// Protected routes.
	mux.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(verifier, log))

		r.Post("/api/posts", listingHandler.HandleCreate)
		r.Put("/api/posts/{id}", listingHandler.HandleUpdate)
		r.Delete("/api/posts/{id}", listingHandler.HandleDelete)
		r.Post("/api/posts/{id}/photos", listingHandler.HandleAddPhoto)

		r.Post("/api/reviews", reviewHandler.HandleSubmit)
		r.Get("/api/reviews/my", reviewHandler.HandleListMy)
		r.Get("/api/reviews/my/stats", reviewHandler.HandleMyStats)
	})

	return mux
}
