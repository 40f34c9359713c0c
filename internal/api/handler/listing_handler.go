package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/estately/estate-service/internal/api/middleware"
	"github.com/estately/estate-service/internal/listing/domain"
	"github.com/estately/estate-service/internal/listing/usecase"
	"github.com/estately/estate-service/internal/platform/logger"
	"github.com/estately/estate-service/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxPhotoSize = 10 << 20 // 10 MiB

// ListingHandler exposes the listing use cases over HTTP.
type ListingHandler struct {
	uc      *usecase.ListingUsecase
	metrics *metrics.Manager
	logger  *logger.Logger
}

func NewListingHandler(uc *usecase.ListingUsecase, m *metrics.Manager, log *logger.Logger) *ListingHandler {
	return &ListingHandler{
		uc:      uc,
		metrics: m,
		logger:  log.Named("ListingHandler"),
	}
}

type listingResponse struct {
	ID         string   `json:"id"`
	OwnerID    string   `json:"ownerId"`
	Title      string   `json:"title"`
	City       string   `json:"city"`
	Type       string   `json:"type"`
	Property   string   `json:"property"`
	Bedrooms   int32    `json:"bedroom"`
	Price      int64    `json:"price"`
	Photos     []string `json:"images"`
	Views      int64    `json:"views"`
	CreatedAt  string   `json:"createdAt"`
	SavedCount *int64   `json:"savedCount,omitempty"`
}

type detailResponse struct {
	Description string `json:"desc"`
	Amenities   string `json:"amenities,omitempty"`
	Utilities   string `json:"utilities,omitempty"`
	Size        int32  `json:"size,omitempty"`
}

type ownerResponse struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

type detailViewResponse struct {
	listingResponse
	Detail  detailResponse `json:"postDetail"`
	Owner   ownerResponse  `json:"user"`
	IsSaved bool           `json:"isSaved"`
}

func toListingResponse(l domain.Listing) listingResponse {
	photos := l.Photos
	if photos == nil {
		photos = []string{}
	}
	return listingResponse{
		ID:        l.ID,
		OwnerID:   l.OwnerID,
		Title:     l.Title,
		City:      l.City,
		Type:      string(l.Type),
		Property:  l.Property,
		Bedrooms:  l.Bedrooms,
		Price:     l.Price,
		Photos:    photos,
		Views:     l.Views,
		CreatedAt: l.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// HandleSearch serves GET /api/posts. All filters are optional query params.
func (h *ListingHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		respondWithError(w, err, "/api/posts", h.logger, h.metrics)
		return
	}

	results, err := h.uc.Search(r.Context(), filter)
	if err != nil {
		respondWithError(w, err, "/api/posts", h.logger, h.metrics)
		return
	}

	out := make([]listingResponse, 0, len(results))
	for _, res := range results {
		item := toListingResponse(res.Listing)
		count := res.SavedCount
		item.SavedCount = &count
		out = append(out, item)
	}
	respondWithJSON(w, http.StatusOK, out)
}

// HandleGetDetail serves GET /api/posts/{id}. Identity is optional; an
// invalid token degrades silently to an anonymous view.
func (h *ListingHandler) HandleGetDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	identity := middleware.IdentityFromContext(r.Context())

	view, err := h.uc.GetDetail(r.Context(), id, identity)
	if err != nil {
		respondWithError(w, err, "/api/posts/{id}", h.logger, h.metrics)
		return
	}
	if h.metrics != nil {
		h.metrics.ListingViewsTotal.Inc()
	}

	respondWithJSON(w, http.StatusOK, detailViewResponse{
		listingResponse: toListingResponse(view.Listing),
		Detail: detailResponse{
			Description: view.Detail.Description,
			Amenities:   view.Detail.Amenities,
			Utilities:   view.Detail.Utilities,
			Size:        view.Detail.Size,
		},
		Owner: ownerResponse{
			Username: view.Owner.Username,
			Avatar:   view.Owner.Avatar,
		},
		IsSaved: view.IsSaved,
	})
}

type createListingRequest struct {
	Title       string   `json:"title"`
	City        string   `json:"city"`
	Type        string   `json:"type"`
	Property    string   `json:"property"`
	Bedrooms    int32    `json:"bedroom"`
	Price       int64    `json:"price"`
	Photos      []string `json:"images"`
	Description string   `json:"desc"`
	Amenities   string   `json:"amenities"`
	Utilities   string   `json:"utilities"`
	Size        int32    `json:"size"`
}

// HandleCreate serves POST /api/posts. The owner is always the verified
// caller.
func (h *ListingHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for create", zap.Error(err))
		respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}
	identity := middleware.IdentityFromContext(r.Context())

	listing, err := h.uc.Create(r.Context(), identity.UserID, usecase.CreateListingInput{
		Title:       req.Title,
		City:        req.City,
		Type:        domain.ListingType(req.Type),
		Property:    req.Property,
		Bedrooms:    req.Bedrooms,
		Price:       req.Price,
		Photos:      req.Photos,
		Description: req.Description,
		Amenities:   req.Amenities,
		Utilities:   req.Utilities,
		Size:        req.Size,
	})
	if err != nil {
		respondWithError(w, err, "/api/posts", h.logger, h.metrics)
		return
	}
	if h.metrics != nil {
		h.metrics.ListingsCreatedTotal.Inc()
	}
	respondWithJSON(w, http.StatusCreated, toListingResponse(*listing))
}

type updateListingRequest struct {
	Title       *string `json:"title"`
	City        *string `json:"city"`
	Type        *string `json:"type"`
	Property    *string `json:"property"`
	Bedrooms    *int32  `json:"bedroom"`
	Price       *int64  `json:"price"`
	Description *string `json:"desc"`
	Amenities   *string `json:"amenities"`
	Utilities   *string `json:"utilities"`
	Size        *int32  `json:"size"`
}

// HandleUpdate serves PUT /api/posts/{id}. Absent fields are left untouched.
func (h *ListingHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for update", zap.Error(err))
		respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}
	identity := middleware.IdentityFromContext(r.Context())

	upd := domain.ListingUpdate{
		Title:    req.Title,
		City:     req.City,
		Property: req.Property,
		Bedrooms: req.Bedrooms,
		Price:    req.Price,
	}
	if req.Type != nil {
		t := domain.ListingType(*req.Type)
		upd.Type = &t
	}
	dupd := domain.DetailUpdate{
		Description: req.Description,
		Amenities:   req.Amenities,
		Utilities:   req.Utilities,
		Size:        req.Size,
	}

	listing, err := h.uc.Update(r.Context(), id, identity.UserID, upd, dupd)
	if err != nil {
		respondWithError(w, err, "/api/posts/{id}", h.logger, h.metrics)
		return
	}
	respondWithJSON(w, http.StatusOK, toListingResponse(*listing))
}

// HandleDelete serves DELETE /api/posts/{id}.
func (h *ListingHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	identity := middleware.IdentityFromContext(r.Context())

	if err := h.uc.Delete(r.Context(), id, identity.UserID); err != nil {
		respondWithError(w, err, "/api/posts/{id}", h.logger, h.metrics)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Post deleted"})
}

// HandleAddPhoto serves POST /api/posts/{id}/photos with a multipart form
// carrying a single "photo" file.
func (h *ListingHandler) HandleAddPhoto(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	identity := middleware.IdentityFromContext(r.Context())

	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		h.logger.Warn("Invalid multipart form", zap.Error(err))
		respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid multipart form"})
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing photo file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxPhotoSize))
	if err != nil {
		h.logger.Error("Failed to read photo upload", zap.Error(err))
		respondWithJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
		return
	}

	url, err := h.uc.AddPhoto(r.Context(), id, identity.UserID, header.Filename, data, header.Header.Get("Content-Type"))
	if err != nil {
		respondWithError(w, err, "/api/posts/{id}/photos", h.logger, h.metrics)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]string{"url": url})
}

func filterFromQuery(r *http.Request) (domain.Filter, error) {
	q := r.URL.Query()
	filter := domain.Filter{
		City:     q.Get("city"),
		Type:     domain.ListingType(q.Get("type")),
		Property: q.Get("property"),
	}

	if v := q.Get("bedroom"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return domain.Filter{}, domain.ErrInvalidInput
		}
		bedrooms := int32(n)
		filter.Bedrooms = &bedrooms
	}
	if v := q.Get("minPrice"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return domain.Filter{}, domain.ErrInvalidInput
		}
		filter.MinPrice = &n
	}
	if v := q.Get("maxPrice"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return domain.Filter{}, domain.ErrInvalidInput
		}
		filter.MaxPrice = &n
	}
	return filter, nil
}
