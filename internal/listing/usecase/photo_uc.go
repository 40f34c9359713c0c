package usecase

import (
	"context"
	"fmt"

	"github.com/estately/estate-service/internal/listing/domain"
	"go.uber.org/zap"
)

// PhotoStorage uploads a photo and returns its public URL.
type PhotoStorage interface {
	Upload(ctx context.Context, fileName string, data []byte, contentType string) (string, error)
}

// AddPhoto uploads a photo for a listing owned by callerID and attaches its
// URL to the listing.
func (uc *ListingUsecase) AddPhoto(ctx context.Context, id, callerID, fileName string, data []byte, contentType string) (string, error) {
	if uc.storage == nil {
		return "", fmt.Errorf("%w: photo storage is not configured", domain.ErrRepository)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: photo payload is empty", domain.ErrInvalidInput)
	}

	listing, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if listing.OwnerID != callerID {
		return "", domain.ErrForbidden
	}

	url, err := uc.storage.Upload(ctx, fileName, data, contentType)
	if err != nil {
		uc.logger.Error("Failed to upload photo", zap.Error(err), zap.String("listing_id", id))
		return "", err
	}
	if err := uc.repo.AddPhoto(ctx, id, url); err != nil {
		uc.logger.Error("Failed to attach photo", zap.Error(err), zap.String("listing_id", id))
		return "", err
	}

	uc.logger.Info("Photo added", zap.String("listing_id", id), zap.String("url", url))
	return url, nil
}
