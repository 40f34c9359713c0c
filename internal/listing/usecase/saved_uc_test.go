package usecase

import (
	"context"
	"testing"

	"github.com/estately/estate-service/internal/auth"
	"github.com/estately/estate-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSavedResolver_AnonymousShortCircuits(t *testing.T) {
	savedRepo := new(MockSavedListingRepository)
	resolver := NewSavedResolver(savedRepo, logger.NewLogger())

	saved, err := resolver.IsSaved(context.Background(), auth.Anonymous, "l1")
	require.NoError(t, err)
	assert.False(t, saved)
	savedRepo.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything, mock.Anything)
}

func TestSavedResolver_ResolvesPair(t *testing.T) {
	savedRepo := new(MockSavedListingRepository)
	resolver := NewSavedResolver(savedRepo, logger.NewLogger())

	savedRepo.On("Exists", mock.Anything, "u1", "l1").Return(true, nil)
	savedRepo.On("Exists", mock.Anything, "u1", "l2").Return(false, nil)

	saved, err := resolver.IsSaved(context.Background(), auth.Identity{UserID: "u1"}, "l1")
	require.NoError(t, err)
	assert.True(t, saved)

	saved, err = resolver.IsSaved(context.Background(), auth.Identity{UserID: "u1"}, "l2")
	require.NoError(t, err)
	assert.False(t, saved)
}

func TestSavedResolver_PropagatesStoreError(t *testing.T) {
	savedRepo := new(MockSavedListingRepository)
	resolver := NewSavedResolver(savedRepo, logger.NewLogger())

	savedRepo.On("Exists", mock.Anything, "u1", "l1").Return(false, assert.AnError)

	_, err := resolver.IsSaved(context.Background(), auth.Identity{UserID: "u1"}, "l1")
	assert.Error(t, err)
}
