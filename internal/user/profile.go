// Package user exposes read-only projections of user records. Account
// lifecycle (registration, login, password handling) lives in the separate
// authentication provider; this service only reads.
package user

import (
	"context"
	"errors"
)

// ErrUserNotFound indicates that the referenced user does not exist.
var ErrUserNotFound = errors.New("user not found")

// Profile is the projection this service is allowed to read.
type Profile struct {
	ID       string
	Username string
	Email    string
	Avatar   string
}

// ProfileRepository reads user projections from the shared users store.
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	// GetProfiles returns the profiles for the given IDs keyed by ID.
	// Missing users are simply absent from the map.
	GetProfiles(ctx context.Context, userIDs []string) (map[string]*Profile, error)
}
