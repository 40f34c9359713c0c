package domain

import "errors"

var (
	// ErrListingNotFound indicates the referenced listing does not exist.
	ErrListingNotFound = errors.New("listing not found")
	// ErrForbidden indicates the caller does not own the listing.
	ErrForbidden = errors.New("action forbidden")
	// ErrInvalidInput indicates malformed listing fields or filter values.
	ErrInvalidInput = errors.New("invalid input data")
	// ErrRepository indicates a generic data persistence failure.
	ErrRepository = errors.New("repository error")
)
