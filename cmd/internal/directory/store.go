package directory

import (
	"context"
	"errors"
)

var (
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoMatch is the store-level miss; the resolver translates it into
	// a plain "not found" result, never an error.
	ErrNoMatch = errors.New("no matching contact")
)

// ContactSummary is the read-only view of a contact this core exposes.
// Contacts are owned by the CRUD subsystem; calldex only reads them.
type ContactSummary struct {
	ID          string
	DisplayName string
	Company     *string
	ImageURL    *string
}

// Store is the read-only contact persistence boundary.
type Store interface {
	// FindByPhoneFragment returns the first contact owned by userID whose
	// stored phone's digits-only form contains fragment anywhere.
	// Returns ErrNoMatch when nothing qualifies. Every implementation
	// MUST scope the search to userID.
	FindByPhoneFragment(ctx context.Context, userID, fragment string) (ContactSummary, error)
}
