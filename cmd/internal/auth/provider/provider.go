// Package provider wraps the upstream OAuth identity provider. The rest of
// the auth bridge only sees Provider and Identity; swapping Google for
// another issuer stays inside this package.
package provider

import (
	"context"
	"errors"
)

var (
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfig reports incomplete provider configuration.
	ErrConfig = errors.New("invalid provider configuration")

	// ErrExchangeFailed wraps upstream failures during the code-for-token
	// exchange or the identity fetch.
	ErrExchangeFailed = errors.New("provider exchange failed")
)

// Identity is the provider-verified identity of the person who completed
// the consent flow.
type Identity struct {
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// Provider is the upstream identity provider boundary.
type Provider interface {
	// AuthCodeURL builds the consent-page URL carrying state for CSRF
	// protection.
	AuthCodeURL(state string) string

	// Identify exchanges the provider's authorization code and returns the
	// verified identity behind it.
	Identify(ctx context.Context, code string) (Identity, error)
}
