package authapi

import "time"

// createTokenRequest is the POST /mobile/auth/token payload. Platform is
// mandatory; DeviceName is a free-form label for the user's token list.
type createTokenRequest struct {
	DeviceName *string `json:"deviceName,omitempty"`
	Platform   string  `json:"platform"`
}

// createTokenResponse carries the raw secret. This is the only response in
// the system that ever contains it.
type createTokenResponse struct {
	Token     string    `json:"token"`
	TokenID   string    `json:"tokenId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type tokenMetadata struct {
	TokenID    string     `json:"tokenId"`
	DeviceName *string    `json:"deviceName,omitempty"`
	Platform   string     `json:"platform"`
	CreatedAt  time.Time  `json:"createdAt"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	ExpiresAt  time.Time  `json:"expiresAt"`
}

type listTokensResponse struct {
	Tokens []tokenMetadata `json:"tokens"`
}

type revokeTokenRequest struct {
	TokenID string `json:"tokenId"`
}

type successResponse struct {
	Success bool `json:"success"`
}
