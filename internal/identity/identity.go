package identity

import (
	"context"
	"errors"
)

// Errors surfaced by providers.
var (
	ErrExchangeFailed = errors.New("identity provider rejected the authorization code")
	ErrProviderError  = errors.New("identity provider request failed")
)

// Identity is the verified result of a completed external handshake. The
// application never sees credentials; this is all it learns about a caller.
type Identity struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email,omitempty"`
}

// Provider defines the boundary to an external OAuth identity provider.
type Provider interface {
	// AuthCodeURL builds the provider's authorization URL for the given
	// anti-CSRF state token.
	AuthCodeURL(state string) string

	// Exchange trades an authorization code for a verified identity.
	Exchange(ctx context.Context, code string) (*Identity, error)
}
