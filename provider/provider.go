package provider

import (
	"context"

	"github.com/jrsteele09/go-auth-client/token"
)

// Account is a stable reference to a signed-in principal, independent of
// any particular credential.
type Account struct {
	ID string
}

// Client is the identity provider dependency injected into the core.
//
// Refresh fails with errors.ErrInvalidGrant when the refresh credential is
// revoked or expired, or errors.ErrProvider for transport and server
// failures. The core never retries either.
type Client interface {
	// ExchangeCode redeems an authorization code (with its PKCE verifier)
	// for a credential record and the verified ID-token claims.
	ExchangeCode(ctx context.Context, code, codeVerifier string) (*token.Record, map[string]any, error)
	// Refresh obtains a new access credential using a refresh credential.
	Refresh(ctx context.Context, refreshToken string, scopes []string) (*token.Record, error)
	// ListAccounts returns the accounts known to the client.
	ListAccounts(ctx context.Context) ([]Account, error)
}
