package provider

import (
	"context"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/token"
	"golang.org/x/oauth2"
)

var _ Client = (*OIDCClient)(nil)

// OIDCClient implements Client against a standard OIDC identity provider
// using discovery, the authorization-code grant and the refresh grant.
//
// ListAccounts is answered from the token cache: a confidential client has
// no provider endpoint for enumerating signed-in accounts, so the set of
// known accounts is the set of accounts with cached credentials.
type OIDCClient struct {
	oidcProvider *oidc.Provider
	oauth2Config *oauth2.Config
	oidcVerifier *oidc.IDTokenVerifier
	scopes       []string
	cache        token.Cache
}

// NewOIDCClient discovers the provider endpoints for the configured
// authority and builds the oauth2 configuration used for code exchange and
// refresh. offline_access is requested so the provider issues refresh
// credentials.
func NewOIDCClient(ctx context.Context, cfg config.Config, cache token.Cache) (*OIDCClient, error) {
	oidcProvider, err := oidc.NewProvider(ctx, cfg.GetAuthority())
	if err != nil {
		return nil, errors.Wrapf(err, "[NewOIDCClient] failed to create OIDC provider")
	}

	scopes := cfg.GetScopes()
	oauth2Config := &oauth2.Config{
		ClientID:     cfg.GetClientID(),
		ClientSecret: cfg.GetClientSecret(),
		Endpoint:     oidcProvider.Endpoint(),
		RedirectURL:  cfg.GetRedirectURI(),
		Scopes:       append([]string{oidc.ScopeOpenID, "profile", "email", oidc.ScopeOfflineAccess}, scopes...),
	}

	return &OIDCClient{
		oidcProvider: oidcProvider,
		oauth2Config: oauth2Config,
		oidcVerifier: oidcProvider.Verifier(&oidc.Config{ClientID: cfg.GetClientID()}),
		scopes:       scopes,
		cache:        cache,
	}, nil
}

// AuthCodeURL builds the provider redirect URL for sign-in initiation
func (c *OIDCClient) AuthCodeURL(state, codeChallenge, nonce string) string {
	return c.oauth2Config.AuthCodeURL(
		state,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
		oidc.Nonce(nonce),
	)
}

// ExchangeCode redeems an authorization code and verifies the ID token
func (c *OIDCClient) ExchangeCode(ctx context.Context, code, codeVerifier string) (*token.Record, map[string]any, error) {
	oauth2Token, err := c.oauth2Config.Exchange(
		ctx,
		code,
		oauth2.SetAuthURLParam("code_verifier", codeVerifier),
	)
	if err != nil {
		return nil, nil, classifyOAuth2Error(err, "[ExchangeCode] token exchange failed")
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return nil, nil, errors.Wrapf(errors.ErrProvider, "[ExchangeCode] no ID token in response")
	}

	idToken, err := c.oidcVerifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "[ExchangeCode] ID token verification failed")
	}

	claims := map[string]any{}
	if err := idToken.Claims(&claims); err != nil {
		return nil, nil, errors.Wrapf(err, "[ExchangeCode] failed to extract claims")
	}

	record := &token.Record{
		AccountID:    accountIDFromClaims(idToken.Subject, claims),
		Scopes:       append([]string(nil), c.scopes...),
		AccessToken:  oauth2Token.AccessToken,
		RefreshToken: oauth2Token.RefreshToken,
		ExpiresAt:    oauth2Token.Expiry,
		Source:       token.SourceProvider,
	}
	return record, claims, nil
}

// Refresh exchanges a refresh credential for a fresh access credential
func (c *OIDCClient) Refresh(ctx context.Context, refreshToken string, scopes []string) (*token.Record, error) {
	tokenSource := c.oauth2Config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})

	oauth2Token, err := tokenSource.Token()
	if err != nil {
		return nil, classifyOAuth2Error(err, "[Refresh] refresh grant failed")
	}

	return &token.Record{
		Scopes:       append([]string(nil), scopes...),
		AccessToken:  oauth2Token.AccessToken,
		RefreshToken: oauth2Token.RefreshToken, // may be empty when the provider does not rotate
		ExpiresAt:    oauth2Token.Expiry,
		Source:       token.SourceRefreshed,
	}, nil
}

// ListAccounts returns the accounts that currently own cached credentials
func (c *OIDCClient) ListAccounts(_ context.Context) ([]Account, error) {
	accountIDs, err := c.cache.Accounts()
	if err != nil {
		return nil, errors.Wrapf(err, "[ListAccounts] cache.Accounts")
	}

	accounts := make([]Account, 0, len(accountIDs))
	for _, id := range accountIDs {
		accounts = append(accounts, Account{ID: id})
	}
	return accounts, nil
}

// classifyOAuth2Error maps oauth2 transport errors onto the core taxonomy.
// invalid_grant means the refresh credential is revoked or expired and is
// non-retryable; everything else is a transient provider error.
func classifyOAuth2Error(err error, msg string) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.ErrorCode == "invalid_grant" {
		return errors.Wrapf(errors.ErrInvalidGrant, "%s: %s", msg, retrieveErr.ErrorCode)
	}
	return errors.Wrapf(errors.ErrProvider, "%s: %v", msg, err)
}

// accountIDFromClaims prefers the provider's stable object ID claim and
// falls back to the token subject.
func accountIDFromClaims(subject string, claims map[string]any) string {
	if oid, ok := claims["oid"].(string); ok && oid != "" {
		return oid
	}
	return subject
}
