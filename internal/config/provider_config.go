package config

import (
	"fmt"
	"strings"

	"github.com/jrsteele09/go-auth-client/internal/errors"
)

// ProviderConfig describes the registration of this application with the
// identity provider. ClientID, ClientSecret and TenantID have no sensible
// defaults and are validated at startup.
type ProviderConfig interface {
	GetClientID() string
	GetClientSecret() string
	GetTenantID() string
	GetAuthority() string
	GetRedirectURI() string
	GetScopes() []string
	GetResourceEndpoint() string
	Validate() error
}

type Provider struct{}

var _ ProviderConfig = Provider{}

func (Provider) GetClientID() string {
	return GetEnv("AZURE_CLIENT_ID", "")
}

func (Provider) GetClientSecret() string {
	return GetEnv("AZURE_CLIENT_SECRET", "")
}

func (Provider) GetTenantID() string {
	return GetEnv("AZURE_TENANT_ID", "")
}

// GetAuthority returns the OIDC issuer URL for the configured tenant
func (p Provider) GetAuthority() string {
	return fmt.Sprintf("https://login.microsoftonline.com/%s/v2.0", p.GetTenantID())
}

func (Provider) GetRedirectURI() string {
	return GetEnv("REDIRECT_URI", "http://localhost:8000/callback")
}

// GetScopes returns the fixed list of resource scopes requested by the
// application, space separated in the SCOPES environment variable.
func (Provider) GetScopes() []string {
	return strings.Fields(GetEnv("SCOPES", "User.Read"))
}

func (Provider) GetResourceEndpoint() string {
	return GetEnv("RESOURCE_ENDPOINT", "https://graph.microsoft.com/v1.0/me")
}

// Validate checks the required identity provider parameters. A missing
// value is fatal at startup and not recoverable.
func (p Provider) Validate() error {
	var missing []string
	if p.GetClientID() == "" {
		missing = append(missing, "AZURE_CLIENT_ID")
	}
	if p.GetClientSecret() == "" {
		missing = append(missing, "AZURE_CLIENT_SECRET")
	}
	if p.GetTenantID() == "" {
		missing = append(missing, "AZURE_TENANT_ID")
	}
	if len(missing) > 0 {
		return errors.Wrapf(errors.ErrConfiguration, "[Provider.Validate] %s", strings.Join(missing, ", "))
	}
	return nil
}
