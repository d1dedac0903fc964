package config

type SecurityConfig interface {
	// GetSessionSecret is the key used to sign the session cookie.
	GetSessionSecret() string
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetSessionSecret() string {
	return GetEnv("SESSION_SECRET", "change-me-in-production")
}
