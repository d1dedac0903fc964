package config

type Config interface {
	EnvConfig
	ProviderConfig
	RefreshConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	Provider
	Refresh
	Security
}

func New() Config {
	return mainConfig{}
}
