package config

import (
	"strconv"
	"time"
)

// RefreshConfig controls the proactive refresh scheduler.
type RefreshConfig interface {
	// GetRefreshBuffer is how far ahead of expiry a credential is
	// considered due for refresh.
	GetRefreshBuffer() time.Duration
	// GetCheckInterval is how often the token cache is swept.
	GetCheckInterval() time.Duration
}

type Refresh struct{}

var _ RefreshConfig = Refresh{}

func (Refresh) GetRefreshBuffer() time.Duration {
	return secondsEnv("TOKEN_REFRESH_BUFFER_SECS", 300)
}

func (Refresh) GetCheckInterval() time.Duration {
	return secondsEnv("TOKEN_REFRESH_CHECK_INTERVAL_SECS", 60)
}

func secondsEnv(envVar string, defaultSecs int) time.Duration {
	secs := defaultSecs
	if v := GetEnv(envVar, ""); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			secs = parsed
		}
	}
	return time.Duration(secs) * time.Second
}
