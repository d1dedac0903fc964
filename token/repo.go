package token

import (
	"sort"
	"strings"
	"time"
)

// Source identifies where an access credential came from. It is a closed
// set so downstream logic can switch over it exhaustively.
type Source int

const (
	// SourceCache means the credential was served straight from the cache.
	SourceCache Source = iota
	// SourceRefreshed means the credential was obtained with a refresh grant.
	SourceRefreshed
	// SourceProvider means the credential came from an interactive code exchange.
	SourceProvider
)

func (s Source) String() string {
	switch s {
	case SourceCache:
		return "cache"
	case SourceRefreshed:
		return "refreshed"
	case SourceProvider:
		return "identity_provider"
	}
	return "unknown"
}

// Record holds one cached credential for an (account, scope set) pair.
// AccessToken and RefreshToken are opaque secrets and must never appear in
// logs or error messages. ExpiresAt always reflects what the last
// successful provider response asserted; the cache never extends it.
type Record struct {
	AccountID    string
	Scopes       []string
	AccessToken  string
	RefreshToken string // empty when the provider issued no refresh credential
	ExpiresAt    time.Time
	Source       Source
}

// Key returns the canonical cache key for an account and scope set.
// Scopes are sorted and deduplicated so request order never produces
// distinct entries.
func Key(accountID string, scopes []string) string {
	return accountID + "|" + scopeKey(scopes)
}

func scopeKey(scopes []string) string {
	sorted := make([]string, 0, len(scopes))
	seen := make(map[string]struct{}, len(scopes))
	for _, s := range scopes {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		sorted = append(sorted, s)
	}
	sort.Strings(sorted)
	return strings.Join(sorted, " ")
}

// Cache stores credential records keyed by account and scope set. All
// credential material in the system lives behind this interface;
// implementations must be safe for concurrent foreground handlers and the
// background refresh scheduler.
type Cache interface {
	// Upsert inserts or wholesale-replaces the record for its
	// (account, scope set) key. No caller ever observes a half-updated record.
	Upsert(record *Record) error
	// Get is a side-effect-free point lookup.
	Get(accountID string, scopes []string) (*Record, error)
	// ListExpiringBefore returns a snapshot of records with
	// ExpiresAt <= t. The boundary is inclusive.
	ListExpiringBefore(t time.Time) ([]*Record, error)
	// Delete evicts the record for the key, if any.
	Delete(accountID string, scopes []string) error
	// Accounts returns the distinct account IDs that currently own records.
	Accounts() ([]string, error)
}
