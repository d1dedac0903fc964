package token

import (
	"sort"
	"sync"
	"time"

	"github.com/jrsteele09/go-auth-client/internal/errors"
)

var _ Cache = (*InMemoryCache)(nil)

// InMemoryCache is a thread-safe in-memory implementation of Cache.
// A deployment wanting restart survival or multiple instances substitutes
// a distributed implementation behind the same interface.
type InMemoryCache struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewInMemoryCache creates a new in-memory token cache
func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{
		records: make(map[string]*Record),
	}
}

// Upsert inserts or replaces the record for its (account, scope set) key
func (c *InMemoryCache) Upsert(record *Record) error {
	if record == nil {
		return errors.Wrapf(errors.ErrCacheMiss, "[InMemoryCache.Upsert] nil record")
	}
	if record.AccountID == "" {
		return errors.Wrapf(errors.ErrCacheMiss, "[InMemoryCache.Upsert] accountID is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Store a copy so the caller cannot mutate the cached record afterwards
	c.records[Key(record.AccountID, record.Scopes)] = copyRecord(record)
	return nil
}

// Get retrieves the record for an account and scope set
func (c *InMemoryCache) Get(accountID string, scopes []string) (*Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	record, ok := c.records[Key(accountID, scopes)]
	if !ok {
		return nil, errors.Wrapf(errors.ErrCacheMiss, "[InMemoryCache.Get] account %q", accountID)
	}
	return copyRecord(record), nil
}

// ListExpiringBefore returns a snapshot of records expiring at or before t
func (c *InMemoryCache) ListExpiringBefore(t time.Time) ([]*Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	due := make([]*Record, 0)
	for _, record := range c.records {
		if !record.ExpiresAt.After(t) {
			due = append(due, copyRecord(record))
		}
	}

	sort.Slice(due, func(i, j int) bool {
		return due[i].ExpiresAt.Before(due[j].ExpiresAt)
	})
	return due, nil
}

// Delete evicts the record for an account and scope set
func (c *InMemoryCache) Delete(accountID string, scopes []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.records, Key(accountID, scopes))
	return nil
}

// Accounts returns the distinct account IDs holding cached records
func (c *InMemoryCache) Accounts() ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]struct{})
	accounts := make([]string, 0)
	for _, record := range c.records {
		if _, ok := seen[record.AccountID]; ok {
			continue
		}
		seen[record.AccountID] = struct{}{}
		accounts = append(accounts, record.AccountID)
	}

	sort.Strings(accounts)
	return accounts, nil
}

func copyRecord(r *Record) *Record {
	cp := *r
	cp.Scopes = append([]string(nil), r.Scopes...)
	return &cp
}
