package silent

import (
	"context"
	"time"

	"github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/provider"
	"github.com/jrsteele09/go-auth-client/token"
	"golang.org/x/sync/singleflight"
)

// Service acquires valid access credentials without user interaction.
// It is cache-first: the identity provider is only called when the cached
// record is absent, expired, or a refresh is forced.
//
// The only failure it surfaces is errors.ErrReauthRequired - the caller
// must complete a fresh interactive sign-in. The underlying cause stays
// wrapped for logging.
type Service struct {
	cache    token.Cache
	provider provider.Client
	group    singleflight.Group
	nowTime  func() time.Time // injectable for testing
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// New initializes a new Service with required dependencies.
func New(cache token.Cache, providerClient provider.Client, options ...ServiceOption) (*Service, error) {
	if cache == nil {
		return nil, errors.Wrapf(errors.ErrConfiguration, "[silent.New] cache is required")
	}
	if providerClient == nil {
		return nil, errors.Wrapf(errors.ErrConfiguration, "[silent.New] provider client is required")
	}

	service := &Service{
		cache:    cache,
		provider: providerClient,
		nowTime:  time.Now,
	}

	for _, opt := range options {
		opt(service)
	}

	return service, nil
}

// Acquire returns a valid credential record for the account and scope set.
//
// A cached record that has not expired is returned unchanged with
// Source = SourceCache and zero provider calls. Otherwise a single refresh
// grant is attempted; concurrent calls for the same (account, scope set)
// collapse onto one in-flight provider call and all callers observe the
// same outcome.
func (s *Service) Acquire(ctx context.Context, accountID string, scopes []string, forceRefresh bool) (*token.Record, error) {
	if !forceRefresh {
		if record, err := s.cache.Get(accountID, scopes); err == nil && record.ExpiresAt.After(s.nowTime()) {
			record.Source = token.SourceCache
			return record, nil
		}
	}

	result, err, _ := s.group.Do(token.Key(accountID, scopes), func() (any, error) {
		return s.refresh(ctx, accountID, scopes)
	})
	if err != nil {
		return nil, err
	}
	return result.(*token.Record), nil
}

// refresh performs one provider refresh and commits the result wholesale.
// At most one refresh per cache key is in flight at any time; issuing two
// concurrent refresh grants with the same credential can race at the
// provider and invalidate one of the outcomes.
func (s *Service) refresh(ctx context.Context, accountID string, scopes []string) (*token.Record, error) {
	stale, err := s.cache.Get(accountID, scopes)
	if err != nil {
		return nil, errors.ReauthRequired(errors.Wrapf(err, "[Acquire] no record for account"))
	}

	if stale.RefreshToken == "" {
		// Without a refresh credential the record cannot outlive its
		// access credential. Evict and require a new interactive sign-in.
		_ = s.cache.Delete(accountID, scopes)
		return nil, errors.ReauthRequired(errors.Wrapf(errors.ErrInvalidGrant, "[Acquire] record has no refresh credential"))
	}

	fresh, err := s.provider.Refresh(ctx, stale.RefreshToken, scopes)
	if err != nil {
		if errors.Is(err, errors.ErrInvalidGrant) {
			// Revoked or expired refresh credential: the record is now
			// useless and only a new sign-in can replace it.
			_ = s.cache.Delete(accountID, scopes)
		}
		return nil, errors.ReauthRequired(err)
	}

	fresh.AccountID = accountID
	fresh.Scopes = append([]string(nil), scopes...)
	fresh.Source = token.SourceRefreshed
	if fresh.RefreshToken == "" {
		// Provider did not rotate the refresh credential; keep the old one.
		fresh.RefreshToken = stale.RefreshToken
	}

	if err := s.cache.Upsert(fresh); err != nil {
		return nil, errors.ReauthRequired(errors.Wrapf(err, "[Acquire] failed to store refreshed record"))
	}
	return fresh, nil
}
