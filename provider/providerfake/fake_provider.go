package providerfake

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/provider"
	"github.com/jrsteele09/go-auth-client/token"
)

var _ provider.Client = (*FakeProviderClient)(nil)

// FakeProviderClient is a configurable in-memory stand-in for the identity
// provider, used to test acquisition and scheduling without network calls.
type FakeProviderClient struct {
	mu           sync.Mutex
	refreshCalls int
	refreshDelay time.Duration
	refreshFn    func(refreshToken string, scopes []string) (*token.Record, error)
	exchangeFn   func(code, codeVerifier string) (*token.Record, map[string]any, error)
	accounts     []provider.Account
}

// NewFakeProviderClient creates a fake whose Refresh and ExchangeCode fail
// with a provider error until configured otherwise.
func NewFakeProviderClient() *FakeProviderClient {
	return &FakeProviderClient{}
}

// SetRefreshFunc configures the behaviour of Refresh
func (f *FakeProviderClient) SetRefreshFunc(fn func(refreshToken string, scopes []string) (*token.Record, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshFn = fn
}

// SetExchangeFunc configures the behaviour of ExchangeCode
func (f *FakeProviderClient) SetExchangeFunc(fn func(code, codeVerifier string) (*token.Record, map[string]any, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exchangeFn = fn
}

// SetRefreshDelay makes every Refresh call block for d, so tests can hold
// a refresh in flight while issuing concurrent acquisitions.
func (f *FakeProviderClient) SetRefreshDelay(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshDelay = d
}

// SetAccounts configures the result of ListAccounts
func (f *FakeProviderClient) SetAccounts(accounts []provider.Account) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts = append([]provider.Account(nil), accounts...)
}

// RefreshCallCount reports how many Refresh calls were issued
func (f *FakeProviderClient) RefreshCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshCalls
}

func (f *FakeProviderClient) ExchangeCode(_ context.Context, code, codeVerifier string) (*token.Record, map[string]any, error) {
	f.mu.Lock()
	fn := f.exchangeFn
	f.mu.Unlock()

	if fn == nil {
		return nil, nil, errors.Wrapf(errors.ErrProvider, "[FakeProviderClient.ExchangeCode] not configured")
	}
	return fn(code, codeVerifier)
}

func (f *FakeProviderClient) Refresh(_ context.Context, refreshToken string, scopes []string) (*token.Record, error) {
	f.mu.Lock()
	f.refreshCalls++
	fn := f.refreshFn
	delay := f.refreshDelay
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if fn == nil {
		return nil, errors.Wrapf(errors.ErrProvider, "[FakeProviderClient.Refresh] not configured")
	}
	return fn(refreshToken, scopes)
}

func (f *FakeProviderClient) ListAccounts(_ context.Context) ([]provider.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]provider.Account(nil), f.accounts...), nil
}
