package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/provider/providerfake"
	"github.com/jrsteele09/go-auth-client/server"
	"github.com/jrsteele09/go-auth-client/sessions"
	"github.com/jrsteele09/go-auth-client/token"
	"github.com/stretchr/testify/require"
)

// fakeIDP wraps the fake provider client with a recordable AuthCodeURL so
// the tests can drive the full interactive flow.
var _ server.IdentityProvider = (*fakeIDP)(nil)

type fakeIDP struct {
	*providerfake.FakeProviderClient

	mu        sync.Mutex
	lastState string
	lastNonce string
}

func (f *fakeIDP) AuthCodeURL(state, codeChallenge, nonce string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastState = state
	f.lastNonce = nonce
	return "https://idp.example.com/authorize?state=" + url.QueryEscape(state)
}

func (f *fakeIDP) flowParams() (state, nonce string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastState, f.lastNonce
}

// serverFixture holds all test dependencies
type serverFixture struct {
	server *server.Server
	cache  *token.InMemoryCache
	idp    *fakeIDP
}

func setupServerFixture(t *testing.T) *serverFixture {
	t.Helper()

	// Resource API double: requires a bearer credential, returns a profile
	resourceAPI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer exchanged-access" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"displayName": "John Doe"})
	}))
	t.Cleanup(resourceAPI.Close)

	t.Setenv("AZURE_CLIENT_ID", "client-id")
	t.Setenv("AZURE_CLIENT_SECRET", "client-secret")
	t.Setenv("AZURE_TENANT_ID", "tenant-id")
	t.Setenv("SESSION_SECRET", "test-secret")
	t.Setenv("RESOURCE_ENDPOINT", resourceAPI.URL)

	cache := token.NewInMemoryCache()
	idp := &fakeIDP{FakeProviderClient: providerfake.NewFakeProviderClient()}

	srv, err := server.New(config.New(), sessions.NewInMemoryRepo(), cache, idp)
	require.NoError(t, err)

	return &serverFixture{server: srv, cache: cache, idp: idp}
}

// signIn drives /login and /callback, returning the session cookie
func (f *serverFixture) signIn(t *testing.T) *http.Cookie {
	t.Helper()

	// Initiate sign-in
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session_id" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)

	state, nonce := f.idp.flowParams()
	require.NotEmpty(t, state)
	require.Contains(t, rec.Header().Get("Location"), url.QueryEscape(state))

	f.idp.SetExchangeFunc(func(code, codeVerifier string) (*token.Record, map[string]any, error) {
		require.Equal(t, "auth-code", code)
		require.NotEmpty(t, codeVerifier)
		return &token.Record{
				AccountID:    "account-1",
				Scopes:       []string{"User.Read"},
				AccessToken:  "exchanged-access",
				RefreshToken: "exchanged-refresh",
				ExpiresAt:    time.Now().Add(time.Hour),
				Source:       token.SourceProvider,
			}, map[string]any{
				"nonce": nonce,
				"name":  "John Doe",
				"email": "john.doe@example.com",
			}, nil
	})

	// Complete the flow via the provider callback
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/callback?code=auth-code&state="+url.QueryEscape(state), nil)
	req.AddCookie(cookie)
	f.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))

	return cookie
}

func TestIndexPageAnonymous(t *testing.T) {
	f := setupServerFixture(t)

	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "not signed in")
}

func TestSignInFlowCompletesSession(t *testing.T) {
	f := setupServerFixture(t)
	cookie := f.signIn(t)

	// The exchanged record landed in the token cache
	record, err := f.cache.Get("account-1", []string{"User.Read"})
	require.NoError(t, err)
	require.Equal(t, "exchanged-access", record.AccessToken)
	require.Equal(t, token.SourceProvider, record.Source)

	// The index page now shows the signed-in user
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	f.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "John Doe")
}

func TestCallbackRejectsMismatchedState(t *testing.T) {
	f := setupServerFixture(t)

	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	cookie := rec.Result().Cookies()[0]

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/callback?code=auth-code&state=wrong-state", nil)
	req.AddCookie(cookie)
	f.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCallbackWithoutFlowRedirectsHome(t *testing.T) {
	f := setupServerFixture(t)

	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?code=auth-code&state=some-state", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))
}

func TestResourcePageUsesCachedCredential(t *testing.T) {
	f := setupServerFixture(t)
	cookie := f.signIn(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	req.AddCookie(cookie)
	f.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "John Doe")
	require.Contains(t, rec.Body.String(), token.SourceCache.String())
	// Fresh cached credential means zero provider refresh calls
	require.Zero(t, f.idp.RefreshCallCount())
}

func TestResourcePageAnonymousRedirectsToLogin(t *testing.T) {
	f := setupServerFixture(t)

	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/resource", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestLogoutDestroysSessionAndEvictsCredentials(t *testing.T) {
	f := setupServerFixture(t)
	cookie := f.signIn(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(cookie)
	f.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	_, err := f.cache.Get("account-1", []string{"User.Read"})
	require.Error(t, err)

	// The old cookie no longer resolves to a session
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/resource", nil)
	req.AddCookie(cookie)
	f.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))
}
