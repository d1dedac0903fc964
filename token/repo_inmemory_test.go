package token_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/token"
	"github.com/stretchr/testify/require"
)

const (
	testAccountID = "account-1"
)

var testScopes = []string{"User.Read"}

func testRecord(accountID string, expiresAt time.Time) *token.Record {
	return &token.Record{
		AccountID:    accountID,
		Scopes:       testScopes,
		AccessToken:  "access-" + accountID,
		RefreshToken: "refresh-" + accountID,
		ExpiresAt:    expiresAt,
		Source:       token.SourceProvider,
	}
}

func TestUpsertAndGet(t *testing.T) {
	cache := token.NewInMemoryCache()
	expiry := time.Now().Add(time.Hour)

	require.NoError(t, cache.Upsert(testRecord(testAccountID, expiry)))

	record, err := cache.Get(testAccountID, testScopes)
	require.NoError(t, err)
	require.Equal(t, testAccountID, record.AccountID)
	require.Equal(t, "access-"+testAccountID, record.AccessToken)
	require.True(t, record.ExpiresAt.Equal(expiry))
}

func TestGetMissingRecord(t *testing.T) {
	cache := token.NewInMemoryCache()

	_, err := cache.Get("unknown", testScopes)
	require.ErrorIs(t, err, errors.ErrCacheMiss)
}

func TestUpsertReplacesWholesale(t *testing.T) {
	cache := token.NewInMemoryCache()

	require.NoError(t, cache.Upsert(testRecord(testAccountID, time.Now().Add(time.Minute))))

	replacement := testRecord(testAccountID, time.Now().Add(time.Hour))
	replacement.AccessToken = "new-access"
	replacement.Source = token.SourceRefreshed
	require.NoError(t, cache.Upsert(replacement))

	record, err := cache.Get(testAccountID, testScopes)
	require.NoError(t, err)
	require.Equal(t, "new-access", record.AccessToken)
	require.Equal(t, token.SourceRefreshed, record.Source)
}

func TestScopeOrderDoesNotCreateDuplicates(t *testing.T) {
	cache := token.NewInMemoryCache()

	record := testRecord(testAccountID, time.Now().Add(time.Hour))
	record.Scopes = []string{"b-scope", "a-scope"}
	require.NoError(t, cache.Upsert(record))

	found, err := cache.Get(testAccountID, []string{"a-scope", "b-scope"})
	require.NoError(t, err)
	require.Equal(t, record.AccessToken, found.AccessToken)
}

func TestGetReturnsCopy(t *testing.T) {
	cache := token.NewInMemoryCache()
	require.NoError(t, cache.Upsert(testRecord(testAccountID, time.Now().Add(time.Hour))))

	record, err := cache.Get(testAccountID, testScopes)
	require.NoError(t, err)
	record.AccessToken = "mutated"

	again, err := cache.Get(testAccountID, testScopes)
	require.NoError(t, err)
	require.Equal(t, "access-"+testAccountID, again.AccessToken)
}

func TestListExpiringBefore(t *testing.T) {
	cache := token.NewInMemoryCache()
	now := time.Now()

	require.NoError(t, cache.Upsert(testRecord("due", now.Add(time.Minute))))
	require.NoError(t, cache.Upsert(testRecord("fresh", now.Add(time.Hour))))

	due, err := cache.ListExpiringBefore(now.Add(5 * time.Minute))
	require.NoError(t, err)
	require.Len(t, due, 1)
	require.Equal(t, "due", due[0].AccountID)
}

func TestListExpiringBeforeBoundaryIsInclusive(t *testing.T) {
	cache := token.NewInMemoryCache()
	cutoff := time.Now().Add(5 * time.Minute)

	require.NoError(t, cache.Upsert(testRecord(testAccountID, cutoff)))

	due, err := cache.ListExpiringBefore(cutoff)
	require.NoError(t, err)
	require.Len(t, due, 1)
}

func TestDelete(t *testing.T) {
	cache := token.NewInMemoryCache()
	require.NoError(t, cache.Upsert(testRecord(testAccountID, time.Now().Add(time.Hour))))

	require.NoError(t, cache.Delete(testAccountID, testScopes))

	_, err := cache.Get(testAccountID, testScopes)
	require.ErrorIs(t, err, errors.ErrCacheMiss)

	// Deleting a missing record is not an error
	require.NoError(t, cache.Delete(testAccountID, testScopes))
}

func TestAccounts(t *testing.T) {
	cache := token.NewInMemoryCache()
	require.NoError(t, cache.Upsert(testRecord("account-b", time.Now().Add(time.Hour))))
	require.NoError(t, cache.Upsert(testRecord("account-a", time.Now().Add(time.Hour))))

	other := testRecord("account-a", time.Now().Add(time.Hour))
	other.Scopes = []string{"Mail.Read"}
	require.NoError(t, cache.Upsert(other))

	accounts, err := cache.Accounts()
	require.NoError(t, err)
	require.Equal(t, []string{"account-a", "account-b"}, accounts)
}

func TestConcurrentAccess(t *testing.T) {
	cache := token.NewInMemoryCache()
	expiry := time.Now().Add(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			accountID := fmt.Sprintf("account-%d", n%5)
			_ = cache.Upsert(testRecord(accountID, expiry))
			_, _ = cache.Get(accountID, testScopes)
			_, _ = cache.ListExpiringBefore(expiry)
		}(i)
	}
	wg.Wait()

	accounts, err := cache.Accounts()
	require.NoError(t, err)
	require.Len(t, accounts, 5)
}
