package server

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebank-dev/corebank/internal/cli/client"
	"github.com/corebank-dev/corebank/internal/cli/session"
)

type countingHandler struct {
	calls atomic.Int32
}

func (h *countingHandler) OnAuthFailure(ctx context.Context) {
	h.calls.Add(1)
}

func newSandboxClient(t *testing.T) (*client.Client, *session.MemoryStore, *countingHandler) {
	t.Helper()

	_, ts := newTestServer(t)
	store := session.NewMemoryStore()
	handler := &countingHandler{}

	return client.New(client.Options{BaseURL: ts.URL + "/api/"}, store, handler), store, handler
}

func TestClientAgainstSandbox_FullFlow(t *testing.T) {
	api, store, handler := newSandboxClient(t)
	ctx := context.Background()

	for _, username := range []string{"alice", "bob"} {
		_, err := api.Auth().Register(ctx, client.RegisterRequest{
			Username:         username,
			Password:         "password123",
			FullName:         "Test " + username,
			Email:            username + "@example.com",
			Address:          "1 Main St",
			IDDocumentNumber: "ID" + username + "01",
			AccountType:      "CHECKING",
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 0, store.Len())

	// Bob's account number, read while signed in as bob
	_, err := api.Auth().Login(ctx, client.LoginRequest{Username: "bob", Password: "password123"})
	require.NoError(t, err)
	bobAccounts, err := api.Accounts().Mine(ctx)
	require.NoError(t, err)
	require.Len(t, bobAccounts, 1)
	require.NoError(t, api.Auth().Logout())

	resp, err := api.Auth().Login(ctx, client.LoginRequest{Username: "alice", Password: "password123"})
	require.NoError(t, err)

	creds, err := session.Load(store)
	require.NoError(t, err)
	assert.Equal(t, resp.Token, creds.Token)
	assert.Equal(t, "alice", creds.Username)
	assert.Equal(t, resp.UserID.String(), creds.UserID)

	mine, err := api.Accounts().Mine(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, 1000.0, mine[0].Balance)

	result, err := api.Transfers().Execute(ctx, client.TransferRequest{
		SourceAccountNumber:      mine[0].AccountNumber,
		DestinationAccountNumber: bobAccounts[0].AccountNumber,
		Amount:                   99.99,
		Description:              "dinner",
	})
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", result.Status)
	assert.Equal(t, 99.99, result.Amount)

	account, err := api.Accounts().Get(ctx, mine[0].ID.String())
	require.NoError(t, err)
	assert.InDelta(t, 900.01, account.Balance, 1e-9)

	trail, err := api.Accounts().AuditTrail(ctx, mine[0].ID.String())
	require.NoError(t, err)
	require.Len(t, trail, 2)
	assert.Equal(t, "DEBIT", trail[1].ActionType)
	assert.Equal(t, result.TransactionID, trail[1].TransactionID)

	// Another user's account is forbidden, not an auth failure
	_, err = api.Accounts().Get(ctx, bobAccounts[0].ID.String())
	assert.Equal(t, 403, client.StatusCode(err))
	assert.Equal(t, 3, store.Len())

	// Business rule violations pass through untouched
	_, err = api.Transfers().Execute(ctx, client.TransferRequest{
		SourceAccountNumber:      mine[0].AccountNumber,
		DestinationAccountNumber: bobAccounts[0].AccountNumber,
		Amount:                   100000,
	})
	assert.Equal(t, 422, client.StatusCode(err))
	assert.Contains(t, err.Error(), "Insufficient funds")
	assert.Equal(t, 3, store.Len())

	assert.Equal(t, int32(0), handler.calls.Load())
}

func TestClientAgainstSandbox_RevokedTokenPurgesSession(t *testing.T) {
	api, store, handler := newSandboxClient(t)
	ctx := context.Background()

	_, err := api.Auth().Register(ctx, client.RegisterRequest{
		Username:         "alice",
		Password:         "password123",
		FullName:         "Alice",
		Email:            "alice@example.com",
		Address:          "1 Main St",
		IDDocumentNumber: "IDalice01",
		AccountType:      "SAVINGS",
	})
	require.NoError(t, err)

	_, err = api.Auth().Login(ctx, client.LoginRequest{Username: "alice", Password: "password123"})
	require.NoError(t, err)

	// A token the sandbox did not sign
	require.NoError(t, store.Set(session.KeyToken, "eyJhbGciOiJIUzI1NiJ9.eyJ1c2VyX2lkIjoiMSJ9.forged"))

	_, err = api.Accounts().Mine(ctx)
	require.Error(t, err)
	assert.True(t, client.IsUnauthorized(err))

	assert.Equal(t, 0, store.Len())
	assert.Equal(t, int32(1), handler.calls.Load())

	// The next request carries no token and is rejected again
	_, err = api.Users().Me(ctx)
	assert.True(t, client.IsUnauthorized(err))
	assert.Equal(t, int32(2), handler.calls.Load())
}
