package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebank-dev/corebank/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Database: config.DatabaseConfig{URL: filepath.Join(t.TempDir(), "sandbox.sqlite")},
		HTTP: config.HTTPConfig{
			ListenAddr:  "127.0.0.1:0",
			CORSOrigins: []string{"http://localhost:5173"},
		},
		Auth: config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour},
		Bank: config.BankConfig{OpeningBalanceCents: 100000},
	}
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	srv, err := New(testConfig(t), zerolog.Nop(), "test")
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return srv, ts
}

// call sends a JSON request and decodes the JSON response into out when non-nil
func call(t *testing.T, ts *httptest.Server, method, path, token string, body, out any) int {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func registerUser(t *testing.T, ts *httptest.Server, username, accountType string) UserDetail {
	t.Helper()

	var user UserDetail
	status := call(t, ts, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Username:         username,
		Password:         "password123",
		FullName:         "Test " + username,
		Email:            username + "@example.com",
		Address:          "1 Main St",
		IDDocumentNumber: "ID" + username + "01",
		AccountType:      accountType,
	}, &user)
	require.Equal(t, http.StatusCreated, status)
	return user
}

func loginUser(t *testing.T, ts *httptest.Server, username string) LoginResponse {
	t.Helper()

	var resp LoginResponse
	status := call(t, ts, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Username: username,
		Password: "password123",
	}, &resp)
	require.Equal(t, http.StatusOK, status)
	return resp
}

func accountsOf(t *testing.T, ts *httptest.Server, login LoginResponse) []AccountDetail {
	t.Helper()

	var accounts []AccountDetail
	status := call(t, ts, http.MethodGet, "/api/accounts/user/"+login.UserID, login.Token, nil, &accounts)
	require.Equal(t, http.StatusOK, status)
	return accounts
}

func TestHealthCheck(t *testing.T) {
	_, ts := newTestServer(t)

	var body map[string]any
	status := call(t, ts, http.MethodGet, "/health", "", nil, &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "online", body["status"])
}

func TestRegisterAndLogin(t *testing.T) {
	_, ts := newTestServer(t)

	user := registerUser(t, ts, "alice", "savings")
	assert.Equal(t, "alice", user.Username)
	assert.NotEmpty(t, user.ID)

	login := loginUser(t, ts, "alice")
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, user.ID, login.UserID)
	assert.Equal(t, "alice", login.Username)

	var me UserDetail
	status := call(t, ts, http.MethodGet, "/api/users/me", login.Token, nil, &me)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice@example.com", me.Email)

	accounts := accountsOf(t, ts, login)
	require.Len(t, accounts, 1)
	assert.Equal(t, "SAVINGS", accounts[0].AccountType)
	assert.Equal(t, "ACTIVE", accounts[0].Status)
	assert.Equal(t, 1000.0, accounts[0].Balance)
	assert.Len(t, accounts[0].AccountNumber, 10)
	require.NotNil(t, accounts[0].InterestRate)
	assert.Equal(t, 0.025, *accounts[0].InterestRate)
}

func TestRegister_Validation(t *testing.T) {
	_, ts := newTestServer(t)

	var body map[string]any
	status := call(t, ts, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Username: "x",
		Password: "short",
	}, &body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Validation failed", body["error"])
}

func TestRegister_OptionalDetails(t *testing.T) {
	_, ts := newTestServer(t)

	var user UserDetail
	status := call(t, ts, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Username:    "carol",
		Password:    "password123",
		FullName:    "Carol Jones",
		Email:       "carol@example.com",
		AccountType: "CHECKING",
	}, &user)
	require.Equal(t, http.StatusCreated, status)
	assert.Empty(t, user.Address)

	var body map[string]any
	status = call(t, ts, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Username:         "dave",
		Password:         "password123",
		FullName:         "Dave Jones",
		Email:            "dave@example.com",
		IDDocumentNumber: "no!",
		AccountType:      "CHECKING",
	}, &body)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	_, ts := newTestServer(t)
	registerUser(t, ts, "alice", "SAVINGS")

	var body map[string]any
	status := call(t, ts, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Username:         "alice",
		Password:         "password123",
		FullName:         "Other Alice",
		Email:            "other@example.com",
		Address:          "2 Main St",
		IDDocumentNumber: "ID99999",
		AccountType:      "CHECKING",
	}, &body)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Username already exists", body["error"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	_, ts := newTestServer(t)
	registerUser(t, ts, "alice", "SAVINGS")

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "alice", "password124"},
		{"unknown user", "mallory", "password123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]any
			status := call(t, ts, http.MethodPost, "/api/auth/login", "", LoginRequest{
				Username: tt.username,
				Password: tt.password,
			}, &body)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, "Invalid username or password", body["error"])
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	srv, ts := newTestServer(t)
	user := registerUser(t, ts, "alice", "SAVINGS")

	valid, err := srv.tokens.GenerateToken(user.ID, "alice")
	require.NoError(t, err)
	ghost, err := srv.tokens.GenerateToken("01HXNOTAUSER0000000000000", "ghost")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
		error  string
	}{
		{"missing header", "", http.StatusUnauthorized, "Missing authorization header"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "Invalid authorization header format"},
		{"garbage token", "Bearer garbage", http.StatusUnauthorized, "Invalid or expired token"},
		{"deleted user", "Bearer " + ghost, http.StatusUnauthorized, "User not found"},
		{"valid token", "Bearer " + valid, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/users/me", nil)
			require.NoError(t, err)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.error != "" {
				var body map[string]any
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, tt.error, body["error"])
			}
		})
	}
}

func TestAccountAccessControl(t *testing.T) {
	_, ts := newTestServer(t)
	registerUser(t, ts, "alice", "SAVINGS")
	registerUser(t, ts, "bob", "CHECKING")

	alice := loginUser(t, ts, "alice")
	bob := loginUser(t, ts, "bob")
	bobAccount := accountsOf(t, ts, bob)[0]

	assert.Equal(t, http.StatusForbidden,
		call(t, ts, http.MethodGet, "/api/accounts/"+bobAccount.ID, alice.Token, nil, nil))
	assert.Equal(t, http.StatusForbidden,
		call(t, ts, http.MethodGet, "/api/accounts/user/"+bob.UserID, alice.Token, nil, nil))
	assert.Equal(t, http.StatusForbidden,
		call(t, ts, http.MethodGet, "/api/accounts/"+bobAccount.ID+"/audit", alice.Token, nil, nil))
	assert.Equal(t, http.StatusNotFound,
		call(t, ts, http.MethodGet, "/api/accounts/does-not-exist", alice.Token, nil, nil))

	var account AccountDetail
	assert.Equal(t, http.StatusOK,
		call(t, ts, http.MethodGet, "/api/accounts/"+bobAccount.ID, bob.Token, nil, &account))
	assert.Equal(t, bobAccount.AccountNumber, account.AccountNumber)
	assert.Nil(t, account.InterestRate)
}

func TestTransfer(t *testing.T) {
	_, ts := newTestServer(t)
	registerUser(t, ts, "alice", "SAVINGS")
	registerUser(t, ts, "bob", "CHECKING")

	alice := loginUser(t, ts, "alice")
	bob := loginUser(t, ts, "bob")
	from := accountsOf(t, ts, alice)[0]
	to := accountsOf(t, ts, bob)[0]

	var result TransferDetail
	status := call(t, ts, http.MethodPost, "/api/transfers", alice.Token, TransferRequest{
		SourceAccountNumber:      from.AccountNumber,
		DestinationAccountNumber: to.AccountNumber,
		Amount:                   250.25,
		Description:              "rent",
	}, &result)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "COMPLETED", result.Status)
	assert.Equal(t, 250.25, result.Amount)
	assert.NotEmpty(t, result.TransactionID)

	assert.Equal(t, 749.75, accountsOf(t, ts, alice)[0].Balance)
	assert.Equal(t, 1250.25, accountsOf(t, ts, bob)[0].Balance)

	var trail []AuditEntryDetail
	require.Equal(t, http.StatusOK,
		call(t, ts, http.MethodGet, "/api/accounts/"+from.ID+"/audit", alice.Token, nil, &trail))
	require.Len(t, trail, 2)
	assert.Equal(t, "ACCOUNT_OPENED", trail[0].ActionType)
	assert.Equal(t, "DEBIT", trail[1].ActionType)
	assert.Equal(t, result.TransactionID, trail[1].TransactionID)
	assert.Equal(t, -250.25, trail[1].ChangeAmount)
	assert.Equal(t, 1000.0, trail[1].PreviousBalance)
	assert.Equal(t, 749.75, trail[1].NewBalance)
	assert.Equal(t, "alice", trail[1].InitiatedBy)

	require.Equal(t, http.StatusOK,
		call(t, ts, http.MethodGet, "/api/accounts/"+to.ID+"/audit", bob.Token, nil, &trail))
	require.Len(t, trail, 2)
	assert.Equal(t, "CREDIT", trail[1].ActionType)
	assert.Equal(t, result.TransactionID, trail[1].TransactionID)
}

func TestTransfer_Errors(t *testing.T) {
	_, ts := newTestServer(t)
	registerUser(t, ts, "alice", "SAVINGS")
	registerUser(t, ts, "bob", "CHECKING")

	alice := loginUser(t, ts, "alice")
	bob := loginUser(t, ts, "bob")
	from := accountsOf(t, ts, alice)[0].AccountNumber
	to := accountsOf(t, ts, bob)[0].AccountNumber

	tests := []struct {
		name   string
		req    TransferRequest
		status int
	}{
		{"insufficient funds", TransferRequest{SourceAccountNumber: from, DestinationAccountNumber: to, Amount: 5000}, http.StatusUnprocessableEntity},
		{"not owner", TransferRequest{SourceAccountNumber: to, DestinationAccountNumber: from, Amount: 1}, http.StatusForbidden},
		{"unknown destination", TransferRequest{SourceAccountNumber: from, DestinationAccountNumber: "1", Amount: 1}, http.StatusNotFound},
		{"same account", TransferRequest{SourceAccountNumber: from, DestinationAccountNumber: from, Amount: 1}, http.StatusBadRequest},
		{"zero amount", TransferRequest{SourceAccountNumber: from, DestinationAccountNumber: to, Amount: 0}, http.StatusBadRequest},
		{"fractional cents", TransferRequest{SourceAccountNumber: from, DestinationAccountNumber: to, Amount: 1.005}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, call(t, ts, http.MethodPost, "/api/transfers", alice.Token, tt.req, nil))
		})
	}

	// Nothing moved
	assert.Equal(t, 1000.0, accountsOf(t, ts, alice)[0].Balance)
	assert.Equal(t, 1000.0, accountsOf(t, ts, bob)[0].Balance)
}

func TestCORSPreflight(t *testing.T) {
	_, ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/users/me", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")
	req.Header.Set("Access-Control-Request-Headers", "Authorization")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}
