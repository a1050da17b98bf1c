package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/corebank-dev/corebank/internal/cli/session"
)

// Users reads user profiles.
type Users struct {
	c *Client
}

// Accounts reads accounts and their audit trails.
type Accounts struct {
	c     *Client
	users *Users
}

// Transfers moves money between accounts.
type Transfers struct {
	c *Client
}

// Auth signs users in and out.
type Auth struct {
	c *Client
}

// Users returns the user service backed by c.
func (c *Client) Users() *Users { return &Users{c: c} }

// Accounts returns the account service backed by c.
func (c *Client) Accounts() *Accounts { return &Accounts{c: c, users: c.Users()} }

// Transfers returns the transfer service backed by c.
func (c *Client) Transfers() *Transfers { return &Transfers{c: c} }

// Auth returns the authentication service backed by c.
func (c *Client) Auth() *Auth { return &Auth{c: c} }

// Me returns the current user's profile
func (u *Users) Me(ctx context.Context) (*User, error) {
	var user User
	if err := u.c.getJSON(ctx, "/users/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Get returns account details
func (a *Accounts) Get(ctx context.Context, accountID string) (*Account, error) {
	var account Account
	if err := a.c.getJSON(ctx, "/accounts/"+url.PathEscape(accountID), &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// ListForUser returns all accounts owned by userID
func (a *Accounts) ListForUser(ctx context.Context, userID string) ([]Account, error) {
	var accounts []Account
	if err := a.c.getJSON(ctx, "/accounts/user/"+url.PathEscape(userID), &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// Mine returns the authenticated user's accounts. The user id comes from
// /users/me; if that endpoint is missing (404) or the request never got an
// HTTP response, the user id stored at login is used instead.
func (a *Accounts) Mine(ctx context.Context) ([]Account, error) {
	me, err := a.users.Me(ctx)
	if err == nil {
		return a.ListForUser(ctx, me.ID.String())
	}

	if !canFallBack(err) {
		return nil, err
	}

	userID, lookupErr := a.c.store.Get(session.KeyUserID)
	if lookupErr != nil || userID == "" {
		return nil, err
	}
	return a.ListForUser(ctx, userID)
}

func canFallBack(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	// A 2xx with a body we cannot read is not a missing endpoint
	if errors.Is(err, ErrMalformedResponse) {
		return false
	}
	// Transport failure
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// AuditTrail returns the balance history of an account
func (a *Accounts) AuditTrail(ctx context.Context, accountID string) ([]AuditEntry, error) {
	var entries []AuditEntry
	if err := a.c.getJSON(ctx, "/accounts/"+url.PathEscape(accountID)+"/audit", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Execute validates and submits a fund transfer
func (t *Transfers) Execute(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	if err := Validate(req); err != nil {
		return nil, fmt.Errorf("invalid transfer: %w", err)
	}

	var result TransferResult
	if err := t.c.postJSON(ctx, "/transfers", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Login authenticates the user and stores the returned session
func (a *Auth) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := Validate(req); err != nil {
		return nil, fmt.Errorf("invalid login: %w", err)
	}

	var resp AuthResponse
	if err := a.c.postJSON(ctx, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("login response did not include a token")
	}

	if err := session.Save(a.c.store, session.Credentials{
		Token:    resp.Token,
		Username: resp.Username,
		UserID:   resp.UserID.String(),
	}); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return &resp, nil
}

// Register creates a new user. The caller logs in separately afterwards.
func (a *Auth) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if err := Validate(req); err != nil {
		return nil, fmt.Errorf("invalid registration: %w", err)
	}

	var user User
	if err := a.c.postJSON(ctx, "/auth/register", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout clears the local session. The backend is not contacted.
func (a *Auth) Logout() error {
	return session.Purge(a.c.store)
}
