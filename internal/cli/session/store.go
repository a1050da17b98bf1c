// Package session persists the CLI's authenticated session: the bearer token
// and the username and user id that were issued with it.
package session

import (
	"errors"
	"fmt"
)

// Keys under which the session entries are stored.
const (
	KeyToken    = "authToken"
	KeyUsername = "username"
	KeyUserID   = "userId"
)

// Keys lists every entry that belongs to a session.
var Keys = []string{KeyToken, KeyUsername, KeyUserID}

// ErrNotFound is returned by Get when the key has no stored value.
var ErrNotFound = errors.New("session entry not found")

// Store defines the key/value operations the API client needs.
// Implementations must be safe for concurrent use, and Delete of a
// missing key must return nil.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Credentials is the set of values written after a successful login.
type Credentials struct {
	Token    string
	Username string
	UserID   string
}

// Save writes all session entries.
func Save(store Store, creds Credentials) error {
	if creds.Token == "" {
		return fmt.Errorf("refusing to save empty token")
	}

	values := map[string]string{
		KeyToken:    creds.Token,
		KeyUsername: creds.Username,
		KeyUserID:   creds.UserID,
	}
	for _, key := range Keys {
		if err := store.Set(key, values[key]); err != nil {
			return fmt.Errorf("failed to save %s: %w", key, err)
		}
	}
	return nil
}

// Load returns the stored session. Missing username or user id are left
// empty; a missing token yields ErrNotFound.
func Load(store Store) (Credentials, error) {
	var creds Credentials

	token, err := store.Get(KeyToken)
	if err != nil {
		return creds, err
	}
	creds.Token = token

	if creds.Username, err = lookup(store, KeyUsername); err != nil {
		return creds, err
	}
	if creds.UserID, err = lookup(store, KeyUserID); err != nil {
		return creds, err
	}
	return creds, nil
}

// Purge deletes every session entry. It attempts all keys even when one
// fails and returns the joined errors.
func Purge(store Store) error {
	var errs []error
	for _, key := range Keys {
		if err := store.Delete(key); err != nil {
			errs = append(errs, fmt.Errorf("failed to delete %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// Token returns the stored bearer token, or "" when there is none.
func Token(store Store) (string, error) {
	return lookup(store, KeyToken)
}

func lookup(store Store, key string) (string, error) {
	v, err := store.Get(key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return v, err
}
