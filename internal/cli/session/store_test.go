package session

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func storesUnderTest(t *testing.T) map[string]Store {
	t.Helper()

	keyring.MockInit()

	bolt, err := OpenBoltStore(filepath.Join(t.TempDir(), "nested", "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { bolt.Close() })

	return map[string]Store{
		"memory":  NewMemoryStore(),
		"keyring": NewKeyringStore("corebank-test"),
		"bolt":    bolt,
	}
}

func TestStore_GetSetDelete(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(KeyToken)
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.Set(KeyToken, "abc123"))
			v, err := store.Get(KeyToken)
			require.NoError(t, err)
			assert.Equal(t, "abc123", v)

			require.NoError(t, store.Delete(KeyToken))
			_, err = store.Get(KeyToken)
			assert.ErrorIs(t, err, ErrNotFound)

			// Deleting again is a no-op.
			assert.NoError(t, store.Delete(KeyToken))
		})
	}
}

func TestSaveLoadPurge(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			creds := Credentials{Token: "tok", Username: "alice", UserID: "42"}
			require.NoError(t, Save(store, creds))

			loaded, err := Load(store)
			require.NoError(t, err)
			assert.Equal(t, creds, loaded)

			require.NoError(t, Purge(store))
			for _, key := range Keys {
				_, err := store.Get(key)
				assert.ErrorIs(t, err, ErrNotFound, key)
			}

			_, err = Load(store)
			assert.ErrorIs(t, err, ErrNotFound)

			token, err := Token(store)
			require.NoError(t, err)
			assert.Empty(t, token)
		})
	}
}

func TestSave_RejectsEmptyToken(t *testing.T) {
	store := NewMemoryStore()
	err := Save(store, Credentials{Username: "alice"})
	require.Error(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestPurge_ConcurrentIsIdempotent(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, Save(store, Credentials{Token: "tok", Username: "alice", UserID: "42"}))

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- Purge(store)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 0, store.Len())
}

// failingStore fails deletes for one key to check Purge keeps going.
type failingStore struct {
	*MemoryStore
	failKey string
}

func (f *failingStore) Delete(key string) error {
	if key == f.failKey {
		return errors.New("backend unavailable")
	}
	return f.MemoryStore.Delete(key)
}

func TestPurge_AttemptsEveryKey(t *testing.T) {
	store := &failingStore{MemoryStore: NewMemoryStore(), failKey: KeyToken}
	require.NoError(t, Save(store, Credentials{Token: "tok", Username: "alice", UserID: "42"}))

	err := Purge(store)
	require.Error(t, err)
	assert.Contains(t, err.Error(), KeyToken)

	_, err = store.Get(KeyUsername)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(KeyUserID)
	assert.ErrorIs(t, err, ErrNotFound)
}
