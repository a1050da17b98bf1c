package commands

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/corebank-dev/corebank/internal/cli/client"
	"github.com/corebank-dev/corebank/internal/cli/config"
	"github.com/corebank-dev/corebank/internal/cli/session"
)

// Env carries the dependencies shared by every command.
type Env struct {
	Config *config.Config
	Logger zerolog.Logger
	Store  session.Store

	// Timeout bounds each API request; zero means no limit.
	Timeout time.Duration

	In  io.Reader
	Out io.Writer
	Err io.Writer

	// Interactive reports whether prompts may be shown.
	Interactive func() bool

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// NewEnv returns an Env wired to the process's standard streams.
func NewEnv(cfg *config.Config, logger zerolog.Logger, store session.Store) *Env {
	return &Env{
		Config: cfg,
		Logger: logger,
		Store:  store,
		In:     os.Stdin,
		Out:    os.Stdout,
		Err:    os.Stderr,
		Interactive: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
	}
}

// OpenStore opens the session backend selected in cfg. The returned close
// function must be called when the command finishes.
func OpenStore(cfg *config.Config) (session.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.SessionBackend {
	case config.SessionMemory:
		return session.NewMemoryStore(), noop, nil
	case config.SessionFile:
		path := cfg.SessionFile
		if path == "" {
			var err error
			path, err = session.DefaultFilePath()
			if err != nil {
				return nil, nil, err
			}
		}
		store, err := session.OpenBoltStore(path)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return session.NewKeyringStore(session.DefaultService), noop, nil
	}
}

// Client builds an API client that reports expired sessions on Err.
func (e *Env) Client() *client.Client {
	return e.clientWith(e.Store, NewSessionExpiredHandler(e.Err))
}

// anonymousClient builds a client for sign-in flows, where a 401 means bad
// credentials rather than an expired session. It never sends the stored
// token, and a rejected sign-in leaves the existing session in place.
func (e *Env) anonymousClient() *client.Client {
	return e.clientWith(signInStore{e.Store}, client.NopHandler)
}

// signInStore hides the stored token and ignores deletes. Writes pass
// through so a successful login replaces the session.
type signInStore struct {
	session.Store
}

func (s signInStore) Get(key string) (string, error) {
	if key == session.KeyToken {
		return "", session.ErrNotFound
	}
	return s.Store.Get(key)
}

func (s signInStore) Delete(string) error { return nil }

func (e *Env) clientWith(store session.Store, handler client.InvalidationHandler) *client.Client {
	httpClient := e.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return client.New(client.Options{
		BaseURL:    e.Config.APIBaseURL,
		HTTPClient: httpClient,
		Logger:     &e.Logger,
	}, store, handler)
}

// requestContext returns a context bounded by the configured timeout.
func (e *Env) requestContext(parent context.Context) (context.Context, context.CancelFunc) {
	if e.Timeout > 0 {
		return context.WithTimeout(parent, e.Timeout)
	}
	return context.WithCancel(parent)
}

func (e *Env) interactive() bool {
	return e.Interactive != nil && e.Interactive()
}

// SessionExpiredHandler tells the user to sign in again. It is the CLI's
// counterpart of sending a browser to the login page, and prints at most once.
type SessionExpiredHandler struct {
	w    io.Writer
	once sync.Once

	mu       sync.Mutex
	location string
}

var _ client.InvalidationHandler = (*SessionExpiredHandler)(nil)

func NewSessionExpiredHandler(w io.Writer) *SessionExpiredHandler {
	return &SessionExpiredHandler{w: w}
}

func (h *SessionExpiredHandler) OnAuthFailure(ctx context.Context) {
	h.mu.Lock()
	h.location = client.LoginPath
	h.mu.Unlock()

	h.once.Do(func() {
		fmt.Fprintln(h.w, "Your session has expired or is no longer valid.")
		fmt.Fprintln(h.w, "Please run 'corebank login' to sign in again.")
	})
}

// Location returns the login path once an auth failure has been handled.
func (h *SessionExpiredHandler) Location() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.location
}
