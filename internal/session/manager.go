// Package session owns the authenticated identity of the CLI: the bearer
// token and the user it belongs to. The Manager is the only writer of that
// state; every transition replaces the whole snapshot.
package session

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/saadjs/cycle-cli/internal/errors"
	"github.com/saadjs/cycle-cli/internal/log"
	"github.com/saadjs/cycle-cli/internal/model"
)

// Outcome of a session verification. Callers never see why a session is
// invalid; the cause is only logged.
type Outcome int

const (
	Invalid Outcome = iota
	Valid
)

func (o Outcome) String() string {
	if o == Valid {
		return "valid"
	}
	return "invalid"
}

// State is an immutable snapshot. A zero Token means logged out; User may be
// nil while a restored token has not been verified yet.
type State struct {
	Token string
	User  *model.User
}

// Store persists the token across process invocations.
type Store interface {
	LoadToken(ctx context.Context) (string, error)
	SaveToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// Authenticator is the remote side of the session: credential exchange and
// profile lookup. *api.Client satisfies it.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (model.AuthResponse, error)
	Register(ctx context.Context, username, email, password string) (model.AuthResponse, error)
	Profile(ctx context.Context, token string) (model.User, error)
}

type Manager struct {
	auth   Authenticator
	store  Store
	logger *log.Logger
	now    func() time.Time

	state atomic.Pointer[State]
}

var loggedOut = &State{}

func NewManager(auth Authenticator, store Store, logger *log.Logger) *Manager {
	m := &Manager{
		auth:   auth,
		store:  store,
		logger: log.OrDiscard(logger),
		now:    time.Now,
	}
	m.state.Store(loggedOut)
	return m
}

// SetAuthenticator binds the remote side after construction. The API client
// needs the Manager as its Credentials, so one of the two is wired late.
func (m *Manager) SetAuthenticator(auth Authenticator) {
	m.auth = auth
}

func (m *Manager) Snapshot() State {
	return *m.state.Load()
}

func (m *Manager) Token() string {
	return m.state.Load().Token
}

func (m *Manager) CurrentUser() *model.User {
	u := m.state.Load().User
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}

func (m *Manager) Authenticated() bool {
	return m.Token() != ""
}

// Login exchanges credentials for a token. The token is persisted before the
// in-memory state changes; on any failure the previous state is untouched.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	resp, err := m.auth.Login(ctx, strings.TrimSpace(username), password)
	if err != nil {
		m.logger.WithError(err).Info("login failed", "username", username)
		return err
	}
	return m.establish(ctx, resp, "login")
}

// Register creates an account and signs in with the returned token.
func (m *Manager) Register(ctx context.Context, username, email, password string) error {
	resp, err := m.auth.Register(ctx, strings.TrimSpace(username), strings.TrimSpace(email), password)
	if err != nil {
		m.logger.WithError(err).Info("registration failed", "username", username)
		return err
	}
	return m.establish(ctx, resp, "register")
}

func (m *Manager) establish(ctx context.Context, resp model.AuthResponse, via string) error {
	if err := m.store.SaveToken(ctx, resp.AccessToken); err != nil {
		return errors.Wrap(errors.ErrCodeStore, "save session token", err)
	}
	user := resp.User
	m.state.Store(&State{Token: resp.AccessToken, User: &user})
	m.logger.Info("session established", "via", via, "user", user.Username)
	return nil
}

// Restore loads a persisted token and verifies it. With no stored token the
// session is Invalid and nothing is sent.
func (m *Manager) Restore(ctx context.Context) Outcome {
	token, err := m.store.LoadToken(ctx)
	if err != nil {
		m.logger.WithError(err).Warn("load session token")
		return Invalid
	}
	if token == "" {
		return Invalid
	}
	m.state.Store(&State{Token: token})
	return m.VerifySession(ctx)
}

// VerifySession checks the current token against the profile endpoint. Any
// failure, whatever the status, tears the session down.
func (m *Manager) VerifySession(ctx context.Context) Outcome {
	current := m.state.Load()
	if current.Token == "" {
		return Invalid
	}
	if claims := Inspect(current.Token); claims.Expired(m.now()) {
		m.teardown(ctx, "token expired", nil)
		return Invalid
	}
	user, err := m.auth.Profile(ctx, current.Token)
	if err != nil {
		m.teardown(ctx, "profile verification failed", err)
		return Invalid
	}
	// A concurrent teardown or re-login wins over this refresh.
	m.state.CompareAndSwap(current, &State{Token: current.Token, User: &user})
	return Valid
}

// Invalidate tears the session down after the service rejected the token on
// a data call. Safe to call repeatedly and from several goroutines.
func (m *Manager) Invalidate() {
	m.teardown(context.Background(), "token rejected", nil)
}

// Logout always succeeds from the caller's point of view.
func (m *Manager) Logout(ctx context.Context) {
	m.state.Store(loggedOut)
	if err := m.store.ClearToken(ctx); err != nil {
		m.logger.WithError(err).Warn("clear session token")
	}
	m.logger.Info("logged out")
}

func (m *Manager) teardown(ctx context.Context, reason string, cause error) {
	prev := m.state.Swap(loggedOut)
	if prev.Token == "" {
		return
	}
	m.logger.WithError(cause).Warn("session invalidated", "reason", reason)
	if err := m.store.ClearToken(ctx); err != nil {
		m.logger.WithError(err).Warn("clear session token")
	}
}
