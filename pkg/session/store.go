// Package session owns the client's authentication state: the bearer token
// and the identity resolved from it.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kerbaras/minty/pkg/data"
	"github.com/sirupsen/logrus"
)

// ErrAuthentication matches every login or register failure.
var ErrAuthentication = errors.New("authentication failed")

// AuthError is returned by Login and Register. Its message is fixed; the
// underlying cause is logged and dropped.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Is(target error) bool {
	return target == ErrAuthentication
}

// Backend is the remote side of authentication.
type Backend interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, name, email, password string) (string, error)
	Me(ctx context.Context, token string) (*data.User, error)
}

// TokenRepository persists the token across restarts.
type TokenRepository interface {
	Token(ctx context.Context) (string, error)
	SaveToken(ctx context.Context, token string) error
	DeleteToken(ctx context.Context) error
}

// Store is the single owner of the (token, user) pair. Screens read it and
// call Login, Register and Logout; nothing else mutates it.
//
// The user is only set while the token is set and its identity request
// succeeded. A failed identity request clears the user but keeps the token.
type Store struct {
	backend Backend
	repo    TokenRepository
	log     logrus.FieldLogger

	mu          sync.RWMutex
	token       string
	user        *data.User
	identityErr error
	generation  uint64
	cancel      context.CancelFunc
	resolving   bool
	closed      bool

	inflight sync.WaitGroup
	changes  chan struct{}
}

// New restores the persisted token and, if there is one, starts resolving its
// identity in the background.
func New(ctx context.Context, backend Backend, repo TokenRepository, log logrus.FieldLogger) (*Store, error) {
	token, err := repo.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read persisted token: %w", err)
	}

	s := &Store{
		backend: backend,
		repo:    repo,
		log:     log.WithField("component", "session"),
		changes: make(chan struct{}, 1),
	}
	if token != "" {
		s.log.Debug("restored persisted token")
		s.activate(token)
	}
	return s, nil
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the resolved identity, or nil.
func (s *Store) User() *data.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Authenticated reports whether a token is present, resolved or not.
func (s *Store) Authenticated() bool {
	return s.Token() != ""
}

// Resolving reports whether an identity request is in flight.
func (s *Store) Resolving() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolving
}

// IdentityErr is the error of the last identity request for the current
// token, or nil.
func (s *Store) IdentityErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identityErr
}

// Changes delivers a notification after each state change. Notifications are
// coalesced: a slow reader sees at least one after the latest change.
func (s *Store) Changes() <-chan struct{} {
	return s.changes
}

// Wait blocks until no identity request is in flight.
func (s *Store) Wait() {
	s.inflight.Wait()
}

func (s *Store) Login(ctx context.Context, email, password string) error {
	token, err := s.backend.Login(ctx, email, password)
	if err != nil {
		s.log.WithError(err).WithField("email", email).Warn("login failed")
		return &AuthError{Message: "Login failed"}
	}
	return s.signIn(ctx, token)
}

func (s *Store) Register(ctx context.Context, name, email, password string) error {
	token, err := s.backend.Register(ctx, name, email, password)
	if err != nil {
		s.log.WithError(err).WithField("email", email).Warn("register failed")
		return &AuthError{Message: "Register failed"}
	}
	return s.signIn(ctx, token)
}

func (s *Store) signIn(ctx context.Context, token string) error {
	if err := s.repo.SaveToken(ctx, token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	s.activate(token)
	return nil
}

// Logout clears the token, the user and the persisted token. It is safe to
// call when already logged out. The in-memory state is cleared even if the
// persisted token could not be removed.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.generation++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.token = ""
	s.user = nil
	s.identityErr = nil
	s.resolving = false
	s.mu.Unlock()
	s.notify()

	if err := s.repo.DeleteToken(ctx); err != nil {
		return fmt.Errorf("failed to remove persisted token: %w", err)
	}
	s.log.Info("logged out")
	return nil
}

// Refresh re-resolves the identity of the current token. It does nothing when
// logged out or closed.
func (s *Store) Refresh() {
	s.mu.Lock()
	token := s.token
	if token == "" || s.closed {
		s.mu.Unlock()
		return
	}
	ctx, gen := s.beginLocked()
	s.mu.Unlock()
	s.notify()

	go s.resolve(ctx, gen, token)
}

// Close cancels the identity request in flight, if any, and waits for it to
// return. A closed store keeps its token and user but never resolves again.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.generation++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.resolving = false
	s.mu.Unlock()

	s.inflight.Wait()
}

// activate makes token the active token. Identity is only re-resolved when the
// token actually changes.
func (s *Store) activate(token string) {
	s.mu.Lock()
	if s.token == token {
		s.mu.Unlock()
		return
	}
	s.token = token
	s.user = nil
	s.identityErr = nil
	if s.closed {
		s.mu.Unlock()
		s.notify()
		return
	}
	// The old token's request is superseded together with the swap, so it
	// can never land on the new token.
	ctx, gen := s.beginLocked()
	s.mu.Unlock()
	s.notify()

	go s.resolve(ctx, gen, token)
}

// beginLocked cancels the pending identity request and registers a new one.
// s.mu must be held.
func (s *Store) beginLocked() (context.Context, uint64) {
	s.generation++
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.resolving = true
	s.inflight.Add(1)
	return ctx, s.generation
}

func (s *Store) resolve(ctx context.Context, gen uint64, token string) {
	defer s.inflight.Done()

	user, err := s.backend.Me(ctx, token)

	s.mu.Lock()
	if gen != s.generation {
		// Superseded by a newer token, a refresh, a logout or Close
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.cancel = nil
	s.resolving = false
	if err != nil {
		s.user = nil
		s.identityErr = err
	} else {
		s.user = user
		s.identityErr = nil
	}
	s.mu.Unlock()

	if err != nil {
		s.log.WithError(err).Warn("identity resolution failed")
	} else {
		s.log.WithField("user_id", user.ID).Info("identity resolved")
	}
	s.notify()
}

func (s *Store) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
		// A notification is already pending
	}
}
