package session

import (
	"context"
	"sync"
	"time"

	"github.com/mentormatch/mentormatch-api/internal/models"
)

// Session is an authenticated session issued by an Authenticator
type Session struct {
	Token     string
	ExpiresAt time.Time
	Identity  *models.Identity
}

// Authenticator is the identity service a Store synchronizes with.
// CurrentSession returns (nil, nil) when the token does not name a live session.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password, fullName string) (*Session, error)
	SignOut(ctx context.Context, token string) error
	CurrentSession(ctx context.Context, token string) (*Session, error)
}

// State is a consistent view of a Store at one instant
type State struct {
	Identity *models.Identity
	Loading  bool
}

// Authenticated reports whether an identity is present
func (s State) Authenticated() bool {
	return s.Identity != nil
}

// Has reports whether the identity holds capability c
func (s State) Has(c models.Capability) bool {
	return s.Identity != nil && s.Identity.Capabilities.Has(c)
}

// Store holds the current identity and loading flag for one visitor.
// It is safe for concurrent use.
type Store struct {
	auth Authenticator

	mu        sync.RWMutex
	token     string
	expiresAt time.Time
	identity  *models.Identity
	loading   bool
	ready     chan struct{}
	readyOnce sync.Once
}

// Option configures a Store
type Option func(*Store)

// WithToken restores a previously issued session token; Check resolves it
func WithToken(token string) Option {
	return func(s *Store) {
		s.token = token
	}
}

// NewStore creates a Store in the loading state with no identity
func NewStore(auth Authenticator, opts ...Option) *Store {
	s := &Store{
		auth:    auth,
		loading: true,
		ready:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignIn authenticates with credentials and adopts the resulting session.
// The authenticator's error is returned unchanged.
func (s *Store) SignIn(ctx context.Context, email, password string) error {
	sess, err := s.auth.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	s.adopt(sess)
	return nil
}

// SignUp registers a new account and adopts the resulting session
func (s *Store) SignUp(ctx context.Context, email, password, fullName string) error {
	sess, err := s.auth.SignUp(ctx, email, password, fullName)
	if err != nil {
		return err
	}
	s.adopt(sess)
	return nil
}

// SignOut ends the session. Identity is cleared only when the
// authenticator accepts the sign-out.
func (s *Store) SignOut(ctx context.Context) error {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()

	if token != "" {
		if err := s.auth.SignOut(ctx, token); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.token = ""
	s.expiresAt = time.Time{}
	s.identity = nil
	s.mu.Unlock()
	return nil
}

// Check resolves the stored token into an identity, or clears it.
// It may be called any number of times; every call ends with loading false.
// On error the identity is cleared and the error returned.
func (s *Store) Check(ctx context.Context) error {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()

	var (
		sess *Session
		err  error
	)
	if token != "" {
		sess, err = s.auth.CurrentSession(ctx, token)
	}

	s.mu.Lock()
	if err != nil || sess == nil || sess.Identity == nil {
		s.token = ""
		s.expiresAt = time.Time{}
		s.identity = nil
	} else {
		s.token = sess.Token
		s.expiresAt = sess.ExpiresAt
		s.identity = cloneIdentity(sess.Identity)
	}
	s.loading = false
	s.mu.Unlock()

	s.readyOnce.Do(func() { close(s.ready) })
	return err
}

// Snapshot returns the identity and loading flag as one consistent pair
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{Identity: cloneIdentity(s.identity), Loading: s.loading}
}

// Identity returns a copy of the current identity, or nil
func (s *Store) Identity() *models.Identity {
	return s.Snapshot().Identity
}

// Loading reports whether the first Check is still outstanding
func (s *Store) Loading() bool {
	return s.Snapshot().Loading
}

// Token returns the current session token and its expiry
func (s *Store) Token() (string, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.expiresAt
}

// Ready is closed once the first Check has completed
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// WaitReady blocks until the first Check completes or ctx is done
func (s *Store) WaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) adopt(sess *Session) {
	if sess == nil {
		return
	}
	s.mu.Lock()
	s.token = sess.Token
	s.expiresAt = sess.ExpiresAt
	s.identity = cloneIdentity(sess.Identity)
	s.mu.Unlock()
}

func cloneIdentity(id *models.Identity) *models.Identity {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}
