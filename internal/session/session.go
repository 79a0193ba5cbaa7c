// Package session holds the signed-in identity handed to the dashboard views.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/Ualine055/task-mgt-app/internal/models"
)

var (
	ErrNoUser          = errors.New("session: no authenticated user")
	ErrNoLogout        = errors.New("session: no sign-out hook")
	ErrOutsideProvider = errors.New("session: used outside an authenticated scope")
)

// LogoutFunc terminates the remote session.
type LogoutFunc func(ctx context.Context) error

// Session is the narrow identity object passed to the views. After Logout it
// no longer carries a user.
type Session struct {
	mu     sync.Mutex
	id     string
	user   *models.User
	logout LogoutFunc
}

type Option func(*Session)

// WithID attaches the remote session id, used to key per-session view state.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

func New(user models.User, logout LogoutFunc, opts ...Option) (*Session, error) {
	if user.Email == "" {
		return nil, ErrNoUser
	}
	if logout == nil {
		return nil, ErrNoLogout
	}
	s := &Session{user: &user, logout: logout}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Session) ID() string {
	return s.id
}

// User returns the signed-in user and false once signed out.
func (s *Session) User() (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

// Owner is the identity tasks are filed under: the user's email.
func (s *Session) Owner() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return ""
	}
	return s.user.Email
}

func (s *Session) SignedIn() bool {
	return s.Owner() != ""
}

// Logout calls the sign-out hook once and clears the user. If the hook fails
// the user is kept so the caller can retry.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	if err := s.logout(ctx); err != nil {
		return err
	}
	s.user = nil
	return nil
}

type contextKey struct{}

func WithContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

func FromContext(ctx context.Context) (*Session, error) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	if !ok || s == nil {
		return nil, ErrOutsideProvider
	}
	return s, nil
}

// MustFromContext panics when ctx carries no session.
func MustFromContext(ctx context.Context) *Session {
	s, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return s
}
