// Package auth registers accounts, signs users in with HS256 tokens backed by
// a revocable session row, and verifies those tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Ualine055/task-mgt-app/internal/db"
	"github.com/Ualine055/task-mgt-app/internal/models"
	"github.com/Ualine055/task-mgt-app/internal/session"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 6

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrSessionExpired     = errors.New("session expired, please sign in again")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type SessionStore interface {
	Create(ctx context.Context, s *models.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	users    UserStore
	sessions SessionStore
	secret   []byte
	ttl      time.Duration
	cost     int
	now      func() time.Time
}

func NewService(users UserStore, sessions SessionStore, secret string, ttl time.Duration) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		secret:   []byte(secret),
		ttl:      ttl,
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
	}
}

type claims struct {
	Email string `json:"email"`
	SID   string `json:"sid"`
	jwt.RegisteredClaims
}

// ValidateCredentials checks the email format and password length.
func ValidateCredentials(email, password string) error {
	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Register(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if err := ValidateCredentials(email, password); err != nil {
		return nil, err
	}

	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrEmailTaken
	case !errors.Is(err, db.ErrNotFound):
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := s.now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return user, nil
}

// SignIn checks the password, stores a new session and returns a token
// bound to it.
func (s *Service) SignIn(ctx context.Context, email, password string) (string, *models.Session, error) {
	email = normalizeEmail(email)
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, db.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("sign in: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := s.now().UTC()
	sess := &models.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return "", nil, fmt.Errorf("sign in: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: user.Email,
		SID:   sess.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("error signing token: %w", err)
	}
	return signed, sess, nil
}

// Verify parses the token and checks that its session still exists.
func (s *Service) Verify(ctx context.Context, tokenString string) (*models.Session, error) {
	c := &claims{}
	_, err := jwt.ParseWithClaims(tokenString, c, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, ErrSessionExpired
	}
	if err != nil {
		return nil, ErrInvalidToken
	}

	sid, err := uuid.Parse(c.SID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	sess, err := s.sessions.GetByID(ctx, sid)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrSessionExpired
	}
	if err != nil {
		return nil, fmt.Errorf("verify session: %w", err)
	}
	if sess.Expired(s.now()) {
		return nil, ErrSessionExpired
	}
	return sess, nil
}

func (s *Service) SignOut(ctx context.Context, sid uuid.UUID) error {
	return s.sessions.Delete(ctx, sid)
}

// Open verifies the token and returns the session object the views use. Its
// Logout deletes the session row.
func (s *Service) Open(ctx context.Context, tokenString string) (*session.Session, error) {
	rec, err := s.Verify(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	user := models.User{ID: rec.UserID, Email: rec.Email}
	sid := rec.ID
	return session.New(user, func(ctx context.Context) error {
		return s.SignOut(ctx, sid)
	}, session.WithID(sid.String()))
}
