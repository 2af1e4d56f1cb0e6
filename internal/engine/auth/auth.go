// Package auth issues and verifies login sessions. A session is an
// HS256 bearer token whose token id (jti) is also stored hashed in the
// sessions table, so signing out actually revokes the token instead of
// waiting for expiry.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"arvyax/internal/domain"
	"arvyax/internal/repo"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong
	// password; callers must not distinguish the two.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken signals a duplicate sign-up.
	ErrEmailTaken = errors.New("an account with this email already exists")
	// ErrUnauthorized covers missing, malformed, revoked, and expired
	// tokens.
	ErrUnauthorized = errors.New("authentication required")
)

const defaultTTL = 24 * time.Hour

// Session is the login state handed back to callers after sign-up or
// sign-in.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Service issues and verifies sessions against the store.
type Service struct {
	Repo   repo.Repo
	Secret string
	TTL    time.Duration
	Now    func() time.Time
}

func (s Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s Service) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return defaultTTL
}

// HashPassword bcrypt-hashes a raw password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

type claims struct {
	jwt.RegisteredClaims
}

// Issue creates a session for the user: a signed token plus the
// revocation row keyed by the hashed token id.
func (s Service) Issue(ctx context.Context, userID string) (Session, error) {
	if strings.TrimSpace(s.Secret) == "" {
		return Session{}, errors.New("jwt secret not configured")
	}
	now := s.now().UTC()
	expires := now.Add(s.ttl())
	jti := uuid.NewString()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	signed, err := token.SignedString([]byte(s.Secret))
	if err != nil {
		return Session{}, err
	}
	err = s.Repo.InsertSession(ctx, domain.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: repo.HashToken(jti),
		CreatedAt: now,
		ExpiresAt: expires,
	})
	if err != nil {
		return Session{}, err
	}
	return Session{Token: signed, UserID: userID, ExpiresAt: expires}, nil
}

// Verify checks signature, expiry, and the live session row, and
// returns the authenticated user id.
func (s Service) Verify(ctx context.Context, token string) (string, error) {
	userID, jti, err := s.parse(token)
	if err != nil {
		return "", ErrUnauthorized
	}
	sess, err := s.Repo.GetSessionByHash(ctx, repo.HashToken(jti))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrUnauthorized
		}
		return "", err
	}
	if sess.UserID != userID || sess.ExpiresAt.Before(s.now()) {
		return "", ErrUnauthorized
	}
	return userID, nil
}

// Revoke deletes the session row for the token. Unparseable tokens are
// treated as already signed out.
func (s Service) Revoke(ctx context.Context, token string) error {
	_, jti, err := s.parse(token)
	if err != nil {
		return nil
	}
	return s.Repo.DeleteSessionByHash(ctx, repo.HashToken(jti))
}

func (s Service) parse(token string) (userID, jti string, err error) {
	if strings.TrimSpace(s.Secret) == "" {
		return "", "", errors.New("jwt secret not configured")
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	c := &claims{}
	parsed, err := parser.ParseWithClaims(token, c, func(t *jwt.Token) (any, error) {
		return []byte(s.Secret), nil
	})
	if err != nil {
		return "", "", err
	}
	if !parsed.Valid || c.Subject == "" || c.ID == "" {
		return "", "", errors.New("invalid token")
	}
	return c.Subject, c.ID, nil
}
