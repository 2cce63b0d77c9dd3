// Package sessions issues and verifies signed session tokens carried in an
// HTTP cookie. A token is an HS256 JWT whose subject is the user id.
package sessions

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrazmi/tasklists/sdk/environment"
)

var (
	ErrNoSession      = errors.New("no session")
	ErrInvalidSession = errors.New("invalid session")
)

const issuer = "tasklists"

// Config is the exportable session configuration.
type Config struct {
	SigningKey string        `env:"SESSION_SIGNING_KEY" required:"true"`
	CookieName string        `env:"SESSION_COOKIE_NAME" default:"tasklists_session"`
	TTL        time.Duration `env:"SESSION_TTL" default:"168h"`
	Secure     bool          `env:"SESSION_SECURE_COOKIE" default:"false"`
}

// Session is the verified content of a token.
type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
}

type Manager struct {
	key    []byte
	cookie string
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// Option customizes a Manager.
type Option func(*Manager)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

func NewFromEnv(prefix string, opts ...Option) (*Manager, error) {
	var cfg Config
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing session config: %w", err)
	}
	return New(cfg, opts...)
}

func New(cfg Config, opts ...Option) (*Manager, error) {
	if len(cfg.SigningKey) < 16 {
		return nil, errors.New("session signing key must be at least 16 bytes")
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "tasklists_session"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 7 * 24 * time.Hour
	}

	m := &Manager{
		key:    []byte(cfg.SigningKey),
		cookie: cfg.CookieName,
		ttl:    cfg.TTL,
		secure: cfg.Secure,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// CookieName returns the name of the session cookie.
func (m *Manager) CookieName() string {
	return m.cookie
}

// Sign creates a token for userID with a fresh session id.
func (m *Manager) Sign(userID int64) (string, Session, error) {
	now := m.now()
	s := Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.Add(m.ttl).Truncate(time.Second),
	}

	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   strconv.FormatInt(userID, 10),
		ID:        s.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", Session{}, fmt.Errorf("sign session: %w", err)
	}
	return token, s, nil
}

// Parse verifies token and returns its session.
func (m *Manager) Parse(token string) (Session, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return m.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return Session{}, fmt.Errorf("%w: subject: %w", ErrInvalidSession, err)
	}

	return Session{
		ID:        claims.ID,
		UserID:    userID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Issue writes a new session cookie for userID, replacing any existing one.
func (m *Manager) Issue(w http.ResponseWriter, userID int64) (Session, error) {
	token, s, err := m.Sign(userID)
	if err != nil {
		return Session{}, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie,
		Value:    token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		MaxAge:   int(m.ttl / time.Second),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return s, nil
}

// Resolve reads and verifies the session cookie on r.
func (m *Manager) Resolve(r *http.Request) (Session, error) {
	c, err := r.Cookie(m.cookie)
	if err != nil || c.Value == "" {
		return Session{}, ErrNoSession
	}
	return m.Parse(c.Value)
}

// Clear expires the session cookie.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
