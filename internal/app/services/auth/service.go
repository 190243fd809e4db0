package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrSessionNotFound    = errors.New("auth: session not found")
	ErrSessionExpired     = errors.New("auth: session expired")
	ErrNotConfigured      = errors.New("auth: admin credentials not configured")
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenGenerator interface {
	NewToken() (string, error)
}

type Session struct {
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Service guards the back-office. There is a single admin principal whose
// bcrypt hash comes from configuration; sessions are opaque random tokens
// held in memory.
type Service struct {
	AdminUser    string
	AdminPwdHash string
	Passwords    PasswordHasher
	Tokens       TokenGenerator
	SessionTTL   time.Duration
	Logger       *slog.Logger
	Now          func() time.Time

	mu       sync.RWMutex
	sessions map[string]Session
}

func (s *Service) Login(ctx context.Context, user, password string) (string, error) {
	if s.AdminUser == "" || s.AdminPwdHash == "" {
		return "", ErrNotConfigured
	}
	if s.Passwords == nil || s.Tokens == nil {
		return "", ErrNotConfigured
	}
	if strings.TrimSpace(user) != s.AdminUser {
		return "", ErrInvalidCredentials
	}
	if err := s.Passwords.Compare(s.AdminPwdHash, password); err != nil {
		return "", ErrInvalidCredentials
	}
	token, err := s.Tokens.NewToken()
	if err != nil {
		return "", err
	}
	now := s.now()
	ttl := s.SessionTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	s.mu.Lock()
	if s.sessions == nil {
		s.sessions = make(map[string]Session)
	}
	s.sessions[token] = Session{Token: token, CreatedAt: now, ExpiresAt: now.Add(ttl)}
	s.mu.Unlock()
	if s.Logger != nil {
		s.Logger.Info("admin logged in", "user", s.AdminUser)
	}
	return token, nil
}

func (s *Service) Resolve(ctx context.Context, token string) (Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, ErrSessionNotFound
	}
	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if s.now().After(sess.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return Session{}, ErrSessionExpired
	}
	return sess, nil
}

func (s *Service) Logout(ctx context.Context, token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
