package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hash:" + password, nil }

func (plainHasher) Compare(hash, password string) error {
	if hash != "hash:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type seqTokens struct{ n int }

func (g *seqTokens) NewToken() (string, error) {
	g.n++
	return fmt.Sprintf("token-%d", g.n), nil
}

func newService(now *time.Time) *Service {
	return &Service{
		AdminUser:    "admin",
		AdminPwdHash: "hash:s3cret",
		Passwords:    plainHasher{},
		Tokens:       &seqTokens{},
		SessionTTL:   time.Hour,
		Now:          func() time.Time { return *now },
	}
}

func TestLoginAndResolve(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	svc := newService(&now)
	ctx := context.Background()

	token, err := svc.Login(ctx, "admin", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	sess, err := svc.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if sess.Token != token {
		t.Fatalf("unexpected session %+v", sess)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	svc := newService(&now)
	ctx := context.Background()

	if _, err := svc.Login(ctx, "admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "root", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestLoginRequiresConfiguration(t *testing.T) {
	svc := &Service{Passwords: plainHasher{}, Tokens: &seqTokens{}}
	if _, err := svc.Login(context.Background(), "admin", "x"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestSessionExpiry(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	svc := newService(&now)
	ctx := context.Background()

	token, err := svc.Login(ctx, "admin", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	now = now.Add(2 * time.Hour)
	if _, err := svc.Resolve(ctx, token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	// Expired sessions are dropped; a second resolve sees nothing.
	if _, err := svc.Resolve(ctx, token); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after expiry cleanup, got %v", err)
	}
}

func TestLogoutDropsSession(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	svc := newService(&now)
	ctx := context.Background()

	token, _ := svc.Login(ctx, "admin", "s3cret")
	svc.Logout(ctx, token)
	if _, err := svc.Resolve(ctx, token); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
