package config

import (
	"testing"
	"time"
)

func TestLoadMemoryModeDefaults(t *testing.T) {
	t.Setenv("STORAGE_MODE", "memory")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.HTTPAddr)
	}
	if cfg.SessionTTL != 12*time.Hour {
		t.Fatalf("unexpected session ttl %v", cfg.SessionTTL)
	}
	if len(cfg.RetryBackoff) != 3 {
		t.Fatalf("default backoff should have 3 steps, got %d", len(cfg.RetryBackoff))
	}
}

func TestLoadMongoModeRequiresURI(t *testing.T) {
	t.Setenv("STORAGE_MODE", "mongo")
	t.Setenv("MONGO_URI", "")

	if _, err := Load(); err == nil {
		t.Fatal("mongo mode without MONGO_URI must fail")
	}
}

func TestLoadRejectsUnknownStorageMode(t *testing.T) {
	t.Setenv("STORAGE_MODE", "postgres")

	if _, err := Load(); err == nil {
		t.Fatal("unknown storage mode must fail")
	}
}

func TestLoadParsesDurations(t *testing.T) {
	t.Setenv("STORAGE_MODE", "memory")
	t.Setenv("OUTBOX_POLL_INTERVAL", "250ms")
	t.Setenv("ADMIN_SESSION_TTL", "30m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.OutboxPollInterval != 250*time.Millisecond {
		t.Fatalf("unexpected poll interval %v", cfg.OutboxPollInterval)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("unexpected session ttl %v", cfg.SessionTTL)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("STORAGE_MODE", "memory")
	t.Setenv("IDEMP_TTL", "soon")

	if _, err := Load(); err == nil {
		t.Fatal("invalid duration must fail")
	}
}
