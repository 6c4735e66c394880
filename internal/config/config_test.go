package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/arena_test")
	t.Setenv("ARENA_JWT_SECRET", "test-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Arena.MinArgumentChars != 500 || cfg.Arena.MaxArgumentChars != 3000 {
		t.Errorf("unexpected argument bounds: %d-%d", cfg.Arena.MinArgumentChars, cfg.Arena.MaxArgumentChars)
	}
	if cfg.Arena.MaxArgumentsPerSide != 5 {
		t.Errorf("expected default cap 5, got %d", cfg.Arena.MaxArgumentsPerSide)
	}
	if cfg.Arena.ChallengeTTL != 5*time.Minute {
		t.Errorf("expected default TTL 5m, got %s", cfg.Arena.ChallengeTTL)
	}
	if cfg.Arena.AllowVotesAfterCompletion || cfg.Arena.AllowVoteChanges || cfg.Arena.GateVotes {
		t.Error("policy flags must default to off")
	}
	if !cfg.Arena.StrictWinnerValidation {
		t.Error("strict winner validation must default to on")
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9090")
	t.Setenv("ARENA_MIN_ARGUMENT_CHARS", "20")
	t.Setenv("ARENA_MAX_ARGUMENT_CHARS", "200")
	t.Setenv("ARENA_CHALLENGE_TTL", "90s")
	t.Setenv("ARENA_ALLOW_VOTE_CHANGES", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Arena.MinArgumentChars != 20 || cfg.Arena.MaxArgumentChars != 200 {
		t.Errorf("unexpected argument bounds: %d-%d", cfg.Arena.MinArgumentChars, cfg.Arena.MaxArgumentChars)
	}
	if cfg.Arena.ChallengeTTL != 90*time.Second {
		t.Errorf("expected TTL 90s, got %s", cfg.Arena.ChallengeTTL)
	}
	if !cfg.Arena.AllowVoteChanges {
		t.Error("expected vote changes enabled")
	}
}

func TestLoadRequiredKeys(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ARENA_JWT_SECRET", "test-secret")
	if _, err := Load(); err == nil {
		t.Error("expected error without DATABASE_URL")
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/arena_test")
	t.Setenv("ARENA_JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Error("expected error without ARENA_JWT_SECRET")
	}
}

func TestLoadRejectsInconsistentBounds(t *testing.T) {
	setRequired(t)
	t.Setenv("ARENA_MIN_ARGUMENT_CHARS", "500")
	t.Setenv("ARENA_MAX_ARGUMENT_CHARS", "100")
	if _, err := Load(); err == nil {
		t.Error("expected error for max below min")
	}
}
