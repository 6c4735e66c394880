package config

import (
	"os"
	"strconv"
	"time"

	"agora/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Arena    ArenaConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port      string
	JWTSecret string
}

// ArenaConfig holds debate arena policy settings
type ArenaConfig struct {
	MinArgumentChars          int
	MaxArgumentChars          int
	MaxArgumentsPerSide       int
	ChallengeTTL              time.Duration
	AllowVotesAfterCompletion bool
	AllowVoteChanges          bool
	GateVotes                 bool
	StrictWinnerValidation    bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}
	secret := os.Getenv("ARENA_JWT_SECRET")
	if secret == "" {
		return nil, errors.ConfigInvalid("ARENA_JWT_SECRET is required")
	}

	cfg := &Config{
		Database: DatabaseConfig{URL: dbURL},
		Server: ServerConfig{
			Port:      getEnvOrDefault("PORT", "8080"),
			JWTSecret: secret,
		},
		Arena: ArenaConfig{
			MinArgumentChars:          getEnvIntOrDefault("ARENA_MIN_ARGUMENT_CHARS", 500),
			MaxArgumentChars:          getEnvIntOrDefault("ARENA_MAX_ARGUMENT_CHARS", 3000),
			MaxArgumentsPerSide:       getEnvIntOrDefault("ARENA_MAX_ARGUMENTS_PER_SIDE", 5),
			ChallengeTTL:              getEnvDurationOrDefault("ARENA_CHALLENGE_TTL", 5*time.Minute),
			AllowVotesAfterCompletion: getEnvBool("ARENA_ALLOW_VOTES_AFTER_COMPLETION"),
			AllowVoteChanges:          getEnvBool("ARENA_ALLOW_VOTE_CHANGES"),
			GateVotes:                 getEnvBool("ARENA_GATE_VOTES"),
			StrictWinnerValidation:    getEnvBoolOrDefault("ARENA_STRICT_WINNER_VALIDATION", true),
		},
	}

	if cfg.Arena.MinArgumentChars < 1 || cfg.Arena.MaxArgumentChars < cfg.Arena.MinArgumentChars {
		return nil, errors.ConfigInvalid("argument length bounds are inconsistent")
	}
	if cfg.Arena.ChallengeTTL <= 0 {
		return nil, errors.ConfigInvalid("ARENA_CHALLENGE_TTL must be positive")
	}
	return cfg, nil
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvIntOrDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDurationOrDefault(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}

func getEnvBoolOrDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
