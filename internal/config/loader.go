package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names understood by Load.
const (
	EnvPrefix  = "ROSTERRANK_"
	EnvConfig  = "ROSTERRANK_CONFIG"
	EnvEnvFile = "ROSTERRANK_ENV_FILE"

	defaultEnvFile = ".env"
)

// legacyEnv maps unprefixed variable names used by older deployments.
var legacyEnv = map[string]string{
	"BATTLE_NET_CLIENT_ID":     "client_id",
	"BATTLE_NET_CLIENT_SECRET": "client_secret",
	"TOURNAMENT_ID":            "tournament_id",
}

// listKeys are split on commas when read from the environment.
var listKeys = map[string]bool{
	"regions": true,
	"tiers":   true,
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. YAML file if ROSTERRANK_CONFIG is set
//  3. .env file (ROSTERRANK_ENV_FILE, or ./.env when present); never overrides real env
//  4. legacy env names (BATTLE_NET_CLIENT_ID, BATTLE_NET_CLIENT_SECRET, TOURNAMENT_ID)
//  5. env (prefix ROSTERRANK_)
func Load(_ context.Context) (*Config, error) {
	base := New()
	k := koanf.New(".")

	if path := os.Getenv(EnvConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	legacy := env.ProviderWithValue("", ".", func(key, value string) (string, any) {
		return legacyEnv[key], value
	})
	if err := k.Load(legacy, nil); err != nil {
		return nil, fmt.Errorf("%w: legacy env: %w", ErrLoadConfig, err)
	}

	// ROSTERRANK_PAGE_SIZE -> page_size (flat keys, underscores preserved).
	prefixed := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, any) {
		key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		if key == "config" || key == "env_file" {
			return "", nil
		}
		if listKeys[key] {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(prefixed, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	// Lists are cleared before unmarshalling so a shorter configured list
	// replaces the default instead of overwriting its prefix.
	cfg := *base
	cfg.Regions, cfg.Tiers = nil, nil
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotEnv exports variables from the .env file into the process
// environment without overriding variables that are already set.
func loadDotEnv() error {
	path := os.Getenv(EnvEnvFile)
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: env file %s: %w", ErrLoadConfig, path, err)
	}
	return nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
