// Package config defines process configuration and its loading hooks.
//
// Conventions:
// - Defaults come from New(); Load layers file, .env and environment on top.
// - Validation errors wrap ErrInvalidConfig so callers can use errors.Is.
package config

import (
	"fmt"
	"strings"
)

// Fan-out failure policies accepted by RegionPolicy and LadderPolicy.
const (
	PolicyStrict     = "strict"
	PolicyBestEffort = "best_effort"
)

// Default values for optional configuration fields.
const (
	DefaultLocale            = "en_US"
	DefaultSeasonCount       = 1
	DefaultPageSize          = 500
	DefaultRosterURL         = "https://dtmwra1jsgyb0.cloudfront.net"
	DefaultLadderURL         = "https://{region}.api.blizzard.com"
	DefaultTokenURL          = "https://oauth.battle.net/token"
	DefaultHTTPTimeoutMS     = 30_000
	DefaultFetchConcurrency  = 32
	DefaultRequestsPerSecond = 90
	DefaultRequestBurst      = 10
)

// DefaultRegions and DefaultTiers are the ladder partitions scanned when none are configured.
var (
	DefaultRegions = []string{"us", "eu", "kr"}
	DefaultTiers   = []int{0, 1, 2, 3, 4, 5, 6}
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// TournamentID selects the roster to reconcile.
	TournamentID string `koanf:"tournament_id"`

	// ClientID and ClientSecret are the ladder service OAuth2 credentials.
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`

	// Locale is sent with every ladder request.
	Locale string `koanf:"locale"`

	// Regions, Tiers and SeasonCount define the ladder partitions.
	Regions     []string `koanf:"regions"`
	Tiers       []int    `koanf:"tiers"`
	SeasonCount int      `koanf:"season_count"`

	// PageSize is the roster page limit.
	PageSize int `koanf:"page_size"`

	RosterURL string `koanf:"roster_url"`
	// LadderURL may contain a {region} placeholder.
	LadderURL string `koanf:"ladder_url"`
	TokenURL  string `koanf:"token_url"`

	HTTPTimeoutMS int `koanf:"http_timeout_ms"`

	// FetchConcurrency bounds in-flight tasks per fan-out level.
	FetchConcurrency int `koanf:"fetch_concurrency"`

	// RequestsPerSecond and RequestBurst throttle ladder requests.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	RequestBurst      int     `koanf:"request_burst"`

	// RegionPolicy applies to the per-region fan-out, LadderPolicy to the
	// season, tier and ladder levels inside a region.
	RegionPolicy string `koanf:"region_policy"`
	LadderPolicy string `koanf:"ladder_policy"`

	// ReportXLSX, when set, also writes the summaries to a spreadsheet.
	ReportXLSX string `koanf:"report_xlsx"`

	// MetricsTextfile, when set, dumps Prometheus metrics after the run.
	MetricsTextfile string `koanf:"metrics_textfile"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Locale:            DefaultLocale,
		Regions:           append([]string(nil), DefaultRegions...),
		Tiers:             append([]int(nil), DefaultTiers...),
		SeasonCount:       DefaultSeasonCount,
		PageSize:          DefaultPageSize,
		RosterURL:         DefaultRosterURL,
		LadderURL:         DefaultLadderURL,
		TokenURL:          DefaultTokenURL,
		HTTPTimeoutMS:     DefaultHTTPTimeoutMS,
		FetchConcurrency:  DefaultFetchConcurrency,
		RequestsPerSecond: DefaultRequestsPerSecond,
		RequestBurst:      DefaultRequestBurst,
		RegionPolicy:      PolicyBestEffort,
		LadderPolicy:      PolicyStrict,
	}
}

// Validate checks that required fields are set and values are usable.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.TournamentID) == "":
		return fmt.Errorf("%w: tournament_id is required", ErrInvalidConfig)
	case c.ClientID == "" || c.ClientSecret == "":
		return fmt.Errorf("%w: client_id and client_secret are required", ErrInvalidConfig)
	case len(c.Regions) == 0:
		return fmt.Errorf("%w: regions must not be empty", ErrInvalidConfig)
	case len(c.Tiers) == 0:
		return fmt.Errorf("%w: tiers must not be empty", ErrInvalidConfig)
	case c.SeasonCount < 1:
		return fmt.Errorf("%w: season_count must be >= 1, got %d", ErrInvalidConfig, c.SeasonCount)
	case c.PageSize < 1:
		return fmt.Errorf("%w: page_size must be >= 1, got %d", ErrInvalidConfig, c.PageSize)
	case c.RosterURL == "" || c.LadderURL == "" || c.TokenURL == "":
		return fmt.Errorf("%w: roster_url, ladder_url and token_url must not be empty", ErrInvalidConfig)
	}
	for _, p := range []string{c.RegionPolicy, c.LadderPolicy} {
		if p != PolicyStrict && p != PolicyBestEffort {
			return fmt.Errorf("%w: unknown fan-out policy %q", ErrInvalidConfig, p)
		}
	}
	return nil
}

// applyDefaults fills list fields left empty after unmarshalling.
func (c *Config) applyDefaults() {
	if len(c.Regions) == 0 {
		c.Regions = append([]string(nil), DefaultRegions...)
	}
	if len(c.Tiers) == 0 {
		c.Tiers = append([]int(nil), DefaultTiers...)
	}
	for i, r := range c.Regions {
		c.Regions[i] = strings.ToLower(strings.TrimSpace(r))
	}
	c.RegionPolicy = strings.ToLower(strings.TrimSpace(c.RegionPolicy))
	c.LadderPolicy = strings.ToLower(strings.TrimSpace(c.LadderPolicy))
}
