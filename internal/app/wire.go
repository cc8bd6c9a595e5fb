package service

import (
	"context"
	"net/http"
	"time"

	"github.com/okian/rosterrank/internal/adapters/ladder"
	"github.com/okian/rosterrank/internal/adapters/roster"
	"github.com/okian/rosterrank/internal/config"
	"github.com/okian/rosterrank/internal/fanout"
	"github.com/okian/rosterrank/pkg/logger"
)

// NewFromConfig builds a Service with HTTP roster and ladder sources
// configured from cfg. Options are applied after the configured ones.
func NewFromConfig(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...Option) (*Service, error) {
	if cfg == nil {
		return nil, config.ErrInvalidConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	regionPolicy, err := fanout.ParsePolicy(cfg.RegionPolicy)
	if err != nil {
		return nil, err
	}
	ladderPolicy, err := fanout.ParsePolicy(cfg.LadderPolicy)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}

	timeout := time.Duration(cfg.HTTPTimeoutMS) * time.Millisecond
	hc := &http.Client{Timeout: timeout}

	rosterClient := roster.NewClient(cfg.RosterURL,
		roster.WithHTTPClient(hc),
		roster.WithPageSize(cfg.PageSize),
		roster.WithLogger(log.Named("roster")))

	tokens := ladder.TokenSource(ctx, ladder.Credentials{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
	}, hc)
	ladderClient := ladder.NewClient(cfg.LadderURL, tokens,
		ladder.WithHTTPClient(hc),
		ladder.WithLocale(cfg.Locale),
		ladder.WithRateLimit(cfg.RequestsPerSecond, cfg.RequestBurst),
		ladder.WithClientLogger(log.Named("ladder")))
	fetcher := ladder.NewFetcher(ladderClient,
		ladder.WithSeasonCount(cfg.SeasonCount),
		ladder.WithTiers(cfg.Tiers),
		ladder.WithPolicy(ladderPolicy),
		ladder.WithConcurrency(cfg.FetchConcurrency),
		ladder.WithLogger(log.Named("ladder")))

	base := []Option{
		WithLogger(log),
		WithRosterSource(rosterClient),
		WithLadderSource(fetcher),
		WithTournament(cfg.TournamentID),
		WithRegions(cfg.Regions),
		WithRegionPolicy(regionPolicy),
		WithConcurrency(cfg.FetchConcurrency),
	}
	return New(append(base, opts...)...), nil
}
