// Package service runs the roster/ladder reconciliation pipeline end to end.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/rosterrank/internal/domain/identity"
	"github.com/okian/rosterrank/internal/domain/model"
	"github.com/okian/rosterrank/internal/domain/reconcile"
	"github.com/okian/rosterrank/internal/domain/summary"
	"github.com/okian/rosterrank/internal/domain/types"
	"github.com/okian/rosterrank/internal/fanout"
	"github.com/okian/rosterrank/pkg/logger"
	"github.com/okian/rosterrank/pkg/metrics"
)

// LevelRegion labels the region fan-out in metrics and errors.
const LevelRegion = "region"

// RosterSource supplies the tournament's teams.
type RosterSource interface {
	Teams(ctx context.Context, tournamentID string) ([]model.RosterTeam, error)
}

// LadderSource supplies ladder records per region, filtered by match.
type LadderSource interface {
	Authenticate(ctx context.Context) error
	FetchRegion(ctx context.Context, region string, match func(model.LadderRecord) bool) ([]model.LadderRecord, error)
}

// Stats describes the last completed run.
type Stats struct {
	RunID          string
	Teams          int
	Players        int
	RosterKeys     int
	Regions        int
	RegionsDropped int
	LadderRecords  int
	IndexSize      int
	MatchedPlayers int
	Duration       time.Duration
}

// Service reconciles a tournament roster against the ladders.
type Service struct {
	mu sync.RWMutex

	roster RosterSource
	ladder LadderSource

	// Configuration
	tournamentID string
	regions      []string
	regionPolicy fanout.Policy
	concurrency  int

	logger logger.Logger

	last Stats
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRosterSource sets where teams come from.
func WithRosterSource(r RosterSource) Option {
	return func(s *Service) {
		s.roster = r
	}
}

// WithLadderSource sets where ladder records come from.
func WithLadderSource(l LadderSource) Option {
	return func(s *Service) {
		s.ladder = l
	}
}

// WithTournament selects the tournament to reconcile.
func WithTournament(id string) Option {
	return func(s *Service) {
		s.tournamentID = id
	}
}

// WithRegions sets the regions scanned.
func WithRegions(regions []string) Option {
	return func(s *Service) {
		s.regions = append([]string(nil), regions...)
	}
}

// WithRegionPolicy sets the failure policy of the region fan-out.
func WithRegionPolicy(p fanout.Policy) Option {
	return func(s *Service) {
		s.regionPolicy = p
	}
}

// WithConcurrency bounds the regions fetched at once.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		s.concurrency = n
	}
}

// New constructs a Service. Regions default to us, eu and kr with a
// best-effort policy.
func New(opts ...Option) *Service {
	s := &Service{
		regions:      []string{"us", "eu", "kr"},
		regionPolicy: fanout.BestEffort,
		logger:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run fetches the roster and ladders and returns the ranked team summaries.
func (s *Service) Run(ctx context.Context) ([]types.TeamSummary, error) {
	start := time.Now()
	stats := Stats{RunID: uuid.NewString(), Regions: len(s.regions)}
	log := s.logger.With(logger.String("run_id", stats.RunID))

	out, err := s.run(ctx, log, &stats)

	stats.Duration = time.Since(start)
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultFailure
		log.Error(ctx, "run failed", logger.Error(err))
	} else {
		log.Info(ctx, "run finished",
			logger.Int("teams", stats.Teams),
			logger.Int("matched_players", stats.MatchedPlayers),
			logger.Any("duration", stats.Duration))
	}
	metrics.RecordRun(result, float64(stats.Duration.Microseconds())/1000)

	s.mu.Lock()
	s.last = stats
	s.mu.Unlock()
	return out, err
}

func (s *Service) run(ctx context.Context, log logger.Logger, stats *Stats) ([]types.TeamSummary, error) {
	switch {
	case s.roster == nil:
		return nil, ErrNoRosterSource
	case s.ladder == nil:
		return nil, ErrNoLadderSource
	case len(s.regions) == 0:
		return nil, ErrNoRegions
	}

	log.Debug(ctx, "run started",
		logger.Strings("regions", s.regions),
		logger.String("region_policy", s.regionPolicy.String()))

	teams, err := s.roster.Teams(ctx, s.tournamentID)
	if err != nil {
		return nil, wrap(ErrRoster, err)
	}
	set := identity.NewSet(teams)
	stats.Teams = len(teams)
	stats.RosterKeys = set.Len()
	for _, t := range teams {
		stats.Players += len(t.Players)
	}
	metrics.UpdateRoster(stats.Teams, stats.RosterKeys)
	log.Info(ctx, "roster loaded",
		logger.String("tournament_id", s.tournamentID),
		logger.Int("teams", stats.Teams),
		logger.Int("players", stats.Players),
		logger.Int("identities", stats.RosterKeys))

	if err := s.ladder.Authenticate(ctx); err != nil {
		return nil, wrap(ErrLadder, err)
	}

	var records []model.LadderRecord
	if set.Len() > 0 {
		records, err = fanout.Run(ctx, s.regionPolicy, s.regions,
			func(ctx context.Context, region string) ([]model.LadderRecord, error) {
				return s.ladder.FetchRegion(ctx, region, set.MatchesRecord)
			},
			fanout.WithLevel(LevelRegion),
			fanout.WithLimit(s.concurrency),
			fanout.WithOnError(func(err error) {
				stats.RegionsDropped++
				log.Warn(ctx, "region dropped", logger.Error(err))
			}))
		if err != nil {
			return nil, wrap(ErrLadder, err)
		}
	} else {
		log.Warn(ctx, "roster has no identities, skipping ladder scan")
	}
	stats.LadderRecords = len(records)

	idx := reconcile.Reconcile(records, set.MatchesRecord)
	stats.IndexSize = idx.Len()
	log.Debug(ctx, "ladder reconciled",
		logger.Int("records", stats.LadderRecords),
		logger.Int("identities", stats.IndexSize),
		logger.Int("regions_dropped", stats.RegionsDropped))

	out := summary.Summarize(teams, idx)
	for _, t := range out {
		stats.MatchedPlayers += t.RankedPlayers()
	}
	return out, nil
}

// Stats returns the counters of the last run.
func (s *Service) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}
