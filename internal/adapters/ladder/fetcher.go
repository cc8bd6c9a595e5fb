package ladder

import (
	"context"
	"sort"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/okian/rosterrank/internal/domain/model"
	"github.com/okian/rosterrank/internal/fanout"
	"github.com/okian/rosterrank/pkg/logger"
)

const tracerName = "github.com/okian/rosterrank/internal/adapters/ladder"

// Fan-out level names used in metrics, spans and errors.
const (
	LevelLeague = "league"
	LevelLadder = "ladder"
)

// DefaultTiers are the league ids scanned per season.
var DefaultTiers = []int{0, 1, 2, 3, 4, 5, 6}

// API is the subset of the ladder service the Fetcher walks.
type API interface {
	Authenticate(ctx context.Context) error
	CurrentSeason(ctx context.Context, region string) (int, error)
	LadderIDs(ctx context.Context, region string, season, tier int) ([]int, error)
	Ladder(ctx context.Context, region string, ladderID int) ([]model.LadderRecord, error)
}

// Fetcher walks season, league and ladder partitions of a region.
type Fetcher struct {
	api         API
	seasonCount int
	tiers       []int
	policy      fanout.Policy
	limit       int
	tracer      trace.Tracer
	log         logger.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithSeasonCount scans the current season and the n-1 before it.
func WithSeasonCount(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.seasonCount = n
		}
	}
}

// WithTiers sets the league ids scanned per season.
func WithTiers(tiers []int) FetcherOption {
	return func(f *Fetcher) {
		if len(tiers) > 0 {
			f.tiers = append([]int(nil), tiers...)
		}
	}
}

// WithPolicy sets the failure policy of the league and ladder levels.
func WithPolicy(p fanout.Policy) FetcherOption {
	return func(f *Fetcher) {
		f.policy = p
	}
}

// WithConcurrency bounds in-flight requests per level.
func WithConcurrency(n int) FetcherOption {
	return func(f *Fetcher) {
		f.limit = n
	}
}

// WithTracerProvider sets the provider spans are created from.
func WithTracerProvider(tp trace.TracerProvider) FetcherOption {
	return func(f *Fetcher) {
		if tp != nil {
			f.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) FetcherOption {
	return func(f *Fetcher) {
		if l != nil {
			f.log = l
		}
	}
}

// NewFetcher creates a Fetcher over api.
func NewFetcher(api API, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		api:         api,
		seasonCount: 1,
		tiers:       append([]int(nil), DefaultTiers...),
		policy:      fanout.Strict,
		tracer:      otel.Tracer(tracerName),
		log:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Authenticate acquires the API token up front.
func (f *Fetcher) Authenticate(ctx context.Context) error {
	if f.api == nil {
		return ErrNoAPI
	}
	return f.api.Authenticate(ctx)
}

type leagueKey struct {
	season int
	tier   int
}

func (k leagueKey) String() string {
	return "season=" + strconv.Itoa(k.season) + " tier=" + strconv.Itoa(k.tier)
}

// FetchRegion returns every record of the region's recent ladders that
// satisfies match. A nil match keeps everything.
func (f *Fetcher) FetchRegion(ctx context.Context, region string, match func(model.LadderRecord) bool) ([]model.LadderRecord, error) {
	if f.api == nil {
		return nil, ErrNoAPI
	}

	ctx, span := f.tracer.Start(ctx, "ladder.FetchRegion", trace.WithAttributes(attribute.String("region", region)))
	defer span.End()

	log := f.log.With(logger.String("region", region))

	current, err := f.api.CurrentSeason(ctx, region)
	if err != nil {
		fail(span, err)
		return nil, err
	}
	seasons := RecentSeasons(current, f.seasonCount)
	span.SetAttributes(attribute.IntSlice("seasons", seasons))

	keys := make([]leagueKey, 0, len(seasons)*len(f.tiers))
	for _, s := range seasons {
		for _, t := range f.tiers {
			keys = append(keys, leagueKey{season: s, tier: t})
		}
	}

	onDrop := func(level string) fanout.Option {
		return fanout.WithOnError(func(err error) {
			log.Warn(ctx, "partition dropped", logger.String("level", level), logger.Error(err))
		})
	}

	ladderIDs, err := fanout.Run(ctx, f.policy, keys, func(ctx context.Context, k leagueKey) ([]int, error) {
		ctx, span := f.tracer.Start(ctx, "ladder.League", trace.WithAttributes(
			attribute.Int("season", k.season), attribute.Int("tier", k.tier)))
		defer span.End()

		ids, err := f.api.LadderIDs(ctx, region, k.season, k.tier)
		if err != nil {
			fail(span, err)
		}
		return ids, err
	}, fanout.WithLevel(LevelLeague), fanout.WithLimit(f.limit), onDrop(LevelLeague))
	if err != nil {
		fail(span, err)
		return nil, err
	}
	ladderIDs = uniqueInts(ladderIDs)
	span.SetAttributes(attribute.Int("ladders", len(ladderIDs)))

	records, err := fanout.Run(ctx, f.policy, ladderIDs, func(ctx context.Context, id int) ([]model.LadderRecord, error) {
		all, err := f.api.Ladder(ctx, region, id)
		if err != nil {
			return nil, err
		}
		kept := make([]model.LadderRecord, 0, len(all))
		for _, rec := range all {
			if match == nil || match(rec) {
				kept = append(kept, rec)
			}
		}
		return kept, nil
	}, fanout.WithLevel(LevelLadder), fanout.WithLimit(f.limit), onDrop(LevelLadder))
	if err != nil {
		fail(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("records", len(records)))
	log.Info(ctx, "region fetched",
		logger.Int("ladders", len(ladderIDs)),
		logger.Int("records", len(records)))
	return records, nil
}

// RecentSeasons lists current, current-1, ... for count seasons, skipping
// ids that are not positive.
func RecentSeasons(current, count int) []int {
	seasons := make([]int, 0, count)
	for i := 0; i < count; i++ {
		if id := current - i; id > 0 {
			seasons = append(seasons, id)
		}
	}
	return seasons
}

func uniqueInts(in []int) []int {
	seen := make(map[int]struct{}, len(in))
	out := make([]int, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

func fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
