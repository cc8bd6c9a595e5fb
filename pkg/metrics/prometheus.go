// Package metrics provides Prometheus metrics for the rosterrank pipeline.
package metrics

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fan-out task outcomes.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultDropped = "dropped"
)

// Manager manages all Prometheus metrics for the pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Fan-out
	fanoutTasks   *prometheus.CounterVec
	fanoutLatency *prometheus.HistogramVec

	// Providers
	httpRequests *prometheus.CounterVec
	rosterPages  prometheus.Counter
	rosterTeams  prometheus.Gauge
	rosterKeys   prometheus.Gauge

	// Reconciliation
	ladderRecordsAdmitted  prometheus.Counter
	ladderRecordsDiscarded *prometheus.CounterVec
	indexSize              prometheus.Gauge

	// Aggregation
	playersMatched  *prometheus.CounterVec
	teamsSummarized prometheus.Gauge

	runDuration prometheus.Histogram
	runs        *prometheus.CounterVec
}

var (
	globalMu       sync.RWMutex
	globalManager  *Manager             //nolint:gochecknoglobals // singleton metrics manager
	customRegistry *prometheus.Registry //nolint:gochecknoglobals // registry backing the singleton
)

func init() { //nolint:gochecknoinits // global metrics setup
	Reset()
}

// Reset replaces the global registry and manager with fresh instances.
func Reset() {
	reg := prometheus.NewRegistry()
	m := NewManager(WithPrometheusRegistry(reg))

	globalMu.Lock()
	customRegistry = reg
	globalManager = m
	globalMu.Unlock()
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "rosterrank",
		subsystem:        "pipeline",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // flat list of metric definitions
	auto := promauto.With(m.registry)

	m.fanoutTasks = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fanout_tasks_total",
		Help:      "Fan-out tasks by level and outcome",
	}, []string{"level", "result"})

	m.fanoutLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fanout_task_duration_milliseconds",
		Help:      "Duration of individual fan-out tasks in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"level"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "provider_http_requests_total",
		Help:      "Outbound provider requests by provider and status code",
	}, []string{"provider", "status_code"})

	m.rosterPages = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "roster_pages_total",
		Help:      "Roster pages requested, including the terminating empty page",
	})

	m.rosterTeams = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "roster_teams",
		Help:      "Teams in the fetched tournament roster",
	})

	m.rosterKeys = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "roster_identity_keys",
		Help:      "Distinct identity keys derived from the roster",
	})

	m.ladderRecordsAdmitted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ladder_records_admitted_total",
		Help:      "Ladder records admitted into the reconciled index",
	})

	m.ladderRecordsDiscarded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ladder_records_discarded_total",
		Help:      "Ladder records discarded by reason",
	}, []string{"reason"})

	m.indexSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reconciled_index_size",
		Help:      "Identities held by the reconciled index",
	})

	m.playersMatched = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "players_total",
		Help:      "Roster players by match kind (primary, legacy_alias, none)",
	}, []string{"match"})

	m.teamsSummarized = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "teams_summarized",
		Help:      "Team summaries emitted by the last run",
	})

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_duration_milliseconds",
		Help:      "End-to-end pipeline duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.runs = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_total",
		Help:      "Pipeline runs by outcome",
	}, []string{"result"})
}

func manager() *Manager {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalManager
}

// RecordFanoutTask counts one fan-out task outcome and its duration.
func RecordFanoutTask(level, result string, latencyMs float64) {
	m := manager()
	m.fanoutTasks.WithLabelValues(level, result).Inc()
	m.fanoutLatency.WithLabelValues(level).Observe(latencyMs)
}

// RecordHTTPRequest counts an outbound provider request. Transport failures use status 0.
func RecordHTTPRequest(provider string, statusCode int) {
	manager().httpRequests.WithLabelValues(provider, strconv.Itoa(statusCode)).Inc()
}

// RecordRosterPage counts a requested roster page.
func RecordRosterPage() {
	manager().rosterPages.Inc()
}

// UpdateRoster sets the roster size gauges.
func UpdateRoster(teams, keys int) {
	m := manager()
	m.rosterTeams.Set(float64(teams))
	m.rosterKeys.Set(float64(keys))
}

// RecordLadderRecordAdmitted counts a record that reached the index fold.
func RecordLadderRecordAdmitted() {
	manager().ladderRecordsAdmitted.Inc()
}

// RecordLadderRecordDiscarded counts a record dropped before or during the fold.
func RecordLadderRecordDiscarded(reason string) {
	manager().ladderRecordsDiscarded.WithLabelValues(reason).Inc()
}

// UpdateIndexSize sets the reconciled index size.
func UpdateIndexSize(n int) {
	manager().indexSize.Set(float64(n))
}

// RecordPlayerMatch counts a summarized player by match kind.
func RecordPlayerMatch(kind string) {
	manager().playersMatched.WithLabelValues(kind).Inc()
}

// UpdateTeamsSummarized sets the number of emitted team summaries.
func UpdateTeamsSummarized(n int) {
	manager().teamsSummarized.Set(float64(n))
}

// RecordRun records a finished pipeline run.
func RecordRun(result string, latencyMs float64) {
	m := manager()
	m.runs.WithLabelValues(result).Inc()
	m.runDuration.Observe(latencyMs)
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return customRegistry
}

// WriteTextfile dumps the global registry in the text exposition format,
// suitable for the node-exporter textfile collector.
func WriteTextfile(path string) error {
	if path == "" {
		return ErrNoPath
	}
	if err := prometheus.WriteToTextfile(path, GetRegistry()); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteTextfile, err)
	}
	return nil
}
