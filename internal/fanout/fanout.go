// Package fanout runs independent fetches concurrently and flattens their
// results under one of two failure policies.
//
// Strict aborts on the first failure and cancels the remaining tasks.
// BestEffort collects a result-or-error per task and keeps only successes.
// In both cases the order of the returned values is unspecified.
package fanout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/rosterrank/pkg/metrics"
)

// Policy selects how task failures are handled.
type Policy int

const (
	// Strict propagates the first task failure to the caller.
	Strict Policy = iota
	// BestEffort drops failed tasks and returns what completed.
	BestEffort
)

// ParsePolicy maps a configuration value to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict":
		return Strict, nil
	case "best_effort", "best-effort", "besteffort":
		return BestEffort, nil
	default:
		return Strict, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

func (p Policy) String() string {
	switch p {
	case Strict:
		return "strict"
	case BestEffort:
		return "best_effort"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// FetchFunc fetches the values of one partition.
type FetchFunc[K any, V any] func(ctx context.Context, key K) ([]V, error)

// outcome is the result-or-error of one best-effort task.
type outcome[V any] struct {
	values []V
	err    error
}

// Run fetches every key concurrently and returns the flattened values.
func Run[K any, V any](ctx context.Context, policy Policy, keys []K, fetch FetchFunc[K, V], opts ...Option) ([]V, error) {
	if fetch == nil {
		return nil, ErrNilFetch
	}
	o := newOptions(opts...)

	switch policy {
	case Strict:
		return runStrict(ctx, keys, fetch, o)
	case BestEffort:
		return runBestEffort(ctx, keys, fetch, o)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownPolicy, policy)
	}
}

func runStrict[K any, V any](ctx context.Context, keys []K, fetch FetchFunc[K, V], o *options) ([]V, error) {
	g, gctx := errgroup.WithContext(ctx)
	if o.limit > 0 {
		g.SetLimit(o.limit)
	}

	results := make([][]V, len(keys))
	for i, key := range keys {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			values, err := fetch(gctx, key)
			if err != nil {
				metrics.RecordFanoutTask(o.level, metrics.ResultFailure, sinceMs(start))
				return &TaskError{Level: o.level, Key: fmt.Sprint(key), Err: err}
			}
			metrics.RecordFanoutTask(o.level, metrics.ResultSuccess, sinceMs(start))
			results[i] = values
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return flatten(results), nil
}

func runBestEffort[K any, V any](ctx context.Context, keys []K, fetch FetchFunc[K, V], o *options) ([]V, error) {
	g := new(errgroup.Group)
	if o.limit > 0 {
		g.SetLimit(o.limit)
	}

	outcomes := make([]outcome[V], len(keys))
	for i, key := range keys {
		g.Go(func() error {
			start := time.Now()
			values, err := fetch(ctx, key)
			if err != nil {
				metrics.RecordFanoutTask(o.level, metrics.ResultDropped, sinceMs(start))
				outcomes[i].err = &TaskError{Level: o.level, Key: fmt.Sprint(key), Err: err}
				return nil
			}
			metrics.RecordFanoutTask(o.level, metrics.ResultSuccess, sinceMs(start))
			outcomes[i].values = values
			return nil
		})
	}
	_ = g.Wait() // tasks never return errors; failures live in outcomes

	// Cancellation of the caller is not a partition failure.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	succeeded := make([][]V, 0, len(outcomes))
	for _, out := range outcomes {
		if out.err != nil {
			if o.onError != nil {
				o.onError(out.err)
			}
			continue
		}
		succeeded = append(succeeded, out.values)
	}
	return flatten(succeeded), nil
}

func flatten[V any](parts [][]V) []V {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]V, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func sinceMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
