package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/rosterrank/internal/adapters/report"
	app "github.com/okian/rosterrank/internal/app"
	"github.com/okian/rosterrank/internal/config"
	"github.com/okian/rosterrank/pkg/logger"
	"github.com/okian/rosterrank/pkg/metrics"
)

// Process exit codes.
const (
	exitOK      = 0
	exitFailure = 1
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one reconciliation. Summaries go to stdout, logs to stderr.
func run(ctx context.Context, stdout, stderr io.Writer) int {
	if err := logger.InitWithWriter(stderr); err != nil {
		_, _ = io.WriteString(stderr, "failed to initialize logging: "+err.Error()+"\n")
		return exitFailure
	}
	defer func() {
		_ = logger.Sync()
	}()
	log := logger.Get()

	// Load configuration (defaults -> optional file -> .env -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		log.Error(ctx, "failed to load config", logger.Error(err))
		return exitFailure
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, err := app.NewFromConfig(ctx, cfg, log.Named("pipeline"))
	if err != nil {
		log.Error(ctx, "failed to build pipeline", logger.Error(err))
		return exitFailure
	}

	summaries, runErr := svc.Run(ctx)
	defer writeMetrics(ctx, log, cfg.MetricsTextfile)
	if runErr != nil {
		return exitFailure
	}

	if err := report.WriteJSON(stdout, summaries); err != nil {
		log.Error(ctx, "failed to write summaries", logger.Error(err))
		return exitFailure
	}

	if cfg.ReportXLSX != "" {
		if err := report.WriteXLSX(cfg.ReportXLSX, summaries); err != nil {
			log.Error(ctx, "failed to write xlsx report", logger.Error(err))
			return exitFailure
		}
		log.Info(ctx, "xlsx report written", logger.String("path", cfg.ReportXLSX))
	}
	return exitOK
}

// writeMetrics dumps the registry when a textfile path is configured.
func writeMetrics(ctx context.Context, log logger.Logger, path string) {
	if path == "" {
		return
	}
	if err := metrics.WriteTextfile(path); err != nil {
		log.Warn(ctx, "failed to write metrics textfile", logger.String("path", path), logger.Error(err))
	}
}
