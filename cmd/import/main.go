// Command import runs one historical import of Cumulus monthly log files
// into the configured archive.
//
// Usage:
//
//	go run ./cmd/import -profile import.yaml
//	go run ./cmd/import -profile import.yaml -dry-run
//	go run ./cmd/import -profile import.yaml -from 01/01/2016 -to 31/12/2016
//
// Runtime settings (LOG_LEVEL, LOG_FORMAT, METRICS_ADDR) come from the
// environment; everything describing the dataset comes from the profile.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/couchcryptid/station-log-import/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/station-log-import/internal/adapter/kafka"
	"github.com/couchcryptid/station-log-import/internal/adapter/sqlite"
	"github.com/couchcryptid/station-log-import/internal/config"
	"github.com/couchcryptid/station-log-import/internal/observability"
	"github.com/couchcryptid/station-log-import/internal/pipeline"
)

func main() {
	profilePath := flag.String("profile", "", "path to the import profile YAML (required)")
	dryRun := flag.Bool("dry-run", false, "parse and map everything but persist nothing")
	from := flag.String("from", "", "override the profile's lower date bound (dd/mm/yyyy)")
	to := flag.String("to", "", "override the profile's upper date bound (dd/mm/yyyy)")
	flag.Parse()

	if *profilePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	rt, err := config.LoadRuntime()
	if err != nil {
		slog.Error("failed to load runtime settings", "error", err)
		os.Exit(1)
	}
	logger := observability.NewLogger(rt)

	if err := run(*profilePath, *dryRun, *from, *to, rt, logger); err != nil {
		logger.Error("import failed", "error", err)
		os.Exit(1)
	}
}

func run(profilePath string, dryRun bool, from, to string, rt config.Runtime, logger *slog.Logger) error {
	profile, err := load(profilePath, dryRun, from, to)
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics()

	sink, closeSink, err := buildSink(profile, logger)
	if err != nil {
		return err
	}
	defer closeSink()

	importer, err := pipeline.New(profile, sink, logger, metrics)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The metrics endpoint is optional; imports are often one-shot CLI runs.
	if rt.MetricsAddr != "" {
		srv := httpadapter.NewServer(rt.MetricsAddr, importer, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("metrics server shutdown error", "error", err)
			}
		}()
	}

	return importer.Run(ctx)
}

// load reads the profile and applies command-line overrides. Overridden date
// bounds re-validate through the same path as profile values, so flag errors
// report like profile errors.
func load(path string, dryRun bool, from, to string) (*config.Profile, error) {
	profile, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if dryRun {
		profile.Import.DryRun = true
	}
	if from != "" || to != "" {
		if from != "" {
			profile.Import.From = from
		}
		if to != "" {
			profile.Import.To = to
		}
		if err := profile.Revalidate(); err != nil {
			return nil, err
		}
	}
	return profile, nil
}

func buildSink(profile *config.Profile, logger *slog.Logger) (pipeline.Sink, func(), error) {
	switch profile.Archive.Driver {
	case "sqlite":
		archive, err := sqlite.Open(profile.Archive.SQLitePath, logger)
		if err != nil {
			return nil, nil, err
		}
		return archive, func() {
			if err := archive.Close(); err != nil {
				logger.Error("archive close error", "error", err)
			}
		}, nil
	case "kafka":
		writer := kafkaadapter.NewWriter(profile.Archive.KafkaBrokers, profile.Archive.KafkaTopic, logger)
		return writer, func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}, nil
	default:
		// config.Load validates the driver; this is unreachable.
		return nil, nil, fmt.Errorf("unknown archive driver %q", profile.Archive.Driver)
	}
}
