// Package pipeline orchestrates an import run: period catalog order, lazy
// field-map construction, timestamp synthesis, date-range filtering, and
// batched delivery to the archive sink.
package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/station-log-import/internal/catalog"
	"github.com/couchcryptid/station-log-import/internal/config"
	"github.com/couchcryptid/station-log-import/internal/domain"
	"github.com/couchcryptid/station-log-import/internal/mapping"
	"github.com/couchcryptid/station-log-import/internal/observability"
	"github.com/couchcryptid/station-log-import/internal/reader"
	"github.com/couchcryptid/station-log-import/internal/units"
)

// Sink receives the normalized record stream. BeginRun is called exactly once
// per run, after the field map is built and before the first batch, carrying
// the unit-tagged field specs and the dry-run instruction. BeginPeriod fires
// once per period, in catalog order, with first/last flags on the period.
type Sink interface {
	BeginRun(ctx context.Context, fields []mapping.FieldSpec, dryRun bool) error
	BeginPeriod(ctx context.Context, period catalog.Period) error
	WriteBatch(ctx context.Context, records []domain.Record) error
}

// Importer drives one import run. Construct with New, run once with Run; the
// field map is built from the first period and reused read-only for the rest
// of the run.
type Importer struct {
	profile *config.Profile
	sink    Sink
	logger  *slog.Logger
	metrics *observability.Metrics

	units    units.Assignment
	fieldMap *mapping.Map

	ready atomic.Bool

	rowsRead  int64
	irregular int64
	filtered  int64
	emitted   int64
}

// New validates the unit declarations and returns an Importer. Unit
// resolution failures surface here, before any file I/O.
func New(profile *config.Profile, sink Sink, logger *slog.Logger, metrics *observability.Metrics) (*Importer, error) {
	assignment, err := units.Resolve(units.Declared{
		Temperature: profile.Units.Temperature,
		Pressure:    profile.Units.Pressure,
		Rain:        profile.Units.Rain,
		Speed:       profile.Units.Speed,
	}, profile.Path)
	if err != nil {
		return nil, err
	}

	return &Importer{
		profile: profile,
		sink:    sink,
		logger:  logger,
		metrics: metrics,
		units:   assignment,
	}, nil
}

// CheckReadiness returns nil once at least one period has been imported.
func (im *Importer) CheckReadiness(_ context.Context) error {
	if !im.ready.Load() {
		return errors.New("no period has been imported yet")
	}
	return nil
}

// Run executes the full import. Any fatal error from a sub-component aborts
// the whole run; no period is silently skipped. Row-level irregularities are
// tolerated, counted, and reported in the run summary.
func (im *Importer) Run(ctx context.Context) error {
	im.metrics.ImportRunning.Set(1)
	defer im.metrics.ImportRunning.Set(0)
	if im.profile.Import.DryRun {
		im.metrics.DryRun.Set(1)
	}

	im.announce()

	periods, err := catalog.Build(im.profile.Source.Directory)
	if err != nil {
		return err
	}
	im.logger.Info("catalog built",
		"directory", im.profile.Source.Directory,
		"periods", len(periods),
		"first", periods[0].Name(),
		"last", periods[len(periods)-1].Name(),
	)

	start := time.Now()
	for _, period := range periods {
		select {
		case <-ctx.Done():
			im.logger.Info("import cancelled", "reason", ctx.Err())
			return ctx.Err()
		default:
		}

		if err := im.importPeriod(ctx, period); err != nil {
			im.logger.Error("import aborted", "period", period.Name(), "error", err)
			return err
		}
	}

	im.logger.Info("import complete",
		"periods", len(periods),
		"rows_read", im.rowsRead,
		"rows_irregular", im.irregular,
		"rows_filtered", im.filtered,
		"records_emitted", im.emitted,
		"dry_run", im.profile.Import.DryRun,
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)
	return nil
}

// announce echoes the run options, the way an operator expects to see them
// before multi-gigabyte datasets start moving.
func (im *Importer) announce() {
	attrs := []any{
		"source", im.profile.Source.Directory,
		"dry_run", im.profile.Import.DryRun,
		"uv_sensor", im.profile.Sensors.HasUV(),
		"solar_sensor", im.profile.Sensors.HasSolar(),
		"units_temperature", im.units.Temperature,
		"units_pressure", im.units.Pressure,
		"units_rain", im.units.Rain,
		"units_rain_rate", im.units.RainRate,
		"units_speed", im.units.Speed,
	}
	if im.profile.Import.FirstTS != 0 || im.profile.Import.LastTS != 0 {
		attrs = append(attrs,
			"from", im.profile.Import.From,
			"to", im.profile.Import.To,
		)
	}
	im.logger.Info("monthly log import requested", attrs...)
}

func (im *Importer) importPeriod(ctx context.Context, period catalog.Period) error {
	start := time.Now()

	rows, err := reader.Open(period, im.profile.Source.Decimal, im.profile.Source.Delimiter)
	if err != nil {
		return err
	}

	if err := im.sink.BeginPeriod(ctx, period); err != nil {
		return err
	}

	var (
		periodRows int
		batch      = make([]domain.Record, 0, im.profile.Import.BatchSize)
	)
	for {
		row, err := rows.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		periodRows++
		im.rowsRead++
		im.metrics.RowsRead.Inc()

		// The field map is built from the first period's row shape and
		// assumed stable for the whole run.
		if im.fieldMap == nil {
			im.fieldMap = mapping.Build(
				im.units,
				im.profile.Sensors.HasUV(),
				im.profile.Sensors.HasSolar(),
				row,
			)
			im.logger.Debug("field map built",
				"period", period.Name(),
				"fields", len(im.fieldMap.Specs()),
			)
			if err := im.sink.BeginRun(ctx, im.fieldMap.Specs(), im.profile.Import.DryRun); err != nil {
				return err
			}
		}

		ts, ok := im.rowTimestamp(row)
		if !ok {
			im.irregular++
			im.metrics.RowsIrregular.Inc()
			im.logger.Debug("skipping row with unparseable date-time",
				"period", period.Name(), "token", row[domain.DateTimeField])
			continue
		}
		if im.outsideRange(ts) {
			im.filtered++
			im.metrics.RowsFiltered.Inc()
			continue
		}

		rec := im.fieldMap.Apply(row)
		rec.DateTime = ts
		rec.ImportedAt = domain.Now()

		batch = append(batch, rec)
		if len(batch) == im.profile.Import.BatchSize {
			if err := im.flush(ctx, batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := im.flush(ctx, batch); err != nil {
			return err
		}
	}

	im.ready.Store(true)
	im.metrics.PeriodsProcessed.Inc()
	im.metrics.PeriodDuration.Observe(time.Since(start).Seconds())
	im.logger.Info("period imported",
		"period", period.Name(),
		"rows", periodRows,
		"first_period", period.IsFirst,
		"last_period", period.IsLast,
	)
	return nil
}

func (im *Importer) flush(ctx context.Context, batch []domain.Record) error {
	if err := im.sink.WriteBatch(ctx, batch); err != nil {
		return err
	}
	im.emitted += int64(len(batch))
	im.metrics.RecordsEmitted.Add(float64(len(batch)))
	im.metrics.BatchSize.Observe(float64(len(batch)))
	return nil
}

// rowTimestamp parses the combined date-time token into epoch seconds, in
// local time to match the station clock.
func (im *Importer) rowTimestamp(row domain.RawRow) (int64, bool) {
	token, ok := row[domain.DateTimeField]
	if !ok {
		return 0, false
	}
	t, err := time.ParseInLocation(domain.RawTimeLayout, token, time.Local)
	if err != nil {
		return 0, false
	}
	return t.Unix(), true
}

// outsideRange reports whether ts falls outside the configured inclusive
// date-range bounds. Zero bounds are unbounded.
func (im *Importer) outsideRange(ts int64) bool {
	if first := im.profile.Import.FirstTS; first != 0 && ts < first {
		return true
	}
	if last := im.profile.Import.LastTS; last != 0 && ts > last {
		return true
	}
	return false
}
