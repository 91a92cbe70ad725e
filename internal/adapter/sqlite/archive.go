// Package sqlite persists normalized records to a SQLite archive table, one
// column per destination field. It implements pipeline.Sink.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/couchcryptid/station-log-import/internal/catalog"
	"github.com/couchcryptid/station-log-import/internal/domain"
	"github.com/couchcryptid/station-log-import/internal/mapping"
)

// Archive writes records into the archive table, one row per record, keyed by
// epoch timestamp. Inserts are INSERT OR IGNORE so re-running an interrupted
// import replays safely without duplicating rows.
type Archive struct {
	db     *sql.DB
	logger *slog.Logger

	dryRun     bool
	insertStmt string
	cumulative map[string]bool

	// lastCumulative carries the previous cumulative reading per field
	// across batches and periods, for delta derivation. The importer never
	// computes deltas; only the sink knows what it has stored.
	lastCumulative map[string]float64
}

// Open opens (or creates) the archive database at path and ensures the
// schema exists.
func Open(path string, logger *slog.Logger) (*Archive, error) {
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite archive: %w", err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	a := &Archive{
		db:             db,
		logger:         logger,
		cumulative:     map[string]bool{},
		lastCumulative: map[string]float64{},
	}
	if err := a.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate archive schema: %w", err)
	}
	a.insertStmt = buildInsert()
	return a, nil
}

func (a *Archive) migrate() error {
	cols := make([]string, 0, len(domain.DestFields)+1)
	cols = append(cols, "dateTime INTEGER NOT NULL PRIMARY KEY")
	for _, f := range domain.DestFields {
		cols = append(cols, fmt.Sprintf("%s REAL", f))
	}
	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS archive (%s)", strings.Join(cols, ", "))
	_, err := a.db.Exec(ddl)
	return err
}

func buildInsert() string {
	cols := append([]string{"dateTime"}, domain.DestFields...)
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return fmt.Sprintf("INSERT OR IGNORE INTO archive (%s) VALUES (%s)",
		strings.Join(cols, ", "), marks)
}

// BeginRun records the dry-run instruction and which destination fields are
// cumulative. In a dry run every statement still executes, inside
// transactions that are rolled back instead of committed.
func (a *Archive) BeginRun(_ context.Context, fields []mapping.FieldSpec, dryRun bool) error {
	a.dryRun = dryRun
	for _, f := range fields {
		if f.Cumulative {
			a.cumulative[f.Dest] = true
		}
	}
	if dryRun {
		a.logger.Info("dry run: records will not be saved to archive")
	}
	return nil
}

// BeginPeriod logs run boundaries as they pass.
func (a *Archive) BeginPeriod(_ context.Context, period catalog.Period) error {
	switch {
	case period.IsFirst && period.IsLast:
		a.logger.Info("importing only period", "period", period.Name())
	case period.IsFirst:
		a.logger.Info("importing first period", "period", period.Name())
	case period.IsLast:
		a.logger.Info("importing last period", "period", period.Name())
	default:
		a.logger.Debug("importing period", "period", period.Name())
	}
	return nil
}

// WriteBatch inserts one batch in a single transaction. Cumulative fields are
// stored as deltas from the previous reading; a value lower than its
// predecessor is a midnight reset and is stored as-is.
func (a *Archive) WriteBatch(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin archive tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, a.insertStmt)
	if err != nil {
		return fmt.Errorf("prepare archive insert: %w", err)
	}
	defer stmt.Close()

	for i := range records {
		args := a.insertArgs(&records[i])
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert record %d: %w", records[i].DateTime, err)
		}
	}

	if a.dryRun {
		return tx.Rollback()
	}
	return tx.Commit()
}

func (a *Archive) insertArgs(rec *domain.Record) []any {
	args := make([]any, 0, len(domain.DestFields)+1)
	args = append(args, rec.DateTime)
	for _, dest := range domain.DestFields {
		v, _ := rec.Value(dest)
		if v != nil && a.cumulative[dest] {
			v = a.delta(dest, *v)
		}
		args = append(args, v)
	}
	return args
}

func (a *Archive) delta(dest string, current float64) *float64 {
	prev, seen := a.lastCumulative[dest]
	a.lastCumulative[dest] = current

	// No predecessor means no interval to attribute the accumulation to.
	if !seen {
		return nil
	}
	d := current - prev
	if d < 0 {
		// Midnight reset: the counter restarted, so the reading is the
		// whole delta.
		d = current
	}
	return &d
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}
