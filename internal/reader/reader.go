// Package reader turns one monthly log file into a sequence of raw rows.
//
// Cumulus wrote these files with whatever regional settings the host had, so
// before parsing each line is normalized: the configured decimal separator
// becomes a full stop, blank lines are dropped, and the first field delimiter
// is replaced by a space so the date and time fields merge into a single
// token. All later delimiters are left alone for field splitting.
package reader

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/station-log-import/internal/catalog"
	"github.com/couchcryptid/station-log-import/internal/domain"
)

// Rows is a single-pass iterator over one period's raw rows. A consumed Rows
// cannot be re-iterated; open a fresh one per period. The whole file is read
// into memory up front, so there is no handle to release.
type Rows struct {
	records *csv.Reader
	path    string
}

// Open reads the period's file in full, cleans it, and returns a row
// iterator. A missing or unreadable file is a *domain.SourceIOError and is
// fatal for the run.
func Open(period catalog.Period, decimal, delimiter string) (*Rows, error) {
	data, err := os.ReadFile(period.Path)
	if err != nil {
		return nil, &domain.SourceIOError{Path: period.Path, Err: err}
	}

	clean := cleanLines(string(data), decimal, delimiter)

	r := csv.NewReader(strings.NewReader(strings.Join(clean, "\n")))
	r.Comma = rune(delimiter[0])
	// Rows with missing or extra fields are tolerated; short rows simply
	// map fewer source fields.
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	return &Rows{records: r, path: period.Path}, nil
}

// cleanLines applies the per-line cleanup in order: decimal separator to full
// stop, drop blank lines, first delimiter to space.
func cleanLines(content, decimal, delimiter string) []string {
	lines := strings.Split(content, "\n")
	clean := make([]string, 0, len(lines))
	for _, line := range lines {
		// Cumulus ran on Windows; tolerate CRLF endings.
		line = strings.TrimSuffix(line, "\r")
		line = strings.ReplaceAll(line, decimal, ".")
		if line == "" {
			continue
		}
		clean = append(clean, strings.Replace(line, delimiter, " ", 1))
	}
	return clean
}

// Next returns the next raw row, or io.EOF when the period is exhausted.
// Tokens are bound positionally to the source field vocabulary; positions
// beyond the vocabulary are dropped.
func (r *Rows) Next() (domain.RawRow, error) {
	rec, err := r.records.Read()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		// FieldsPerRecord -1 and LazyQuotes make csv errors rare; treat
		// anything left as an unreadable file.
		return nil, &domain.SourceIOError{Path: r.path, Err: err}
	}

	row := make(domain.RawRow, len(rec))
	for i, token := range rec {
		if i >= len(domain.SourceFields) {
			break
		}
		row[domain.SourceFields[i]] = token
	}
	return row, nil
}

// Columns returns the source field names a row binds, given how many tokens
// it carries. Used to size the field map from the first period's shape.
func Columns(row domain.RawRow) []string {
	cols := make([]string, 0, len(row))
	for _, name := range domain.SourceFields {
		if _, ok := row[name]; ok {
			cols = append(cols, name)
		}
	}
	return cols
}
