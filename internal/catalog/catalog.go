// Package catalog discovers Cumulus monthly log files and orders them
// chronologically. Discovery is a directory listing only; no file is opened.
package catalog

import (
	"path/filepath"
	"sort"
	"time"

	"github.com/couchcryptid/station-log-import/internal/domain"
)

// logPattern matches the fixed one-file-per-month naming convention,
// e.g. Jan16log.txt.
const logPattern = "?????log.txt"

// Period is one monthly log file. Year and Month form the chronological sort
// key, derived from the filename, not from file contents or mtime.
type Period struct {
	Path  string
	Year  string // two-digit year fragment from the filename
	Month time.Month

	// IsFirst and IsLast are set relative to the whole catalog so the
	// pipeline can signal run boundaries without catalog knowledge
	// leaking into the sink.
	IsFirst bool
	IsLast  bool
}

// Name returns the base filename of the period.
func (p Period) Name() string { return filepath.Base(p.Path) }

// Build lists the monthly log files under dir and returns them in ascending
// chronological order. Returns *domain.SourceNotFoundError when nothing
// matches: there is nothing to import and the run cannot proceed.
//
// The sort key is (year fragment, month number). The year fragment is the
// literal two-digit string, so logs spanning a century wrap (99 vs 00) sort
// wrong; Cumulus predates 2000-era logs in practice and the source format
// gives nothing better to key on.
func Build(dir string) ([]Period, error) {
	matches, err := filepath.Glob(filepath.Join(dir, logPattern))
	if err != nil {
		// Only malformed patterns error here, and ours is constant.
		return nil, err
	}

	periods := make([]Period, 0, len(matches))
	for _, path := range matches {
		p, ok := parseName(path)
		if !ok {
			continue
		}
		periods = append(periods, p)
	}

	if len(periods) == 0 {
		return nil, &domain.SourceNotFoundError{Dir: dir}
	}

	sort.SliceStable(periods, func(i, j int) bool {
		if periods[i].Year != periods[j].Year {
			return periods[i].Year < periods[j].Year
		}
		return periods[i].Month < periods[j].Month
	})

	periods[0].IsFirst = true
	periods[len(periods)-1].IsLast = true
	return periods, nil
}

// parseName extracts the sort key from a filename like Jan16log.txt: month
// abbreviation at offset 0, two-digit year at offset 3. Files matching the
// glob but carrying an unknown month abbreviation are skipped.
func parseName(path string) (Period, bool) {
	base := filepath.Base(path)
	if len(base) < 5 {
		return Period{}, false
	}
	t, err := time.Parse("Jan", base[:3])
	if err != nil {
		return Period{}, false
	}
	return Period{
		Path:  path,
		Year:  base[3:5],
		Month: t.Month(),
	}, true
}
