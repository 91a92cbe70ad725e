package domain

import "fmt"

// ConfigError reports a missing or invalid import profile setting. It is
// always fatal and is raised before any monthly log file is opened.
type ConfigError struct {
	Setting string // offending setting, e.g. "units.rain"
	Path    string // import profile the setting came from
	Reason  string
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", e.Setting, e.Reason)
	}
	return fmt.Sprintf("%s: %s in %s", e.Setting, e.Reason, e.Path)
}

// SourceNotFoundError reports that no monthly log files matched the naming
// convention in the configured source directory.
type SourceNotFoundError struct {
	Dir string
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("no Cumulus monthly logs found in directory %q", e.Dir)
}

// SourceIOError reports that a monthly log file could not be read. It aborts
// the whole run; there is no skip-and-continue across periods.
type SourceIOError struct {
	Path string
	Err  error
}

func (e *SourceIOError) Error() string {
	return fmt.Sprintf("monthly log file %q could not be read: %v", e.Path, e.Err)
}

func (e *SourceIOError) Unwrap() error { return e.Err }
