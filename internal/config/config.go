// Package config loads the import profile (a YAML file describing one source
// dataset) and the process runtime settings (environment variables).
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/station-log-import/internal/domain"
)

// Profile holds all settings for one import run. It is immutable once loaded;
// components receive it by pointer and never write through it.
type Profile struct {
	Source  SourceSettings  `yaml:"source"`
	Units   UnitSettings    `yaml:"units"`
	Sensors SensorSettings  `yaml:"sensors"`
	Import  ImportSettings  `yaml:"import"`
	Archive ArchiveSettings `yaml:"archive"`

	// Path is where the profile was loaded from, for error messages.
	Path string `yaml:"-"`
}

// SourceSettings describe the on-disk layout of the monthly log files.
type SourceSettings struct {
	Directory string `yaml:"directory"`
	Decimal   string `yaml:"decimal"`   // decimal separator, default "."
	Delimiter string `yaml:"delimiter"` // field delimiter, default ","
}

// UnitSettings are the per-quantity unit declarations. All four are required;
// membership validation lives in the units package.
type UnitSettings struct {
	Temperature string `yaml:"temperature"`
	Pressure    string `yaml:"pressure"`
	Rain        string `yaml:"rain"`
	Speed       string `yaml:"speed"`
}

// SensorSettings flag sensors the station did not have. An absent sensor
// forces its destination field to no-value even when the column carries data
// (Cumulus writes zeros for missing sensors). Nil means present.
type SensorSettings struct {
	UV    *bool `yaml:"uv"`
	Solar *bool `yaml:"solar"`
}

// HasUV reports whether the station had a UV sensor.
func (s SensorSettings) HasUV() bool { return s.UV == nil || *s.UV }

// HasSolar reports whether the station had a solar radiation sensor.
func (s SensorSettings) HasSolar() bool { return s.Solar == nil || *s.Solar }

// ImportSettings control the run itself.
type ImportSettings struct {
	From      string `yaml:"from"` // inclusive lower bound, "02/01/2006"
	To        string `yaml:"to"`   // inclusive upper bound, "02/01/2006"
	DryRun    bool   `yaml:"dry_run"`
	BatchSize int    `yaml:"batch_size"`

	// Parsed bounds as epoch seconds. Zero means unbounded.
	FirstTS int64 `yaml:"-"`
	LastTS  int64 `yaml:"-"`
}

// ArchiveSettings select and configure the destination sink.
type ArchiveSettings struct {
	Driver string `yaml:"driver"` // "sqlite" or "kafka"

	SQLitePath string `yaml:"sqlite_path"`

	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_topic"`
}

// rangeLayout parses the import date-range bounds.
const rangeLayout = "02/01/2006"

// Load reads, defaults, and validates an import profile. Every validation
// failure is a *domain.ConfigError naming the offending setting and path;
// validation happens eagerly, before any source file is touched.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read import profile: %w", err)
	}

	p := &Profile{Path: path}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parse import profile %s: %w", path, err)
	}

	applyDefaults(p)
	if err := validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

func applyDefaults(p *Profile) {
	if p.Source.Decimal == "" {
		p.Source.Decimal = "."
	}
	if p.Source.Delimiter == "" {
		p.Source.Delimiter = ","
	}
	if p.Import.BatchSize == 0 {
		p.Import.BatchSize = 250
	}
	if p.Archive.Driver == "" {
		p.Archive.Driver = "sqlite"
	}
}

func validate(p *Profile) error {
	if p.Source.Directory == "" {
		return &domain.ConfigError{
			Setting: "source.directory",
			Path:    p.Path,
			Reason:  "Cumulus monthly logs directory not specified",
		}
	}
	if len(p.Source.Delimiter) != 1 {
		return &domain.ConfigError{
			Setting: "source.delimiter",
			Path:    p.Path,
			Reason:  fmt.Sprintf("field delimiter must be a single character, got %q", p.Source.Delimiter),
		}
	}
	if len(p.Source.Decimal) != 1 {
		return &domain.ConfigError{
			Setting: "source.decimal",
			Path:    p.Path,
			Reason:  fmt.Sprintf("decimal separator must be a single character, got %q", p.Source.Decimal),
		}
	}
	if p.Import.BatchSize < 1 {
		return &domain.ConfigError{
			Setting: "import.batch_size",
			Path:    p.Path,
			Reason:  fmt.Sprintf("batch size must be positive, got %d", p.Import.BatchSize),
		}
	}

	if err := parseRange(p); err != nil {
		return err
	}

	switch p.Archive.Driver {
	case "sqlite":
		if p.Archive.SQLitePath == "" {
			return &domain.ConfigError{
				Setting: "archive.sqlite_path",
				Path:    p.Path,
				Reason:  "sqlite archive path not specified",
			}
		}
	case "kafka":
		if len(p.Archive.KafkaBrokers) == 0 {
			return &domain.ConfigError{
				Setting: "archive.kafka_brokers",
				Path:    p.Path,
				Reason:  "no Kafka brokers specified",
			}
		}
		if p.Archive.KafkaTopic == "" {
			return &domain.ConfigError{
				Setting: "archive.kafka_topic",
				Path:    p.Path,
				Reason:  "no Kafka topic specified",
			}
		}
	default:
		return &domain.ConfigError{
			Setting: "archive.driver",
			Path:    p.Path,
			Reason:  fmt.Sprintf("unknown archive driver %q (want sqlite or kafka)", p.Archive.Driver),
		}
	}

	return nil
}

// parseRange turns the dd/mm/yyyy bounds into inclusive epoch bounds. The
// upper bound covers the whole named day. Bounds are interpreted in local
// time, matching the station clock the logs were written with.
func parseRange(p *Profile) error {
	if p.Import.From != "" {
		t, err := time.ParseInLocation(rangeLayout, p.Import.From, time.Local)
		if err != nil {
			return &domain.ConfigError{
				Setting: "import.from",
				Path:    p.Path,
				Reason:  fmt.Sprintf("invalid date %q (want dd/mm/yyyy)", p.Import.From),
			}
		}
		p.Import.FirstTS = t.Unix()
	}
	if p.Import.To != "" {
		t, err := time.ParseInLocation(rangeLayout, p.Import.To, time.Local)
		if err != nil {
			return &domain.ConfigError{
				Setting: "import.to",
				Path:    p.Path,
				Reason:  fmt.Sprintf("invalid date %q (want dd/mm/yyyy)", p.Import.To),
			}
		}
		p.Import.LastTS = t.AddDate(0, 0, 1).Add(-time.Second).Unix()
	}
	if p.Import.FirstTS != 0 && p.Import.LastTS != 0 && p.Import.LastTS < p.Import.FirstTS {
		return &domain.ConfigError{
			Setting: "import.to",
			Path:    p.Path,
			Reason:  "date range ends before it starts",
		}
	}
	return nil
}

// Revalidate re-runs validation after the caller overrides settings (the CLI
// date-range flags). The parsed epoch bounds are recomputed from From/To. No
// component mutates the profile once the run starts.
func (p *Profile) Revalidate() error {
	p.Import.FirstTS = 0
	p.Import.LastTS = 0
	return validate(p)
}

// Runtime holds process-level settings read from the environment.
type Runtime struct {
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"json"`
	MetricsAddr string `envconfig:"METRICS_ADDR"` // empty disables the HTTP endpoint
}

// LoadRuntime reads runtime settings from the environment.
func LoadRuntime() (Runtime, error) {
	var rt Runtime
	if err := envconfig.Process("", &rt); err != nil {
		return Runtime{}, fmt.Errorf("process environment: %w", err)
	}
	return rt, nil
}
