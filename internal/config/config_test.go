package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/station-log-import/internal/domain"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "import.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalProfile = `
source:
  directory: /var/lib/cumulus/data
units:
  temperature: degree_C
  pressure: hPa
  rain: mm
  speed: km_per_hour
archive:
  sqlite_path: /var/lib/weather/archive.sdb
`

func TestLoad_Defaults(t *testing.T) {
	path := writeProfile(t, minimalProfile)

	p, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/cumulus/data", p.Source.Directory)
	assert.Equal(t, ".", p.Source.Decimal)
	assert.Equal(t, ",", p.Source.Delimiter)
	assert.Equal(t, 250, p.Import.BatchSize)
	assert.Equal(t, "sqlite", p.Archive.Driver)
	assert.False(t, p.Import.DryRun)
	assert.True(t, p.Sensors.HasUV())
	assert.True(t, p.Sensors.HasSolar())
	assert.Zero(t, p.Import.FirstTS)
	assert.Zero(t, p.Import.LastTS)
	assert.Equal(t, path, p.Path)
}

func TestLoad_FullProfile(t *testing.T) {
	path := writeProfile(t, `
source:
  directory: /data/cumulus
  decimal: ","
  delimiter: ";"
units:
  temperature: degree_F
  pressure: inHg
  rain: inch
  speed: mile_per_hour
sensors:
  uv: false
  solar: false
import:
  from: 01/01/2016
  to: 31/12/2016
  dry_run: true
  batch_size: 100
archive:
  driver: kafka
  kafka_brokers: [broker1:9092, broker2:9092]
  kafka_topic: weather-archive
`)

	p, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ",", p.Source.Decimal)
	assert.Equal(t, ";", p.Source.Delimiter)
	assert.False(t, p.Sensors.HasUV())
	assert.False(t, p.Sensors.HasSolar())
	assert.True(t, p.Import.DryRun)
	assert.Equal(t, 100, p.Import.BatchSize)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, p.Archive.KafkaBrokers)
	assert.Equal(t, "weather-archive", p.Archive.KafkaTopic)

	wantFirst := time.Date(2016, time.January, 1, 0, 0, 0, 0, time.Local).Unix()
	wantLast := time.Date(2016, time.December, 31, 23, 59, 59, 0, time.Local).Unix()
	assert.Equal(t, wantFirst, p.Import.FirstTS)
	assert.Equal(t, wantLast, p.Import.LastTS)
}

func TestLoad_MissingDirectory(t *testing.T) {
	path := writeProfile(t, `
units:
  temperature: degree_C
  pressure: hPa
  rain: mm
  speed: km_per_hour
archive:
  sqlite_path: archive.sdb
`)

	_, err := Load(path)

	var cfgErr *domain.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "source.directory", cfgErr.Setting)
	assert.Equal(t, path, cfgErr.Path)
}

func TestLoad_InvalidDateRange(t *testing.T) {
	path := writeProfile(t, minimalProfile+`
import:
  from: 2016-01-01
`)

	_, err := Load(path)

	var cfgErr *domain.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "import.from", cfgErr.Setting)
}

func TestLoad_RangeEndsBeforeStart(t *testing.T) {
	path := writeProfile(t, minimalProfile+`
import:
  from: 01/06/2016
  to: 01/01/2016
`)

	_, err := Load(path)

	var cfgErr *domain.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "import.to", cfgErr.Setting)
}

func TestLoad_UnknownDriver(t *testing.T) {
	path := writeProfile(t, `
source:
  directory: /data
units:
  temperature: degree_C
  pressure: hPa
  rain: mm
  speed: km_per_hour
archive:
  driver: postgres
`)

	_, err := Load(path)

	var cfgErr *domain.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "archive.driver", cfgErr.Setting)
}

func TestLoad_KafkaDriverRequiresBrokersAndTopic(t *testing.T) {
	path := writeProfile(t, `
source:
  directory: /data
units:
  temperature: degree_C
  pressure: hPa
  rain: mm
  speed: km_per_hour
archive:
  driver: kafka
  kafka_topic: weather-archive
`)

	_, err := Load(path)

	var cfgErr *domain.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "archive.kafka_brokers", cfgErr.Setting)
}

func TestLoad_MultiCharDelimiter(t *testing.T) {
	path := writeProfile(t, `
source:
  directory: /data
  delimiter: "||"
units:
  temperature: degree_C
  pressure: hPa
  rain: mm
  speed: km_per_hour
archive:
  sqlite_path: archive.sdb
`)

	_, err := Load(path)

	var cfgErr *domain.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "source.delimiter", cfgErr.Setting)
}

func TestRevalidate_RecomputesBounds(t *testing.T) {
	path := writeProfile(t, minimalProfile)

	p, err := Load(path)
	require.NoError(t, err)

	p.Import.From = "15/03/2016"
	p.Import.To = "20/03/2016"
	require.NoError(t, p.Revalidate())

	assert.Equal(t, time.Date(2016, time.March, 15, 0, 0, 0, 0, time.Local).Unix(), p.Import.FirstTS)
	assert.Equal(t, time.Date(2016, time.March, 20, 23, 59, 59, 0, time.Local).Unix(), p.Import.LastTS)
}

func TestLoadRuntime_Defaults(t *testing.T) {
	rt, err := LoadRuntime()
	require.NoError(t, err)

	assert.Equal(t, "info", rt.LogLevel)
	assert.Equal(t, "json", rt.LogFormat)
	assert.Empty(t, rt.MetricsAddr)
}

func TestLoadRuntime_CustomEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("METRICS_ADDR", ":9090")

	rt, err := LoadRuntime()
	require.NoError(t, err)

	assert.Equal(t, "debug", rt.LogLevel)
	assert.Equal(t, "text", rt.LogFormat)
	assert.Equal(t, ":9090", rt.MetricsAddr)
}
