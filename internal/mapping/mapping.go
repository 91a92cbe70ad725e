// Package mapping binds Cumulus source fields to archive destination fields
// with their units. The map is built once per run, from the resolved units,
// the sensor flags, and the column shape of the first period, and is
// read-only afterwards.
package mapping

import (
	"strconv"
	"strings"

	"github.com/couchcryptid/station-log-import/internal/domain"
	"github.com/couchcryptid/station-log-import/internal/units"
)

// FieldSpec binds one source field to its destination field and unit.
type FieldSpec struct {
	Source string
	Dest   string
	Unit   string // canonical unit identifier, empty when unit-less

	// Cumulative marks values that accumulate within a day (rain since
	// midnight). They pass through as-is; delta derivation is the sink's.
	Cumulative bool

	// Forced marks a destination the import profile declared sensorless.
	// The source value, whatever it is, becomes no-value.
	Forced bool

	// Min and Max, when set, drop out-of-range readings to no-value.
	Min, Max *float64
}

// binding is one row of the static source-to-destination table.
type binding struct {
	dest     string
	quantity string // resolved per-run from the unit assignment
	unit     string // fixed unit, used when quantity is empty
}

// table maps every importable source field to its destination. Source fields
// absent here (daily totals, duplicate wind readings, the rain counter) are
// simply not imported.
var table = map[string]binding{
	"cur_out_temp":     {dest: "outTemp", quantity: "temperature"},
	"curr_in_temp":     {dest: "inTemp", quantity: "temperature"},
	"cur_dewpoint":     {dest: "dewpoint", quantity: "temperature"},
	"cur_heatindex":    {dest: "heatindex", quantity: "temperature"},
	"cur_windchill":    {dest: "windchill", quantity: "temperature"},
	"cur_app_temp":     {dest: "appTemp", quantity: "temperature"},
	"cur_slp":          {dest: "barometer", quantity: "pressure"},
	"avg_wind_speed":   {dest: "windSpeed", quantity: "speed"},
	"gust_wind_speed":  {dest: "windGust", quantity: "speed"},
	"midnight_rain":    {dest: "rain", quantity: "rain"},
	"cur_rain_rate":    {dest: "rainRate", quantity: "rainrate"},
	"avg_wind_bearing": {dest: "windDir", unit: units.DegreeCompass},
	"cur_out_hum":      {dest: "outHumidity", unit: units.Percent},
	"cur_in_hum":       {dest: "inHumidity", unit: units.Percent},
	"cur_solar":        {dest: "radiation", unit: units.WattPerM2},
	"cur_uv":           {dest: "UV", unit: units.UVIndex},
}

// Map is the write-once field map for a run. Safe for reuse across periods
// without synchronization because nothing mutates it after Build.
type Map struct {
	specs []FieldSpec
}

// Build constructs the field map. sample is a parsed row from the first
// period; only source fields actually present in it are bound, and the shape
// is assumed stable for the rest of the run. Later periods presenting extra
// columns have them ignored silently.
func Build(a units.Assignment, hasUV, hasSolar bool, sample domain.RawRow) *Map {
	windDirMin, windDirMax := 0.0, 360.0

	specs := make([]FieldSpec, 0, len(table))
	for _, source := range domain.SourceFields {
		b, ok := table[source]
		if !ok {
			continue
		}
		if _, present := sample[source]; !present {
			continue
		}

		spec := FieldSpec{Source: source, Dest: b.dest, Unit: b.unit}
		switch b.quantity {
		case "temperature":
			spec.Unit = a.Temperature
		case "pressure":
			spec.Unit = a.Pressure
		case "rain":
			spec.Unit = a.Rain
			spec.Cumulative = true
		case "rainrate":
			spec.Unit = a.RainRate
		case "speed":
			spec.Unit = a.Speed
		}

		switch b.dest {
		case "windDir":
			spec.Min, spec.Max = &windDirMin, &windDirMax
		case "UV":
			spec.Forced = !hasUV
		case "radiation":
			spec.Forced = !hasSolar
		}

		specs = append(specs, spec)
	}

	return &Map{specs: specs}
}

// Specs returns the ordered field specs. The slice must not be mutated.
func (m *Map) Specs() []FieldSpec { return m.specs }

// Apply maps one raw row to a record. The timestamp is the controller's to
// set; Apply fills the value fields only. Tokens that are absent, empty, or
// non-numeric become no-value, as do forced and out-of-range readings.
func (m *Map) Apply(row domain.RawRow) domain.Record {
	var rec domain.Record
	for _, spec := range m.specs {
		if spec.Forced {
			continue
		}
		token, ok := row[spec.Source]
		if !ok {
			continue
		}
		v := parseValue(token)
		if v != nil && spec.Min != nil && (*v < *spec.Min || *v > *spec.Max) {
			v = nil
		}
		rec.Set(spec.Dest, v)
	}
	return rec
}

// parseValue parses a cleaned numeric token, returning nil for anything that
// is not a number.
func parseValue(token string) *float64 {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return nil
	}
	return &v
}
