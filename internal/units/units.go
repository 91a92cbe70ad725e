// Package units resolves the per-quantity unit declarations of an import
// profile into canonical unit identifiers. Monthly logs carry no unit
// metadata, so a run cannot start until every quantity resolves.
package units

import (
	"fmt"

	"github.com/couchcryptid/station-log-import/internal/domain"
)

// Canonical unit identifiers for the quantities a Cumulus log can carry.
const (
	DegreeC = "degree_C"
	DegreeF = "degree_F"

	InHg = "inHg"
	Mbar = "mbar"
	HPa  = "hPa"

	Inch = "inch"
	MM   = "mm"

	InchPerHour = "inch_per_hour"
	MMPerHour   = "mm_per_hour"

	MilePerHour  = "mile_per_hour"
	KMPerHour    = "km_per_hour"
	Knot         = "knot"
	MeterPerSec  = "meter_per_second"

	DegreeCompass = "degree_compass"
	Percent       = "percent"
	WattPerM2     = "watt_per_meter_squared"
	UVIndex       = "uv_index"
)

// allowed holds the accepted unit declarations per quantity.
var allowed = map[string][]string{
	"temperature": {DegreeC, DegreeF},
	"pressure":    {InHg, Mbar, HPa},
	"rain":        {Inch, MM},
	"speed":       {MilePerHour, KMPerHour, Knot, MeterPerSec},
}

// rainRateUnits derives the rain-rate unit from the declared rain
// accumulation unit. The relation is fixed, never inferred.
var rainRateUnits = map[string]string{
	Inch: InchPerHour,
	MM:   MMPerHour,
}

// Declared carries the raw unit strings from the import profile.
type Declared struct {
	Temperature string
	Pressure    string
	Rain        string
	Speed       string
}

// Assignment is the resolved canonical unit per quantity. RainRate is derived
// from Rain and is never declared directly.
type Assignment struct {
	Temperature string
	Pressure    string
	Rain        string
	RainRate    string
	Speed       string
}

// Resolve validates every declared unit against its quantity's allow-list and
// returns the canonical assignment. configPath names the import profile in
// error messages. Resolution failures are fatal: without units the source
// data is meaningless.
func Resolve(decl Declared, configPath string) (Assignment, error) {
	quantities := []struct {
		name  string
		value string
	}{
		{"temperature", decl.Temperature},
		{"pressure", decl.Pressure},
		{"rain", decl.Rain},
		{"speed", decl.Speed},
	}

	var a Assignment
	for _, q := range quantities {
		resolved, err := resolveOne(q.name, q.value, configPath)
		if err != nil {
			return Assignment{}, err
		}
		switch q.name {
		case "temperature":
			a.Temperature = resolved
		case "pressure":
			a.Pressure = resolved
		case "rain":
			a.Rain = resolved
			a.RainRate = rainRateUnits[resolved]
		case "speed":
			a.Speed = resolved
		}
	}
	return a, nil
}

func resolveOne(quantity, value, configPath string) (string, error) {
	if value == "" {
		return "", &domain.ConfigError{
			Setting: "units." + quantity,
			Path:    configPath,
			Reason:  fmt.Sprintf("no units specified for Cumulus %s fields", quantity),
		}
	}
	for _, u := range allowed[quantity] {
		if u == value {
			return u, nil
		}
	}
	return "", &domain.ConfigError{
		Setting: "units." + quantity,
		Path:    configPath,
		Reason:  fmt.Sprintf("unknown units %q specified for Cumulus %s fields", value, quantity),
	}
}

// Allowed returns the accepted declarations for a quantity, for help text and
// tests. The returned slice must not be mutated.
func Allowed(quantity string) []string {
	return allowed[quantity]
}
