package mapping_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/station-log-import/internal/domain"
	"github.com/couchcryptid/station-log-import/internal/mapping"
	"github.com/couchcryptid/station-log-import/internal/units"
)

func testAssignment() units.Assignment {
	return units.Assignment{
		Temperature: units.DegreeC,
		Pressure:    units.HPa,
		Rain:        units.MM,
		RainRate:    units.MMPerHour,
		Speed:       units.KMPerHour,
	}
}

// fullRow returns a sample row carrying every source field.
func fullRow() domain.RawRow {
	row := make(domain.RawRow, len(domain.SourceFields))
	for _, f := range domain.SourceFields {
		row[f] = "1.0"
	}
	row["datetime"] = "01/01/16 00:00"
	return row
}

func specFor(t *testing.T, m *mapping.Map, dest string) mapping.FieldSpec {
	t.Helper()
	for _, s := range m.Specs() {
		if s.Dest == dest {
			return s
		}
	}
	t.Fatalf("no spec for destination %q", dest)
	return mapping.FieldSpec{}
}

func TestBuild_AssignsResolvedUnits(t *testing.T) {
	m := mapping.Build(testAssignment(), true, true, fullRow())

	assert.Equal(t, units.DegreeC, specFor(t, m, "outTemp").Unit)
	assert.Equal(t, units.DegreeC, specFor(t, m, "dewpoint").Unit)
	assert.Equal(t, units.HPa, specFor(t, m, "barometer").Unit)
	assert.Equal(t, units.KMPerHour, specFor(t, m, "windSpeed").Unit)
	assert.Equal(t, units.MM, specFor(t, m, "rain").Unit)
	assert.Equal(t, units.MMPerHour, specFor(t, m, "rainRate").Unit)
	assert.Equal(t, units.DegreeCompass, specFor(t, m, "windDir").Unit)
	assert.Equal(t, units.Percent, specFor(t, m, "outHumidity").Unit)
}

func TestBuild_CumulativeFlagOnRainOnly(t *testing.T) {
	m := mapping.Build(testAssignment(), true, true, fullRow())

	for _, s := range m.Specs() {
		if s.Dest == "rain" {
			assert.True(t, s.Cumulative)
			continue
		}
		assert.False(t, s.Cumulative, "%s should not be cumulative", s.Dest)
	}
}

func TestBuild_UnboundSourceFieldsExcluded(t *testing.T) {
	m := mapping.Build(testAssignment(), true, true, fullRow())

	for _, s := range m.Specs() {
		assert.NotEqual(t, "day_rain", s.Source)
		assert.NotEqual(t, "rain_counter", s.Source)
		assert.NotEqual(t, "cur_et", s.Source)
	}
}

func TestBuild_AbsentColumnsExcluded(t *testing.T) {
	sample := domain.RawRow{
		"datetime":     "01/01/16 00:00",
		"cur_out_temp": "5.2",
		"cur_out_hum":  "80",
	}

	m := mapping.Build(testAssignment(), true, true, sample)

	require.Len(t, m.Specs(), 2)
	assert.Equal(t, "outTemp", m.Specs()[0].Dest)
	assert.Equal(t, "outHumidity", m.Specs()[1].Dest)
}

func TestApply_MapsPresentFields(t *testing.T) {
	m := mapping.Build(testAssignment(), true, true, fullRow())

	row := fullRow()
	row["cur_out_temp"] = "5.2"
	row["cur_out_hum"] = "80"
	row["midnight_rain"] = "3.4"

	rec := m.Apply(row)

	require.NotNil(t, rec.OutTemp)
	assert.Equal(t, 5.2, *rec.OutTemp)
	require.NotNil(t, rec.OutHumidity)
	assert.Equal(t, 80.0, *rec.OutHumidity)
	require.NotNil(t, rec.Rain)
	assert.Equal(t, 3.4, *rec.Rain)
}

func TestApply_NonNumericTokenBecomesNoValue(t *testing.T) {
	m := mapping.Build(testAssignment(), true, true, fullRow())

	row := fullRow()
	row["cur_out_temp"] = "---"
	row["cur_slp"] = ""

	rec := m.Apply(row)

	assert.Nil(t, rec.OutTemp)
	assert.Nil(t, rec.Barometer)
}

func TestApply_AbsentFieldStaysNoValue(t *testing.T) {
	m := mapping.Build(testAssignment(), true, true, fullRow())

	row := fullRow()
	delete(row, "cur_dewpoint")

	rec := m.Apply(row)
	assert.Nil(t, rec.Dewpoint)
}

func TestApply_SensorAbsentForcesNoValue(t *testing.T) {
	m := mapping.Build(testAssignment(), false, false, fullRow())

	row := fullRow()
	// Cumulus writes zeros for sensors the station never had; the profile
	// says to discard them regardless.
	row["cur_uv"] = "4.2"
	row["cur_solar"] = "640"

	rec := m.Apply(row)

	assert.Nil(t, rec.UV)
	assert.Nil(t, rec.Radiation)
	require.NotNil(t, rec.OutTemp, "other fields unaffected")
}

func TestApply_WindDirClampedToCompassRange(t *testing.T) {
	m := mapping.Build(testAssignment(), true, true, fullRow())

	tests := []struct {
		token string
		want  *float64
	}{
		{"0", ptr(0.0)},
		{"360", ptr(360.0)},
		{"361", nil},
		{"-5", nil},
	}
	for _, tt := range tests {
		row := fullRow()
		row["avg_wind_bearing"] = tt.token

		rec := m.Apply(row)
		if tt.want == nil {
			assert.Nil(t, rec.WindDir, "bearing %s", tt.token)
		} else {
			require.NotNil(t, rec.WindDir, "bearing %s", tt.token)
			assert.Equal(t, *tt.want, *rec.WindDir)
		}
	}
}

func ptr(v float64) *float64 { return &v }
