package domain

import "time"

// SourceFields is the fixed positional field order of a Cumulus monthly log
// row after cleanup. Position 0 is the combined date-time token; the files
// themselves have no header row, so these names are internal vocabulary only.
var SourceFields = []string{
	"datetime", "cur_out_temp", "cur_out_hum",
	"cur_dewpoint", "avg_wind_speed", "gust_wind_speed",
	"avg_wind_bearing", "cur_rain_rate", "day_rain", "cur_slp",
	"rain_counter", "curr_in_temp", "cur_in_hum",
	"lastest_wind_gust", "cur_windchill", "cur_heatindex",
	"cur_uv", "cur_solar", "cur_et", "annual_et",
	"cur_app_temp", "cur_tmax_solar", "day_sunshine_hours",
	"cur_wind_bearing", "day_rain_rg11", "midnight_rain",
}

// DateTimeField is the synthesized combined date-time column.
const DateTimeField = "datetime"

// RawTimeLayout parses the combined date-time token, e.g. "01/01/16 00:00".
const RawTimeLayout = "02/01/06 15:04"

// RawRow is one cleaned monthly log line keyed by source field name. Values
// are the raw string tokens; absent positions are absent keys.
type RawRow map[string]string

// Record is one normalized archive record. Values stay in the source units
// declared in the import profile; a nil field means the source carried no
// value for it. Rain is cumulative since midnight, not a delta.
type Record struct {
	DateTime    int64     `json:"dateTime"`
	OutTemp     *float64  `json:"outTemp,omitempty"`
	InTemp      *float64  `json:"inTemp,omitempty"`
	Dewpoint    *float64  `json:"dewpoint,omitempty"`
	Barometer   *float64  `json:"barometer,omitempty"`
	WindDir     *float64  `json:"windDir,omitempty"`
	WindSpeed   *float64  `json:"windSpeed,omitempty"`
	WindGust    *float64  `json:"windGust,omitempty"`
	WindChill   *float64  `json:"windchill,omitempty"`
	HeatIndex   *float64  `json:"heatindex,omitempty"`
	OutHumidity *float64  `json:"outHumidity,omitempty"`
	InHumidity  *float64  `json:"inHumidity,omitempty"`
	Rain        *float64  `json:"rain,omitempty"`
	RainRate    *float64  `json:"rainRate,omitempty"`
	Radiation   *float64  `json:"radiation,omitempty"`
	UV          *float64  `json:"UV,omitempty"`
	AppTemp     *float64  `json:"appTemp,omitempty"`
	ImportedAt  time.Time `json:"importedAt"`
}

// DestFields lists every settable destination field name, in archive column
// order. Sinks iterate this rather than hard-coding the schema twice.
var DestFields = []string{
	"outTemp", "inTemp", "dewpoint", "barometer", "windDir",
	"windSpeed", "windGust", "windchill", "heatindex",
	"outHumidity", "inHumidity", "rain", "rainRate",
	"radiation", "UV", "appTemp",
}

// Set assigns v to the destination field named dest. Returns false when dest
// is not a known destination field.
func (r *Record) Set(dest string, v *float64) bool {
	p := r.field(dest)
	if p == nil {
		return false
	}
	*p = v
	return true
}

// Value returns the value of the destination field named dest and whether
// dest is a known destination field.
func (r *Record) Value(dest string) (*float64, bool) {
	p := r.field(dest)
	if p == nil {
		return nil, false
	}
	return *p, true
}

func (r *Record) field(dest string) **float64 {
	switch dest {
	case "outTemp":
		return &r.OutTemp
	case "inTemp":
		return &r.InTemp
	case "dewpoint":
		return &r.Dewpoint
	case "barometer":
		return &r.Barometer
	case "windDir":
		return &r.WindDir
	case "windSpeed":
		return &r.WindSpeed
	case "windGust":
		return &r.WindGust
	case "windchill":
		return &r.WindChill
	case "heatindex":
		return &r.HeatIndex
	case "outHumidity":
		return &r.OutHumidity
	case "inHumidity":
		return &r.InHumidity
	case "rain":
		return &r.Rain
	case "rainRate":
		return &r.RainRate
	case "radiation":
		return &r.Radiation
	case "UV":
		return &r.UV
	case "appTemp":
		return &r.AppTemp
	default:
		return nil
	}
}
