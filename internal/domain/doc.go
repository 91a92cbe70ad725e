// Package domain models Cumulus monthly log data and the normalized archive
// records produced from it.
//
// # Data Source
//
// Cumulus weather-station software writes one log file per calendar month,
// named "MmmYYlog.txt" (e.g. Jan16log.txt). Each line is one observation in a
// delimited, headerless layout whose field delimiter and decimal separator
// depend on the regional settings of the machine Cumulus ran on. The first
// two fields of every line are the date and time of the observation.
//
// # Field Layout
//
// The positional field order is fixed by Cumulus and carried here in
// [SourceFields]. Because the files have no header row, those names exist for
// internal use only. During cleanup the date and time fields are merged into
// a single token, so position 0 is the combined date-time:
//
//	"01/01/16 00:00"  →  layout [RawTimeLayout], two-digit year,
//	day/month order, local station time.
//
// Not every source field has an archive destination. Cumulative daily totals
// (day_rain, cur_et, day_sunshine_hours, ...) and duplicate wind readings are
// not imported; the full list of imported fields lives in the mapping
// package. The midnight_rain field is the one cumulative value that is
// imported: rainfall since midnight, passed through as-is. Deriving per-record
// rain deltas is the archive sink's job, never the importer's, because only
// the sink knows what it has already stored.
//
// # Units
//
// Monthly logs carry no unit metadata at all. The units in effect when
// Cumulus wrote the files must be declared in the import profile and are
// validated by the units package before any file is opened. Records therefore
// keep their source units; they are tagged, not converted.
//
// # Missing Values
//
// A nil pointer field on [Record] is the explicit "no value" sentinel: the
// source row was short, the token did not parse as a number, or the sensor
// was declared absent in the import profile.
package domain
