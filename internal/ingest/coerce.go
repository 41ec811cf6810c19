package ingest

import (
	"math"
	"strconv"
	"time"

	"github.com/araddon/dateparse"
)

// coercer converts a raw string cell into a typed value.
type coercer func(string) (interface{}, error)

// processors maps each column type to its coercion function. Types with no
// entry are stored as-is.
var processors = map[ColumnType]coercer{
	TypeBoolean: coerceBool,
	TypeNumber:  coerceNumber,
	TypeDate:    coerceDate,
}

// Coerce converts a raw string value according to the declared column type.
// Label, string and category columns pass through unchanged.
func Coerce(raw string, declared ColumnType) (interface{}, error) {
	proc, ok := processors[declared]
	if !ok {
		return raw, nil
	}
	return proc(raw)
}

// coerceBool accepts, in order: "0"/"1", the JSON literals "true"/"false"
// (case-sensitive), and the YAML-style "no"/"off"/"yes"/"on".
func coerceBool(raw string) (interface{}, error) {
	switch raw {
	case "0", "false", "no", "off":
		return false, nil
	case "1", "true", "yes", "on":
		return true, nil
	}
	return nil, &CoercionError{Value: raw, Type: TypeBoolean}
}

// coerceNumber tries an integer parse before falling back to float.
func coerceNumber(raw string) (interface{}, error) {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i, nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f, nil
	}
	return nil, &CoercionError{Value: raw, Type: TypeNumber}
}

// maxTimestampSeconds bounds the unix-timestamp reading: nanosecond
// precision represents dates roughly between the years 1678 and 2262.
// Magnitudes beyond that would overflow the conversion and fabricate a
// date, so they fall through to calendar parsing instead.
const maxTimestampSeconds = float64(math.MaxInt64) / float64(time.Second)

// coerceDate reads a date as a unix timestamp (seconds, possibly fractional)
// or, failing that, as a free-form calendar date. Either way the stored value
// is an ISO 8601 string.
func coerceDate(raw string) (interface{}, error) {
	if secs, err := strconv.ParseFloat(raw, 64); err == nil && math.Abs(secs) < maxTimestampSeconds {
		nanos := int64(secs * float64(time.Second))
		return time.Unix(0, nanos).Format("2006-01-02T15:04:05"), nil
	}
	if t, err := dateparse.ParseAny(raw); err == nil {
		return t.Format("2006-01-02T15:04:05"), nil
	}
	return nil, &CoercionError{Value: raw, Type: TypeDate}
}
