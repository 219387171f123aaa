package ingest

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// channelClass buckets a column by what it measures.
type channelClass int

const (
	classOther channelClass = iota
	classTemperature
	classHumidity
	classPressure
	classGas
)

var (
	tcPattern = regexp.MustCompile(`^tc\d*$`)
	ptPattern = regexp.MustCompile(`^pt\d+$`)
)

// classify buckets a column name. Auxiliary classes win over temperature so
// that "humidity_sensor" is never mistaken for a thermal channel.
func classify(name string) channelClass {
	l := strings.ToLower(strings.TrimSpace(name))
	switch {
	case hasAnyToken(l, "humidity", "rh"):
		return classHumidity
	case hasAnyToken(l, "gas", "eto", "concentration") || strings.HasSuffix(l, "mg_l"):
		return classGas
	case hasAnyToken(l, "pressure", "kpa", "psi", "bar"):
		return classPressure
	case isTemperatureName(l):
		return classTemperature
	default:
		return classOther
	}
}

// isTemperatureName reports whether a lower-cased column name looks like a
// temperature channel: a temperature/sensor word, a thermocouple/RTD token,
// or a Celsius/Fahrenheit unit suffix.
func isTemperatureName(l string) bool {
	if strings.Contains(l, "temp") || strings.Contains(l, "therm") ||
		strings.Contains(l, "sensor") || strings.Contains(l, "probe") {
		return true
	}
	for _, tok := range tokens(l) {
		if tok == "c" || tok == "f" || tok == "degc" || tok == "degf" ||
			tok == "celsius" || tok == "fahrenheit" ||
			tcPattern.MatchString(tok) || ptPattern.MatchString(tok) {
			return true
		}
	}
	return false
}

// isFahrenheit reports whether the column name declares Fahrenheit readings.
func isFahrenheit(name string) bool {
	l := strings.ToLower(strings.TrimSpace(name))
	for _, tok := range tokens(l) {
		if tok == "f" || tok == "degf" || tok == "fahrenheit" {
			return true
		}
	}
	return false
}

// tokens splits a column name on non-alphanumeric boundaries.
func tokens(l string) []string {
	return strings.FieldsFunc(l, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}

func hasAnyToken(l string, want ...string) bool {
	for _, tok := range tokens(l) {
		for _, w := range want {
			if tok == w {
				return true
			}
		}
	}
	return false
}

// fahrenheitToCelsius converts per C = (F - 32) * 5/9.
func fahrenheitToCelsius(f float64) float64 {
	return (f - 32) * 5 / 9
}

// Accepted wall-clock layouts, tried in order. Layouts without a zone are
// naive timestamps; time.Parse reads them as UTC, which is the contract.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
}

// Plausible UNIX-epoch-seconds window, in seconds. Values outside it are not
// timestamps (this is what keeps a column of temperatures from qualifying).
const (
	epochMin = 1e8 // 1973-03-03
	epochMax = 4e9 // 2096-10-02
)

// parseTimestamp parses one cell as ISO-8601 or UNIX epoch seconds. The
// returned time is always UTC.
func parseTimestamp(cell string) (time.Time, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil && v >= epochMin && v <= epochMax {
		sec := int64(v)
		nsec := int64((v - float64(sec)) * 1e9)
		return time.Unix(sec, nsec).UTC(), true
	}
	return time.Time{}, false
}

// nullCells are the cell spellings treated as absent readings.
var nullCells = map[string]bool{
	"": true, "null": true, "nan": true, "n/a": true, "na": true, "-": true,
}

// parseReading parses one numeric cell into an optional Reading.
func parseReading(cell string) (float64, bool) {
	s := strings.TrimSpace(cell)
	if nullCells[strings.ToLower(s)] {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
