package ingest

import (
	"log/slog"
	"sort"
	"time"

	"github.com/curetrace/curetrace/pkg/procspec"
	"github.com/curetrace/curetrace/pkg/tabular"
	"github.com/curetrace/curetrace/pkg/types"
)

// Normalize converts a raw table into a SampleSeries: UTC timestamps,
// Celsius-only temperature channels, sorted, duplicate-free, with
// over-tolerance gaps recorded for later materiality resolution.
//
// Auxiliary channels (humidity, pressure, gas) are kept only when the
// declared industry's policy consumes them; otherwise they are excluded
// entirely.
func Normalize(tbl *tabular.Table, reqs procspec.DataRequirements, industry procspec.Industry) (*types.SampleSeries, error) {
	if tbl == nil || len(tbl.Columns) == 0 || tbl.NumRows() == 0 {
		return nil, types.Structuralf("empty input table")
	}

	tsCol := detectTimestampColumn(tbl)
	if tsCol < 0 {
		return nil, types.Structuralf("no parseable timestamp column among %v", tbl.Columns)
	}

	series := &types.SampleSeries{}
	keepAux := industry.UsesEnvironmentChannels()
	class := make(map[int]channelClass) // column index → class, for kept columns
	for i, name := range tbl.Columns {
		if i == tsCol {
			continue
		}
		switch c := classify(name); c {
		case classTemperature:
			class[i] = c
			series.Temps = append(series.Temps, name)
		case classHumidity:
			if keepAux {
				class[i] = c
				series.Humidity = append(series.Humidity, name)
			}
		case classPressure:
			if keepAux {
				class[i] = c
				series.Pressure = append(series.Pressure, name)
			}
		case classGas:
			if keepAux {
				class[i] = c
				series.Gas = append(series.Gas, name)
			}
		}
	}
	if len(series.Temps) == 0 {
		return nil, types.Structuralf("no temperature-like columns among %v", tbl.Columns)
	}

	slog.Debug("ingest: columns classified",
		"timestamp", tbl.Columns[tsCol],
		"temperature", series.Temps,
		"auxiliary", keepAux,
	)

	samples := buildSamples(tbl, tsCol, class)
	if len(samples) == 0 {
		return nil, types.Structuralf("no rows with a parseable timestamp")
	}

	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].At.Before(samples[j].At)
	})

	deduped, err := resolveDuplicates(samples, reqs.DuplicatePolicy)
	if err != nil {
		return nil, err
	}
	series.Samples = deduped
	series.Gaps = findGaps(deduped, reqs.AllowedGapsS)

	return series, nil
}

// detectTimestampColumn returns the index of the first column whose every
// non-empty cell parses as a timestamp, or -1.
func detectTimestampColumn(tbl *tabular.Table) int {
	for col := range tbl.Columns {
		parsed := 0
		ok := true
		for row := 0; row < tbl.NumRows(); row++ {
			cell := tbl.Cell(row, col)
			if cell == "" {
				continue
			}
			if _, valid := parseTimestamp(cell); !valid {
				ok = false
				break
			}
			parsed++
		}
		if ok && parsed > 0 {
			return col
		}
	}
	return -1
}

// buildSamples parses every row into a Sample, converting Fahrenheit columns
// and dropping rows without a timestamp. Fahrenheit conversion keys off the
// column name alone; mixed units across columns are fine.
func buildSamples(tbl *tabular.Table, tsCol int, class map[int]channelClass) []types.Sample {
	fahrenheit := make(map[int]bool, len(class))
	for i, c := range class {
		if c == classTemperature && isFahrenheit(tbl.Columns[i]) {
			fahrenheit[i] = true
		}
	}

	samples := make([]types.Sample, 0, tbl.NumRows())
	for row := 0; row < tbl.NumRows(); row++ {
		at, ok := parseTimestamp(tbl.Cell(row, tsCol))
		if !ok {
			continue
		}
		readings := make(map[string]types.Reading, len(class))
		for col := range class {
			v, valid := parseReading(tbl.Cell(row, col))
			if valid && fahrenheit[col] {
				v = fahrenheitToCelsius(v)
			}
			readings[tbl.Columns[col]] = types.Reading{Value: v, Valid: valid}
		}
		samples = append(samples, types.Sample{At: at, Readings: readings})
	}
	return samples
}

// resolveDuplicates collapses samples sharing an instant according to the
// configured policy. Input must be sorted.
func resolveDuplicates(samples []types.Sample, policy procspec.DuplicatePolicy) ([]types.Sample, error) {
	out := make([]types.Sample, 0, len(samples))
	for i := 0; i < len(samples); {
		j := i + 1
		for j < len(samples) && samples[j].At.Equal(samples[i].At) {
			j++
		}
		if j-i > 1 {
			switch policy {
			case procspec.DupReject:
				return nil, types.Structuralf("%d duplicate samples at %s",
					j-i, samples[i].At.Format(time.RFC3339))
			case procspec.DupMean:
				out = append(out, meanSample(samples[i:j]))
			default: // keep_first
				out = append(out, samples[i])
			}
		} else {
			out = append(out, samples[i])
		}
		i = j
	}
	return out, nil
}

// meanSample averages the valid readings of each channel across a group of
// same-instant samples. A channel with no valid reading in the group stays
// invalid.
func meanSample(group []types.Sample) types.Sample {
	merged := make(map[string]types.Reading, len(group[0].Readings))
	for name := range group[0].Readings {
		sum, n := 0.0, 0
		for _, sm := range group {
			if r := sm.Readings[name]; r.Valid {
				sum += r.Value
				n++
			}
		}
		if n > 0 {
			merged[name] = types.Num(sum / float64(n))
		} else {
			merged[name] = types.Reading{}
		}
	}
	return types.Sample{At: group[0].At, Readings: merged}
}

// findGaps records every inter-sample span wider than allowedGapsS.
// A tolerance of zero disables gap recording.
func findGaps(samples []types.Sample, allowedGapsS float64) []types.Gap {
	if allowedGapsS <= 0 {
		return nil
	}
	var gaps []types.Gap
	for i := 0; i+1 < len(samples); i++ {
		delta := samples[i+1].At.Sub(samples[i].At).Seconds()
		if delta > allowedGapsS {
			gaps = append(gaps, types.Gap{
				AfterIndex: i,
				Start:      samples[i].At,
				End:        samples[i+1].At,
				Seconds:    delta,
			})
		}
	}
	return gaps
}
