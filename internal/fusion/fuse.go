package fusion

import (
	"github.com/curetrace/curetrace/pkg/procspec"
	"github.com/curetrace/curetrace/pkg/types"
)

// Combine fuses the named channels of series into a single FusedSeries.
//
//   - min_of_set:  per-timestamp minimum of valid readings; null where all
//     inputs are null.
//   - mean_of_set: per-timestamp arithmetic mean of valid readings; null
//     where all inputs are null.
//   - majority_over_threshold: per-timestamp boolean, true iff the count of
//     channels reading at/above thresholdC meets requireAtLeast, or a strict
//     majority of valid channels when requireAtLeast is zero. thresholdC is a
//     plain comparison point; zero and sub-zero thresholds are valid.
//
// requireAtLeast also bounds the series as a whole: fewer columns with any
// valid data than requireAtLeast is a job-fatal structural error, not a
// per-row skip; conservative compliance semantics demand a hard stop over
// silent degradation.
func Combine(series *types.SampleSeries, columns []string, mode procspec.FusionMode, requireAtLeast int, thresholdC float64) (*types.FusedSeries, error) {
	if len(columns) == 0 {
		return nil, types.Structuralf("fusion: no sensor columns provided")
	}

	if requireAtLeast > 0 {
		usable := 0
		for _, col := range columns {
			if !series.AllNull(col) {
				usable++
			}
		}
		if usable < requireAtLeast {
			return nil, types.Structuralf(
				"fusion: %d sensor column(s) with valid data, require_at_least is %d",
				usable, requireAtLeast)
		}
	}

	n := series.Len()
	switch mode {
	case procspec.FusionMinOfSet:
		return fuseNumeric(series, columns, n, func(vals []float64) float64 {
			min := vals[0]
			for _, v := range vals[1:] {
				if v < min {
					min = v
				}
			}
			return min
		}), nil

	case procspec.FusionMeanOfSet:
		return fuseNumeric(series, columns, n, func(vals []float64) float64 {
			sum := 0.0
			for _, v := range vals {
				sum += v
			}
			return sum / float64(len(vals))
		}), nil

	case procspec.FusionMajorityOverThreshold:
		return fuseMajority(series, columns, n, requireAtLeast, thresholdC), nil

	default:
		// Unreachable for a validated ProcessSpec; kept for direct callers.
		return nil, types.Structuralf("fusion: unknown mode %q", mode)
	}
}

// fuseNumeric applies reduce to the valid readings of each row.
func fuseNumeric(series *types.SampleSeries, columns []string, n int, reduce func([]float64) float64) *types.FusedSeries {
	out := &types.FusedSeries{Kind: types.FusedNumeric, Values: make([]types.Reading, n)}
	vals := make([]float64, 0, len(columns))
	for i := 0; i < n; i++ {
		vals = vals[:0]
		for _, col := range columns {
			if r := series.Samples[i].Readings[col]; r.Valid {
				vals = append(vals, r.Value)
			}
		}
		if len(vals) > 0 {
			out.Values[i] = types.Num(reduce(vals))
		}
	}
	return out
}

// fuseMajority votes each row: true iff enough channels read at/above the
// threshold. When requireAtLeast is zero the quorum is a strict majority of
// the row's valid channels.
func fuseMajority(series *types.SampleSeries, columns []string, n, requireAtLeast int, thresholdC float64) *types.FusedSeries {
	out := &types.FusedSeries{Kind: types.FusedBool, Truth: make([]bool, n)}
	for i := 0; i < n; i++ {
		above, valid := 0, 0
		for _, col := range columns {
			r := series.Samples[i].Readings[col]
			if !r.Valid {
				continue
			}
			valid++
			if r.Value >= thresholdC {
				above++
			}
		}
		quorum := requireAtLeast
		if quorum == 0 {
			quorum = valid/2 + 1
		}
		out.Truth[i] = valid > 0 && above >= quorum
	}
	return out
}
