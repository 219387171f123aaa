package policy

import (
	"fmt"

	"github.com/curetrace/curetrace/pkg/procspec"
	"github.com/curetrace/curetrace/pkg/types"
)

// EtOSterilization layers the ethylene-oxide exposure requirements on top of
// the generic temperature hold: while the counted hold intervals are in
// effect, relative humidity must stay inside the declared window and, when a
// gas channel is present, gas concentration must stay at or above the
// declared minimum.
//
// Missing environment configuration or a missing humidity channel makes this
// policy unable to decide; the dispatcher then falls back to the generic
// algorithm.
func EtOSterilization(series *types.SampleSeries, spec *procspec.ProcessSpec) (*types.DecisionResult, error) {
	env := spec.Environment
	if env == nil || env.HumidityMinPct == nil || env.HumidityMaxPct == nil {
		return nil, fmt.Errorf("eto: humidity window not configured")
	}
	if len(series.Humidity) == 0 {
		return nil, fmt.Errorf("eto: no humidity channel in the data")
	}

	res, an, err := genericWithAnalysis(series, spec)
	if err != nil {
		return nil, err
	}

	// Environment windows are checked across the counted hold intervals.
	// When no interval was counted the whole window is checked instead; a
	// conservative superset.
	intervals := an.Intervals

	humidityViolations := envViolations(series, series.Humidity, intervals,
		func(v float64) bool { return v < *env.HumidityMinPct || v > *env.HumidityMaxPct })
	if humidityViolations > 0 {
		res.Pass = false
		res.Reasons = append(res.Reasons, fmt.Sprintf(
			"humidity outside [%.1f, %.1f]%%RH at %d sample(s) during exposure",
			*env.HumidityMinPct, *env.HumidityMaxPct, humidityViolations))
	} else {
		res.Reasons = append(res.Reasons, fmt.Sprintf(
			"humidity within [%.1f, %.1f]%%RH throughout exposure",
			*env.HumidityMinPct, *env.HumidityMaxPct))
	}

	if env.GasMinMgL != nil {
		if len(series.Gas) == 0 {
			res.Warnings = append(res.Warnings,
				"gas concentration minimum declared but no gas channel in the data")
		} else {
			gasViolations := envViolations(series, series.Gas, intervals,
				func(v float64) bool { return v < *env.GasMinMgL })
			if gasViolations > 0 {
				res.Pass = false
				res.Reasons = append(res.Reasons, fmt.Sprintf(
					"gas concentration below %.1f mg/L at %d sample(s) during exposure",
					*env.GasMinMgL, gasViolations))
			} else {
				res.Reasons = append(res.Reasons, fmt.Sprintf(
					"gas concentration at or above %.1f mg/L throughout exposure", *env.GasMinMgL))
			}
		}
	}
	return res, nil
}

// envViolations counts samples inside the counted intervals whose mean
// reading across the given channels violates the predicate. Samples where
// every channel is null are skipped; nulls are a sensor-quality concern, not
// an exposure violation.
func envViolations(series *types.SampleSeries, cols []string, intervals []types.Interval, bad func(float64) bool) int {
	violations := 0
	for i := range series.Samples {
		if len(intervals) > 0 && !insideAny(intervals, i) {
			continue
		}
		sum, n := 0.0, 0
		for _, col := range cols {
			if r := series.Samples[i].Readings[col]; r.Valid {
				sum += r.Value
				n++
			}
		}
		if n > 0 && bad(sum/float64(n)) {
			violations++
		}
	}
	return violations
}

func insideAny(intervals []types.Interval, i int) bool {
	for _, iv := range intervals {
		if iv.Contains(i) {
			return true
		}
	}
	return false
}
