package temporal

import (
	"time"

	"github.com/curetrace/curetrace/pkg/types"
)

// Analysis is the full temporal fact set about one fused series.
type Analysis struct {
	// ActualHoldS is the credited hold time in seconds under the requested
	// hold logic.
	ActualHoldS float64

	// Intervals are the above-threshold runs that contributed to
	// ActualHoldS: the single longest run in continuous mode, the counted
	// runs up to dip-budget exhaustion in cumulative mode.
	Intervals []types.Interval

	// TimeToThresholdS is the elapsed time from series start to the first
	// sample at/above the threshold; ThresholdReached is false when the
	// threshold was never reached.
	TimeToThresholdS float64
	ThresholdReached bool

	// MaxRampCPerMin is the steepest per-step heating rate in °C/min.
	// RampDefined is false for boolean series and for series without two
	// consecutive valid samples separated by positive time.
	MaxRampCPerMin float64
	RampDefined    bool
}

// Analyze runs threshold and temporal analysis over a fused series.
//
// Numeric series pass through the hysteresis machine: the state enters ABOVE
// on a reading at or above thresholdC and leaves only when a reading drops
// below thresholdC - hysteresisC, so noise oscillating inside the band never splits
// one hold period into many. Boolean series (majority fusion) use the votes
// directly; no threshold re-check and no hysteresis apply.
//
// Continuous mode credits the single longest run. Cumulative mode credits
// runs in order while the interleaved below-threshold time stays within
// maxTotalDipsS; once the budget is exceeded, accumulation truncates at the
// point of exceedance: credit earned before the budget ran out is kept,
// everything after is discarded. A dip of exactly the budget is within
// budget.
func Analyze(times []time.Time, fused *types.FusedSeries, thresholdC, hysteresisC float64, continuous bool, maxTotalDipsS float64) Analysis {
	an := Analysis{}
	if len(times) == 0 {
		return an
	}

	var all []types.Interval
	if fused.Kind == types.FusedBool {
		all = boolRuns(times, fused.Truth)
		for i, v := range fused.Truth {
			if v {
				an.TimeToThresholdS = times[i].Sub(times[0]).Seconds()
				an.ThresholdReached = true
				break
			}
		}
	} else {
		all = hysteresisRuns(times, fused.Values, thresholdC, hysteresisC)
		for i, r := range fused.Values {
			if r.Valid && r.Value >= thresholdC {
				an.TimeToThresholdS = times[i].Sub(times[0]).Seconds()
				an.ThresholdReached = true
				break
			}
		}
		an.MaxRampCPerMin, an.RampDefined = maxRamp(times, fused.Values)
	}

	if continuous {
		an.Intervals, an.ActualHoldS = longestRun(all)
	} else {
		an.Intervals, an.ActualHoldS = cumulative(all, maxTotalDipsS)
	}
	return an
}

// hysteresisRuns extracts the maximal ABOVE runs of a numeric series.
// Invalid readings neither enter nor leave the ABOVE state; the state
// persists across them.
func hysteresisRuns(times []time.Time, values []types.Reading, thresholdC, hysteresisC float64) []types.Interval {
	var runs []types.Interval
	above := false
	start := 0
	for i, r := range values {
		if !r.Valid {
			continue
		}
		switch {
		case !above && r.Value >= thresholdC:
			above = true
			start = i
		case above && r.Value < thresholdC-hysteresisC:
			above = false
			runs = append(runs, makeInterval(times, start, i-1))
		}
	}
	if above {
		runs = append(runs, makeInterval(times, start, len(values)-1))
	}
	return runs
}

// boolRuns extracts the maximal true runs of a boolean series.
func boolRuns(times []time.Time, truth []bool) []types.Interval {
	var runs []types.Interval
	inRun := false
	start := 0
	for i, v := range truth {
		switch {
		case v && !inRun:
			inRun = true
			start = i
		case !v && inRun:
			inRun = false
			runs = append(runs, makeInterval(times, start, i-1))
		}
	}
	if inRun {
		runs = append(runs, makeInterval(times, start, len(truth)-1))
	}
	return runs
}

func makeInterval(times []time.Time, start, end int) types.Interval {
	return types.Interval{
		StartIndex: start,
		EndIndex:   end,
		Start:      times[start],
		End:        times[end],
		Seconds:    times[end].Sub(times[start]).Seconds(),
	}
}

// longestRun picks the single longest run; earlier wins ties.
func longestRun(runs []types.Interval) ([]types.Interval, float64) {
	best := -1
	for i, r := range runs {
		if best < 0 || r.Seconds > runs[best].Seconds {
			best = i
		}
	}
	if best < 0 {
		return nil, 0
	}
	return []types.Interval{runs[best]}, runs[best].Seconds
}

// cumulative sums run durations in order while the interleaved dip time stays
// within budget, truncating at the point of exceedance.
func cumulative(runs []types.Interval, budgetS float64) ([]types.Interval, float64) {
	var counted []types.Interval
	total, dips := 0.0, 0.0
	for i, r := range runs {
		if i > 0 {
			dips += r.Start.Sub(runs[i-1].End).Seconds()
			if dips > budgetS {
				break
			}
		}
		counted = append(counted, r)
		total += r.Seconds
	}
	return counted, total
}

// maxRamp finds the steepest heating rate between consecutive valid samples.
// Steps with zero or negative elapsed time are skipped.
func maxRamp(times []time.Time, values []types.Reading) (float64, bool) {
	max, defined := 0.0, false
	prev := -1
	for i, r := range values {
		if !r.Valid {
			continue
		}
		if prev >= 0 {
			dt := times[i].Sub(times[prev]).Minutes()
			if dt > 0 {
				rate := (r.Value - values[prev].Value) / dt
				if !defined || rate > max {
					max = rate
					defined = true
				}
			}
		}
		prev = i
	}
	return max, defined
}
