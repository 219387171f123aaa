package precheck

import (
	"fmt"
	"math"

	"github.com/curetrace/curetrace/internal/temporal"
	"github.com/curetrace/curetrace/pkg/procspec"
	"github.com/curetrace/curetrace/pkg/types"
)

// Select resolves which temperature channels feed fusion: the explicitly
// named sensors when the spec declares any, every detected temperature
// channel otherwise. Dead channels (present but entirely null) are dropped
// with a warning as long as enough survive.
//
// Hard failures: a named sensor wholly absent from the data, fewer survivors
// than require_at_least, or no surviving channel at all.
func Select(series *types.SampleSeries, spec *procspec.ProcessSpec) (cols []string, warnings []string, err error) {
	declared := series.Temps
	requireAtLeast := 0
	if sel := spec.SensorSelection; sel != nil {
		if len(sel.Sensors) > 0 {
			declared = sel.Sensors
		}
		requireAtLeast = sel.RequireAtLeast
	}

	for _, name := range declared {
		if !series.HasChannel(name) {
			return nil, nil, types.Structuralf("named sensor %q absent from the data", name)
		}
		if series.AllNull(name) {
			warnings = append(warnings, fmt.Sprintf("sensor %q has no valid readings; excluded from fusion", name))
			continue
		}
		cols = append(cols, name)
	}

	if len(cols) == 0 {
		return nil, nil, types.Structuralf("all temperature data is null")
	}
	if requireAtLeast > 0 && len(cols) < requireAtLeast {
		return nil, nil, types.Structuralf("%d usable sensor(s), require_at_least is %d",
			len(cols), requireAtLeast)
	}
	if len(cols) < len(declared) {
		warnings = append(warnings, fmt.Sprintf("%d of %d declared sensors usable", len(cols), len(declared)))
	}
	return cols, warnings, nil
}

// MinSamples is the smallest row count from which the required hold time can
// be reliably inferred at the declared cadence: one sample per period across
// the hold window, plus the starting sample, never fewer than two.
func MinSamples(spec *procspec.ProcessSpec) int {
	n := int(math.Ceil(spec.Spec.HoldTimeS/spec.DataRequirements.MaxSamplePeriodS)) + 1
	if n < 2 {
		n = 2
	}
	return n
}

// Hard runs the structural checks that must abort the whole call. No
// DecisionResult exists for input that fails here.
func Hard(series *types.SampleSeries, spec *procspec.ProcessSpec) error {
	if series == nil || series.Len() == 0 {
		return types.Structuralf("empty sample series")
	}
	if len(series.Temps) == 0 {
		return types.Structuralf("no temperature channels in series")
	}
	if n := MinSamples(spec); series.Len() < n {
		return types.Structuralf("%d samples, need at least %d to infer a %.0fs hold at %.0fs cadence",
			series.Len(), n, spec.Spec.HoldTimeS, spec.DataRequirements.MaxSamplePeriodS)
	}
	_, _, err := Select(series, spec)
	return err
}

// Soft evaluates the declared preconditions against the measured series.
// Violations become FAIL-contributing reasons; data-quality observations that
// do not affect the verdict become warnings.
func Soft(series *types.SampleSeries, cols []string, an temporal.Analysis, spec *procspec.ProcessSpec) (reasons, warnings []string) {
	if p := spec.Preconditions; p != nil {
		if p.MaxRampRateCPerMin != nil && an.RampDefined && an.MaxRampCPerMin > *p.MaxRampRateCPerMin {
			reasons = append(reasons, fmt.Sprintf(
				"max ramp rate %.2f°C/min exceeds ceiling %.2f°C/min",
				an.MaxRampCPerMin, *p.MaxRampRateCPerMin))
		}
		if p.MaxTimeToThresholdS != nil {
			switch {
			case !an.ThresholdReached:
				reasons = append(reasons, fmt.Sprintf(
					"conservative threshold never reached (ceiling %.0fs)", *p.MaxTimeToThresholdS))
			case an.TimeToThresholdS > *p.MaxTimeToThresholdS:
				reasons = append(reasons, fmt.Sprintf(
					"time to threshold %.0fs exceeds ceiling %.0fs",
					an.TimeToThresholdS, *p.MaxTimeToThresholdS))
			}
		}
		if p.MinPreheatTempC != nil {
			if _, max, ok := ObservedRange(series, cols); !ok || max < *p.MinPreheatTempC {
				reasons = append(reasons, fmt.Sprintf(
					"minimum preheat temperature %.1f°C never reached", *p.MinPreheatTempC))
			}
		}
	}

	if sparse := maxDeltaS(series); sparse > spec.DataRequirements.MaxSamplePeriodS {
		warnings = append(warnings, fmt.Sprintf(
			"sampling as sparse as %.0fs, declared ceiling %.0fs",
			sparse, spec.DataRequirements.MaxSamplePeriodS))
	}
	return reasons, warnings
}

// ObservedRange returns the minimum and maximum valid reading across the
// given channels. ok is false when no valid reading exists.
func ObservedRange(series *types.SampleSeries, cols []string) (min, max float64, ok bool) {
	for _, sm := range series.Samples {
		for _, col := range cols {
			r := sm.Readings[col]
			if !r.Valid {
				continue
			}
			if !ok || r.Value < min {
				min = r.Value
			}
			if !ok || r.Value > max {
				max = r.Value
			}
			ok = true
		}
	}
	return min, max, ok
}

func maxDeltaS(series *types.SampleSeries) float64 {
	max := 0.0
	for i := 0; i+1 < series.Len(); i++ {
		if d := series.Samples[i+1].At.Sub(series.Samples[i].At).Seconds(); d > max {
			max = d
		}
	}
	return max
}
