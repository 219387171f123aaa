package policy

import (
	"fmt"

	"github.com/curetrace/curetrace/internal/fusion"
	"github.com/curetrace/curetrace/internal/precheck"
	"github.com/curetrace/curetrace/internal/temporal"
	"github.com/curetrace/curetrace/pkg/procspec"
	"github.com/curetrace/curetrace/pkg/types"
)

// Generic is the default decision algorithm: structural validation, sensor
// fusion, temporal analysis, precondition checks, assembly, in that order,
// linearly, with no backtracking. The verdict is a single logical AND over
// the hold-time requirement and every soft precondition; each failing
// sub-check contributes its own reason so the audit trail is complete.
func Generic(series *types.SampleSeries, spec *procspec.ProcessSpec) (*types.DecisionResult, error) {
	res, _, err := genericWithAnalysis(series, spec)
	return res, err
}

// genericWithAnalysis is Generic plus the temporal analysis it computed, for
// policies that layer further checks over the counted hold intervals.
func genericWithAnalysis(series *types.SampleSeries, spec *procspec.ProcessSpec) (*types.DecisionResult, temporal.Analysis, error) {
	if err := precheck.Hard(series, spec); err != nil {
		return nil, temporal.Analysis{}, err
	}

	cols, warnings, err := precheck.Select(series, spec)
	if err != nil {
		return nil, temporal.Analysis{}, err
	}

	requireAtLeast := 0
	if spec.SensorSelection != nil {
		requireAtLeast = spec.SensorSelection.RequireAtLeast
	}
	threshold := spec.ConservativeThresholdC()

	fused, err := fusion.Combine(series, cols, spec.FusionMode(), requireAtLeast, threshold)
	if err != nil {
		return nil, temporal.Analysis{}, err
	}

	an := temporal.Analyze(series.Times(), fused, threshold, spec.Spec.HysteresisC,
		spec.Continuous(), spec.MaxTotalDipsS())

	var reasons []string

	holdOK := an.ActualHoldS >= spec.Spec.HoldTimeS
	if holdOK {
		reasons = append(reasons, fmt.Sprintf(
			"held %.0fs at or above conservative threshold of %.1f°C (required %.0fs)",
			an.ActualHoldS, threshold, spec.Spec.HoldTimeS))
	} else {
		reasons = append(reasons, fmt.Sprintf(
			"hold time %.0fs below required %.0fs at conservative threshold %.1f°C",
			an.ActualHoldS, spec.Spec.HoldTimeS, threshold))
	}

	softReasons, softWarnings := precheck.Soft(series, cols, an, spec)
	reasons = append(reasons, softReasons...)
	warnings = append(warnings, softWarnings...)

	// Gap materiality: a recorded gap is FAIL-contributing only when it falls
	// inside a counted hold interval; elsewhere it is an audit warning.
	materialGaps := 0
	for _, g := range series.Gaps {
		material := false
		for _, iv := range an.Intervals {
			if g.AfterIndex >= iv.StartIndex && g.AfterIndex+1 <= iv.EndIndex {
				material = true
				break
			}
		}
		if material {
			materialGaps++
			reasons = append(reasons, fmt.Sprintf(
				"data gap of %.0fs inside hold interval (after %s)",
				g.Seconds, g.Start.Format("15:04:05")))
		} else {
			warnings = append(warnings, fmt.Sprintf(
				"data gap of %.0fs outside hold intervals (after %s)",
				g.Seconds, g.Start.Format("15:04:05")))
		}
	}

	min, max, _ := precheck.ObservedRange(series, cols)

	if warnings == nil {
		warnings = []string{}
	}
	res := &types.DecisionResult{
		Pass:                   holdOK && len(softReasons) == 0 && materialGaps == 0,
		TargetTempC:            spec.Spec.TargetTempC,
		ConservativeThresholdC: threshold,
		ActualHoldTimeS:        an.ActualHoldS,
		RequiredHoldTimeS:      spec.Spec.HoldTimeS,
		MaxTempC:               max,
		MinTempC:               min,
		Reasons:                reasons,
		Warnings:               warnings,
	}
	if an.ThresholdReached {
		v := an.TimeToThresholdS
		res.TimeToThresholdS = &v
	}
	if an.RampDefined {
		v := an.MaxRampCPerMin
		res.MaxRampRateCPerMin = &v
	}
	return res, an, nil
}
