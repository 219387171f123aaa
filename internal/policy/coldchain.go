package policy

import (
	"fmt"

	"github.com/curetrace/curetrace/internal/fusion"
	"github.com/curetrace/curetrace/internal/precheck"
	"github.com/curetrace/curetrace/pkg/procspec"
	"github.com/curetrace/curetrace/pkg/types"
)

// ColdChain decides storage compliance purely on the percentage of samples
// whose fused temperature lies inside the declared band over the monitoring
// window. Once the structural checks pass, the verdict is always PASS or
// FAIL, never indeterminate. Hold-time fields in the result are zero: hold
// accounting is not the cold-chain criterion.
func ColdChain(series *types.SampleSeries, spec *procspec.ProcessSpec) (*types.DecisionResult, error) {
	band := spec.Spec.Band
	if band == nil {
		// Unreachable for a validated spec; direct callers get the fallback.
		return nil, fmt.Errorf("cold chain: no temperature band declared")
	}
	if spec.FusionMode() == procspec.FusionMajorityOverThreshold {
		return nil, fmt.Errorf("cold chain: majority fusion has no numeric series to band-check")
	}

	if err := precheck.Hard(series, spec); err != nil {
		return nil, err
	}
	cols, warnings, err := precheck.Select(series, spec)
	if err != nil {
		return nil, err
	}

	requireAtLeast := 0
	if spec.SensorSelection != nil {
		requireAtLeast = spec.SensorSelection.RequireAtLeast
	}
	fused, err := fusion.Combine(series, cols, spec.FusionMode(), requireAtLeast, spec.ConservativeThresholdC())
	if err != nil {
		return nil, err
	}

	inBand, valid := 0, 0
	for _, r := range fused.Values {
		if !r.Valid {
			continue
		}
		valid++
		if r.Value >= band.MinC && r.Value <= band.MaxC {
			inBand++
		}
	}
	if valid == 0 {
		return nil, types.Structuralf("cold chain: no valid fused samples")
	}

	pct := float64(inBand) / float64(valid) * 100
	required := band.EffectiveMinInBandPct()
	pass := pct >= required

	var reasons []string
	if pass {
		reasons = append(reasons, fmt.Sprintf(
			"%.1f%% of samples within band [%.1f, %.1f]°C (required %.1f%%)",
			pct, band.MinC, band.MaxC, required))
	} else {
		reasons = append(reasons, fmt.Sprintf(
			"only %.1f%% of samples within band [%.1f, %.1f]°C, required %.1f%%",
			pct, band.MinC, band.MaxC, required))
	}

	// Storage monitoring has no hold intervals, so every recorded gap is an
	// audit warning rather than a FAIL reason.
	for _, g := range series.Gaps {
		warnings = append(warnings, fmt.Sprintf(
			"data gap of %.0fs (after %s)", g.Seconds, g.Start.Format("15:04:05")))
	}
	if warnings == nil {
		warnings = []string{}
	}

	min, max, _ := precheck.ObservedRange(series, cols)
	return &types.DecisionResult{
		Pass:                   pass,
		TargetTempC:            spec.Spec.TargetTempC,
		ConservativeThresholdC: spec.ConservativeThresholdC(),
		RequiredHoldTimeS:      spec.Spec.HoldTimeS,
		MaxTempC:               max,
		MinTempC:               min,
		Reasons:                reasons,
		Warnings:               warnings,
	}, nil
}
