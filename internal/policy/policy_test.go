package policy

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/curetrace/curetrace/pkg/procspec"
	"github.com/curetrace/curetrace/pkg/types"
)

var baseTime = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func f(v float64) *float64 { return &v }

// steadySeries builds a series of two temperature channels holding the given
// values for n samples at a 30s cadence.
func steadySeries(n int, a, b float64) *types.SampleSeries {
	s := &types.SampleSeries{Temps: []string{"tc1", "tc2"}}
	for i := 0; i < n; i++ {
		s.Samples = append(s.Samples, types.Sample{
			At: baseTime.Add(time.Duration(i*30) * time.Second),
			Readings: map[string]types.Reading{
				"tc1": types.Num(a),
				"tc2": types.Num(b),
			},
		})
	}
	return s
}

func cureSpec() *procspec.ProcessSpec {
	return &procspec.ProcessSpec{
		Job: procspec.Job{JobID: "J1"},
		Spec: procspec.Process{
			Method:             "cure",
			TargetTempC:        180,
			HoldTimeS:          600,
			SensorUncertaintyC: 2,
		},
		DataRequirements: procspec.DataRequirements{
			MaxSamplePeriodS: 60,
			AllowedGapsS:     120,
			DuplicatePolicy:  procspec.DupKeepFirst,
		},
		Industry: procspec.IndustryGeneric,
	}
}

func TestGeneric_PassEmitsInformationalReason(t *testing.T) {
	res, err := Generic(steadySeries(21, 183.0, 182.5), cureSpec())
	if err != nil {
		t.Fatalf("Generic: %v", err)
	}
	if !res.Pass {
		t.Fatalf("Pass = false, reasons: %v", res.Reasons)
	}
	if len(res.Reasons) == 0 || !strings.Contains(res.Reasons[0], "held") {
		t.Errorf("Reasons = %v, want an informational hold reason", res.Reasons)
	}
	if res.ConservativeThresholdC != 182 {
		t.Errorf("ConservativeThresholdC = %g, want 182", res.ConservativeThresholdC)
	}
	if res.MaxTempC != 183 || res.MinTempC != 182.5 {
		t.Errorf("observed range = [%g, %g], want [182.5, 183]", res.MinTempC, res.MaxTempC)
	}
}

func TestGeneric_EveryFailingCheckContributesAReason(t *testing.T) {
	spec := cureSpec()
	spec.Preconditions = &procspec.Preconditions{
		MaxTimeToThresholdS: f(1), // guaranteed violated alongside the hold
		MinPreheatTempC:     f(500),
	}
	res, err := Generic(steadySeries(21, 175.0, 174.5), spec)
	if err != nil {
		t.Fatalf("Generic: %v", err)
	}
	if res.Pass {
		t.Fatal("Pass = true, want false")
	}
	// Hold shortfall + threshold-never-reached + preheat: all present, not
	// just the first.
	if len(res.Reasons) != 3 {
		t.Errorf("Reasons = %v, want all three failing checks", res.Reasons)
	}
}

func TestGeneric_GapMateriality(t *testing.T) {
	spec := cureSpec()
	spec.Spec.HoldTimeS = 120

	// Above threshold throughout, with a recorded 150s gap in the middle of
	// the hold interval.
	s := steadySeries(10, 183.0, 182.5)
	for i := 5; i < 10; i++ {
		s.Samples[i].At = s.Samples[i].At.Add(120 * time.Second)
	}
	s.Gaps = []types.Gap{{
		AfterIndex: 4,
		Start:      s.Samples[4].At,
		End:        s.Samples[5].At,
		Seconds:    150,
	}}

	res, err := Generic(s, spec)
	if err != nil {
		t.Fatalf("Generic: %v", err)
	}
	if res.Pass {
		t.Fatal("a material gap inside the hold interval must fail the decision")
	}
	found := false
	for _, r := range res.Reasons {
		if strings.Contains(r, "gap") && strings.Contains(r, "inside") {
			found = true
		}
	}
	if !found {
		t.Errorf("Reasons = %v, want a material-gap reason", res.Reasons)
	}
}

func TestGeneric_GapOutsideHoldIsWarning(t *testing.T) {
	spec := cureSpec()
	spec.Spec.HoldTimeS = 120

	// Ramp for 4 samples, then hold. The gap sits in the ramp phase.
	s := steadySeries(12, 183.0, 182.5)
	for i := 0; i < 4; i++ {
		s.Samples[i].Readings["tc1"] = types.Num(100)
		s.Samples[i].Readings["tc2"] = types.Num(100)
	}
	s.Gaps = []types.Gap{{AfterIndex: 1, Start: s.Samples[1].At, End: s.Samples[2].At, Seconds: 200}}

	res, err := Generic(s, spec)
	if err != nil {
		t.Fatalf("Generic: %v", err)
	}
	if !res.Pass {
		t.Fatalf("Pass = false, reasons: %v", res.Reasons)
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "gap") {
			found = true
		}
	}
	if !found {
		t.Errorf("Warnings = %v, want a non-material gap warning", res.Warnings)
	}
}

func TestColdChain_BandPercentage(t *testing.T) {
	spec := cureSpec()
	spec.Industry = procspec.IndustryColdChain
	spec.Spec.TargetTempC = 5
	spec.Spec.SensorUncertaintyC = 0.5
	spec.Spec.HoldTimeS = 300
	spec.Spec.Band = &procspec.Band{MinC: 2, MaxC: 8, MinInBandPct: f(90)}

	// 19 of 20 samples in band → 95% ≥ 90% → PASS.
	s := steadySeries(20, 5, 5)
	s.Samples[7].Readings["tc1"] = types.Num(12)
	s.Samples[7].Readings["tc2"] = types.Num(12)

	res, err := ColdChain(s, spec)
	if err != nil {
		t.Fatalf("ColdChain: %v", err)
	}
	if !res.Pass {
		t.Fatalf("Pass = false, reasons: %v", res.Reasons)
	}

	// Push three more samples out of band → 80% < 90% → FAIL.
	for _, i := range []int{3, 11, 15} {
		s.Samples[i].Readings["tc1"] = types.Num(12)
		s.Samples[i].Readings["tc2"] = types.Num(12)
	}
	res, err = ColdChain(s, spec)
	if err != nil {
		t.Fatalf("ColdChain: %v", err)
	}
	if res.Pass {
		t.Fatal("Pass = true, want false")
	}
	if len(res.Reasons) == 0 || !strings.Contains(res.Reasons[0], "band") {
		t.Errorf("Reasons = %v, want a band reason", res.Reasons)
	}
}

func etoSeries(n int, temp, rh, gas float64) *types.SampleSeries {
	s := &types.SampleSeries{
		Temps:    []string{"chamber_temp_C"},
		Humidity: []string{"humidity_pct"},
		Gas:      []string{"gas_mg_l"},
	}
	for i := 0; i < n; i++ {
		s.Samples = append(s.Samples, types.Sample{
			At: baseTime.Add(time.Duration(i*30) * time.Second),
			Readings: map[string]types.Reading{
				"chamber_temp_C": types.Num(temp),
				"humidity_pct":   types.Num(rh),
				"gas_mg_l":       types.Num(gas),
			},
		})
	}
	return s
}

func etoSpec() *procspec.ProcessSpec {
	spec := cureSpec()
	spec.Industry = procspec.IndustryEtOSterilization
	spec.Spec.TargetTempC = 54
	spec.Spec.SensorUncertaintyC = 1
	spec.Spec.HoldTimeS = 300
	spec.Environment = &procspec.Environment{
		HumidityMinPct: f(40),
		HumidityMaxPct: f(80),
		GasMinMgL:      f(400),
	}
	return spec
}

func TestEtO_AllWindowsSatisfied(t *testing.T) {
	res, err := EtOSterilization(etoSeries(21, 56, 60, 450), etoSpec())
	if err != nil {
		t.Fatalf("EtOSterilization: %v", err)
	}
	if !res.Pass {
		t.Fatalf("Pass = false, reasons: %v", res.Reasons)
	}
}

func TestEtO_HumidityViolationFails(t *testing.T) {
	s := etoSeries(21, 56, 60, 450)
	s.Samples[10].Readings["humidity_pct"] = types.Num(20)

	res, err := EtOSterilization(s, etoSpec())
	if err != nil {
		t.Fatalf("EtOSterilization: %v", err)
	}
	if res.Pass {
		t.Fatal("Pass = true, want false")
	}
	found := false
	for _, r := range res.Reasons {
		if strings.Contains(r, "humidity") {
			found = true
		}
	}
	if !found {
		t.Errorf("Reasons = %v, want a humidity reason", res.Reasons)
	}
}

func TestEtO_GasViolationFails(t *testing.T) {
	s := etoSeries(21, 56, 60, 450)
	s.Samples[4].Readings["gas_mg_l"] = types.Num(100)

	res, err := EtOSterilization(s, etoSpec())
	if err != nil {
		t.Fatalf("EtOSterilization: %v", err)
	}
	if res.Pass {
		t.Fatal("Pass = true, want false")
	}
}

func TestEtO_MissingHumidityChannelCannotDecide(t *testing.T) {
	s := steadySeries(21, 56, 56) // no humidity channel at all
	_, err := EtOSterilization(s, etoSpec())
	if err == nil {
		t.Fatal("expected a policy error")
	}
	if types.IsStructural(err) {
		t.Fatalf("err = %v must be internal, not structural", err)
	}
}

func TestDispatch_FallbackOnPolicyError(t *testing.T) {
	// EtO policy cannot decide without a humidity channel; the dispatcher
	// must transparently fall back to the generic algorithm.
	s := steadySeries(21, 183.0, 182.5)
	spec := cureSpec()
	spec.Industry = procspec.IndustryEtOSterilization

	res, err := Dispatch(s, spec)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	want, err := Generic(s, cureSpec())
	if err != nil {
		t.Fatalf("Generic: %v", err)
	}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("fallback result differs from generic:\n%s", diff)
	}
}

func TestDispatch_UnregisteredIndustryUsesGeneric(t *testing.T) {
	s := steadySeries(21, 183.0, 182.5)
	spec := cureSpec()
	spec.Industry = procspec.IndustryAutoclave

	res, err := Dispatch(s, spec)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	want, _ := Generic(s, spec)
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("autoclave result differs from generic:\n%s", diff)
	}
}

func TestDispatch_StructuralErrorPropagates(t *testing.T) {
	spec := cureSpec()
	spec.Industry = procspec.IndustryColdChain
	spec.Spec.Band = &procspec.Band{MinC: 2, MaxC: 8}

	_, err := Dispatch(&types.SampleSeries{Temps: []string{"a"}}, spec)
	if !types.IsStructural(err) {
		t.Fatalf("err = %v, want StructuralError", err)
	}
}
