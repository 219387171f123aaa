package fusion

import (
	"testing"
	"time"

	"github.com/curetrace/curetrace/pkg/procspec"
	"github.com/curetrace/curetrace/pkg/types"
)

var baseTime = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

// series builds a SampleSeries from per-channel value rows; a nil entry is a
// null reading.
func series(cols []string, rows [][]*float64) *types.SampleSeries {
	s := &types.SampleSeries{Temps: cols}
	for i, row := range rows {
		readings := make(map[string]types.Reading, len(cols))
		for j, col := range cols {
			if row[j] != nil {
				readings[col] = types.Num(*row[j])
			} else {
				readings[col] = types.Reading{}
			}
		}
		s.Samples = append(s.Samples, types.Sample{
			At:       baseTime.Add(time.Duration(i*30) * time.Second),
			Readings: readings,
		})
	}
	return s
}

func f(v float64) *float64 { return &v }

func TestCombine_MinOfSet(t *testing.T) {
	s := series([]string{"a", "b"}, [][]*float64{
		{f(183.0), f(182.5)},
		{f(181.0), nil},
		{nil, nil},
	})
	fused, err := Combine(s, []string{"a", "b"}, procspec.FusionMinOfSet, 0, 0)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	if fused.Kind != types.FusedNumeric {
		t.Fatalf("Kind = %v, want numeric", fused.Kind)
	}
	if r := fused.Values[0]; !r.Valid || r.Value != 182.5 {
		t.Errorf("row 0 = %+v, want 182.5", r)
	}
	// Null inputs are skipped, not propagated.
	if r := fused.Values[1]; !r.Valid || r.Value != 181.0 {
		t.Errorf("row 1 = %+v, want 181.0", r)
	}
	// All-null rows stay null.
	if fused.Values[2].Valid {
		t.Errorf("row 2 = %+v, want null", fused.Values[2])
	}
}

func TestCombine_MeanOfSet(t *testing.T) {
	s := series([]string{"a", "b"}, [][]*float64{
		{f(100), f(102)},
		{f(100), nil},
	})
	fused, err := Combine(s, []string{"a", "b"}, procspec.FusionMeanOfSet, 0, 0)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	if v := fused.Values[0].Value; v != 101 {
		t.Errorf("row 0 mean = %g, want 101", v)
	}
	if v := fused.Values[1].Value; v != 100 {
		t.Errorf("row 1 mean over valid readings = %g, want 100", v)
	}
}

func TestCombine_MajorityOverThreshold(t *testing.T) {
	s := series([]string{"a", "b", "c"}, [][]*float64{
		{f(183), f(183), f(180)}, // 2 of 3 at/above 182
		{f(183), f(180), f(180)}, // 1 of 3
		{f(183), f(183), nil},    // 2 of 2 valid
	})

	t.Run("require_at_least quorum", func(t *testing.T) {
		fused, err := Combine(s, []string{"a", "b", "c"}, procspec.FusionMajorityOverThreshold, 2, 182)
		if err != nil {
			t.Fatalf("Combine: %v", err)
		}
		want := []bool{true, false, true}
		for i, w := range want {
			if fused.Truth[i] != w {
				t.Errorf("Truth[%d] = %v, want %v", i, fused.Truth[i], w)
			}
		}
	})

	t.Run("strict majority of valid columns", func(t *testing.T) {
		fused, err := Combine(s, []string{"a", "b", "c"}, procspec.FusionMajorityOverThreshold, 0, 182)
		if err != nil {
			t.Fatalf("Combine: %v", err)
		}
		// Row 0: 2 ≥ ⌊3/2⌋+1 = 2 → true. Row 1: 1 < 2 → false.
		// Row 2: 2 valid columns, quorum 2, above 2 → true.
		want := []bool{true, false, true}
		for i, w := range want {
			if fused.Truth[i] != w {
				t.Errorf("Truth[%d] = %v, want %v", i, fused.Truth[i], w)
			}
		}
	})
}

func TestCombine_MajorityAtSubZeroThreshold(t *testing.T) {
	// Frozen-storage thresholds sit at or below 0°C; the comparison point is
	// just a number, not a presence flag.
	s := series([]string{"a", "b", "c"}, [][]*float64{
		{f(1), f(0.5), f(-5)},
		{f(-8), f(-9), f(-5)},
	})
	fused, err := Combine(s, []string{"a", "b", "c"}, procspec.FusionMajorityOverThreshold, 2, 0)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	if !fused.Truth[0] {
		t.Error("row 0: two channels at/above 0°C, want true")
	}
	if fused.Truth[1] {
		t.Error("row 1: all channels below 0°C, want false")
	}
}

func TestCombine_Errors(t *testing.T) {
	s := series([]string{"a", "b"}, [][]*float64{
		{f(100), nil},
		{f(101), nil},
	})

	t.Run("no columns", func(t *testing.T) {
		_, err := Combine(s, nil, procspec.FusionMinOfSet, 0, 0)
		if !types.IsStructural(err) {
			t.Fatalf("err = %v, want StructuralError", err)
		}
	})

	t.Run("insufficient valid sensors is job fatal", func(t *testing.T) {
		// Channel b is entirely null: only one usable column, need two.
		_, err := Combine(s, []string{"a", "b"}, procspec.FusionMinOfSet, 2, 0)
		if !types.IsStructural(err) {
			t.Fatalf("err = %v, want StructuralError", err)
		}
	})
}
