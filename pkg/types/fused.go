package types

import "time"

// FusedKind discriminates the two shapes a fused series can take.
type FusedKind int

const (
	// FusedNumeric carries one optional Celsius value per sample
	// (min_of_set, mean_of_set).
	FusedNumeric FusedKind = iota

	// FusedBool carries one vote per sample (majority_over_threshold).
	FusedBool
)

// FusedSeries is the result of collapsing N sensor channels into one
// authoritative signal, aligned index-for-index with the SampleSeries it was
// derived from. It is recomputed fresh on every decision call and never
// cached.
type FusedSeries struct {
	Kind FusedKind

	// Values holds the numeric fusion output. Values[i].Valid is false where
	// all contributing channels were null at sample i. Empty for FusedBool.
	Values []Reading

	// Truth holds the boolean fusion output. Empty for FusedNumeric.
	Truth []bool
}

// Len returns the number of fused samples.
func (f *FusedSeries) Len() int {
	if f.Kind == FusedBool {
		return len(f.Truth)
	}
	return len(f.Values)
}

// Interval is a maximal run of samples satisfying "at/above the conservative
// threshold" under the hysteresis state machine. Seconds is always the literal
// sum of real timestamp deltas spanned by the run, never an index count times
// a nominal step.
type Interval struct {
	StartIndex int
	EndIndex   int // inclusive; index of the last in-state sample
	Start      time.Time
	End        time.Time
	Seconds    float64
}

// Contains reports whether the sample index i falls inside the run.
func (iv Interval) Contains(i int) bool {
	return i >= iv.StartIndex && i <= iv.EndIndex
}
