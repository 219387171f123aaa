package types

import "time"

// Reading is an explicit optional sensor value. A Reading with Valid == false
// represents a missing or unparseable measurement; arithmetic over readings
// must state how invalid values are handled instead of relying on NaN
// propagation.
type Reading struct {
	Value float64
	Valid bool
}

// Num returns a valid Reading holding v.
func Num(v float64) Reading { return Reading{Value: v, Valid: true} }

// Sample is one instant of multi-channel sensor data. Timestamps are always
// UTC and channel values are always Celsius (for temperature channels) by the
// time a Sample exists; unit conversion happens during ingestion.
type Sample struct {
	At       time.Time
	Readings map[string]Reading // channel name → reading
}

// Gap is a span between two consecutive samples that exceeded the allowed
// inter-sample gap. Whether a gap is material (FAIL-contributing) or merely a
// warning depends on whether it falls inside a counted hold interval; that
// resolution happens during decision assembly, not here.
type Gap struct {
	AfterIndex int // gap lies between samples AfterIndex and AfterIndex+1
	Start      time.Time
	End        time.Time
	Seconds    float64
}

// SampleSeries is a time-sorted, duplicate-free sequence of Samples plus the
// channel classification discovered during ingestion. It is produced once per
// decision call and never mutated.
type SampleSeries struct {
	Samples []Sample

	// Channel names by class, in detection order. Temperature channels are
	// already converted to Celsius. Humidity/Pressure/Gas are populated only
	// when the declared industry consumes them.
	Temps    []string
	Humidity []string
	Pressure []string
	Gas      []string

	// Gaps wider than the spec's allowed_gaps_s, recorded during ingestion.
	Gaps []Gap
}

// Len returns the number of samples.
func (s *SampleSeries) Len() int { return len(s.Samples) }

// Times returns the sample instants in order. The returned slice is freshly
// allocated; callers may keep it.
func (s *SampleSeries) Times() []time.Time {
	out := make([]time.Time, len(s.Samples))
	for i, sm := range s.Samples {
		out[i] = sm.At
	}
	return out
}

// Column returns the readings of one channel, aligned with Samples. Channels
// absent from a given sample yield an invalid Reading at that index.
func (s *SampleSeries) Column(name string) []Reading {
	out := make([]Reading, len(s.Samples))
	for i, sm := range s.Samples {
		out[i] = sm.Readings[name]
	}
	return out
}

// HasChannel reports whether name appears in any sample of the series.
func (s *SampleSeries) HasChannel(name string) bool {
	for _, sm := range s.Samples {
		if _, ok := sm.Readings[name]; ok {
			return true
		}
	}
	return false
}

// AllNull reports whether the named channel has no valid reading anywhere in
// the series.
func (s *SampleSeries) AllNull(name string) bool {
	for _, sm := range s.Samples {
		if r, ok := sm.Readings[name]; ok && r.Valid {
			return false
		}
	}
	return true
}
