// Package types defines the canonical in-memory representations of sensor
// time-series data and decision outputs, shared by the engine and its
// downstream consumers (certificate rendering, API layer). These types are
// immutable once produced: a SampleSeries is built exactly once per decision
// call and is read-only afterwards.
package types
