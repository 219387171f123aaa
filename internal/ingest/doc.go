// Package ingest turns a raw rectangular table into a normalized
// SampleSeries: it detects the timestamp column by parseability and the
// sensor columns by name, converts Fahrenheit columns to Celsius,
// canonicalizes timestamps to UTC, sorts, resolves duplicate instants, and
// records inter-sample gaps that exceed the spec's tolerance.
package ingest
