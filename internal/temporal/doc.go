// Package temporal measures hold time against the conservative threshold
// under a two-state hysteresis machine, plus ramp rate and time-to-threshold.
// Every duration is the literal sum of real timestamp deltas; irregular
// sampling, dropped rows, or duplicate removal never distort the result.
package temporal
