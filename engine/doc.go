// Package engine is the public entry point of the decision engine. It wires
// ingestion, sensor fusion, temporal analysis, precondition checks, and
// industry policy dispatch into a single synchronous, side-effect-free call.
// Because inputs are immutable and calls share no mutable state, any number
// of decisions may run concurrently; DecideBatch exploits exactly that.
package engine
