// Package procspec parses and validates the declarative process
// specification that drives a decision call: target temperature, hold
// duration, sensor fusion strategy, hold logic, preconditions, and the
// industry tag. A ProcessSpec is validated structurally at construction and
// is immutable afterwards; every mode string from the wire is decoded into a
// closed enum here so downstream logic never sees an unknown mode.
package procspec
