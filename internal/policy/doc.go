// Package policy holds the industry policy registry and the policies
// themselves. Every policy implements the identical contract: a normalized
// series plus a validated spec in, a fully-computed DecisionResult out. The
// registry is built once at package initialization and never mutated, so it
// is safe to read from any number of concurrent decision calls.
package policy
