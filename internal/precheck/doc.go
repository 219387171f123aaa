// Package precheck validates a normalized series against a ProcessSpec:
// hard structural checks that abort the decision call, soft business checks
// that contribute FAIL reasons, and non-blocking warnings for the audit
// trail.
package precheck
