package types

import (
	"errors"
	"fmt"
)

// StructuralError marks input that is too broken to evaluate: malformed or
// empty tables, missing required columns, wholly absent named sensors, all
// readings null, or too few rows to infer the required hold time. A
// StructuralError always propagates to the caller; no DecisionResult is
// produced for a structurally broken input.
type StructuralError struct {
	Msg string
}

func (e *StructuralError) Error() string { return "structural: " + e.Msg }

// Structuralf builds a StructuralError from a format string.
func Structuralf(format string, args ...any) error {
	return &StructuralError{Msg: fmt.Sprintf(format, args...)}
}

// IsStructural reports whether err is (or wraps) a StructuralError.
func IsStructural(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}
