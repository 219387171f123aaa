package policy

import (
	"log/slog"

	"github.com/curetrace/curetrace/pkg/procspec"
	"github.com/curetrace/curetrace/pkg/types"
)

// Func is the contract every industry policy implements. A returned
// StructuralError propagates to the caller; any other error means "this
// policy cannot decide" and triggers the generic fallback in Dispatch.
type Func func(*types.SampleSeries, *procspec.ProcessSpec) (*types.DecisionResult, error)

// registry maps industry tags to their policies. Built once, read-only.
// Industries in the spec enumeration without an entry here (autoclave,
// heat_treat) intentionally dispatch to the generic algorithm.
var registry = map[procspec.Industry]Func{
	procspec.IndustryGeneric:          Generic,
	procspec.IndustryColdChain:        ColdChain,
	procspec.IndustryEtOSterilization: EtOSterilization,
}

// Resolve returns the policy registered for the industry, or Generic.
func Resolve(industry procspec.Industry) Func {
	if fn, ok := registry[industry]; ok {
		return fn
	}
	slog.Debug("policy: no policy registered, using generic", "industry", industry)
	return Generic
}

// Dispatch runs the resolved policy and applies the fallback contract: a
// policy that fails for internal (non-structural) reasons is replaced by the
// generic policy, so the caller always receives a fully-computed decision or
// a structural error, never a partial result.
func Dispatch(series *types.SampleSeries, spec *procspec.ProcessSpec) (*types.DecisionResult, error) {
	fn := Resolve(spec.Industry)
	res, err := fn(series, spec)
	if err == nil {
		return res, nil
	}
	if types.IsStructural(err) {
		return nil, err
	}
	slog.Warn("policy: falling back to generic",
		"industry", spec.Industry,
		"job", spec.Job.JobID,
		"err", err,
	)
	return Generic(series, spec)
}
