package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/curetrace/curetrace/internal/ingest"
	"github.com/curetrace/curetrace/internal/policy"
	"github.com/curetrace/curetrace/pkg/procspec"
	"github.com/curetrace/curetrace/pkg/tabular"
	"github.com/curetrace/curetrace/pkg/types"
)

// Decide evaluates a normalized series against a validated spec and returns
// the sealed decision. Structural errors propagate; internal policy failures
// fall back to the generic policy inside the dispatcher, so a non-nil result
// is always fully computed.
func Decide(series *types.SampleSeries, spec *procspec.ProcessSpec) (*types.DecisionResult, error) {
	return policy.Dispatch(series, spec)
}

// DecideTable normalizes a raw table per the spec's data requirements and
// industry, then decides.
func DecideTable(tbl *tabular.Table, spec *procspec.ProcessSpec) (*types.DecisionResult, error) {
	series, err := ingest.Normalize(tbl, spec.DataRequirements, spec.Industry)
	if err != nil {
		return nil, err
	}
	return Decide(series, spec)
}

// Job pairs one raw table with its spec for batch evaluation.
type Job struct {
	Table *tabular.Table
	Spec  *procspec.ProcessSpec
}

// BatchResult is the outcome of one batch job: exactly one of Result or Err
// is set.
type BatchResult struct {
	Result *types.DecisionResult
	Err    error
}

// DecideBatch evaluates independent jobs with at most parallel decisions in
// flight. Per-job failures land in the corresponding BatchResult; the only
// way the batch stops early is ctx cancellation, which marks the remaining
// jobs with ctx.Err().
func DecideBatch(ctx context.Context, jobs []Job, parallel int) []BatchResult {
	if parallel < 1 {
		parallel = 1
	}
	out := make([]BatchResult, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				out[i].Err = err
				return nil
			}
			out[i].Result, out[i].Err = DecideTable(job.Table, job.Spec)
			return nil
		})
	}
	// Workers never return errors; failures are recorded per slot.
	_ = g.Wait()
	return out
}
