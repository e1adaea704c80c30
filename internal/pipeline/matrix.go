package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	perrors "github.com/conveyor-ci/conveyor/pkg/errors"
	"github.com/conveyor-ci/conveyor/pkg/scheduler"
)

// BranchOutcome is the result of one matrix branch: either the captured test
// output or the error that failed the branch. Exactly one of Output and Err
// is meaningful.
type BranchOutcome struct {
	Version string
	Output  string
	Err     error
}

func (o BranchOutcome) Passed() bool { return o.Err == nil }

// MatrixResult holds one outcome per requested version, in input order.
type MatrixResult []BranchOutcome

// Failed reports whether any branch failed.
func (r MatrixResult) Failed() bool {
	for _, outcome := range r {
		if !outcome.Passed() {
			return true
		}
	}
	return false
}

// ParseVersions splits a comma-delimited version list, trimming whitespace.
// Empty entries and an empty list are rejected.
func ParseVersions(list string) ([]string, error) {
	if strings.TrimSpace(list) == "" {
		return nil, fmt.Errorf("version list is empty")
	}
	parts := strings.Split(list, ",")
	versions := make([]string, 0, len(parts))
	for _, part := range parts {
		v := strings.TrimSpace(part)
		if v == "" {
			return nil, fmt.Errorf("version list %q contains an empty entry", list)
		}
		versions = append(versions, v)
	}
	return versions, nil
}

// RunMatrix runs the unit test target once per version, all branches
// concurrently. Every branch is launched before any result is awaited and the
// call does not return until all branches have completed. A failing branch is
// recorded as a MatrixBranchFailedError outcome and never aborts or cancels
// its siblings. Outcomes are ordered by the input version list, not by
// completion.
func (p *Pipeline) RunMatrix(ctx context.Context, src SourceTree, versions []string) MatrixResult {
	log := zap.S().Named("matrix")

	// One worker per branch so queueing never serializes the fan-out.
	sched := scheduler.NewScheduler[BranchOutcome](len(versions))
	defer sched.Close()

	futures := make([]*scheduler.Future[BranchOutcome], len(versions))
	for i, version := range versions {
		v := version
		futures[i] = sched.AddWork(func(workCtx context.Context) (BranchOutcome, error) {
			out, err := p.RunTests(workCtx, src, v, TargetUnit)
			if err != nil {
				log.Warnw("matrix branch failed", "version", v, "error", err)
				return BranchOutcome{Version: v, Err: perrors.NewMatrixBranchFailedError(v, err)}, nil
			}
			return BranchOutcome{Version: v, Output: out}, nil
		})
	}

	// Join in input order; the slot index pins each branch's position in
	// the result regardless of completion timing.
	results := make(MatrixResult, len(versions))
	for i, future := range futures {
		select {
		case res := <-future.C():
			if res.Err != nil {
				// Scheduler-level failure (panic or cancellation).
				results[i] = BranchOutcome{
					Version: versions[i],
					Err:     perrors.NewMatrixBranchFailedError(versions[i], res.Err),
				}
				continue
			}
			results[i] = res.Data
		case <-ctx.Done():
			future.Stop()
			results[i] = BranchOutcome{
				Version: versions[i],
				Err:     perrors.NewMatrixBranchFailedError(versions[i], ctx.Err()),
			}
		}
	}
	return results
}
