// Package bench runs repeated trials of a search engine over a fixed
// instance and reduces them to summary statistics, adapted from the
// teacher's internal/bench/runner.go for FJSP's (*fjsp.Instance, seed)
// calling convention instead of flow-shop's bare Optimizer.Solve.
package bench

import (
	"context"
	"math/rand"
	"time"

	"github.com/r3b0rn/fjsp-tabu/internal/fjsp"
	"github.com/r3b0rn/fjsp-tabu/internal/opt"
)

// RunFunc executes one trial of a search engine against inst, seeded
// from rng, and returns its opt.Result. ts.Worker.Run and ga.Solver.Solve
// both fit this shape once wrapped by the caller (cmd/fjspbench, or
// coordinator for the parallel case).
type RunFunc func(ctx context.Context, inst *fjsp.Instance, rng *rand.Rand) (opt.Result, error)

// Algorithm names a RunFunc for reporting.
type Algorithm struct {
	Name string
	Run  RunFunc
}

// Case is one instance under benchmark, labeled for the report.
type Case struct {
	Name     string
	Instance *fjsp.Instance
}
