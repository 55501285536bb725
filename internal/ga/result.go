package ga

import (
	"time"

	"github.com/r3b0rn/fjsp-tabu/internal/fjsp"
	"github.com/r3b0rn/fjsp-tabu/internal/opt"
)

// toOptResult assembles the opt.Result returned by Solve, mirroring the
// teacher's ToOptResult helper.
func toOptResult(best *fjsp.Solution, bestMs float64, evals, gens int, reason opt.StopReason, improvements []opt.ImprovementPoint, series opt.BenchmarkSeries, meta map[string]any) opt.Result {
	return opt.Result{
		Solution:     best,
		Makespan:     bestMs,
		Evaluations:  evals,
		Iterations:   gens,
		Duration:     time.Duration(0),
		StopReason:   reason,
		Improvements: improvements,
		Series:       series,
		Meta:         meta,
	}
}
