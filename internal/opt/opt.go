// Package opt holds the shared result and interface types that every
// search engine (ts, ga) and the coordinator exchange, so the engines
// need not import each other.
package opt

import (
	"context"
	"time"

	"github.com/r3b0rn/fjsp-tabu/internal/fjsp"
)

// Optimizer is a single worker that takes an instance and a starting
// solution and runs until its own stopping condition fires. ts.Worker
// implements it; ga.Solver takes a seed population instead and does not.
type Optimizer interface {
	Solve(ctx context.Context, inst *fjsp.Instance, seed *fjsp.Solution) (Result, error)
}

// StopReason records which condition ended the run. Running out of time
// or iterations is a normal, expected stop, never an error.
type StopReason string

const (
	StoppedMaxIterations StopReason = "max_iterations"
	StoppedMaxDuration   StopReason = "max_duration"
	StoppedContext       StopReason = "context"
)

// ImprovementPoint marks an iteration where the worker's incumbent
// best strictly improved, used to plot convergence curves.
type ImprovementPoint struct {
	Iteration int
	Makespan  float64
}

// BenchmarkSeries is the optional per-iteration trace a worker records
// when its Config.Benchmark flag is set. Columns are parallel slices
// rather than a slice of structs so a bench writer can stream them
// straight into CSV columns.
type BenchmarkSeries struct {
	Iteration        []int
	Makespan         []float64
	NeighborhoodSize []int
	TabuSize         []int
}

// Result is what every Optimizer returns, win or lose: the best
// solution found, how it was found, and why the run stopped.
type Result struct {
	Solution    *fjsp.Solution
	Makespan    float64
	Evaluations int
	Iterations  int
	Duration    time.Duration

	StopReason   StopReason
	Improvements []ImprovementPoint
	Series       BenchmarkSeries

	Meta map[string]any
}
