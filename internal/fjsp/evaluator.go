package fjsp

import (
	"fmt"

	"github.com/r3b0rn/fjsp-tabu/internal/ferrors"
)

// Evaluator computes the makespan of a Solution by forward simulation.
// It owns scratch buffers sized to the Instance so repeated calls do not
// allocate; it is not safe for concurrent use from multiple goroutines,
// one Evaluator per worker.
type Evaluator struct {
	inst *Instance

	readyJob   []float64
	readyMach  []float64
	lastOnMach []int
}

// NewEvaluator builds an Evaluator for inst.
func NewEvaluator(inst *Instance) *Evaluator {
	return &Evaluator{
		inst:       inst,
		readyJob:   make([]float64, inst.Jobs),
		readyMach:  make([]float64, inst.Machines),
		lastOnMach: make([]int, inst.Machines),
	}
}

// Evaluate runs a single forward pass over s and caches the result on s.
// Determinism: identical s and Instance always produce a bitwise
// identical makespan.
func (e *Evaluator) Evaluate(s *Solution) (float64, error) {
	if len(s.Rows) != e.inst.Tasks {
		return 0, fmt.Errorf("solution has %d rows, want %d", len(s.Rows), e.inst.Tasks)
	}

	for j := range e.readyJob {
		e.readyJob[j] = 0
	}
	for m := range e.readyMach {
		e.readyMach[m] = 0
		e.lastOnMach[m] = -1
	}

	for _, row := range s.Rows {
		t := e.inst.IndexOf(row.Job, row.Task)
		if t < 0 {
			return 0, fmt.Errorf("operation (job %d, task %d) does not exist in instance", row.Job, row.Task)
		}
		m := row.Machine
		pt := e.inst.ProcTime(t, m)
		if pt < 0 {
			return 0, ferrors.NewInternalInvariantViolation(
				fmt.Sprintf("eval:%d:%d:%d", row.Job, row.Task, m),
				fmt.Sprintf("operation %d scheduled on non-usable machine %d", t, m))
		}

		setupTime := e.inst.SetupBetween(e.lastOnMach[m], t)

		start := e.readyJob[row.Job]
		if mReady := e.readyMach[m] + setupTime; mReady > start {
			start = mReady
		}
		finish := start + pt

		e.readyJob[row.Job] = finish
		e.readyMach[m] = finish
		e.lastOnMach[m] = t
	}

	makespan := 0.0
	for _, v := range e.readyMach {
		if v > makespan {
			makespan = v
		}
	}

	s.setCache(makespan)
	return makespan, nil
}

// MustEvaluate panics on error; for callers that already know the
// Solution is feasible.
func (e *Evaluator) MustEvaluate(s *Solution) float64 {
	ms, err := e.Evaluate(s)
	if err != nil {
		panic(err)
	}
	return ms
}
