package ts

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/r3b0rn/fjsp-tabu/internal/fjsp"
	"github.com/r3b0rn/fjsp-tabu/internal/opt"
)

// errNilRNG is returned by New when no RNG is supplied. Every worker
// needs its own stream, seeded distinctly from the others, so there is
// no sensible default to fall back to.
var errNilRNG = errors.New("ts: rng must not be nil")

// Worker is one Tabu Search engine. It owns all of its own state
// (current solution, tabu list, RNG) and never touches another
// worker's memory: workers share nothing and a coordinator reduces
// their results after the fact.
type Worker struct {
	Cfg    Config
	Rng    *rand.Rand
	Logger hclog.Logger
	ID     string
}

// New validates cfg and returns a Worker.
func New(cfg Config, rng *rand.Rand, logger hclog.Logger) (*Worker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, errNilRNG
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Worker{Cfg: cfg, Rng: rng, Logger: logger}, nil
}

// Solve implements opt.Optimizer.
func (w *Worker) Solve(ctx context.Context, inst *fjsp.Instance, seed *fjsp.Solution) (opt.Result, error) {
	return w.Run(ctx, inst, seed)
}

// Run executes the tabu search loop: evaluate the seed, then repeatedly
// generate a neighborhood, admit the best non-tabu neighbor (or the best
// neighbor overall once the reset threshold fires), and track the
// incumbent best. It stops at whichever of MaxIterations/MaxDuration
// comes first, or when ctx is cancelled; all three are normal stops,
// never errors.
func (w *Worker) Run(ctx context.Context, inst *fjsp.Instance, seed *fjsp.Solution) (opt.Result, error) {
	start := time.Now()
	eval := fjsp.NewEvaluator(inst)

	cur := seed
	curMs, err := eval.Evaluate(cur)
	if err != nil {
		return opt.Result{}, err
	}

	best := cur
	bestMs := curMs
	evaluations := 1
	nonImproving := 0

	tabu := newTabuList(w.Cfg.NeighborhoodSize * 4)
	var improvements []opt.ImprovementPoint
	var series opt.BenchmarkSeries
	if w.Cfg.Benchmark {
		improvements = append(improvements, opt.ImprovementPoint{Iteration: 0, Makespan: bestMs})
	}

	reason := opt.StoppedContext
	iter := 0
	deadline := time.Time{}
	if w.Cfg.MaxDuration > 0 {
		deadline = start.Add(w.Cfg.MaxDuration)
	}

loop:
	for {
		select {
		case <-ctx.Done():
			reason = opt.StoppedContext
			break loop
		default:
		}
		if w.Cfg.MaxIterations > 0 && iter >= w.Cfg.MaxIterations {
			reason = opt.StoppedMaxIterations
			break loop
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			reason = opt.StoppedMaxDuration
			break loop
		}

		neighDeadline := time.Time{}
		if w.Cfg.NeighborhoodDeadline > 0 {
			neighDeadline = time.Now().Add(w.Cfg.NeighborhoodDeadline)
		}
		neighborhood := fjsp.GenerateNeighborhood(inst, cur, w.Cfg.NeighborhoodSize, neighDeadline, w.Cfg.PChangeMachine, w.Rng)
		if len(neighborhood) == 0 {
			iter++
			continue
		}

		forceAccept := nonImproving >= w.Cfg.ResetThreshold

		var chosen *fjsp.Solution
		var chosenMs float64
		haveChoice := false

		var fallback *fjsp.Solution
		var fallbackMs float64
		haveFallback := false

		for _, n := range neighborhood {
			ms, err := eval.Evaluate(n)
			evaluations++
			if err != nil {
				return opt.Result{}, err
			}

			key := fjsp.Fingerprint(n)
			isTabu := tabu.IsTabu(key, iter)
			aspires := ms < bestMs

			if !haveFallback || ms < fallbackMs {
				fallback, fallbackMs = n, ms
				haveFallback = true
			}

			if isTabu && !aspires {
				continue
			}
			if !haveChoice || ms < chosenMs {
				chosen, chosenMs = n, ms
				haveChoice = true
			}
		}

		// The reset rule overrides the tabu-respecting pick with the
		// neighborhood's global minimum once the worker has
		// gone ResetThreshold iterations without improving best, shaking
		// it out of the current attractor basin.
		if forceAccept && haveFallback {
			chosen, chosenMs = fallback, fallbackMs
			haveChoice = true
			nonImproving = 0
		}
		if !haveChoice {
			iter++
			continue
		}

		tenure := w.Cfg.TabuTenure
		if w.Cfg.TabuTenureJitter > 0 {
			tenure += w.Rng.Intn(w.Cfg.TabuTenureJitter + 1)
		}
		tabu.Add(fjsp.Fingerprint(chosen), iter+tenure)

		cur, curMs = chosen, chosenMs

		if curMs < bestMs-1e-9 {
			best, bestMs = cur, curMs
			nonImproving = 0
			if w.Cfg.Benchmark {
				improvements = append(improvements, opt.ImprovementPoint{Iteration: iter + 1, Makespan: bestMs})
			}
		} else if !forceAccept {
			nonImproving++
		}

		if w.Cfg.Benchmark {
			series.Iteration = append(series.Iteration, iter)
			series.Makespan = append(series.Makespan, bestMs)
			series.NeighborhoodSize = append(series.NeighborhoodSize, len(neighborhood))
			series.TabuSize = append(series.TabuSize, tabu.Len())
		}

		iter++
	}

	return opt.Result{
		Solution:     best,
		Makespan:     bestMs,
		Evaluations:  evaluations,
		Iterations:   iter,
		Duration:     time.Since(start),
		StopReason:   reason,
		Improvements: improvements,
		Series:       series,
		Meta: map[string]any{
			"worker_id": w.ID,
		},
	}, nil
}
