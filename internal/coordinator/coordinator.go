// Package coordinator spawns parallel Tabu Search workers (shared-nothing),
// seeds their starting solutions, and reduces their results to the global
// best.
// Failed workers are isolated rather than aborting the whole run, and
// reported back with github.com/hashicorp/go-multierror so a caller can
// inspect every failure.
package coordinator

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/r3b0rn/fjsp-tabu/internal/fjsp"
	"github.com/r3b0rn/fjsp-tabu/internal/ga"
	"github.com/r3b0rn/fjsp-tabu/internal/opt"
	"github.com/r3b0rn/fjsp-tabu/internal/ts"
)

// Coordinator holds the ambient dependencies shared by every run it
// drives: a logger. The RNG used to derive per-worker seeds is passed to
// each run call instead.
type Coordinator struct {
	Logger hclog.Logger
}

// New returns a Coordinator, defaulting to a null logger like ts.New
// does.
func New(logger hclog.Logger) *Coordinator {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Coordinator{Logger: logger}
}

// WorkerOutcome pairs one worker's identity with its result, for callers
// that want the full per-worker breakdown rather than just the winner.
type WorkerOutcome struct {
	WorkerID string
	Result   opt.Result
}

// TabuSearchReport is what RunTabuSearch returns: the global best across
// all workers (by min-reduction over opt.Result.Makespan), every
// worker's individual outcome, and the aggregated failures of any
// workers that errored.
type TabuSearchReport struct {
	Best    opt.Result
	Workers []WorkerOutcome
	Errors  *multierror.Error
}

// RunTabuSearch spawns workers parallel Tabu Search workers against inst,
// one per entry of cfgs (each may differ, e.g. diversified tenure), under
// errgroup.Group so no worker's panic or early return blocks the others.
// seeds supplies the initial solution for each worker in order; if it has
// fewer entries than cfgs, the remainder are padded with random feasible
// solutions generated from masterRng. Every seed is validated up front
// with fjsp.CheckSeedBatch — the whole run is rejected rather than
// silently repairing a bad seed.
func (c *Coordinator) RunTabuSearch(ctx context.Context, inst *fjsp.Instance, cfgs []ts.Config, seeds []*fjsp.Solution, masterRng *rand.Rand) (TabuSearchReport, error) {
	workers := len(cfgs)

	padded := make([]*fjsp.Solution, workers)
	for i := 0; i < workers; i++ {
		if i < len(seeds) {
			padded[i] = seeds[i]
		} else {
			padded[i] = fjsp.GenerateRandomFeasible(inst, masterRng)
		}
	}
	if err := fjsp.CheckSeedBatch(inst, padded); err != nil {
		return TabuSearchReport{}, err
	}

	outcomes := make([]WorkerOutcome, workers)
	var errs *multierror.Error
	var errsMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		i := i
		id := uuid.NewString()
		rng := rand.New(rand.NewSource(masterRng.Int63()))

		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					c.Logger.Error("tabu search worker panicked", "worker_id", id, "panic", r)
					errsMu.Lock()
					errs = multierror.Append(errs, fmt.Errorf("worker %s: panic: %v", id, r))
					errsMu.Unlock()
				}
			}()

			w, err := ts.New(cfgs[i], rng, c.Logger.Named(id))
			if err != nil {
				errsMu.Lock()
				errs = multierror.Append(errs, fmt.Errorf("worker %s: %w", id, err))
				errsMu.Unlock()
				return nil
			}
			w.ID = id

			res, err := w.Run(gctx, inst, padded[i])
			if err != nil {
				c.Logger.Error("tabu search worker failed", "worker_id", id, "error", err)
				errsMu.Lock()
				errs = multierror.Append(errs, fmt.Errorf("worker %s: %w", id, err))
				errsMu.Unlock()
				return nil
			}
			outcomes[i] = WorkerOutcome{WorkerID: id, Result: res}
			return nil
		})
	}

	// Every g.Go func records its own error (or recovered panic) in errs
	// and returns nil, so gctx is cancelled only when ctx is and a single
	// worker failing never aborts its peers.
	_ = g.Wait()

	best, ok := minReduce(outcomes)
	if !ok {
		return TabuSearchReport{Errors: errs}, errs.ErrorOrNil()
	}

	return TabuSearchReport{
		Best:    best,
		Workers: outcomes,
		Errors:  errs,
	}, nil
}

// minReduce returns the WorkerOutcome.Result with the smallest makespan
// among outcomes with a non-nil Solution (i.e. workers that actually
// produced a result).
func minReduce(outcomes []WorkerOutcome) (opt.Result, bool) {
	var best opt.Result
	found := false
	for _, o := range outcomes {
		if o.Result.Solution == nil {
			continue
		}
		if !found || o.Result.Makespan < best.Makespan {
			best = o.Result
			found = true
		}
	}
	return best, found
}

// RunGeneticAlgorithm runs a single ga.Solver over population (padded
// with random feasible individuals if shorter than cfg.Population, or
// generated entirely at random if population is empty).
func (c *Coordinator) RunGeneticAlgorithm(ctx context.Context, inst *fjsp.Instance, cfg ga.Config, population []*fjsp.Solution, rng *rand.Rand) (opt.Result, error) {
	solver, err := ga.New(cfg, rng)
	if err != nil {
		return opt.Result{}, err
	}
	return solver.Solve(ctx, inst, population)
}
