package ga

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/r3b0rn/fjsp-tabu/internal/fjsp"
	"github.com/r3b0rn/fjsp-tabu/internal/opt"
)

var errNilRNG = errors.New("ga: rng must not be nil")

// Solver is the Genetic Algorithm engine: tournament selection,
// precedence-preserving crossover, machine-reassignment mutation,
// steady-state replacement.
type Solver struct {
	Cfg Config
	Rng *rand.Rand
}

// New validates cfg and returns a Solver, mirroring ts.New.
func New(cfg Config, rng *rand.Rand) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, errNilRNG
	}
	return &Solver{Cfg: cfg, Rng: rng}, nil
}

// Solve runs the steady-state GA loop. seeds, if non-empty, becomes the
// initial population (padded with random feasible individuals up to
// Cfg.Population); if empty, the whole population is generated randomly.
// Every makespan is computed by one shared Evaluator; fjsp.Evaluator is
// not goroutine-safe, and this loop is single-threaded.
func (s *Solver) Solve(ctx context.Context, inst *fjsp.Instance, seeds []*fjsp.Solution) (opt.Result, error) {
	start := time.Now()
	eval := fjsp.NewEvaluator(inst)

	pop := make([]*fjsp.Solution, 0, s.Cfg.Population)
	for _, seed := range seeds {
		if len(pop) >= s.Cfg.Population {
			break
		}
		pop = append(pop, seed)
	}
	for len(pop) < s.Cfg.Population {
		pop = append(pop, fjsp.GenerateRandomFeasible(inst, s.Rng))
	}

	evaluations := 0
	for _, ind := range pop {
		if _, err := eval.Evaluate(ind); err != nil {
			return opt.Result{}, err
		}
		evaluations++
	}

	best, bestMs := bestOf(pop)

	var improvements []opt.ImprovementPoint
	var series opt.BenchmarkSeries
	if s.Cfg.Benchmark {
		improvements = append(improvements, opt.ImprovementPoint{Iteration: 0, Makespan: bestMs})
	}

	reason := opt.StoppedContext
	gen := 0
	deadline := time.Time{}
	if s.Cfg.MaxDuration > 0 {
		deadline = start.Add(s.Cfg.MaxDuration)
	}

loop:
	for {
		select {
		case <-ctx.Done():
			reason = opt.StoppedContext
			break loop
		default:
		}
		if s.Cfg.MaxGenerations > 0 && gen >= s.Cfg.MaxGenerations {
			reason = opt.StoppedMaxIterations
			break loop
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			reason = opt.StoppedMaxDuration
			break loop
		}

		p1 := tournamentSelect(pop, s.Cfg.TournamentSize, s.Rng)
		p2 := tournamentSelect(pop, s.Cfg.TournamentSize, s.Rng)
		if len(pop) > 1 {
			for p2 == p1 {
				p2 = tournamentSelect(pop, s.Cfg.TournamentSize, s.Rng)
			}
		}

		var child *fjsp.Solution
		if s.Rng.Float64() < s.Cfg.CrossoverRate {
			child = precedenceCrossover(pop[p1], pop[p2], s.Rng)
		} else {
			child = pop[p1].Clone()
		}
		if s.Rng.Float64() < s.Cfg.MutationRate {
			child = mutate(inst, child, s.Rng, s.Cfg.PChangeMachine)
		}

		childMs, err := eval.Evaluate(child)
		if err != nil {
			return opt.Result{}, err
		}
		evaluations++

		worst := worstOf(pop)
		worstMs, _ := pop[worst].CachedMakespan()
		if childMs < worstMs {
			pop[worst] = child
		}

		if childMs < bestMs-1e-9 {
			best, bestMs = child, childMs
			if s.Cfg.Benchmark {
				improvements = append(improvements, opt.ImprovementPoint{Iteration: gen + 1, Makespan: bestMs})
			}
		}

		if s.Cfg.Benchmark {
			series.Iteration = append(series.Iteration, gen)
			series.Makespan = append(series.Makespan, bestMs)
			series.NeighborhoodSize = append(series.NeighborhoodSize, len(pop))
		}

		gen++
	}

	res := toOptResult(best, bestMs, evaluations, gen, reason, improvements, series, map[string]any{
		"population":      s.Cfg.Population,
		"tournament_size": s.Cfg.TournamentSize,
	})
	res.Duration = time.Since(start)
	return res, nil
}

// bestOf and worstOf scan pop for the minimum/maximum cached makespan.
// pop is small enough (population size, not the neighborhood) that a
// linear scan beats maintaining a sorted index; simpler to re-derive the
// incumbent each generation than track it incrementally through
// replacement.
func bestOf(pop []*fjsp.Solution) (*fjsp.Solution, float64) {
	best := pop[0]
	bestMs, _ := best.CachedMakespan()
	for _, ind := range pop[1:] {
		ms, _ := ind.CachedMakespan()
		if ms < bestMs {
			best, bestMs = ind, ms
		}
	}
	return best, bestMs
}

func worstOf(pop []*fjsp.Solution) int {
	worst := 0
	worstMs, _ := pop[0].CachedMakespan()
	for i, ind := range pop[1:] {
		ms, _ := ind.CachedMakespan()
		if ms > worstMs {
			worst, worstMs = i+1, ms
		}
	}
	return worst
}
