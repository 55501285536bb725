// Command fjspbench loads an FJSP instance (CSV triple or single-file FJS),
// runs one or more search engines against it for a fixed number of trials,
// and writes a summary CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/r3b0rn/fjsp-tabu/internal/bench"
	"github.com/r3b0rn/fjsp-tabu/internal/coordinator"
	"github.com/r3b0rn/fjsp-tabu/internal/fjsp"
	"github.com/r3b0rn/fjsp-tabu/internal/ga"
	"github.com/r3b0rn/fjsp-tabu/internal/intake"
	"github.com/r3b0rn/fjsp-tabu/internal/opt"
	"github.com/r3b0rn/fjsp-tabu/internal/ts"
)

func main() {
	var (
		fjsPath     = flag.String("fjs", "", "path to a single-file FJS instance")
		jobTasks    = flag.String("jobtasks", "", "path to jobTasks.csv (requires -runspeed and -seqdep)")
		runSpeed    = flag.String("runspeed", "", "path to machineRunSpeed.csv")
		seqDep      = flag.String("seqdep", "", "path to sequenceDependencyMatrix.csv")
		out         = flag.String("out", "artifacts/results.csv", "output CSV path")
		algos       = flag.String("algos", "TS,GA", "comma-separated engines to run: TS, GA")
		runs        = flag.Int("runs", 10, "number of trials per engine")
		baseSeed    = flag.Int64("seed", 1000, "base RNG seed for trials")
		perRunTO    = flag.Duration("per_run_timeout", 0, "timeout per trial; 0 = unbounded")
		logLevel    = flag.String("log_level", "info", "log level: trace|debug|info|warn|error")

		tsMaxIter   = flag.Int("ts_max_iterations", 2000, "tabu search: max iterations")
		tsMaxDur    = flag.Duration("ts_max_duration", 0, "tabu search: wall clock budget; 0 = unbounded")
		tsNeighSize = flag.Int("ts_neighborhood_size", 60, "tabu search: neighbors examined per iteration")
		tsNeighDl   = flag.Duration("ts_neighborhood_deadline", 0, "tabu search: per-iteration neighbor generation deadline")
		tsTenure    = flag.Int("ts_tenure", 10, "tabu search: base tabu tenure in iterations")
		tsTenureJit = flag.Int("ts_tenure_jitter", 4, "tabu search: random [0..jitter] added to tenure")
		tsReset     = flag.Int("ts_reset_threshold", 40, "tabu search: iterations without improvement before reset rule fires")
		tsPMachine  = flag.Float64("ts_p_change_machine", 0.5, "tabu search: probability a move reassigns machine vs swaps rows")
		tsWorkers   = flag.Int("ts_workers", 4, "tabu search: number of parallel workers in a single trial")

		gaPop      = flag.Int("ga_population", 150, "genetic algorithm: population size")
		gaMaxGen   = flag.Int("ga_max_generations", 400, "genetic algorithm: max generations")
		gaMaxDur   = flag.Duration("ga_max_duration", 0, "genetic algorithm: wall clock budget; 0 = unbounded")
		gaTour     = flag.Int("ga_tournament_size", 5, "genetic algorithm: tournament size")
		gaCx       = flag.Float64("ga_crossover_rate", 0.90, "genetic algorithm: crossover rate")
		gaMut      = flag.Float64("ga_mutation_rate", 0.15, "genetic algorithm: mutation rate")
		gaPMachine = flag.Float64("ga_p_change_machine", 1.0, "genetic algorithm: probability a mutation reassigns machine")
	)
	flag.Parse()

	logger := hclog.New(&hclog.LoggerOptions{
		Name:       "fjspbench",
		Level:      hclog.LevelFromString(*logLevel),
		Output:     os.Stderr,
		JSONFormat: false,
	})

	inst, err := loadInstance(*fjsPath, *jobTasks, *runSpeed, *seqDep)
	if err != nil {
		logger.Error("failed to load instance", "error", err)
		os.Exit(2)
	}

	tsCfg := ts.Config{
		MaxIterations:        *tsMaxIter,
		MaxDuration:          *tsMaxDur,
		NeighborhoodSize:     *tsNeighSize,
		NeighborhoodDeadline: *tsNeighDl,
		TabuTenure:           *tsTenure,
		TabuTenureJitter:     *tsTenureJit,
		ResetThreshold:       *tsReset,
		PChangeMachine:       *tsPMachine,
	}
	if err := tsCfg.Validate(); err != nil {
		logger.Error("invalid tabu search configuration", "error", err)
		os.Exit(2)
	}

	gaCfg := ga.Config{
		Population:     *gaPop,
		TournamentSize: *gaTour,
		CrossoverRate:  *gaCx,
		MutationRate:   *gaMut,
		MaxGenerations: *gaMaxGen,
		MaxDuration:    *gaMaxDur,
		PChangeMachine: *gaPMachine,
	}
	if err := gaCfg.Validate(); err != nil {
		logger.Error("invalid genetic algorithm configuration", "error", err)
		os.Exit(2)
	}

	coord := coordinator.New(logger)

	available := map[string]bench.Algorithm{
		"TS": {Name: "TS", Run: tsRunFunc(coord, tsCfg, *tsWorkers)},
		"GA": {Name: "GA", Run: gaRunFunc(coord, gaCfg)},
	}

	var selected []bench.Algorithm
	for _, name := range splitCSV(*algos) {
		a, ok := available[name]
		if !ok {
			logger.Error("unknown engine", "name", name, "available", keys(available))
			os.Exit(2)
		}
		selected = append(selected, a)
	}

	runner := bench.Runner{Runs: *runs, BaseSeed: *baseSeed, PerRunTimeout: *perRunTO}
	c := bench.Case{Name: instanceLabel(*fjsPath, *jobTasks), Instance: inst}

	var records []bench.Record
	ctx := context.Background()
	for _, a := range selected {
		logger.Info("running engine", "name", a.Name, "case", c.Name, "runs", runner.Runs)

		rec, err := runner.RunCase(ctx, c, a)
		if err != nil {
			logger.Error("trial failed", "engine", a.Name, "error", err)
			os.Exit(1)
		}
		records = append(records, rec)

		logger.Info("engine summary",
			"name", a.Name,
			"makespan_best", rec.MakespanBest,
			"makespan_mean", rec.MakespanMean,
			"makespan_std", rec.MakespanStd,
			"time_mean_ms", rec.TimeMeanMs,
		)
	}

	if err := bench.WriteCSV(*out, records); err != nil {
		logger.Error("failed to write results", "path", *out, "error", err)
		os.Exit(1)
	}
	fmt.Println("Saved:", *out)
}

func tsRunFunc(coord *coordinator.Coordinator, cfg ts.Config, workers int) bench.RunFunc {
	return func(ctx context.Context, inst *fjsp.Instance, rng *rand.Rand) (opt.Result, error) {
		cfgs := make([]ts.Config, workers)
		for i := range cfgs {
			cfgs[i] = cfg
		}
		report, err := coord.RunTabuSearch(ctx, inst, cfgs, nil, rng)
		if err != nil {
			return opt.Result{}, err
		}
		return report.Best, nil
	}
}

func gaRunFunc(coord *coordinator.Coordinator, cfg ga.Config) bench.RunFunc {
	return func(ctx context.Context, inst *fjsp.Instance, rng *rand.Rand) (opt.Result, error) {
		return coord.RunGeneticAlgorithm(ctx, inst, cfg, nil, rng)
	}
}

func loadInstance(fjsPath, jobTasks, runSpeed, seqDep string) (*fjsp.Instance, error) {
	switch {
	case fjsPath != "":
		return intake.LoadFJS(fjsPath)
	case jobTasks != "" && runSpeed != "" && seqDep != "":
		return intake.LoadCSV(jobTasks, runSpeed, seqDep)
	default:
		return nil, fmt.Errorf("must pass either -fjs, or all of -jobtasks/-runspeed/-seqdep")
	}
}

func instanceLabel(fjsPath, jobTasks string) string {
	if fjsPath != "" {
		return fjsPath
	}
	return jobTasks
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func keys(m map[string]bench.Algorithm) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
