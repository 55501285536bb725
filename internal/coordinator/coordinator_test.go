package coordinator

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/r3b0rn/fjsp-tabu/internal/fjsp"
	"github.com/r3b0rn/fjsp-tabu/internal/ga"
	"github.com/r3b0rn/fjsp-tabu/internal/ts"
)

func buildTestInstance(t *testing.T) *fjsp.Instance {
	t.Helper()
	b := fjsp.NewBuilder(3, 3)
	b.AddTask(0, []int{0, 1}, map[int]float64{0: 3, 1: 4})
	b.AddTask(0, []int{1, 2}, map[int]float64{1: 2, 2: 3})
	b.AddTask(1, []int{0, 2}, map[int]float64{0: 5, 2: 4})
	b.AddTask(1, []int{1}, map[int]float64{1: 2})
	b.AddTask(2, []int{0, 1, 2}, map[int]float64{0: 3, 1: 3, 2: 3})
	inst, err := b.Build()
	require.NoError(t, err)
	return inst
}

// TestRunTabuSearchIsDeterministicUnderSeed checks that:
// running the same masterRng seed twice produces an identical global
// best makespan.
func TestRunTabuSearchIsDeterministicUnderSeed(t *testing.T) {
	inst := buildTestInstance(t)

	cfg := ts.DefaultConfig()
	cfg.MaxIterations = 50
	cfg.MaxDuration = 0
	cfg.NeighborhoodSize = 10
	cfgs := []ts.Config{cfg, cfg, cfg, cfg}

	run := func(seed int64) float64 {
		c := New(nil)
		rng := rand.New(rand.NewSource(seed))
		report, err := c.RunTabuSearch(context.Background(), inst, cfgs, nil, rng)
		require.NoError(t, err)
		require.NoError(t, fjsp.CheckFeasible(inst, report.Best.Solution))
		return report.Best.Makespan
	}

	ms1 := run(4242)
	ms2 := run(4242)
	require.Equal(t, ms1, ms2)
}

func TestRunTabuSearchPadsSeedsWithRandomFeasible(t *testing.T) {
	inst := buildTestInstance(t)
	cfg := ts.DefaultConfig()
	cfg.MaxIterations = 10
	cfg.NeighborhoodSize = 5

	c := New(nil)
	rng := rand.New(rand.NewSource(1))
	report, err := c.RunTabuSearch(context.Background(), inst, []ts.Config{cfg, cfg}, nil, rng)
	require.NoError(t, err)
	require.Len(t, report.Workers, 2)
	require.NotNil(t, report.Best.Solution)
}

func TestRunGeneticAlgorithm(t *testing.T) {
	inst := buildTestInstance(t)
	cfg := ga.DefaultConfig()
	cfg.Population = 10
	cfg.MaxGenerations = 50

	c := New(nil)
	rng := rand.New(rand.NewSource(9))
	res, err := c.RunGeneticAlgorithm(context.Background(), inst, cfg, nil, rng)
	require.NoError(t, err)
	require.NoError(t, fjsp.CheckFeasible(inst, res.Solution))
}
