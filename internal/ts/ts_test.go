package ts

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/r3b0rn/fjsp-tabu/internal/fjsp"
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

// TestTabuListExactMembership checks the tabu-list eviction property: after
// inserting more than its capacity worth of distinct keys, IsTabu reflects
// only the most recently inserted ones still within their expiry window.
func TestTabuListExactMembership(t *testing.T) {
	tabu := newTabuList(4)
	for i := 0; i < 10; i++ {
		tabu.Add(uint64(i+1), 1000)
	}
	// capacity rounds up to 8 (newTabuList's floor), so the 2 oldest keys
	// (1,2) have been evicted by the ring buffer.
	require.False(t, tabu.IsTabu(1, 0))
	require.False(t, tabu.IsTabu(2, 0))
	for i := 3; i <= 10; i++ {
		require.True(t, tabu.IsTabu(uint64(i), 0))
	}
}

func TestTabuListExpiresAtIteration(t *testing.T) {
	tabu := newTabuList(8)
	tabu.Add(42, 5)
	require.True(t, tabu.IsTabu(42, 4))
	require.False(t, tabu.IsTabu(42, 5))
	require.False(t, tabu.IsTabu(42, 6))
}

// TestWorkerBestIsMonotonic checks that across any run, the returned
// best makespan never exceeds the seed's makespan.
func TestWorkerBestIsMonotonic(t *testing.T) {
	inst := buildTestInstance(t)
	rng := rand.New(rand.NewSource(11))
	seed := fjsp.GenerateRandomFeasible(inst, rng)

	eval := fjsp.NewEvaluator(inst)
	seedMs, err := eval.Evaluate(seed)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.MaxIterations = 200
	cfg.MaxDuration = 0
	cfg.NeighborhoodSize = 16

	w, err := New(cfg, rng, nil)
	require.NoError(t, err)

	res, err := w.Run(context.Background(), inst, seed)
	require.NoError(t, err)
	require.LessOrEqual(t, res.Makespan, seedMs)
	require.NoError(t, fjsp.CheckFeasible(inst, res.Solution))
}

func TestWorkerStopsAtMaxIterations(t *testing.T) {
	inst := buildTestInstance(t)
	rng := rand.New(rand.NewSource(5))
	seed := fjsp.GenerateRandomFeasible(inst, rng)

	cfg := DefaultConfig()
	cfg.MaxIterations = 25
	cfg.MaxDuration = 0

	w, err := New(cfg, rng, nil)
	require.NoError(t, err)

	res, err := w.Run(context.Background(), inst, seed)
	require.NoError(t, err)
	require.Equal(t, 25, res.Iterations)
}

func TestWorkerStopsOnContextCancellation(t *testing.T) {
	inst := buildTestInstance(t)
	rng := rand.New(rand.NewSource(6))
	seed := fjsp.GenerateRandomFeasible(inst, rng)

	cfg := DefaultConfig()
	cfg.MaxIterations = 0
	cfg.MaxDuration = time.Hour

	w, err := New(cfg, rng, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := w.Run(ctx, inst, seed)
	require.NoError(t, err)
	require.Equal(t, 0, res.Iterations)
}

func TestNewRejectsNilRNG(t *testing.T) {
	_, err := New(DefaultConfig(), nil, nil)
	require.ErrorIs(t, err, errNilRNG)
}
