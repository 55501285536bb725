package fjsp

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func buildSingletonUsableInstance(t *testing.T) *Instance {
	t.Helper()
	b := NewBuilder(2, 3)
	// op with singleton usable set must never change machine.
	b.AddTask(0, []int{0}, map[int]float64{0: 2})
	b.AddTask(0, []int{0, 1, 2}, map[int]float64{0: 3, 1: 4, 2: 5})
	b.AddTask(1, []int{1, 2}, map[int]float64{1: 2, 2: 3})
	inst, err := b.Build()
	require.NoError(t, err)
	return inst
}

// TestMachineReassignmentRespectsUsableSet verifies that:
// fuzz neighbor moves on an instance where one operation has a singleton
// usable set, and verify that operation's machine never changes.
func TestMachineReassignmentRespectsUsableSet(t *testing.T) {
	inst := buildSingletonUsableInstance(t)
	rng := rand.New(rand.NewSource(42))
	cur := GenerateRandomFeasible(inst, rng)

	singleton := inst.IndexOf(0, 0)

	for i := 0; i < 10000; i++ {
		neighbor, _, ok := RandomNeighbor(inst, cur, rng, 0.8)
		if !ok {
			continue
		}
		require.NoError(t, CheckFeasible(inst, neighbor))
		for _, row := range neighbor.Rows {
			if inst.IndexOf(row.Job, row.Task) == singleton {
				require.Equal(t, 0, row.Machine)
			}
		}
		cur = neighbor
	}
}

func TestAdjacentSwapPreservesFeasibility(t *testing.T) {
	inst := buildTwoJobsTwoMachines(t)
	rng := rand.New(rand.NewSource(7))
	cur := GenerateRandomFeasible(inst, rng)

	for i := 0; i < 1000; i++ {
		neighbor, _, ok := RandomAdjacentSwap(cur, rng)
		if !ok {
			continue
		}
		require.NoError(t, CheckFeasible(inst, neighbor))
		cur = neighbor
	}
}

func TestGenerateNeighborhoodRespectsDeadlineAndDedup(t *testing.T) {
	inst := buildTwoJobsTwoMachines(t)
	rng := rand.New(rand.NewSource(1))
	cur := GenerateRandomFeasible(inst, rng)

	batch := GenerateNeighborhood(inst, cur, 1000, time.Now().Add(50*time.Millisecond), 0.5, rng)
	require.NotEmpty(t, batch)

	seen := make(map[uint64]bool)
	for _, s := range batch {
		require.NoError(t, CheckFeasible(inst, s))
		fp := Fingerprint(s)
		require.False(t, seen[fp], "neighborhood batch must not contain duplicate fingerprints")
		seen[fp] = true
	}
}

func TestGenerateNeighborhoodStopsAtRequestedSize(t *testing.T) {
	inst := buildTwoJobsTwoMachines(t)
	rng := rand.New(rand.NewSource(2))
	cur := GenerateRandomFeasible(inst, rng)

	batch := GenerateNeighborhood(inst, cur, 3, time.Time{}, 0.5, rng)
	require.LessOrEqual(t, len(batch), 3)
}
