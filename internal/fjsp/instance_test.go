package fjsp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buildTwoJobsTwoMachines(t *testing.T) *Instance {
	t.Helper()
	b := NewBuilder(2, 2)
	b.SetMachineSpeed(0, 1)
	b.SetMachineSpeed(1, 1)

	// job A: a1 on M0 (3), a2 on M1 (4)
	b.AddTask(0, []int{0}, map[int]float64{0: 3})
	b.AddTask(0, []int{1}, map[int]float64{1: 4})

	// job B: b1 on M1 (2), b2 on M0 (5)
	b.AddTask(1, []int{1}, map[int]float64{1: 2})
	b.AddTask(1, []int{0}, map[int]float64{0: 5})

	inst, err := b.Build()
	require.NoError(t, err)
	return inst
}

func TestBuilderProducesConsistentInstance(t *testing.T) {
	inst := buildTwoJobsTwoMachines(t)
	require.Equal(t, 2, inst.Jobs)
	require.Equal(t, 2, inst.Machines)
	require.Equal(t, 4, inst.Tasks)

	a1 := inst.IndexOf(0, 0)
	require.GreaterOrEqual(t, a1, 0)
	require.True(t, inst.Usable(a1).Contains(0))
	require.False(t, inst.Usable(a1).Contains(1))
	require.Equal(t, 3.0, inst.ProcTime(a1, 0))
	require.Equal(t, noMachine, inst.ProcTime(a1, 1))
}

func TestBuildRejectsEmptyUsableSet(t *testing.T) {
	b := NewBuilder(1, 1)
	b.AddTask(0, nil, nil)
	_, err := b.Build()
	require.Error(t, err)
}

// TestSetupBetweenIdlePredecessor checks that an idle (-1) predecessor
// always costs 0, regardless of what the idle row of the setup matrix
// carries — it is ignored rather than looked up.
func TestSetupBetweenIdlePredecessor(t *testing.T) {
	b := NewBuilder(1, 1)
	b.AddTask(0, []int{0}, map[int]float64{0: 1})
	b.AddTask(0, []int{0}, map[int]float64{0: 1})
	b.SetSequenceDependencyMatrix([][]float64{
		{0, 100}, // idle row, ignored
		{0, 100}, // 0 -> {0:0, 1:100}
		{100, 0}, // 1 -> {0:100, 1:0}
	})
	inst, err := b.Build()
	require.NoError(t, err)
	require.Equal(t, 0.0, inst.SetupBetween(-1, 1))
	require.Equal(t, 0.0, inst.SetupBetween(-1, 0))
	require.Equal(t, 100.0, inst.SetupBetween(1, 0))
}
