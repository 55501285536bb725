package fjsp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestTrivialInstance: J=1, M=1, one task,
// proc_time=5, no setup. Any solution has makespan 5.
func TestTrivialInstance(t *testing.T) {
	b := NewBuilder(1, 1)
	b.AddTask(0, []int{0}, map[int]float64{0: 5})
	inst, err := b.Build()
	require.NoError(t, err)

	sol := NewSolution([]Row{{Job: 0, Task: 0, Seq: 0, Machine: 0}})
	eval := NewEvaluator(inst)
	ms, err := eval.Evaluate(sol)
	require.NoError(t, err)
	require.Equal(t, 5.0, ms)
}

// TestTwoJobsTwoMachinesNoSetup checks a two-job, two-machine schedule with no setup time.
func TestTwoJobsTwoMachinesNoSetup(t *testing.T) {
	inst := buildTwoJobsTwoMachines(t)
	eval := NewEvaluator(inst)

	// lexicographic schedule: a1, b1, a2, b2
	sol := NewSolution([]Row{
		{Job: 0, Task: 0, Seq: 0, Machine: 0}, // a1 on M0
		{Job: 1, Task: 0, Seq: 0, Machine: 1}, // b1 on M1
		{Job: 0, Task: 1, Seq: 1, Machine: 1}, // a2 on M1
		{Job: 1, Task: 1, Seq: 1, Machine: 0}, // b2 on M0
	})
	ms, err := eval.Evaluate(sol)
	require.NoError(t, err)
	require.Equal(t, 8.0, ms)
}

// TestSetupDominates checks that a large setup time dominates the makespan.
func TestSetupDominates(t *testing.T) {
	b := NewBuilder(1, 2)
	b.AddTask(0, []int{0}, map[int]float64{0: 1})
	b.AddTask(0, []int{0}, map[int]float64{0: 1})
	b.SetSequenceDependencyMatrix([][]float64{
		{0, 0},   // idle predecessor
		{0, 100}, // predecessor = op0
		{0, 0},   // predecessor = op1
	})
	inst, err := b.Build()
	require.NoError(t, err)
	eval := NewEvaluator(inst)

	// S = [b, a]: op1 then op0, no setup penalty since each is scheduled
	// first relative to the other ordering direction.
	solBA := NewSolution([]Row{
		{Job: 0, Task: 1, Seq: 1, Machine: 0},
		{Job: 0, Task: 0, Seq: 0, Machine: 0},
	})
	msBA, err := eval.Evaluate(solBA)
	require.NoError(t, err)
	require.Equal(t, 2.0, msBA)

	// S = [a, b]: op0 then op1, triggers the 100-minute setup.
	solAB := NewSolution([]Row{
		{Job: 0, Task: 0, Seq: 0, Machine: 0},
		{Job: 0, Task: 1, Seq: 1, Machine: 0},
	})
	msAB, err := eval.Evaluate(solAB)
	require.NoError(t, err)
	require.Equal(t, 102.0, msAB)
}

func TestEvaluateIsIdempotent(t *testing.T) {
	inst := buildTwoJobsTwoMachines(t)
	eval := NewEvaluator(inst)
	sol := NewSolution([]Row{
		{Job: 0, Task: 0, Seq: 0, Machine: 0},
		{Job: 0, Task: 1, Seq: 1, Machine: 1},
		{Job: 1, Task: 0, Seq: 0, Machine: 1},
		{Job: 1, Task: 1, Seq: 1, Machine: 0},
	})
	ms1, err := eval.Evaluate(sol)
	require.NoError(t, err)
	ms2, err := eval.Evaluate(sol)
	require.NoError(t, err)
	require.Equal(t, ms1, ms2)
}

func TestEvaluateRejectsWrongLength(t *testing.T) {
	inst := buildTwoJobsTwoMachines(t)
	eval := NewEvaluator(inst)
	sol := NewSolution([]Row{{Job: 0, Task: 0, Seq: 0, Machine: 0}})
	_, err := eval.Evaluate(sol)
	require.Error(t, err)
}
