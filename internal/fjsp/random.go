package fjsp

import (
	"math/rand"
	"sort"
)

// GenerateRandomFeasible builds a Solution by, at each step, choosing
// uniformly among jobs whose next unscheduled task exists and appending
// that task with a machine drawn uniformly from its usable set. The
// result is feasible by construction.
func GenerateRandomFeasible(inst *Instance, rng *rand.Rand) *Solution {
	next := make([]int, inst.Jobs) // next task index to schedule per job
	remaining := make([]int, 0, inst.Jobs)
	for j := 0; j < inst.Jobs; j++ {
		if inst.TasksOfJob(j) > 0 {
			remaining = append(remaining, j)
		}
	}

	rows := make([]Row, 0, inst.Tasks)
	for len(remaining) > 0 {
		pick := rng.Intn(len(remaining))
		job := remaining[pick]

		task := next[job]
		t := inst.IndexOf(job, task)
		usable := inst.Usable(t).Slice()
		sort.Ints(usable) // Slice order is unspecified; sort so a fixed seed picks the same machine
		machine := usable[rng.Intn(len(usable))]

		rows = append(rows, Row{Job: job, Task: task, Seq: inst.SeqOf(t), Machine: machine})

		next[job]++
		if next[job] >= inst.TasksOfJob(job) {
			remaining[pick] = remaining[len(remaining)-1]
			remaining = remaining[:len(remaining)-1]
		}
	}

	return &Solution{Rows: rows}
}
