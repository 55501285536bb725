// Package fjsp implements the compact representation, feasibility
// invariants, makespan evaluator, and neighbor generator for the flexible
// job-shop problem with sequence-dependent setup times (SDST-FJSP).
package fjsp

import (
	"fmt"

	"github.com/hashicorp/go-set/v3"

	"github.com/r3b0rn/fjsp-tabu/internal/ferrors"
)

// noMachine is the sentinel processing time for a (task, machine) pair
// where machine is not in the task's usable set.
const noMachine = -1.0

// Instance is immutable problem data plus precomputed lookup tables. It is
// shared by reference across all search workers and never mutated after
// construction.
type Instance struct {
	Jobs     int
	Machines int
	Tasks    int // T, total number of operations across all jobs

	jobOf  []int // len Tasks
	taskOf []int // len Tasks, 0-based task index within its job
	seqOf  []int // len Tasks, ascending precedence order within the job

	indexOf [][]int // Jobs x maxTasksPerJob, -1 for absent (job,task) pairs

	usable []*set.Set[int] // len Tasks

	// procTime is Tasks*Machines, row-major; entry is noMachine when the
	// machine is not in the task's usable set.
	procTime []float64

	// setup is Tasks*Tasks, row-major: setup[a*Tasks+b] is the setup
	// minutes charged on the machine running b when a ran immediately
	// before it on that machine. A predecessor of -1 (first operation on a
	// machine) always costs 0 and never consults this table.
	setup []float64

	// machineSpeed is opaque to the core; retained only because CSV intake
	// derives ProcTime from it and a round-trip needs it preserved.
	machineSpeed []float64
}

// Builder assembles an Instance incrementally, used by the intake parsers.
// It performs no validation until Build is called.
type Builder struct {
	jobs, machines int
	tasksPerJob    [][]taskSpec
	machineSpeed   []float64
	setup          []float64 // optional, Tasks*Tasks; nil means all zero
}

type taskSpec struct {
	usable   []int
	procTime map[int]float64 // machine -> time, only for machines in usable
}

// NewBuilder starts a Builder for an instance with the given job and
// machine counts.
func NewBuilder(jobs, machines int) *Builder {
	return &Builder{
		jobs:         jobs,
		machines:     machines,
		tasksPerJob:  make([][]taskSpec, jobs),
		machineSpeed: make([]float64, machines),
	}
}

// SetMachineSpeed records the run speed of a machine (CSV intake only).
func (b *Builder) SetMachineSpeed(machine int, speed float64) {
	b.machineSpeed[machine] = speed
}

// AddTask appends the next task of job, with the given usable machines and
// per-machine processing times (keyed by machine id, only for usable
// machines).
func (b *Builder) AddTask(job int, usable []int, procTime map[int]float64) {
	u := make([]int, len(usable))
	copy(u, usable)
	pt := make(map[int]float64, len(procTime))
	for m, v := range procTime {
		pt[m] = v
	}
	b.tasksPerJob[job] = append(b.tasksPerJob[job], taskSpec{usable: u, procTime: pt})
}

// SetSequenceDependencyMatrix installs the full (T+1)xT setup matrix as
// read from the CSV triple's sequenceDependencyMatrix.csv: row 0 is the
// "idle predecessor" row, kept only for parity with the on-disk format
// since a -1 predecessor always costs 0 regardless of its contents; rows
// 1..T correspond to predecessor operations 0..T-1. rows[r] must have
// length equal to the total task count.
func (b *Builder) SetSequenceDependencyMatrix(rows [][]float64) {
	if len(rows) == 0 {
		return
	}
	tasks := len(rows[0])
	b.setup = make([]float64, tasks*tasks)
	for a := 0; a < tasks && a+1 < len(rows); a++ {
		copy(b.setup[a*tasks:(a+1)*tasks], rows[a+1])
	}
}

// Build validates and returns the finished Instance.
func (b *Builder) Build() (*Instance, error) {
	maxTasksPerJob := 0
	total := 0
	for _, tasks := range b.tasksPerJob {
		if len(tasks) > maxTasksPerJob {
			maxTasksPerJob = len(tasks)
		}
		total += len(tasks)
	}

	inst := &Instance{
		Jobs:         b.jobs,
		Machines:     b.machines,
		Tasks:        total,
		jobOf:        make([]int, total),
		taskOf:       make([]int, total),
		seqOf:        make([]int, total),
		indexOf:      make([][]int, b.jobs),
		usable:       make([]*set.Set[int], total),
		procTime:     make([]float64, total*b.machines),
		setup:        make([]float64, total*total),
		machineSpeed: b.machineSpeed,
	}
	for i := range inst.procTime {
		inst.procTime[i] = noMachine
	}
	for j := range inst.indexOf {
		row := make([]int, maxTasksPerJob)
		for k := range row {
			row[k] = -1
		}
		inst.indexOf[j] = row
	}

	idx := 0
	for job, tasks := range b.tasksPerJob {
		for task, entry := range tasks {
			inst.jobOf[idx] = job
			inst.taskOf[idx] = task
			inst.seqOf[idx] = task
			inst.indexOf[job][task] = idx

			inst.usable[idx] = set.From(entry.usable)

			for m, t := range entry.procTime {
				inst.procTime[idx*b.machines+m] = t
			}
			idx++
		}
	}

	if b.setup != nil && len(b.setup) == total*total {
		copy(inst.setup, b.setup)
	}

	if err := inst.validate(); err != nil {
		return nil, err
	}
	return inst, nil
}

// validate enforces agreement between proc_time and the usable set and
// rejects operations with an empty usable set.
func (inst *Instance) validate() error {
	for t := 0; t < inst.Tasks; t++ {
		if inst.usable[t].Size() == 0 {
			return ferrors.NewInfeasibleInstance(
				fmt.Sprintf("operation %d (job %d, task %d) has no usable machine", t, inst.jobOf[t], inst.taskOf[t]))
		}
		for m := 0; m < inst.Machines; m++ {
			pt := inst.procTime[t*inst.Machines+m]
			isUsable := inst.usable[t].Contains(m)
			if isUsable && pt < 0 {
				return ferrors.NewInfeasibleInstance(
					fmt.Sprintf("operation %d has negative processing time on usable machine %d", t, m))
			}
			if !isUsable && pt >= 0 {
				return ferrors.NewInfeasibleInstance(
					fmt.Sprintf("operation %d has a processing time recorded for non-usable machine %d", t, m))
			}
		}
	}
	return nil
}

// IndexOf returns the flat operation index for the k-th task of job j, or
// -1 if absent.
func (inst *Instance) IndexOf(job, task int) int {
	if job < 0 || job >= len(inst.indexOf) {
		return -1
	}
	row := inst.indexOf[job]
	if task < 0 || task >= len(row) {
		return -1
	}
	return row[task]
}

// JobOf, TaskOf, SeqOf return the per-operation precedence metadata.
func (inst *Instance) JobOf(t int) int  { return inst.jobOf[t] }
func (inst *Instance) TaskOf(t int) int { return inst.taskOf[t] }
func (inst *Instance) SeqOf(t int) int  { return inst.seqOf[t] }

// Usable returns the set of machines that may run operation t. Callers
// must not mutate the returned set.
func (inst *Instance) Usable(t int) *set.Set[int] { return inst.usable[t] }

// ProcTime returns the processing time of operation t on machine m, or a
// negative value if m is not usable for t.
func (inst *Instance) ProcTime(t, m int) float64 {
	return inst.procTime[t*inst.Machines+m]
}

// SetupBetween returns the setup time charged on the machine running b
// when a ran immediately before it. a == -1 denotes an idle predecessor
// (b is the first operation scheduled on its machine), which always
// costs 0.
func (inst *Instance) SetupBetween(a, b int) float64 {
	if a < 0 {
		return 0
	}
	return inst.setup[a*inst.Tasks+b]
}

// TasksOfJob returns the number of tasks belonging to job j.
func (inst *Instance) TasksOfJob(j int) int {
	n := 0
	for _, v := range inst.indexOf[j] {
		if v >= 0 {
			n++
		}
	}
	return n
}

// MachineSpeed returns the opaque machine speed recorded at CSV intake
// (1.0 for FJS-derived instances).
func (inst *Instance) MachineSpeed(m int) float64 { return inst.machineSpeed[m] }
