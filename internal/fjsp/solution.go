package fjsp

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/r3b0rn/fjsp-tabu/internal/ferrors"
)

// Row is one scheduled operation: job/task identify the operation, seq is
// its precedence position within the job (redundant with task but kept
// explicit), machine is where it runs.
type Row struct {
	Job     int
	Task    int
	Seq     int
	Machine int
}

// Solution is an ordered sequence of Rows plus a cached makespan. It holds
// no pointer back to Instance (Design Notes): every operation that needs
// problem data takes an *Instance argument explicitly. Solutions are cheap
// to clone by value; Clone is the only sanctioned way to branch one.
type Solution struct {
	Rows []Row

	makespan      float64
	makespanValid bool
}

// NewSolution wraps a row slice. The caller is responsible for the rows
// satisfying the feasibility invariants; use CheckFeasible to verify.
func NewSolution(rows []Row) *Solution {
	return &Solution{Rows: append([]Row(nil), rows...)}
}

// Clone returns a deep copy sharing no backing array with the receiver.
func (s *Solution) Clone() *Solution {
	return &Solution{
		Rows:          append([]Row(nil), s.Rows...),
		makespan:      s.makespan,
		makespanValid: s.makespanValid,
	}
}

// Invalidate clears the cached makespan. Every mutating operation
// (neighbor moves, crossover, mutation) must call this after editing Rows
// directly.
func (s *Solution) Invalidate() {
	s.makespanValid = false
}

// CachedMakespan returns the last computed makespan and whether the cache
// is still valid.
func (s *Solution) CachedMakespan() (float64, bool) {
	return s.makespan, s.makespanValid
}

// setCache records a freshly computed makespan as valid. Used only by the
// Evaluator.
func (s *Solution) setCache(makespan float64) {
	s.makespan = makespan
	s.makespanValid = true
}

// CheckFeasible verifies three invariants:
//  1. every (job,task) pair appears exactly once,
//  2. each job's tasks appear in ascending sequence order,
//  3. every row's machine is in that operation's usable set.
func CheckFeasible(inst *Instance, s *Solution) error {
	if len(s.Rows) != inst.Tasks {
		return fmt.Errorf("solution has %d rows, want %d", len(s.Rows), inst.Tasks)
	}

	seen := make([]bool, inst.Tasks)
	lastSeqOfJob := make(map[int]int, inst.Jobs)

	for i, row := range s.Rows {
		t := inst.IndexOf(row.Job, row.Task)
		if t < 0 {
			return fmt.Errorf("row %d: (job %d, task %d) does not exist in instance", i, row.Job, row.Task)
		}
		if seen[t] {
			return fmt.Errorf("row %d: (job %d, task %d) appears more than once", i, row.Job, row.Task)
		}
		seen[t] = true

		seq := inst.SeqOf(t)
		if prev, ok := lastSeqOfJob[row.Job]; ok && seq <= prev {
			return fmt.Errorf("row %d: job %d task order violated (seq %d after %d)", i, row.Job, seq, prev)
		}
		lastSeqOfJob[row.Job] = seq

		if !inst.Usable(t).Contains(row.Machine) {
			return fmt.Errorf("row %d: machine %d is not usable for operation (job %d, task %d)", i, row.Machine, row.Job, row.Task)
		}
	}

	for t := 0; t < inst.Tasks; t++ {
		if !seen[t] {
			return fmt.Errorf("operation %d (job %d, task %d) is missing from the solution", t, inst.JobOf(t), inst.TaskOf(t))
		}
	}
	return nil
}

// CheckSeedBatch validates every solution in seeds against inst's
// invariants, returning a ferrors.InvalidSeedError for the first offender.
// The core rejects the whole batch rather than repairing it.
func CheckSeedBatch(inst *Instance, seeds []*Solution) error {
	for i, s := range seeds {
		if err := CheckFeasible(inst, s); err != nil {
			return ferrors.NewInvalidSeed(i, err.Error())
		}
	}
	return nil
}

// Fingerprint returns a 64-bit hash of the row sequence's (job,task,machine)
// triples, used as the Tabu Search state key and for neighborhood
// deduplication. Collisions only cost extra exploration.
func Fingerprint(s *Solution) uint64 {
	buf := make([]byte, 12)
	h := xxhash.New()
	for _, r := range s.Rows {
		binary.LittleEndian.PutUint32(buf[0:4], uint32(r.Job))
		binary.LittleEndian.PutUint32(buf[4:8], uint32(r.Task))
		binary.LittleEndian.PutUint32(buf[8:12], uint32(r.Machine))
		_, _ = h.Write(buf)
	}
	return h.Sum64()
}

// Less orders two solutions by makespan, tie-breaking on the lexicographic
// (machine, job, task) fingerprint of their row sequences for a stable
// sort.
func Less(a, b *Solution) bool {
	ams, aok := a.CachedMakespan()
	bms, bok := b.CachedMakespan()
	if !aok || !bok {
		panic("fjsp: Less called with an uncached makespan; call Evaluate first")
	}
	if ams != bms {
		return ams < bms
	}
	return lexKey(a) < lexKey(b)
}

// lexKey builds a comparable key from each row's (machine, job, task)
// triple, used only to break makespan ties deterministically.
func lexKey(s *Solution) string {
	keys := make([]string, len(s.Rows))
	for i, r := range s.Rows {
		keys[i] = fmt.Sprintf("%08d:%08d:%08d", r.Machine, r.Job, r.Task)
	}
	sort.Strings(keys)
	out := make([]byte, 0, len(keys)*27)
	for _, k := range keys {
		out = append(out, k...)
	}
	return string(out)
}
