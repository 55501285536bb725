package ga

import (
	"math/rand"

	"github.com/r3b0rn/fjsp-tabu/internal/fjsp"
)

// tournamentSelect samples tournamentSize individuals uniformly with
// replacement and returns the index of the minimum-makespan one. Every
// individual's makespan must already be cached.
func tournamentSelect(pop []*fjsp.Solution, tournamentSize int, rng *rand.Rand) int {
	best := rng.Intn(len(pop))
	bestMs, _ := pop[best].CachedMakespan()
	for i := 1; i < tournamentSize; i++ {
		cand := rng.Intn(len(pop))
		ms, _ := pop[cand].CachedMakespan()
		if ms < bestMs {
			best = cand
			bestMs = ms
		}
	}
	return best
}

// precedenceCrossover copies parent a's rows up to and including a random
// cut point into the child wholesale, then walks parent b left-to-right
// appending any (job,task) pair not yet present, carrying b's machine
// assignment for that pair. Within-job relative order survives because
// both donors already preserve it; machines are copied, never invented,
// so usable-machine feasibility survives too.
func precedenceCrossover(a, b *fjsp.Solution, rng *rand.Rand) *fjsp.Solution {
	n := len(a.Rows)
	child := make([]fjsp.Row, 0, n)

	cut := 1
	if n > 1 {
		cut = 1 + rng.Intn(n-1)
	}
	present := make(map[[2]int]bool, n)
	for i := 0; i < cut; i++ {
		child = append(child, a.Rows[i])
		present[[2]int{a.Rows[i].Job, a.Rows[i].Task}] = true
	}
	for _, row := range b.Rows {
		key := [2]int{row.Job, row.Task}
		if present[key] {
			continue
		}
		present[key] = true
		child = append(child, row)
	}
	return fjsp.NewSolution(child)
}

// mutate applies one atomic move, chosen the same way the neighbor
// generator does: Bernoulli(pChangeMachine) between machine reassignment
// and adjacent cross-job swap, falling back to the other move type if the
// chosen one has no eligible candidate. It is a no-op (returns the input
// unchanged) if neither move type has any eligible candidate.
func mutate(inst *fjsp.Instance, s *fjsp.Solution, rng *rand.Rand, pChangeMachine float64) *fjsp.Solution {
	if next, _, ok := fjsp.RandomNeighbor(inst, s, rng, pChangeMachine); ok {
		return next
	}
	return s
}
