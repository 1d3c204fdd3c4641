package brackets

import (
	"math/rand"

	"github.com/Dosada05/tournament-engine/models"
)

// AssignTables numbers the tables of a round and returns a new slice in the same order.
//
// BEST_FIRST gives table 1 to the first pairing, table 2 to the second and so on, so
// pairings must already be in rank order. RANDOM draws a permutation of 1..N from rng.
// Byes take no table and get 0.
func AssignTables(pairings []Pairing, strategy models.TableAssignmentStrategy, rng *rand.Rand) []Pairing {
	out := make([]Pairing, len(pairings))
	copy(out, pairings)

	games := 0
	for _, p := range out {
		if !p.IsBye() {
			games++
		}
	}

	tables := make([]int, games)
	if strategy == models.TablesRandom {
		var perm []int
		if rng != nil {
			perm = rng.Perm(games)
		} else {
			perm = rand.Perm(games)
		}
		for i, v := range perm {
			tables[i] = v + 1
		}
	} else {
		for i := range tables {
			tables[i] = i + 1
		}
	}

	next := 0
	for i := range out {
		if out[i].IsBye() {
			out[i].TableNumber = 0
			continue
		}
		out[i].TableNumber = tables[next]
		next++
	}
	return out
}
