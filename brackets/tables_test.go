package brackets

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tournament-engine/models"
)

func tableNumbers(pairings []Pairing) []int {
	out := make([]int, len(pairings))
	for i, p := range pairings {
		out[i] = p.TableNumber
	}
	return out
}

func rankedPairings(n int) []Pairing {
	out := make([]Pairing, n)
	for i := range out {
		out[i] = newPair(2*i+1, 2*i+2)
	}
	return out
}

func TestAssignTables_BestFirst(t *testing.T) {
	got := AssignTables(rankedPairings(4), models.TablesBestFirst, nil)
	assert.Equal(t, []int{1, 2, 3, 4}, tableNumbers(got))
	assert.Equal(t, 1, got[0].Player1ID)
}

func TestAssignTables_ByeGetsNoTable(t *testing.T) {
	pairings := append(rankedPairings(2), newBye(9))
	got := AssignTables(pairings, models.TablesBestFirst, nil)
	assert.Equal(t, []int{1, 2, 0}, tableNumbers(got))
}

func TestAssignTables_DoesNotMutateInput(t *testing.T) {
	in := rankedPairings(3)
	_ = AssignTables(in, models.TablesBestFirst, nil)
	assert.Equal(t, []int{0, 0, 0}, tableNumbers(in))
}

func TestAssignTables_RandomIsPermutation(t *testing.T) {
	got := AssignTables(rankedPairings(8), models.TablesRandom, rand.New(rand.NewSource(42)))
	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, tableNumbers(got))
}

func TestAssignTables_RandomDeterministicForSeed(t *testing.T) {
	a := AssignTables(rankedPairings(10), models.TablesRandom, rand.New(rand.NewSource(42)))
	b := AssignTables(rankedPairings(10), models.TablesRandom, rand.New(rand.NewSource(42)))
	assert.Equal(t, tableNumbers(a), tableNumbers(b))
}

func TestAssignTables_RandomDiffersAcrossSeeds(t *testing.T) {
	seen := make(map[[10]int]struct{})
	for seed := int64(1); seed <= 5; seed++ {
		got := tableNumbers(AssignTables(rankedPairings(10), models.TablesRandom, rand.New(rand.NewSource(seed))))
		var key [10]int
		copy(key[:], got)
		seen[key] = struct{}{}
	}
	require.Greater(t, len(seen), 1)
}
