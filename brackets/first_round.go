package brackets

import (
	"context"
	"math/rand"

	"github.com/Dosada05/tournament-engine/models"
)

// FirstRoundGenerator pairs the opening round, when no results exist yet.
type FirstRoundGenerator struct {
	rng *rand.Rand
}

func NewFirstRoundGenerator(rng *rand.Rand) PairingGenerator {
	return &FirstRoundGenerator{rng: rng}
}

func (g *FirstRoundGenerator) GetName() string {
	return "FirstRound"
}

// GeneratePairings shuffles the competitors and pairs them according to the
// round definition. An odd competitor out is given a bye as the last pairing.
func (g *FirstRoundGenerator) GeneratePairings(ctx context.Context, params GeneratePairingsParams) ([]Pairing, error) {
	if len(params.Competitors) < 2 {
		return nil, ErrNotEnoughCompetitors
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ids := make([]int, len(params.Competitors))
	beginner := make(map[int]bool, len(params.Competitors))
	for i, c := range params.Competitors {
		ids[i] = c.UserID
		beginner[c.UserID] = c.IsBeginner
	}
	g.shuffle(ids)

	strategy := models.LevelPairingNone
	if params.Definition != nil && params.Definition.PairingAlgorithm == models.PairingCustom {
		strategy = params.Definition.PlayerLevelPairingStrategy
	}

	switch strategy {
	case models.LevelPairingBeginnersWithVeterans:
		beginners, veterans := splitByLevel(ids, beginner)
		return pairMixed(beginners, veterans), nil
	case models.LevelPairingBeginnersWithBeginner:
		beginners, veterans := splitByLevel(ids, beginner)
		return pairHomogeneous(beginners, veterans), nil
	default:
		return pairSequential(ids), nil
	}
}

func (g *FirstRoundGenerator) shuffle(ids []int) {
	swap := func(i, j int) { ids[i], ids[j] = ids[j], ids[i] }
	if g.rng == nil {
		rand.Shuffle(len(ids), swap)
		return
	}
	g.rng.Shuffle(len(ids), swap)
}

func splitByLevel(ids []int, beginner map[int]bool) (beginners, veterans []int) {
	for _, id := range ids {
		if beginner[id] {
			beginners = append(beginners, id)
		} else {
			veterans = append(veterans, id)
		}
	}
	return beginners, veterans
}

// pairSequential pairs ids two by two; an odd last id gets the bye.
func pairSequential(ids []int) []Pairing {
	pairings := make([]Pairing, 0, (len(ids)+1)/2)
	for i := 0; i+1 < len(ids); i += 2 {
		pairings = append(pairings, newPair(ids[i], ids[i+1]))
	}
	if len(ids)%2 == 1 {
		pairings = append(pairings, newBye(ids[len(ids)-1]))
	}
	return pairings
}

// pairMixed takes one beginner and one veteran per table while both groups last.
// Whatever remains of the larger group is paired within itself.
func pairMixed(beginners, veterans []int) []Pairing {
	n := min(len(beginners), len(veterans))
	pairings := make([]Pairing, 0, (len(beginners)+len(veterans)+1)/2)
	for i := 0; i < n; i++ {
		pairings = append(pairings, newPair(beginners[i], veterans[i]))
	}
	rest := beginners[n:]
	if len(veterans) > n {
		rest = veterans[n:]
	}
	return append(pairings, pairSequential(rest)...)
}

// pairHomogeneous keeps beginners with beginners and veterans with veterans.
// When both groups are odd their leftovers meet; the bye always goes last.
func pairHomogeneous(beginners, veterans []int) []Pairing {
	var leftovers []int
	pairings := make([]Pairing, 0, (len(beginners)+len(veterans)+1)/2)
	for _, group := range [][]int{beginners, veterans} {
		for i := 0; i+1 < len(group); i += 2 {
			pairings = append(pairings, newPair(group[i], group[i+1]))
		}
		if len(group)%2 == 1 {
			leftovers = append(leftovers, group[len(group)-1])
		}
	}
	return append(pairings, pairSequential(leftovers)...)
}
