package brackets

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// history records who met whom so rounds can be chained in tests.
type history struct {
	opponents map[int]map[int]struct{}
	byes      map[int]int
}

func newHistory() *history {
	return &history{opponents: map[int]map[int]struct{}{}, byes: map[int]int{}}
}

func (h *history) record(pairings []Pairing) {
	for _, p := range pairings {
		if p.IsBye() {
			h.byes[p.Player1ID]++
			continue
		}
		a, b := p.Player1ID, *p.Player2ID
		if h.opponents[a] == nil {
			h.opponents[a] = map[int]struct{}{}
		}
		if h.opponents[b] == nil {
			h.opponents[b] = map[int]struct{}{}
		}
		h.opponents[a][b] = struct{}{}
		h.opponents[b][a] = struct{}{}
	}
}

func (h *history) field(ranking []int) []Competitor {
	out := make([]Competitor, len(ranking))
	for i, id := range ranking {
		out[i] = Competitor{UserID: id, Byes: h.byes[id], Opponents: h.opponents[id]}
	}
	return out
}

func (h *history) met(a, b int) bool {
	_, ok := h.opponents[a][b]
	return ok
}

func TestSwiss_PairsAdjacentRanks(t *testing.T) {
	pairings, err := NewSwissGenerator().GeneratePairings(context.Background(), GeneratePairingsParams{
		RoundNumber: 2,
		Competitors: competitors(6),
	})
	require.NoError(t, err)
	require.Len(t, pairings, 3)
	assert.Equal(t, newPair(1, 2), pairings[0])
	assert.Equal(t, newPair(3, 4), pairings[1])
	assert.Equal(t, newPair(5, 6), pairings[2])
}

func TestSwiss_AvoidsRematchBySearchingOutward(t *testing.T) {
	h := newHistory()
	h.record([]Pairing{newPair(1, 2), newPair(3, 4)})

	pairings, err := NewSwissGenerator().GeneratePairings(context.Background(), GeneratePairingsParams{
		RoundNumber: 2,
		Competitors: h.field([]int{1, 2, 3, 4}),
	})
	require.NoError(t, err)
	require.Len(t, pairings, 2)
	assert.Equal(t, newPair(1, 3), pairings[0])
	assert.Equal(t, newPair(2, 4), pairings[1])
}

func TestSwiss_BacktracksOutOfDeadEnd(t *testing.T) {
	// Greedy 1-3 would leave 2 and 4, who already met.
	h := newHistory()
	h.record([]Pairing{newPair(1, 2), newPair(2, 4)})

	pairings, err := NewSwissGenerator().GeneratePairings(context.Background(), GeneratePairingsParams{
		RoundNumber: 3,
		Competitors: h.field([]int{1, 2, 3, 4}),
	})
	require.NoError(t, err)
	require.Len(t, pairings, 2)
	for _, p := range pairings {
		assert.False(t, h.met(p.Player1ID, *p.Player2ID), "rematch %d-%d", p.Player1ID, *p.Player2ID)
	}
}

func TestSwiss_EveryoneMetKeepsRankOrder(t *testing.T) {
	h := newHistory()
	h.record([]Pairing{newPair(1, 2), newPair(3, 4)})
	h.record([]Pairing{newPair(1, 3), newPair(2, 4)})
	h.record([]Pairing{newPair(1, 4), newPair(2, 3)})

	pairings, err := NewSwissGenerator().GeneratePairings(context.Background(), GeneratePairingsParams{
		RoundNumber: 4,
		Competitors: h.field([]int{4, 3, 2, 1}),
	})
	require.NoError(t, err)
	assert.Equal(t, []Pairing{newPair(4, 3), newPair(2, 1)}, pairings)
}

func TestSwiss_SingleRematchWhenNoCleanRoundExists(t *testing.T) {
	// 1, 2 and 3 have met everyone except 6, so one of them must replay.
	// Rank order (1-2, 3-4, 5-6) would repeat two pairings.
	h := newHistory()
	h.record([]Pairing{newPair(1, 2), newPair(3, 4)})
	h.record([]Pairing{newPair(1, 3), newPair(2, 4)})
	h.record([]Pairing{newPair(1, 4), newPair(2, 3)})
	h.record([]Pairing{newPair(1, 5), newPair(2, 5)})
	h.record([]Pairing{newPair(3, 5)})

	pairings, err := NewSwissGenerator().GeneratePairings(context.Background(), GeneratePairingsParams{
		RoundNumber: 6,
		Competitors: h.field([]int{1, 2, 3, 4, 5, 6}),
	})
	require.NoError(t, err)
	require.Len(t, pairings, 3)
	assert.Len(t, countAppearances(t, pairings), 6)
	assert.Equal(t, 1, h.rematches(pairings))
	assert.Equal(t, []Pairing{newPair(1, 2), newPair(3, 6), newPair(4, 5)}, pairings)
}

func TestSwiss_MinimalRematchesOverManyRounds(t *testing.T) {
	gen := NewSwissGenerator()
	for seed := int64(1); seed <= 30; seed++ {
		rng := rand.New(rand.NewSource(seed))
		ranking := []int{1, 2, 3, 4, 5, 6}
		h := newHistory()

		for round := 1; round <= 5; round++ {
			pairings, err := gen.GeneratePairings(context.Background(), GeneratePairingsParams{
				RoundNumber: round,
				Competitors: h.field(ranking),
			})
			require.NoError(t, err)
			require.Len(t, countAppearances(t, pairings), 6)
			assert.Equal(t, h.fewestRematches(ranking), h.rematches(pairings), "seed %d round %d", seed, round)

			h.record(pairings)
			rng.Shuffle(len(ranking), func(i, j int) { ranking[i], ranking[j] = ranking[j], ranking[i] })
		}
	}
}

func (h *history) rematches(pairings []Pairing) int {
	n := 0
	for _, p := range pairings {
		if !p.IsBye() && h.met(p.Player1ID, *p.Player2ID) {
			n++
		}
	}
	return n
}

// fewestRematches tries every perfect matching of an even field.
func (h *history) fewestRematches(ids []int) int {
	if len(ids) == 0 {
		return 0
	}
	best := len(ids)
	for j := 1; j < len(ids); j++ {
		rest := make([]int, 0, len(ids)-2)
		for k := 1; k < len(ids); k++ {
			if k != j {
				rest = append(rest, ids[k])
			}
		}
		n := h.fewestRematches(rest)
		if h.met(ids[0], ids[j]) {
			n++
		}
		best = min(best, n)
	}
	return best
}

func TestSwiss_ByeGoesToLowestRankedWithoutBye(t *testing.T) {
	h := newHistory()
	h.byes[5] = 1

	pairings, err := NewSwissGenerator().GeneratePairings(context.Background(), GeneratePairingsParams{
		RoundNumber: 2,
		Competitors: h.field([]int{1, 2, 3, 4, 5}),
	})
	require.NoError(t, err)
	bye := byes(pairings)
	require.Len(t, bye, 1)
	assert.Equal(t, 4, bye[0].Player1ID)
}

func TestSwiss_NoSecondByeWhileOthersHaveNone(t *testing.T) {
	const n = 7
	ranking := []int{1, 2, 3, 4, 5, 6, 7}
	rng := rand.New(rand.NewSource(42))
	h := newHistory()
	gen := NewSwissGenerator()

	for round := 1; round <= n; round++ {
		pairings, err := gen.GeneratePairings(context.Background(), GeneratePairingsParams{
			RoundNumber: round,
			Competitors: h.field(ranking),
		})
		require.NoError(t, err)
		require.Len(t, byes(pairings), 1)
		h.record(pairings)

		for _, id := range ranking {
			assert.LessOrEqual(t, h.byes[id], 1, "round %d: participant %d got a second bye", round, id)
		}
		rng.Shuffle(len(ranking), func(i, j int) { ranking[i], ranking[j] = ranking[j], ranking[i] })
	}
	for _, id := range ranking {
		assert.Equal(t, 1, h.byes[id])
	}
}

func TestSwiss_NoRematchesOverSeveralRounds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ranking := make([]int, 10)
	for i := range ranking {
		ranking[i] = i + 1
	}
	h := newHistory()
	gen := NewSwissGenerator()

	// Ten players can always avoid rematches for five rounds.
	for round := 1; round <= 5; round++ {
		pairings, err := gen.GeneratePairings(context.Background(), GeneratePairingsParams{
			RoundNumber: round,
			Competitors: h.field(ranking),
		})
		require.NoError(t, err)
		require.Len(t, pairings, 5)
		for _, p := range pairings {
			require.False(t, h.met(p.Player1ID, *p.Player2ID), "round %d rematch %d-%d", round, p.Player1ID, *p.Player2ID)
		}
		assert.Len(t, countAppearances(t, pairings), 10)
		h.record(pairings)
		rng.Shuffle(len(ranking), func(i, j int) { ranking[i], ranking[j] = ranking[j], ranking[i] })
	}
}

func TestSwiss_RespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h := newHistory()
	h.record([]Pairing{newPair(1, 2), newPair(3, 4)})
	h.record([]Pairing{newPair(1, 3), newPair(2, 4)})
	h.record([]Pairing{newPair(1, 4), newPair(2, 3)})

	_, err := NewSwissGenerator().GeneratePairings(ctx, GeneratePairingsParams{
		RoundNumber: 4,
		Competitors: h.field([]int{1, 2, 3, 4}),
	})
	assert.ErrorIs(t, err, context.Canceled)
}
