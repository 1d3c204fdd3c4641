package brackets

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tournament-engine/models"
)

func competitors(n int) []Competitor {
	out := make([]Competitor, n)
	for i := range out {
		out[i] = Competitor{UserID: i + 1}
	}
	return out
}

func countAppearances(t *testing.T, pairings []Pairing) map[int]int {
	t.Helper()
	seen := make(map[int]int)
	for _, p := range pairings {
		seen[p.Player1ID]++
		if p.Player2ID != nil {
			seen[*p.Player2ID]++
		}
	}
	return seen
}

func byes(pairings []Pairing) []Pairing {
	var out []Pairing
	for _, p := range pairings {
		if p.IsBye() {
			out = append(out, p)
		}
	}
	return out
}

func TestFirstRound_EvenCountsPairEveryoneOnce(t *testing.T) {
	for n := 2; n <= 20; n += 2 {
		gen := NewFirstRoundGenerator(rand.New(rand.NewSource(int64(n))))
		pairings, err := gen.GeneratePairings(context.Background(), GeneratePairingsParams{
			RoundNumber: 1,
			Competitors: competitors(n),
		})
		require.NoError(t, err)
		assert.Len(t, pairings, n/2, "n=%d", n)
		assert.Empty(t, byes(pairings), "n=%d", n)

		seen := countAppearances(t, pairings)
		assert.Len(t, seen, n)
		for id, count := range seen {
			assert.Equal(t, 1, count, "participant %d, n=%d", id, n)
		}
	}
}

func TestFirstRound_OddCountsGiveExactlyOneBye(t *testing.T) {
	for n := 3; n <= 21; n += 2 {
		gen := NewFirstRoundGenerator(rand.New(rand.NewSource(42)))
		pairings, err := gen.GeneratePairings(context.Background(), GeneratePairingsParams{
			RoundNumber: 1,
			Competitors: competitors(n),
		})
		require.NoError(t, err)
		assert.Len(t, pairings, n/2+1)
		require.Len(t, byes(pairings), 1, "n=%d", n)
		assert.True(t, pairings[len(pairings)-1].IsBye(), "bye should be the last pairing")
		assert.Len(t, countAppearances(t, pairings), n)
	}
}

func TestFirstRound_NotEnoughCompetitors(t *testing.T) {
	gen := NewFirstRoundGenerator(rand.New(rand.NewSource(1)))
	_, err := gen.GeneratePairings(context.Background(), GeneratePairingsParams{Competitors: competitors(1)})
	assert.ErrorIs(t, err, ErrNotEnoughCompetitors)
}

func TestFirstRound_SameSeedSamePairings(t *testing.T) {
	params := GeneratePairingsParams{RoundNumber: 1, Competitors: competitors(12)}
	a, err := NewFirstRoundGenerator(rand.New(rand.NewSource(7))).GeneratePairings(context.Background(), params)
	require.NoError(t, err)
	b, err := NewFirstRoundGenerator(rand.New(rand.NewSource(7))).GeneratePairings(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func levelled(beginners, veterans int) ([]Competitor, map[int]bool) {
	var out []Competitor
	level := make(map[int]bool)
	id := 1
	for i := 0; i < beginners; i++ {
		out = append(out, Competitor{UserID: id, IsBeginner: true})
		level[id] = true
		id++
	}
	for i := 0; i < veterans; i++ {
		out = append(out, Competitor{UserID: id})
		level[id] = false
		id++
	}
	return out, level
}

func customDefinition(strategy models.PlayerLevelPairingStrategy) *models.RoundDefinition {
	return &models.RoundDefinition{
		RoundNumber:                1,
		PairingAlgorithm:           models.PairingCustom,
		PlayerLevelPairingStrategy: strategy,
	}
}

func TestFirstRound_BeginnersWithVeterans(t *testing.T) {
	field, beginner := levelled(3, 6)
	gen := NewFirstRoundGenerator(rand.New(rand.NewSource(3)))
	pairings, err := gen.GeneratePairings(context.Background(), GeneratePairingsParams{
		RoundNumber: 1,
		Definition:  customDefinition(models.LevelPairingBeginnersWithVeterans),
		Competitors: field,
	})
	require.NoError(t, err)
	require.Len(t, pairings, 5)

	mixed := 0
	for _, p := range pairings {
		if p.IsBye() {
			assert.False(t, beginner[p.Player1ID], "excess veteran should get the bye")
			continue
		}
		if beginner[p.Player1ID] != beginner[*p.Player2ID] {
			mixed++
		}
	}
	assert.Equal(t, 3, mixed)
	assert.Len(t, byes(pairings), 1)
}

func TestFirstRound_BeginnersWithBeginners(t *testing.T) {
	field, beginner := levelled(4, 6)
	gen := NewFirstRoundGenerator(rand.New(rand.NewSource(11)))
	pairings, err := gen.GeneratePairings(context.Background(), GeneratePairingsParams{
		RoundNumber: 1,
		Definition:  customDefinition(models.LevelPairingBeginnersWithBeginner),
		Competitors: field,
	})
	require.NoError(t, err)
	require.Len(t, pairings, 5)
	for _, p := range pairings {
		require.False(t, p.IsBye())
		assert.Equal(t, beginner[p.Player1ID], beginner[*p.Player2ID])
	}
}

func TestFirstRound_BeginnersWithBeginnersOddGroupsMeet(t *testing.T) {
	field, beginner := levelled(3, 5)
	gen := NewFirstRoundGenerator(rand.New(rand.NewSource(5)))
	pairings, err := gen.GeneratePairings(context.Background(), GeneratePairingsParams{
		RoundNumber: 1,
		Definition:  customDefinition(models.LevelPairingBeginnersWithBeginner),
		Competitors: field,
	})
	require.NoError(t, err)
	require.Len(t, pairings, 4)
	assert.Empty(t, byes(pairings))

	crossGroup := 0
	for _, p := range pairings {
		if beginner[p.Player1ID] != beginner[*p.Player2ID] {
			crossGroup++
		}
	}
	assert.Equal(t, 1, crossGroup)
}

func TestFirstRound_StandardIgnoresLevelStrategy(t *testing.T) {
	field, _ := levelled(2, 2)
	def := customDefinition(models.LevelPairingBeginnersWithBeginner)
	def.PairingAlgorithm = models.PairingStandard

	params := GeneratePairingsParams{RoundNumber: 1, Definition: def, Competitors: field}
	got, err := NewFirstRoundGenerator(rand.New(rand.NewSource(9))).GeneratePairings(context.Background(), params)
	require.NoError(t, err)

	params.Definition = nil
	want, err := NewFirstRoundGenerator(rand.New(rand.NewSource(9))).GeneratePairings(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
