package standings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tournament-engine/models"
)

func intPtr(v int) *int { return &v }

func played(round, p1, p2, s1, s2 int) *models.Match {
	m := &models.Match{RoundNumber: round, Player1ID: p1, Player2ID: intPtr(p2)}
	m.RecordScores(s1, s2, testTime)
	return m
}

func fixedTournament() *models.Tournament {
	return &models.Tournament{
		ID:                     1,
		TournamentPointsSystem: models.PointsFixed,
		PointsForWin:           3,
		PointsForDraw:          1,
		PointsForLoss:          0,
	}
}

func participants(ids ...int) []*models.Participant {
	out := make([]*models.Participant, 0, len(ids))
	for _, id := range ids {
		out = append(out, &models.Participant{UserID: id, Name: "player", Confirmed: true})
	}
	return out
}

func TestDifferencePoints_Strict(t *testing.T) {
	cases := []struct {
		diff          int
		winner, loser int
	}{
		{0, 10, 10},
		{1, 11, 9},
		{5, 11, 9},
		{6, 12, 8},
		{15, 13, 7},
		{16, 14, 6},
		{20, 14, 6},
		{21, 15, 5},
		{90, 15, 5},
	}
	for _, tc := range cases {
		w, l := DifferencePoints(models.PointsDifferenceStrict, tc.diff)
		assert.Equal(t, tc.winner, w, "diff %d", tc.diff)
		assert.Equal(t, tc.loser, l, "diff %d", tc.diff)
	}
}

func TestDifferencePoints_Lenient(t *testing.T) {
	cases := []struct {
		diff          int
		winner, loser int
	}{
		{0, 10, 10},
		{5, 10, 10},
		{6, 11, 9},
		{11, 12, 8},
		{20, 13, 7},
		{25, 14, 6},
		{26, 15, 5},
	}
	for _, tc := range cases {
		w, l := DifferencePoints(models.PointsDifferenceLenient, tc.diff)
		assert.Equal(t, tc.winner, w, "diff %d", tc.diff)
		assert.Equal(t, tc.loser, l, "diff %d", tc.diff)
	}
}

func TestMatchTournamentPoints_StrictTwentyVersusFive(t *testing.T) {
	tour := &models.Tournament{TournamentPointsSystem: models.PointsDifferenceStrict}

	p1, p2 := MatchTournamentPoints(tour, 20, 5)
	assert.Equal(t, 13, p1)
	assert.Equal(t, 7, p2)

	p1, p2 = MatchTournamentPoints(tour, 5, 20)
	assert.Equal(t, 7, p1)
	assert.Equal(t, 13, p2)

	p1, p2 = MatchTournamentPoints(tour, 12, 12)
	assert.Equal(t, 10, p1)
	assert.Equal(t, 10, p2)
}

func TestCompute_FixedPointsAndOrdering(t *testing.T) {
	tour := fixedTournament()
	in := Input{
		Tournament:   tour,
		Participants: participants(1, 2, 3, 4),
		Definitions:  map[int]*models.RoundDefinition{1: {RoundNumber: 1}, 2: {RoundNumber: 2}},
		Matches: []*models.Match{
			played(1, 1, 2, 10, 4),
			played(1, 3, 4, 7, 7),
			played(2, 1, 3, 9, 2),
			played(2, 2, 4, 6, 1),
		},
	}

	rows := Compute(in)
	require.Len(t, rows, 4)

	assert.Equal(t, 1, rows[0].UserID)
	assert.Equal(t, 6, rows[0].TournamentPoints)
	assert.Equal(t, 19, rows[0].ScorePoints)
	assert.Equal(t, 2, rows[0].Wins)
	assert.Equal(t, 1, rows[0].Rank)

	assert.Equal(t, 2, rows[1].UserID)
	assert.Equal(t, 3, rows[1].TournamentPoints)

	assert.Equal(t, 3, rows[2].UserID)
	assert.Equal(t, 1, rows[2].TournamentPoints)
	assert.Equal(t, 9, rows[2].ScorePoints)
	assert.Equal(t, 1, rows[2].Draws)
	assert.Equal(t, 1, rows[2].Losses)

	assert.Equal(t, 4, rows[3].UserID)
	assert.Equal(t, 2, rows[3].MatchesPlayed)
}

func TestCompute_ByeAndSplitUseRoundDefinitionPoints(t *testing.T) {
	tour := &models.Tournament{ID: 1, TournamentPointsSystem: models.PointsDifferenceStrict}
	split := &models.Match{RoundNumber: 1, Player1ID: 1, Player2ID: intPtr(2), Status: models.MatchInProgress}
	split.ResolveAsSplit(testTime)

	in := Input{
		Tournament:   tour,
		Participants: participants(1, 2, 3),
		Definitions: map[int]*models.RoundDefinition{
			1: {RoundNumber: 1, ByeLargePoints: 13, ByeSmallPoints: 4, SplitLargePoints: 10, SplitSmallPoints: 2},
		},
		Matches: []*models.Match{
			models.NewByeMatch(1, 1, 3),
			split,
		},
	}

	rows := Compute(in)
	require.Len(t, rows, 3)

	assert.Equal(t, 3, rows[0].UserID)
	assert.Equal(t, 13, rows[0].TournamentPoints)
	assert.Equal(t, 4, rows[0].ScorePoints)
	assert.Equal(t, 1, rows[0].Wins)
	assert.Equal(t, 1, rows[0].Byes)

	for _, r := range rows[1:] {
		assert.Equal(t, 10, r.TournamentPoints)
		assert.Equal(t, 2, r.ScorePoints)
		assert.Equal(t, 1, r.Draws)
	}
}

func TestCompute_IgnoresUnresolvedMatches(t *testing.T) {
	pending := &models.Match{RoundNumber: 1, Player1ID: 1, Player2ID: intPtr(2), Status: models.MatchInProgress}
	rows := Compute(Input{
		Tournament:   fixedTournament(),
		Participants: participants(1, 2),
		Definitions:  map[int]*models.RoundDefinition{1: {RoundNumber: 1}},
		Matches:      []*models.Match{pending},
	})
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Zero(t, r.MatchesPlayed)
		assert.Zero(t, r.TournamentPoints)
	}
}

func TestCompute_TiesShareRankAndKeepUserOrder(t *testing.T) {
	rows := Compute(Input{
		Tournament:   fixedTournament(),
		Participants: participants(7, 3, 5),
		Definitions:  map[int]*models.RoundDefinition{1: {RoundNumber: 1}},
		Matches:      []*models.Match{played(1, 7, 5, 4, 4)},
	})
	require.Len(t, rows, 3)

	assert.Equal(t, []int{5, 7, 3}, []int{rows[0].UserID, rows[1].UserID, rows[2].UserID})
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, 1, rows[1].Rank)
	assert.Equal(t, 3, rows[2].Rank)
}

func TestCompute_Idempotent(t *testing.T) {
	in := Input{
		Tournament:   fixedTournament(),
		Participants: participants(1, 2, 3, 4, 5),
		Definitions:  map[int]*models.RoundDefinition{1: {RoundNumber: 1, ByeLargePoints: 3}},
		Matches: []*models.Match{
			played(1, 1, 2, 3, 1),
			played(1, 3, 4, 0, 8),
			models.NewByeMatch(1, 1, 5),
		},
	}
	assert.Equal(t, Compute(in), Compute(in))
}
