package standings

import "github.com/Dosada05/tournament-engine/models"

// pointBracket maps a score difference up to MaxDiff (inclusive) to the tournament points
// of the winner and the loser.
type pointBracket struct {
	MaxDiff int
	Winner  int
	Loser   int
}

const (
	drawPoints       = 10
	topWinnerPoints  = 15
	topLoserPoints   = 5
	unboundedMaxDiff = -1
)

var strictBrackets = []pointBracket{
	{MaxDiff: 0, Winner: 10, Loser: 10},
	{MaxDiff: 5, Winner: 11, Loser: 9},
	{MaxDiff: 10, Winner: 12, Loser: 8},
	{MaxDiff: 15, Winner: 13, Loser: 7},
	{MaxDiff: 20, Winner: 14, Loser: 6},
	{MaxDiff: unboundedMaxDiff, Winner: topWinnerPoints, Loser: topLoserPoints},
}

var lenientBrackets = []pointBracket{
	{MaxDiff: 5, Winner: 10, Loser: 10},
	{MaxDiff: 10, Winner: 11, Loser: 9},
	{MaxDiff: 15, Winner: 12, Loser: 8},
	{MaxDiff: 20, Winner: 13, Loser: 7},
	{MaxDiff: 25, Winner: 14, Loser: 6},
	{MaxDiff: unboundedMaxDiff, Winner: topWinnerPoints, Loser: topLoserPoints},
}

// DifferencePoints returns (winner, loser) tournament points for a raw score difference.
func DifferencePoints(system models.TournamentPointsSystem, diff int) (int, int) {
	if diff < 0 {
		diff = -diff
	}
	table := strictBrackets
	if system == models.PointsDifferenceLenient {
		table = lenientBrackets
	}
	for _, b := range table {
		if b.MaxDiff == unboundedMaxDiff || diff <= b.MaxDiff {
			return b.Winner, b.Loser
		}
	}
	return topWinnerPoints, topLoserPoints
}

// MatchTournamentPoints converts the raw scores of a played match into tournament points
// for player 1 and player 2.
func MatchTournamentPoints(t *models.Tournament, p1Score, p2Score int) (int, int) {
	if t.TournamentPointsSystem == models.PointsFixed || t.TournamentPointsSystem == "" {
		switch {
		case p1Score > p2Score:
			return t.PointsForWin, t.PointsForLoss
		case p2Score > p1Score:
			return t.PointsForLoss, t.PointsForWin
		default:
			return t.PointsForDraw, t.PointsForDraw
		}
	}

	if p1Score == p2Score {
		return drawPoints, drawPoints
	}
	winner, loser := DifferencePoints(t.TournamentPointsSystem, p1Score-p2Score)
	if p1Score > p2Score {
		return winner, loser
	}
	return loser, winner
}
