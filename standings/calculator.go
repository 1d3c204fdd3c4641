// Package standings derives participant rankings from completed matches. Everything here is
// a pure function of its inputs so it can be recomputed on every read.
package standings

import (
	"sort"

	"github.com/Dosada05/tournament-engine/models"
)

// Input is the committed state standings are computed from.
type Input struct {
	Tournament   *models.Tournament
	Participants []*models.Participant
	Definitions  map[int]*models.RoundDefinition
	Matches      []*models.Match
}

// Compute returns one standing per participant ordered by tournament points, score points and
// wins (all descending). Participants equal on all three share a rank and keep user id order.
func Compute(in Input) []models.TournamentStanding {
	rows := make(map[int]*models.TournamentStanding, len(in.Participants))
	order := make([]int, 0, len(in.Participants))

	row := func(userID int) *models.TournamentStanding {
		if r, ok := rows[userID]; ok {
			return r
		}
		r := &models.TournamentStanding{UserID: userID}
		if in.Tournament != nil {
			r.TournamentID = in.Tournament.ID
		}
		rows[userID] = r
		order = append(order, userID)
		return r
	}

	for _, p := range in.Participants {
		if p == nil {
			continue
		}
		row(p.UserID).UserName = p.Name
	}

	for _, m := range in.Matches {
		if m == nil || !m.IsResolved() {
			continue
		}
		def := in.Definitions[m.RoundNumber]
		switch m.Resolution {
		case models.ResolutionBye:
			applyBye(row(m.Player1ID), def)
		case models.ResolutionSplit:
			applySplit(row(m.Player1ID), def)
			if m.Player2ID != nil {
				applySplit(row(*m.Player2ID), def)
			}
		default:
			if m.Player2ID == nil {
				applyBye(row(m.Player1ID), def)
				continue
			}
			applyPlayed(in.Tournament, row(m.Player1ID), row(*m.Player2ID), m)
		}
	}

	sort.Ints(order)
	result := make([]models.TournamentStanding, 0, len(order))
	for _, id := range order {
		result = append(result, *rows[id])
	}
	sort.SliceStable(result, func(i, j int) bool {
		return ahead(&result[i], &result[j])
	})
	assignRanks(result)
	return result
}

func ahead(a, b *models.TournamentStanding) bool {
	if a.TournamentPoints != b.TournamentPoints {
		return a.TournamentPoints > b.TournamentPoints
	}
	if a.ScorePoints != b.ScorePoints {
		return a.ScorePoints > b.ScorePoints
	}
	return a.Wins > b.Wins
}

func tied(a, b *models.TournamentStanding) bool {
	return a.TournamentPoints == b.TournamentPoints && a.ScorePoints == b.ScorePoints && a.Wins == b.Wins
}

func assignRanks(rows []models.TournamentStanding) {
	for i := range rows {
		if i > 0 && tied(&rows[i-1], &rows[i]) {
			rows[i].Rank = rows[i-1].Rank
			continue
		}
		rows[i].Rank = i + 1
	}
}

func applyBye(r *models.TournamentStanding, def *models.RoundDefinition) {
	r.MatchesPlayed++
	r.Wins++
	r.Byes++
	if def != nil {
		r.TournamentPoints += def.ByeLargePoints
		r.ScorePoints += def.ByeSmallPoints
	}
}

func applySplit(r *models.TournamentStanding, def *models.RoundDefinition) {
	r.MatchesPlayed++
	r.Draws++
	if def != nil {
		r.TournamentPoints += def.SplitLargePoints
		r.ScorePoints += def.SplitSmallPoints
	}
}

func applyPlayed(t *models.Tournament, p1, p2 *models.TournamentStanding, m *models.Match) {
	s1, s2 := derefScore(m.Player1Score), derefScore(m.Player2Score)
	p1.MatchesPlayed++
	p2.MatchesPlayed++
	p1.ScorePoints += s1
	p2.ScorePoints += s2

	switch *m.Winner {
	case models.WinnerPlayer1:
		p1.Wins++
		p2.Losses++
	case models.WinnerPlayer2:
		p2.Wins++
		p1.Losses++
	default:
		p1.Draws++
		p2.Draws++
	}

	if t == nil {
		return
	}
	tp1, tp2 := MatchTournamentPoints(t, s1, s2)
	p1.TournamentPoints += tp1
	p2.TournamentPoints += tp2
}

func derefScore(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
