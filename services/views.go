package services

import (
	"sort"
	"time"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/standings"
)

// MatchPairView is one table of a round as the organizer panel shows it.
type MatchPairView struct {
	MatchID                  int                    `json:"matchId"`
	RoundNumber              int                    `json:"roundNumber"`
	TableNumber              int                    `json:"tableNumber"`
	Player1ID                int                    `json:"player1Id"`
	Player1Name              string                 `json:"player1Name"`
	Player1TournamentPoints  *int                   `json:"player1TournamentPoints"`
	Player2ID                *int                   `json:"player2Id"`
	Player2Name              string                 `json:"player2Name"`
	Player2TournamentPoints  *int                   `json:"player2TournamentPoints"`
	Status                   models.MatchStatus     `json:"status"`
	Resolution               models.MatchResolution `json:"resolution"`
	StartTime                *time.Time             `json:"startTime"`
	GameEndTime              *time.Time             `json:"gameEndTime"`
	GameDurationMinutes      int                    `json:"gameDurationMinutes"`
	ResultSubmissionDeadline *time.Time             `json:"resultSubmissionDeadline"`
	ScoresSubmitted          bool                   `json:"scoresSubmitted"`
	Player1TotalScore        *int                   `json:"player1TotalScore"`
	Player2TotalScore        *int                   `json:"player2TotalScore"`
	MatchWinner              *models.MatchWinner    `json:"matchWinner"`
}

type RoundView struct {
	RoundNumber int                `json:"roundNumber"`
	Status      models.RoundStatus `json:"status"`
	Matches     []MatchPairView    `json:"matches"`
	CanStart    bool               `json:"canStart"`
}

type RoundStatusView struct {
	RoundNumber          int                `json:"roundNumber"`
	Status               models.RoundStatus `json:"status"`
	AllScoresSubmitted   bool               `json:"allScoresSubmitted"`
	PlayersWithoutScores []string           `json:"playersWithoutScores"`
	TotalMatches         int                `json:"totalMatches"`
	CompletedMatches     int                `json:"completedMatches"`
}

type ParticipantStatsView struct {
	Rank             int    `json:"rank"`
	UserID           int    `json:"userId"`
	UserName         string `json:"userName"`
	Wins             int    `json:"wins"`
	Draws            int    `json:"draws"`
	Losses           int    `json:"losses"`
	Byes             int    `json:"byes"`
	TournamentPoints int    `json:"tournamentPoints"`
	ScorePoints      int    `json:"scorePoints"`
	MatchesPlayed    int    `json:"matchesPlayed"`
}

type PodiumView struct {
	First  *ParticipantStatsView `json:"first"`
	Second *ParticipantStatsView `json:"second"`
	Third  *ParticipantStatsView `json:"third"`
}

type TournamentView struct {
	*models.Tournament
	Phase        models.TournamentPhase `json:"phase"`
	CurrentRound int                    `json:"currentRound"`
}

func newStatsView(s models.TournamentStanding) ParticipantStatsView {
	return ParticipantStatsView{
		Rank:             s.Rank,
		UserID:           s.UserID,
		UserName:         s.UserName,
		Wins:             s.Wins,
		Draws:            s.Draws,
		Losses:           s.Losses,
		Byes:             s.Byes,
		TournamentPoints: s.TournamentPoints,
		ScorePoints:      s.ScorePoints,
		MatchesPlayed:    s.MatchesPlayed,
	}
}

func newStatsViews(rows []models.TournamentStanding) []ParticipantStatsView {
	out := make([]ParticipantStatsView, 0, len(rows))
	for _, r := range rows {
		out = append(out, newStatsView(r))
	}
	return out
}

func newPodiumView(p models.Podium) PodiumView {
	place := func(s *models.TournamentStanding) *ParticipantStatsView {
		if s == nil {
			return nil
		}
		v := newStatsView(*s)
		return &v
	}
	return PodiumView{First: place(p.First), Second: place(p.Second), Third: place(p.Third)}
}

func (st *tournamentState) matchView(m *models.Match, names map[int]string, now time.Time) MatchPairView {
	v := MatchPairView{
		MatchID:                  m.ID,
		RoundNumber:              m.RoundNumber,
		TableNumber:              m.TableNumber,
		Player1ID:                m.Player1ID,
		Player1Name:              names[m.Player1ID],
		Player2ID:                m.Player2ID,
		Status:                   m.EffectiveStatus(now),
		Resolution:               m.Resolution,
		StartTime:                m.StartTime,
		GameEndTime:              m.GameEndTime,
		GameDurationMinutes:      st.tournament.RoundDurationMinutes,
		ResultSubmissionDeadline: m.ResultSubmissionDeadline,
		ScoresSubmitted:          m.IsResolved(),
		Player1TotalScore:        m.Player1Score,
		Player2TotalScore:        m.Player2Score,
		MatchWinner:              m.Winner,
	}
	if m.Player2ID != nil {
		v.Player2Name = names[*m.Player2ID]
	}
	v.Player1TournamentPoints, v.Player2TournamentPoints = st.matchTournamentPoints(m)
	return v
}

// matchTournamentPoints returns what each side earned in m, nil while unresolved.
func (st *tournamentState) matchTournamentPoints(m *models.Match) (*int, *int) {
	if !m.IsResolved() {
		return nil, nil
	}
	def := st.definition(m.RoundNumber)
	switch m.Resolution {
	case models.ResolutionBye:
		p1 := def.ByeLargePoints
		return &p1, nil
	case models.ResolutionSplit:
		p1, p2 := def.SplitLargePoints, def.SplitLargePoints
		return &p1, &p2
	}
	if m.Player2ID == nil {
		p1 := def.ByeLargePoints
		return &p1, nil
	}
	p1, p2 := standings.MatchTournamentPoints(st.tournament, derefInt(m.Player1Score), derefInt(m.Player2Score))
	return &p1, &p2
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func (st *tournamentState) roundViews(matches []*models.Match, now time.Time) []MatchPairView {
	names := st.participantNames()
	views := make([]MatchPairView, 0, len(matches))
	for _, m := range sortedForDisplay(matches) {
		views = append(views, st.matchView(m, names, now))
	}
	return views
}

// sortedForDisplay orders matches by table with byes last.
func sortedForDisplay(matches []*models.Match) []*models.Match {
	out := make([]*models.Match, len(matches))
	copy(out, matches)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsBye() != b.IsBye() {
			return !a.IsBye()
		}
		if a.TableNumber != b.TableNumber {
			return a.TableNumber < b.TableNumber
		}
		return a.ID < b.ID
	})
	return out
}
