package models

import "time"

type MatchStatus string

const (
	MatchScheduled  MatchStatus = "SCHEDULED"
	MatchInProgress MatchStatus = "IN_PROGRESS"
	MatchCompleted  MatchStatus = "COMPLETED"
	// MatchFinished is never stored: the game time is over but no result has been recorded.
	MatchFinished MatchStatus = "FINISHED"
)

type MatchResolution string

const (
	ResolutionNone   MatchResolution = "NONE"
	ResolutionPlayed MatchResolution = "PLAYED"
	ResolutionBye    MatchResolution = "BYE"
	ResolutionSplit  MatchResolution = "SPLIT"
)

type MatchWinner string

const (
	WinnerPlayer1 MatchWinner = "PLAYER1"
	WinnerPlayer2 MatchWinner = "PLAYER2"
	WinnerDraw    MatchWinner = "DRAW"
)

// Match is a single pairing inside a round. Player2ID == nil means Player1 has a bye.
type Match struct {
	ID                       int             `json:"id" db:"id"`
	TournamentID             int             `json:"tournamentId" db:"tournament_id"`
	RoundNumber              int             `json:"roundNumber" db:"round_number"`
	TableNumber              int             `json:"tableNumber" db:"table_number"`
	Player1ID                int             `json:"player1Id" db:"player1_id"`
	Player2ID                *int            `json:"player2Id" db:"player2_id"`
	Status                   MatchStatus     `json:"status" db:"status"`
	Resolution               MatchResolution `json:"resolution" db:"resolution"`
	StartTime                *time.Time      `json:"startTime" db:"start_time"`
	GameEndTime              *time.Time      `json:"gameEndTime" db:"game_end_time"`
	ResultSubmissionDeadline *time.Time      `json:"resultSubmissionDeadline" db:"result_submission_deadline"`
	Player1Score             *int            `json:"player1Score" db:"player1_score"`
	Player2Score             *int            `json:"player2Score" db:"player2_score"`
	Winner                   *MatchWinner    `json:"matchWinner" db:"match_winner"`
	ScoresSubmittedAt        *time.Time      `json:"scoresSubmittedAt,omitempty" db:"scores_submitted_at"`
	CreatedAt                time.Time       `json:"createdAt" db:"created_at"`
}

func (m *Match) IsBye() bool {
	return m.Player2ID == nil
}

func (m *Match) IsStarted() bool {
	return m.StartTime != nil
}

// IsResolved reports whether the match has a result that counts for standings.
func (m *Match) IsResolved() bool {
	return m.Status == MatchCompleted && m.Winner != nil
}

// IsOverdue reports a started match whose submission deadline has passed without a result.
func (m *Match) IsOverdue(now time.Time) bool {
	if m.IsResolved() || m.ResultSubmissionDeadline == nil {
		return false
	}
	return !now.Before(*m.ResultSubmissionDeadline)
}

// EffectiveStatus evaluates time-based transitions lazily.
func (m *Match) EffectiveStatus(now time.Time) MatchStatus {
	if m.Status == MatchInProgress && m.GameEndTime != nil && !now.Before(*m.GameEndTime) {
		return MatchFinished
	}
	return m.Status
}

// Start sets the timers of the match relative to start.
func (m *Match) Start(start time.Time, t *Tournament) {
	gameEnd := start.Add(t.RoundDuration())
	deadline := start.Add(t.SubmissionWindow())
	m.StartTime = &start
	m.GameEndTime = &gameEnd
	m.ResultSubmissionDeadline = &deadline
	m.Status = MatchInProgress
}

// RecordScores stores raw scores and derives the winner from them.
func (m *Match) RecordScores(p1, p2 int, at time.Time) {
	winner := WinnerDraw
	switch {
	case p1 > p2:
		winner = WinnerPlayer1
	case p2 > p1:
		winner = WinnerPlayer2
	}
	m.Player1Score = &p1
	m.Player2Score = &p2
	m.Winner = &winner
	m.Resolution = ResolutionPlayed
	m.Status = MatchCompleted
	m.ScoresSubmittedAt = &at
}

// ResolveAsSplit closes the match with split points for both players.
func (m *Match) ResolveAsSplit(at time.Time) {
	winner := WinnerDraw
	m.Winner = &winner
	m.Resolution = ResolutionSplit
	m.Status = MatchCompleted
	m.ScoresSubmittedAt = &at
}

// NewByeMatch creates an already resolved bye for playerID.
func NewByeMatch(tournamentID, roundNumber, playerID int) *Match {
	winner := WinnerPlayer1
	return &Match{
		TournamentID: tournamentID,
		RoundNumber:  roundNumber,
		Player1ID:    playerID,
		Status:       MatchCompleted,
		Resolution:   ResolutionBye,
		Winner:       &winner,
	}
}

// HasPlayer reports whether userID plays in this match.
func (m *Match) HasPlayer(userID int) bool {
	return m.Player1ID == userID || (m.Player2ID != nil && *m.Player2ID == userID)
}
