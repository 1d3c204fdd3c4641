package models

import "time"

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	StatusDraft      TournamentStatus = "DRAFT"
	StatusActive     TournamentStatus = "ACTIVE"
	StatusInProgress TournamentStatus = "IN_PROGRESS"
	StatusCompleted  TournamentStatus = "COMPLETED"
	StatusCancelled  TournamentStatus = "CANCELLED"
)

// IsTerminal reports whether no further transitions are possible.
func (s TournamentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type RoundStartMode string

const (
	StartAllMatchesTogether RoundStartMode = "ALL_MATCHES_TOGETHER"
	StartIndividualMatches  RoundStartMode = "INDIVIDUAL_MATCHES"
)

type TournamentPointsSystem string

const (
	PointsFixed             TournamentPointsSystem = "FIXED"
	PointsDifferenceStrict  TournamentPointsSystem = "POINT_DIFFERENCE_STRICT"
	PointsDifferenceLenient TournamentPointsSystem = "POINT_DIFFERENCE_LENIENT"
)

// TournamentPhase is the organizer-facing summary of where the tournament is.
type TournamentPhase string

const (
	PhaseAwaitingPairings   TournamentPhase = "AWAITING_PAIRINGS"
	PhasePairingsReady      TournamentPhase = "PAIRINGS_READY"
	PhaseRoundActive        TournamentPhase = "ROUND_ACTIVE"
	PhaseRoundFinished      TournamentPhase = "ROUND_FINISHED"
	PhaseTournamentComplete TournamentPhase = "TOURNAMENT_COMPLETE"
)

// Tournament представляет турнир швейцарской системы.
type Tournament struct {
	ID                          int                    `json:"id" db:"id"`
	Name                        string                 `json:"name" db:"name"`
	OrganizerID                 int                    `json:"organizerId" db:"organizer_id"`
	Status                      TournamentStatus       `json:"status" db:"status"`
	NumberOfRounds              int                    `json:"numberOfRounds" db:"number_of_rounds"`
	RoundDurationMinutes        int                    `json:"roundDurationMinutes" db:"round_duration_minutes"`
	ScoreSubmissionExtraMinutes int                    `json:"scoreSubmissionExtraMinutes" db:"score_submission_extra_minutes"`
	RoundStartMode              RoundStartMode         `json:"roundStartMode" db:"round_start_mode"`
	TournamentPointsSystem      TournamentPointsSystem `json:"tournamentPointsSystem" db:"tournament_points_system"`
	PointsForWin                int                    `json:"pointsForWin" db:"points_for_win"`
	PointsForDraw               int                    `json:"pointsForDraw" db:"points_for_draw"`
	PointsForLoss               int                    `json:"pointsForLoss" db:"points_for_loss"`
	ResultsArchiveKey           *string                `json:"-" db:"results_archive_key"`
	CreatedAt                   time.Time              `json:"createdAt" db:"created_at"`

	ResultsArchiveURL *string `json:"resultsArchiveUrl,omitempty" db:"-"`
}

// RoundDuration is the playing time of a single match.
func (t *Tournament) RoundDuration() time.Duration {
	return time.Duration(t.RoundDurationMinutes) * time.Minute
}

// SubmissionWindow is the time from match start until results must be in.
func (t *Tournament) SubmissionWindow() time.Duration {
	return time.Duration(t.RoundDurationMinutes+t.ScoreSubmissionExtraMinutes) * time.Minute
}
