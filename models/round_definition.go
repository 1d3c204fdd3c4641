package models

import "time"

type PairingAlgorithm string

const (
	PairingStandard PairingAlgorithm = "STANDARD"
	PairingCustom   PairingAlgorithm = "CUSTOM"
)

type PlayerLevelPairingStrategy string

const (
	LevelPairingNone                  PlayerLevelPairingStrategy = "NONE"
	LevelPairingBeginnersWithVeterans PlayerLevelPairingStrategy = "BEGINNERS_WITH_VETERANS"
	LevelPairingBeginnersWithBeginner PlayerLevelPairingStrategy = "BEGINNERS_WITH_BEGINNERS"
)

type TableAssignmentStrategy string

const (
	TablesBestFirst TableAssignmentStrategy = "BEST_FIRST"
	TablesRandom    TableAssignmentStrategy = "RANDOM"
)

const (
	defaultDifferenceByePoints   = 13
	defaultDifferenceSplitPoints = 10
)

// RoundDefinition holds per-round configuration. Identity is (TournamentID, RoundNumber).
type RoundDefinition struct {
	ID                         int                        `json:"id" db:"id"`
	TournamentID               int                        `json:"tournamentId" db:"tournament_id"`
	RoundNumber                int                        `json:"roundNumber" db:"round_number"`
	DeploymentID               *int                       `json:"deploymentId" db:"deployment_id"`
	DeploymentName             *string                    `json:"deploymentName" db:"deployment_name"`
	PrimaryMissionID           *int                       `json:"primaryMissionId" db:"primary_mission_id"`
	PrimaryMissionName         *string                    `json:"primaryMissionName" db:"primary_mission_name"`
	IsSplitMapLayout           bool                       `json:"isSplitMapLayout" db:"is_split_map_layout"`
	MapLayoutEven              *string                    `json:"mapLayoutEven" db:"map_layout_even"`
	MapLayoutOdd               *string                    `json:"mapLayoutOdd" db:"map_layout_odd"`
	ByeLargePoints             int                        `json:"byeLargePoints" db:"bye_large_points"`
	ByeSmallPoints             int                        `json:"byeSmallPoints" db:"bye_small_points"`
	SplitLargePoints           int                        `json:"splitLargePoints" db:"split_large_points"`
	SplitSmallPoints           int                        `json:"splitSmallPoints" db:"split_small_points"`
	PairingAlgorithm           PairingAlgorithm           `json:"pairingAlgorithm" db:"pairing_algorithm"`
	PlayerLevelPairingStrategy PlayerLevelPairingStrategy `json:"playerLevelPairingStrategy" db:"player_level_pairing_strategy"`
	TableAssignmentStrategy    TableAssignmentStrategy    `json:"tableAssignmentStrategy" db:"table_assignment_strategy"`
	StartedAt                  *time.Time                 `json:"startedAt,omitempty" db:"started_at"`
}

// IsStarted reports whether startRound has opened this round.
func (d *RoundDefinition) IsStarted() bool {
	return d != nil && d.StartedAt != nil
}

// NewDefaultRoundDefinition builds the definition a round gets when the tournament is created.
func NewDefaultRoundDefinition(t *Tournament, roundNumber int) *RoundDefinition {
	def := &RoundDefinition{
		TournamentID:               t.ID,
		RoundNumber:                roundNumber,
		PairingAlgorithm:           PairingStandard,
		PlayerLevelPairingStrategy: LevelPairingNone,
		TableAssignmentStrategy:    TablesBestFirst,
	}
	if t.TournamentPointsSystem == PointsFixed {
		def.ByeLargePoints = t.PointsForWin
		def.SplitLargePoints = t.PointsForDraw
	} else {
		def.ByeLargePoints = defaultDifferenceByePoints
		def.SplitLargePoints = defaultDifferenceSplitPoints
	}
	return def
}
