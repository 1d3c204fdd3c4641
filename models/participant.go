package models

import "time"

type ArmyListStatus string

const (
	ArmyListNotSubmitted ArmyListStatus = "NOT_SUBMITTED"
	ArmyListPending      ArmyListStatus = "PENDING"
	ArmyListApproved     ArmyListStatus = "APPROVED"
	ArmyListRejected     ArmyListStatus = "REJECTED"
)

// Participant is a user's registration in a tournament. Ranking numbers are not stored here,
// they are derived from completed matches.
type Participant struct {
	ID             int            `json:"id" db:"id"`
	TournamentID   int            `json:"tournamentId" db:"tournament_id"`
	UserID         int            `json:"userId" db:"user_id"`
	Name           string         `json:"name" db:"name"`
	Confirmed      bool           `json:"confirmed" db:"confirmed"`
	IsPaid         bool           `json:"isPaid" db:"is_paid"`
	IsBeginner     bool           `json:"isBeginner" db:"is_beginner"`
	ArmyListStatus ArmyListStatus `json:"armyListStatus" db:"army_list_status"`
	CreatedAt      time.Time      `json:"createdAt" db:"created_at"`
}
