package brackets

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/Dosada05/tournament-engine/models"
)

var ErrNotEnoughCompetitors = errors.New("brackets: not enough competitors to pair")

// Pairing is one table of a round. Player2ID == nil marks a bye.
type Pairing struct {
	Player1ID   int  `json:"player1Id"`
	Player2ID   *int `json:"player2Id"`
	TableNumber int  `json:"tableNumber"`
}

func (p Pairing) IsBye() bool {
	return p.Player2ID == nil
}

// Competitor is a participant as seen by a pairing generator.
type Competitor struct {
	UserID     int
	IsBeginner bool
	Byes       int
	// Opponents holds user ids already met in earlier rounds.
	Opponents map[int]struct{}
}

func (c Competitor) HasPlayed(userID int) bool {
	_, ok := c.Opponents[userID]
	return ok
}

// GeneratePairingsParams carries everything a generator needs for one round.
// For rounds after the first, Competitors must be in current standings order.
type GeneratePairingsParams struct {
	RoundNumber int
	Definition  *models.RoundDefinition
	Competitors []Competitor
}

type PairingGenerator interface {
	GeneratePairings(ctx context.Context, params GeneratePairingsParams) ([]Pairing, error)

	GetName() string
}

func newPair(p1, p2 int) Pairing {
	return Pairing{Player1ID: p1, Player2ID: &p2}
}

func newBye(p int) Pairing {
	return Pairing{Player1ID: p}
}
