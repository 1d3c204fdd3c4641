package services

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
	"github.com/Dosada05/tournament-engine/standings"
	"github.com/Dosada05/tournament-engine/storage"
)

// EventPublisher delivers change notifications to connected clients. Delivery is best effort.
type EventPublisher interface {
	PublishTournamentEvent(tournamentID int, eventType string, payload interface{})
}

type noopPublisher struct{}

func (noopPublisher) PublishTournamentEvent(int, string, interface{}) {}

// Dependencies is everything the services share. Zero values of the optional fields
// (Locks, Publisher, Archiver, Logger, Now, NewRand) are replaced with defaults.
type Dependencies struct {
	Tournaments      repositories.TournamentRepository
	RoundDefinitions repositories.RoundDefinitionRepository
	Participants     repositories.ParticipantRepository
	Matches          repositories.MatchRepository
	Standings        repositories.TournamentStandingRepository
	Tx               repositories.TxManager

	Locks     *TournamentLocks
	Publisher EventPublisher
	Archiver  storage.ResultsArchiver
	Logger    *slog.Logger
	Now       func() time.Time
	NewRand   func() *rand.Rand
}

// Services groups the engine services built over one set of dependencies, so they share the
// same per-tournament locks.
type Services struct {
	Tournaments      TournamentService
	Pairings         PairingService
	Rounds           RoundService
	RoundDefinitions RoundDefinitionService
	Participants     ParticipantService
}

func NewServices(deps Dependencies) *Services {
	c := newCore(deps)
	return &Services{
		Tournaments:      &tournamentService{core: c},
		Pairings:         &pairingService{core: c},
		Rounds:           &roundService{core: c},
		RoundDefinitions: &roundDefinitionService{core: c},
		Participants:     &participantService{core: c},
	}
}

type core struct {
	Dependencies
}

func newCore(deps Dependencies) *core {
	if deps.Locks == nil {
		deps.Locks = NewTournamentLocks()
	}
	if deps.Publisher == nil {
		deps.Publisher = noopPublisher{}
	}
	if deps.Archiver == nil {
		deps.Archiver = storage.NewResultsArchiver(nil)
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	if deps.NewRand == nil {
		deps.NewRand = func() *rand.Rand { return rand.New(rand.NewSource(time.Now().UnixNano())) }
	}
	return &core{Dependencies: deps}
}

// withTournament runs fn in a transaction while holding the in-process lock of the tournament
// and the row lock of its database record.
func (c *core) withTournament(ctx context.Context, tournamentID int, fn func(exec repositories.SQLExecutor, t *models.Tournament) error) error {
	unlock := c.Locks.Lock(tournamentID)
	defer unlock()

	return c.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := c.Tournaments.GetForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return mapRepositoryError(err)
		}
		return fn(exec, t)
	})
}

func (c *core) getTournament(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	t, err := c.Tournaments.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return t, nil
}

func requireOrganizer(t *models.Tournament, actingUserID int) error {
	if t.OrganizerID != actingUserID {
		return errors.WithHintf(ErrForbiddenOperation, "only the organizer of tournament %d can do this", t.ID)
	}
	return nil
}

func requireInProgress(t *models.Tournament) error {
	if t.Status != models.StatusInProgress {
		return errors.WithHintf(ErrTournamentNotInProgress, "tournament %d is %s", t.ID, t.Status)
	}
	return nil
}

func (c *core) publish(tournamentID int, eventType string, payload interface{}) {
	c.Publisher.PublishTournamentEvent(tournamentID, eventType, payload)
}

// tournamentState is a consistent snapshot of one tournament.
type tournamentState struct {
	tournament   *models.Tournament
	participants []*models.Participant
	definitions  map[int]*models.RoundDefinition
	matches      []*models.Match
}

// loadState reads participants, round definitions and matches. Outside a transaction
// (exec == nil) the reads run in parallel; a transaction is used sequentially.
func (c *core) loadState(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) (*tournamentState, error) {
	st := &tournamentState{tournament: t, definitions: make(map[int]*models.RoundDefinition)}
	var defs []*models.RoundDefinition

	g, gCtx := errgroup.WithContext(ctx)
	if exec != nil {
		g.SetLimit(1)
	}
	g.Go(func() error {
		var err error
		st.participants, err = c.Participants.ListByTournament(gCtx, exec, t.ID, false)
		return errors.Wrapf(err, "failed to load participants of tournament %d", t.ID)
	})
	g.Go(func() error {
		var err error
		defs, err = c.RoundDefinitions.ListByTournament(gCtx, exec, t.ID)
		return errors.Wrapf(err, "failed to load round definitions of tournament %d", t.ID)
	})
	g.Go(func() error {
		var err error
		st.matches, err = c.Matches.ListByTournament(gCtx, exec, t.ID, nil)
		return errors.Wrapf(err, "failed to load matches of tournament %d", t.ID)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, d := range defs {
		st.definitions[d.RoundNumber] = d
	}
	return st, nil
}

func (st *tournamentState) roundMatches(roundNumber int) []*models.Match {
	out := make([]*models.Match, 0)
	for _, m := range st.matches {
		if m.RoundNumber == roundNumber {
			out = append(out, m)
		}
	}
	return out
}

// lastPairedRound returns the highest round with matches, 0 before the first pairing.
func (st *tournamentState) lastPairedRound() int {
	last := 0
	for _, m := range st.matches {
		if m.RoundNumber > last {
			last = m.RoundNumber
		}
	}
	return last
}

func (st *tournamentState) definition(roundNumber int) *models.RoundDefinition {
	if d, ok := st.definitions[roundNumber]; ok {
		return d
	}
	return models.NewDefaultRoundDefinition(st.tournament, roundNumber)
}

func (st *tournamentState) confirmedParticipants() []*models.Participant {
	out := make([]*models.Participant, 0, len(st.participants))
	for _, p := range st.participants {
		if p.Confirmed {
			out = append(out, p)
		}
	}
	return out
}

// standings are computed for confirmed participants; anyone who already played is kept even
// if their confirmation was withdrawn later.
func (st *tournamentState) standings() []models.TournamentStanding {
	rows := standings.Compute(standings.Input{
		Tournament:   st.tournament,
		Participants: st.confirmedParticipants(),
		Definitions:  st.definitions,
		Matches:      st.matches,
	})
	names := st.participantNames()
	for i := range rows {
		if rows[i].UserName == "" {
			rows[i].UserName = names[rows[i].UserID]
		}
	}
	return rows
}

func (st *tournamentState) participantNames() map[int]string {
	names := make(map[int]string, len(st.participants))
	for _, p := range st.participants {
		names[p.UserID] = p.Name
	}
	return names
}
