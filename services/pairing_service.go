package services

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/Dosada05/tournament-engine/brackets"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/realtime"
	"github.com/Dosada05/tournament-engine/repositories"
)

type PairingService interface {
	CreateFirstRoundPairings(ctx context.Context, tournamentID, actingUserID int) ([]MatchPairView, error)
	CreateNextRoundPairings(ctx context.Context, tournamentID, actingUserID int) ([]MatchPairView, error)
}

type pairingService struct {
	*core
}

func (s *pairingService) CreateFirstRoundPairings(ctx context.Context, tournamentID, actingUserID int) ([]MatchPairView, error) {
	var views []MatchPairView
	err := s.withTournament(ctx, tournamentID, func(exec repositories.SQLExecutor, t *models.Tournament) error {
		if err := requireOrganizer(t, actingUserID); err != nil {
			return err
		}
		if t.Status != models.StatusActive && t.Status != models.StatusInProgress {
			return errors.WithHintf(ErrTournamentNotInProgress, "tournament %d is %s, pairings need ACTIVE or IN_PROGRESS", t.ID, t.Status)
		}

		st, err := s.loadState(ctx, exec, t)
		if err != nil {
			return err
		}
		if len(st.roundMatches(1)) > 0 {
			return errors.WithHint(ErrPairingsAlreadyExist, "round 1 is already paired")
		}

		confirmed := st.confirmedParticipants()
		if len(confirmed) < 2 {
			return errors.WithHintf(ErrInsufficientParticipants, "%d confirmed participants, at least 2 are needed", len(confirmed))
		}
		competitors := make([]brackets.Competitor, 0, len(confirmed))
		for _, p := range confirmed {
			competitors = append(competitors, brackets.Competitor{UserID: p.UserID, IsBeginner: p.IsBeginner})
		}

		def := st.definition(1)
		rng := s.NewRand()
		pairings, err := brackets.NewFirstRoundGenerator(rng).GeneratePairings(ctx, brackets.GeneratePairingsParams{
			RoundNumber: 1,
			Definition:  def,
			Competitors: competitors,
		})
		if err != nil {
			return errors.Wrap(err, "failed to generate first round pairings")
		}
		// Before any result there is no rank, so tables follow the drawn order.
		pairings = brackets.AssignTables(pairings, models.TablesBestFirst, rng)

		matches, err := s.persistPairings(ctx, exec, t, 1, pairings)
		if err != nil {
			return err
		}
		if t.Status == models.StatusActive {
			if err := s.Tournaments.UpdateStatus(ctx, exec, t.ID, models.StatusInProgress); err != nil {
				return mapRepositoryError(err)
			}
			t.Status = models.StatusInProgress
		}

		st.matches = append(st.matches, matches...)
		views = st.roundViews(matches, s.Now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.InfoContext(ctx, "first round paired", "tournament_id", tournamentID, "tables", len(views))
	s.publish(tournamentID, realtime.EventRoundUpdated, roundEvent{RoundNumber: 1})
	return views, nil
}

func (s *pairingService) CreateNextRoundPairings(ctx context.Context, tournamentID, actingUserID int) ([]MatchPairView, error) {
	var (
		views []MatchPairView
		round int
	)
	err := s.withTournament(ctx, tournamentID, func(exec repositories.SQLExecutor, t *models.Tournament) error {
		if err := requireOrganizer(t, actingUserID); err != nil {
			return err
		}
		if err := requireInProgress(t); err != nil {
			return err
		}

		st, err := s.loadState(ctx, exec, t)
		if err != nil {
			return err
		}
		last := st.lastPairedRound()
		if last == 0 {
			return errors.WithHint(ErrRoundNotReady, "round 1 has to be paired first")
		}
		lastMatches := st.roundMatches(last)
		resolved := models.IsRoundFullyResolved(lastMatches)
		// Повторный start-next: последний раунд уже спарен, но ещё не начат
		if last > 1 && !resolved && !st.definition(last).IsStarted() && !anyStarted(lastMatches) {
			return errors.WithHintf(ErrPairingsAlreadyExist, "round %d is already paired", last)
		}
		if last >= t.NumberOfRounds {
			return errors.WithHintf(ErrAllRoundsPaired, "all %d rounds are paired", t.NumberOfRounds)
		}
		if !resolved {
			return errors.WithHintf(ErrRoundNotReady, "round %d still has matches without a result", last)
		}
		round = last + 1

		competitors := st.swissCompetitors()
		if len(competitors) < 2 {
			return errors.WithHintf(ErrInsufficientParticipants, "%d confirmed participants, at least 2 are needed", len(competitors))
		}

		def := st.definition(round)
		pairings, err := brackets.NewSwissGenerator().GeneratePairings(ctx, brackets.GeneratePairingsParams{
			RoundNumber: round,
			Definition:  def,
			Competitors: competitors,
		})
		if err != nil {
			return errors.Wrapf(err, "failed to generate pairings for round %d", round)
		}
		pairings = brackets.AssignTables(pairings, def.TableAssignmentStrategy, s.NewRand())

		matches, err := s.persistPairings(ctx, exec, t, round, pairings)
		if err != nil {
			return err
		}
		st.matches = append(st.matches, matches...)
		views = st.roundViews(matches, s.Now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.InfoContext(ctx, "round paired", "tournament_id", tournamentID, "round", round, "tables", len(views))
	s.publish(tournamentID, realtime.EventRoundUpdated, roundEvent{RoundNumber: round})
	return views, nil
}

// swissCompetitors returns confirmed participants in current standings order together with
// their bye count and the opponents they already met.
func (st *tournamentState) swissCompetitors() []brackets.Competitor {
	confirmed := make(map[int]*models.Participant)
	for _, p := range st.confirmedParticipants() {
		confirmed[p.UserID] = p
	}

	byes := make(map[int]int)
	opponents := make(map[int]map[int]struct{})
	met := func(a, b int) {
		if opponents[a] == nil {
			opponents[a] = make(map[int]struct{})
		}
		opponents[a][b] = struct{}{}
	}
	for _, m := range st.matches {
		if m.IsBye() {
			byes[m.Player1ID]++
			continue
		}
		met(m.Player1ID, *m.Player2ID)
		met(*m.Player2ID, m.Player1ID)
	}

	out := make([]brackets.Competitor, 0, len(confirmed))
	for _, row := range st.standings() {
		p, ok := confirmed[row.UserID]
		if !ok {
			continue
		}
		out = append(out, brackets.Competitor{
			UserID:     p.UserID,
			IsBeginner: p.IsBeginner,
			Byes:       byes[p.UserID],
			Opponents:  opponents[p.UserID],
		})
	}
	return out
}

func (s *pairingService) persistPairings(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, round int, pairings []brackets.Pairing) ([]*models.Match, error) {
	matches := make([]*models.Match, 0, len(pairings))
	for _, p := range pairings {
		if p.IsBye() {
			matches = append(matches, models.NewByeMatch(t.ID, round, p.Player1ID))
			continue
		}
		opponent := *p.Player2ID
		matches = append(matches, &models.Match{
			TournamentID: t.ID,
			RoundNumber:  round,
			TableNumber:  p.TableNumber,
			Player1ID:    p.Player1ID,
			Player2ID:    &opponent,
			Status:       models.MatchScheduled,
			Resolution:   models.ResolutionNone,
		})
	}
	if err := s.Matches.BatchCreate(ctx, exec, matches); err != nil {
		return nil, errors.Wrapf(mapRepositoryError(err), "failed to store pairings of round %d", round)
	}
	return matches, nil
}

// roundEvent is the websocket payload of ROUND_UPDATED; clients refetch the round view.
type roundEvent struct {
	RoundNumber int `json:"roundNumber"`
	MatchID     int `json:"matchId,omitempty"`
}
