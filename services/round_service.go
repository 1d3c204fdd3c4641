package services

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/realtime"
	"github.com/Dosada05/tournament-engine/repositories"
)

type SubmitMatchResultInput struct {
	Player1Score *int `json:"player1Score" validate:"required,min=0"`
	Player2Score *int `json:"player2Score" validate:"required,min=0"`
}

type RoundService interface {
	StartRound(ctx context.Context, tournamentID, roundNumber, actingUserID int) (*RoundView, error)
	StartIndividualMatch(ctx context.Context, tournamentID, roundNumber, matchID, actingUserID int) (*MatchPairView, error)
	ExtendSubmissionDeadline(ctx context.Context, tournamentID, roundNumber, additionalMinutes, actingUserID int) (*RoundView, error)
	// SubmitMatchResult may be called by the organizer or either player. Players are bound by
	// the submission deadline and cannot overwrite a result; the organizer can do both.
	SubmitMatchResult(ctx context.Context, tournamentID, matchID, actingUserID int, input SubmitMatchResultInput) (*MatchPairView, error)
	ResolveMatchAsSplit(ctx context.Context, tournamentID, matchID, actingUserID int) (*MatchPairView, error)
	GetRoundStatus(ctx context.Context, tournamentID, roundNumber int) (*RoundStatusView, error)
	GetRoundsView(ctx context.Context, tournamentID int) ([]RoundView, error)
}

type roundService struct {
	*core
}

func checkRoundNumber(t *models.Tournament, roundNumber int) error {
	if roundNumber < 1 || roundNumber > t.NumberOfRounds {
		return errors.WithHintf(ErrRoundDefinitionNotFound, "tournament %d has rounds 1..%d", t.ID, t.NumberOfRounds)
	}
	return nil
}

func (s *roundService) StartRound(ctx context.Context, tournamentID, roundNumber, actingUserID int) (*RoundView, error) {
	var view RoundView
	err := s.withTournament(ctx, tournamentID, func(exec repositories.SQLExecutor, t *models.Tournament) error {
		if err := requireOrganizer(t, actingUserID); err != nil {
			return err
		}
		if err := requireInProgress(t); err != nil {
			return err
		}
		if err := checkRoundNumber(t, roundNumber); err != nil {
			return err
		}

		st, err := s.loadState(ctx, exec, t)
		if err != nil {
			return err
		}
		matches := st.roundMatches(roundNumber)
		if len(matches) == 0 {
			return errors.WithHintf(ErrRoundNotReady, "round %d has no pairings yet", roundNumber)
		}
		def := st.definition(roundNumber)
		if def.IsStarted() || anyStarted(matches) {
			return errors.WithHintf(ErrRoundAlreadyStarted, "round %d is already running", roundNumber)
		}

		now := s.Now()
		if err := s.RoundDefinitions.MarkStarted(ctx, exec, t.ID, roundNumber, now); err != nil {
			return mapRepositoryError(err)
		}
		def.StartedAt = &now
		st.definitions[roundNumber] = def

		if t.RoundStartMode == models.StartAllMatchesTogether {
			for _, m := range matches {
				if m.IsBye() {
					continue
				}
				m.Start(now, t)
				if err := s.Matches.Update(ctx, exec, m); err != nil {
					return errors.Wrapf(mapRepositoryError(err), "failed to start match %d", m.ID)
				}
			}
		}

		view = st.roundView(roundNumber, now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.InfoContext(ctx, "round started", "tournament_id", tournamentID, "round", roundNumber)
	s.publish(tournamentID, realtime.EventRoundUpdated, roundEvent{RoundNumber: roundNumber})
	return &view, nil
}

func anyStarted(matches []*models.Match) bool {
	for _, m := range matches {
		if !m.IsBye() && m.IsStarted() {
			return true
		}
	}
	return false
}

func (s *roundService) StartIndividualMatch(ctx context.Context, tournamentID, roundNumber, matchID, actingUserID int) (*MatchPairView, error) {
	var view MatchPairView
	err := s.withTournament(ctx, tournamentID, func(exec repositories.SQLExecutor, t *models.Tournament) error {
		if err := requireOrganizer(t, actingUserID); err != nil {
			return err
		}
		if err := requireInProgress(t); err != nil {
			return err
		}
		if t.RoundStartMode != models.StartIndividualMatches {
			return errors.WithHintf(ErrInvalidRoundStartMode, "tournament %d starts all matches of a round together", t.ID)
		}
		if err := checkRoundNumber(t, roundNumber); err != nil {
			return err
		}

		st, err := s.loadState(ctx, exec, t)
		if err != nil {
			return err
		}
		m := findMatch(st.roundMatches(roundNumber), matchID)
		if m == nil {
			return errors.WithHintf(ErrMatchNotFound, "match %d is not part of round %d", matchID, roundNumber)
		}
		if m.IsBye() {
			return ErrMatchIsBye
		}
		if m.IsStarted() {
			return errors.WithHintf(ErrMatchAlreadyStarted, "match %d started at %s", m.ID, m.StartTime.Format(time.RFC3339))
		}

		now := s.Now()
		def := st.definition(roundNumber)
		if !def.IsStarted() {
			if err := s.RoundDefinitions.MarkStarted(ctx, exec, t.ID, roundNumber, now); err != nil {
				return mapRepositoryError(err)
			}
		}
		m.Start(now, t)
		if err := s.Matches.Update(ctx, exec, m); err != nil {
			return errors.Wrapf(mapRepositoryError(err), "failed to start match %d", m.ID)
		}

		view = st.matchView(m, st.participantNames(), now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.InfoContext(ctx, "match started", "tournament_id", tournamentID, "round", roundNumber, "match_id", matchID)
	s.publish(tournamentID, realtime.EventMatchUpdated, roundEvent{RoundNumber: roundNumber, MatchID: matchID})
	return &view, nil
}

func findMatch(matches []*models.Match, matchID int) *models.Match {
	for _, m := range matches {
		if m.ID == matchID {
			return m
		}
	}
	return nil
}

func (s *roundService) ExtendSubmissionDeadline(ctx context.Context, tournamentID, roundNumber, additionalMinutes, actingUserID int) (*RoundView, error) {
	if additionalMinutes <= 0 {
		return nil, errors.WithHint(ErrValidationFailed, "additionalMinutes must be greater than zero")
	}

	var (
		view     RoundView
		extended int
	)
	err := s.withTournament(ctx, tournamentID, func(exec repositories.SQLExecutor, t *models.Tournament) error {
		if err := requireOrganizer(t, actingUserID); err != nil {
			return err
		}
		if err := requireInProgress(t); err != nil {
			return err
		}
		if err := checkRoundNumber(t, roundNumber); err != nil {
			return err
		}

		st, err := s.loadState(ctx, exec, t)
		if err != nil {
			return err
		}
		matches := st.roundMatches(roundNumber)
		if !st.definition(roundNumber).IsStarted() && !anyStarted(matches) {
			return errors.WithHintf(ErrRoundNotInProgress, "round %d has not been started", roundNumber)
		}

		extra := time.Duration(additionalMinutes) * time.Minute
		for _, m := range matches {
			if m.IsBye() || !m.IsStarted() || m.IsResolved() || m.ResultSubmissionDeadline == nil {
				continue
			}
			deadline := m.ResultSubmissionDeadline.Add(extra)
			m.ResultSubmissionDeadline = &deadline
			if err := s.Matches.Update(ctx, exec, m); err != nil {
				return errors.Wrapf(mapRepositoryError(err), "failed to extend deadline of match %d", m.ID)
			}
			extended++
		}
		if extended == 0 {
			return errors.WithHintf(ErrRoundNotInProgress, "round %d has no running match without a result", roundNumber)
		}

		view = st.roundView(roundNumber, s.Now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.InfoContext(ctx, "submission deadline extended", "tournament_id", tournamentID, "round", roundNumber,
		"minutes", additionalMinutes, "matches", extended)
	s.publish(tournamentID, realtime.EventRoundUpdated, roundEvent{RoundNumber: roundNumber})
	return &view, nil
}

func (s *roundService) SubmitMatchResult(ctx context.Context, tournamentID, matchID, actingUserID int, input SubmitMatchResultInput) (*MatchPairView, error) {
	if err := validateInput(ctx, input); err != nil {
		return nil, err
	}

	var view MatchPairView
	err := s.withMatch(ctx, tournamentID, matchID, func(exec repositories.SQLExecutor, st *tournamentState, m *models.Match) error {
		organizer := st.tournament.OrganizerID == actingUserID
		if !organizer && !m.HasPlayer(actingUserID) {
			return errors.WithHint(ErrForbiddenOperation, "only the organizer or a player of the match can submit its result")
		}
		if m.IsBye() {
			return ErrMatchIsBye
		}
		if !m.IsStarted() {
			return errors.WithHintf(ErrMatchNotStarted, "match %d has not been started", m.ID)
		}

		now := s.Now()
		if !organizer {
			if m.IsResolved() {
				return errors.WithHint(ErrMatchAlreadyResolved, "ask the organizer to correct the result")
			}
			if m.ResultSubmissionDeadline != nil && !now.Before(*m.ResultSubmissionDeadline) {
				return errors.WithHintf(ErrSubmissionClosed, "the deadline was %s", m.ResultSubmissionDeadline.Format(time.RFC3339))
			}
		}

		m.RecordScores(*input.Player1Score, *input.Player2Score, now)
		if err := s.Matches.Update(ctx, exec, m); err != nil {
			return errors.Wrapf(mapRepositoryError(err), "failed to store result of match %d", m.ID)
		}
		view = st.matchView(m, st.participantNames(), now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.InfoContext(ctx, "match result submitted", "tournament_id", tournamentID, "match_id", matchID, "user_id", actingUserID)
	s.publish(tournamentID, realtime.EventMatchUpdated, roundEvent{RoundNumber: view.RoundNumber, MatchID: matchID})
	return &view, nil
}

func (s *roundService) ResolveMatchAsSplit(ctx context.Context, tournamentID, matchID, actingUserID int) (*MatchPairView, error) {
	var view MatchPairView
	err := s.withMatch(ctx, tournamentID, matchID, func(exec repositories.SQLExecutor, st *tournamentState, m *models.Match) error {
		if err := requireOrganizer(st.tournament, actingUserID); err != nil {
			return err
		}
		if m.IsBye() {
			return ErrMatchIsBye
		}
		if !m.IsStarted() {
			return errors.WithHintf(ErrMatchNotStarted, "match %d has not been started", m.ID)
		}
		if m.IsResolved() {
			return errors.WithHintf(ErrMatchAlreadyResolved, "match %d already has a result", m.ID)
		}

		now := s.Now()
		m.ResolveAsSplit(now)
		if err := s.Matches.Update(ctx, exec, m); err != nil {
			return errors.Wrapf(mapRepositoryError(err), "failed to resolve match %d", m.ID)
		}
		view = st.matchView(m, st.participantNames(), now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.InfoContext(ctx, "match resolved as split", "tournament_id", tournamentID, "match_id", matchID)
	s.publish(tournamentID, realtime.EventMatchUpdated, roundEvent{RoundNumber: view.RoundNumber, MatchID: matchID})
	return &view, nil
}

// withMatch locks the tournament, requires it to be running and hands fn the match.
func (s *roundService) withMatch(ctx context.Context, tournamentID, matchID int, fn func(exec repositories.SQLExecutor, st *tournamentState, m *models.Match) error) error {
	return s.withTournament(ctx, tournamentID, func(exec repositories.SQLExecutor, t *models.Tournament) error {
		if err := requireInProgress(t); err != nil {
			return err
		}
		st, err := s.loadState(ctx, exec, t)
		if err != nil {
			return err
		}
		m := findMatch(st.matches, matchID)
		if m == nil {
			return errors.WithHintf(ErrMatchNotFound, "match %d does not belong to tournament %d", matchID, tournamentID)
		}
		return fn(exec, st, m)
	})
}

func (s *roundService) GetRoundStatus(ctx context.Context, tournamentID, roundNumber int) (*RoundStatusView, error) {
	t, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := checkRoundNumber(t, roundNumber); err != nil {
		return nil, err
	}
	st, err := s.loadState(ctx, nil, t)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	matches := st.roundMatches(roundNumber)
	names := st.participantNames()
	view := &RoundStatusView{
		RoundNumber:          roundNumber,
		Status:               models.DeriveRoundStatus(st.definition(roundNumber), matches, now),
		PlayersWithoutScores: make([]string, 0),
	}
	for _, m := range matches {
		if m.IsBye() {
			continue
		}
		view.TotalMatches++
		if m.IsResolved() {
			view.CompletedMatches++
			continue
		}
		if m.IsOverdue(now) {
			view.PlayersWithoutScores = append(view.PlayersWithoutScores, names[m.Player1ID], names[*m.Player2ID])
		}
	}
	view.AllScoresSubmitted = len(matches) > 0 && view.CompletedMatches == view.TotalMatches
	return view, nil
}

func (s *roundService) GetRoundsView(ctx context.Context, tournamentID int) ([]RoundView, error) {
	t, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	st, err := s.loadState(ctx, nil, t)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	rounds := make([]RoundView, 0, t.NumberOfRounds)
	for round := 1; round <= t.NumberOfRounds; round++ {
		rounds = append(rounds, st.roundView(round, now))
	}
	return rounds, nil
}

func (st *tournamentState) roundView(roundNumber int, now time.Time) RoundView {
	matches := st.roundMatches(roundNumber)
	def := st.definition(roundNumber)
	status := models.DeriveRoundStatus(def, matches, now)
	return RoundView{
		RoundNumber: roundNumber,
		Status:      status,
		Matches:     st.roundViews(matches, now),
		CanStart: status == models.RoundNotStarted &&
			len(matches) > 0 &&
			st.tournament.Status == models.StatusInProgress &&
			!def.IsStarted(),
	}
}
