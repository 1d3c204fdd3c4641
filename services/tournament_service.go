package services

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/realtime"
	"github.com/Dosada05/tournament-engine/repositories"
	"github.com/Dosada05/tournament-engine/standings"
	"github.com/Dosada05/tournament-engine/storage"
)

type CreateTournamentInput struct {
	Name                        string                        `json:"name" validate:"required,min=3,max=255"`
	NumberOfRounds              int                           `json:"numberOfRounds" validate:"required,min=1,max=20"`
	RoundDurationMinutes        int                           `json:"roundDurationMinutes" validate:"required,min=1,max=1440"`
	ScoreSubmissionExtraMinutes int                           `json:"scoreSubmissionExtraMinutes" validate:"min=0,max=1440"`
	RoundStartMode              models.RoundStartMode         `json:"roundStartMode" validate:"omitempty,oneof=ALL_MATCHES_TOGETHER INDIVIDUAL_MATCHES"`
	TournamentPointsSystem      models.TournamentPointsSystem `json:"tournamentPointsSystem" validate:"omitempty,oneof=FIXED POINT_DIFFERENCE_STRICT POINT_DIFFERENCE_LENIENT"`
	PointsForWin                *int                          `json:"pointsForWin" validate:"omitempty,min=0"`
	PointsForDraw               *int                          `json:"pointsForDraw" validate:"omitempty,min=0"`
	PointsForLoss               *int                          `json:"pointsForLoss" validate:"omitempty,min=0"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, actingUserID int, input CreateTournamentInput) (*models.Tournament, error)
	GetTournament(ctx context.Context, tournamentID int) (*TournamentView, error)
	ActivateTournament(ctx context.Context, tournamentID, actingUserID int) (*models.Tournament, error)
	CancelTournament(ctx context.Context, tournamentID, actingUserID int) (*models.Tournament, error)
	// CompleteTournament freezes the standings once every round is paired and resolved.
	CompleteTournament(ctx context.Context, tournamentID, actingUserID int) (*PodiumView, error)
	GetPodium(ctx context.Context, tournamentID int) (*PodiumView, error)
}

type tournamentService struct {
	*core
}

func (s *tournamentService) CreateTournament(ctx context.Context, actingUserID int, input CreateTournamentInput) (*models.Tournament, error) {
	if err := validateInput(ctx, input); err != nil {
		return nil, err
	}

	t := &models.Tournament{
		Name:                        input.Name,
		OrganizerID:                 actingUserID,
		Status:                      models.StatusDraft,
		NumberOfRounds:              input.NumberOfRounds,
		RoundDurationMinutes:        input.RoundDurationMinutes,
		ScoreSubmissionExtraMinutes: input.ScoreSubmissionExtraMinutes,
		RoundStartMode:              input.RoundStartMode,
		TournamentPointsSystem:      input.TournamentPointsSystem,
		PointsForWin:                valueOr(input.PointsForWin, 3),
		PointsForDraw:               valueOr(input.PointsForDraw, 1),
		PointsForLoss:               valueOr(input.PointsForLoss, 0),
	}
	if t.RoundStartMode == "" {
		t.RoundStartMode = models.StartAllMatchesTogether
	}
	if t.TournamentPointsSystem == "" {
		t.TournamentPointsSystem = models.PointsFixed
	}

	err := s.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.Tournaments.Create(ctx, exec, t); err != nil {
			return mapRepositoryError(err)
		}
		defs := make([]*models.RoundDefinition, 0, t.NumberOfRounds)
		for round := 1; round <= t.NumberOfRounds; round++ {
			defs = append(defs, models.NewDefaultRoundDefinition(t, round))
		}
		return errors.Wrap(s.RoundDefinitions.BatchCreate(ctx, exec, defs), "failed to create round definitions")
	})
	if err != nil {
		return nil, err
	}

	s.Logger.InfoContext(ctx, "tournament created", "tournament_id", t.ID, "organizer_id", actingUserID, "rounds", t.NumberOfRounds)
	return t, nil
}

func valueOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

func (s *tournamentService) GetTournament(ctx context.Context, tournamentID int) (*TournamentView, error) {
	t, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	st, err := s.loadState(ctx, nil, t)
	if err != nil {
		return nil, err
	}
	if t.ResultsArchiveKey != nil {
		if url := s.Archiver.PublicURL(*t.ResultsArchiveKey); url != "" {
			t.ResultsArchiveURL = &url
		}
	}

	phase, current := st.phase(s.Now())
	return &TournamentView{Tournament: t, Phase: phase, CurrentRound: current}, nil
}

// phase summarizes the tournament for the organizer panel from the last paired round.
func (st *tournamentState) phase(now time.Time) (models.TournamentPhase, int) {
	last := st.lastPairedRound()
	if st.tournament.Status == models.StatusCompleted {
		return models.PhaseTournamentComplete, last
	}
	if last == 0 {
		return models.PhaseAwaitingPairings, 0
	}

	switch models.DeriveRoundStatus(st.definition(last), st.roundMatches(last), now) {
	case models.RoundNotStarted:
		return models.PhasePairingsReady, last
	case models.RoundCompleted:
		return models.PhaseRoundFinished, last
	default:
		return models.PhaseRoundActive, last
	}
}

func (s *tournamentService) ActivateTournament(ctx context.Context, tournamentID, actingUserID int) (*models.Tournament, error) {
	return s.transition(ctx, tournamentID, actingUserID, models.StatusActive)
}

func (s *tournamentService) CancelTournament(ctx context.Context, tournamentID, actingUserID int) (*models.Tournament, error) {
	return s.transition(ctx, tournamentID, actingUserID, models.StatusCancelled)
}

func (s *tournamentService) transition(ctx context.Context, tournamentID, actingUserID int, next models.TournamentStatus) (*models.Tournament, error) {
	var updated *models.Tournament
	err := s.withTournament(ctx, tournamentID, func(exec repositories.SQLExecutor, t *models.Tournament) error {
		if err := requireOrganizer(t, actingUserID); err != nil {
			return err
		}
		if !isValidStatusTransition(t.Status, next) {
			return errors.WithHintf(ErrInvalidStatusTransition, "cannot move tournament from %s to %s", t.Status, next)
		}
		if err := s.Tournaments.UpdateStatus(ctx, exec, t.ID, next); err != nil {
			return mapRepositoryError(err)
		}
		t.Status = next
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.InfoContext(ctx, "tournament status changed", "tournament_id", tournamentID, "status", next)
	s.publish(tournamentID, realtime.EventTournamentUpdated, updated)
	return updated, nil
}

func (s *tournamentService) CompleteTournament(ctx context.Context, tournamentID, actingUserID int) (*PodiumView, error) {
	var (
		final []models.TournamentStanding
		state *tournamentState
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
		for round := 1; round <= t.NumberOfRounds; round++ {
			if !models.IsRoundFullyResolved(st.roundMatches(round)) {
				return errors.WithHintf(ErrRoundsIncomplete, "round %d is not paired or has matches without a result", round)
			}
		}

		now := s.Now()
		final = st.standings()
		for i := range final {
			final[i].TournamentID = t.ID
			final[i].UpdatedAt = now
		}
		if err := s.Standings.ReplaceForTournament(ctx, exec, t.ID, final); err != nil {
			return errors.Wrapf(err, "failed to freeze standings of tournament %d", t.ID)
		}
		if err := s.Tournaments.UpdateStatus(ctx, exec, t.ID, models.StatusCompleted); err != nil {
			return mapRepositoryError(err)
		}
		t.Status = models.StatusCompleted
		state = st
		return nil
	})
	if err != nil {
		return nil, err
	}

	podium := standings.ResolvePodium(final)
	s.archiveResults(ctx, state, final, podium)

	view := newPodiumView(podium)
	s.Logger.InfoContext(ctx, "tournament completed", "tournament_id", tournamentID, "participants", len(final))
	s.publish(tournamentID, realtime.EventTournamentCompleted, view)
	return &view, nil
}

// archiveResults uploads the final results after commit. Failures are logged only, the
// frozen standings in the database stay authoritative.
func (s *tournamentService) archiveResults(ctx context.Context, st *tournamentState, final []models.TournamentStanding, podium models.Podium) {
	key, err := s.Archiver.Archive(ctx, storage.ResultsDocument{
		Tournament: st.tournament,
		Standings:  final,
		Podium:     podium,
		Matches:    st.matches,
		ArchivedAt: s.Now(),
	})
	if err != nil {
		s.Logger.ErrorContext(ctx, "failed to archive tournament results", "tournament_id", st.tournament.ID, "error", err)
		return
	}
	if key == "" {
		return
	}
	if err := s.Tournaments.UpdateArchiveKey(ctx, nil, st.tournament.ID, &key); err != nil {
		s.Logger.ErrorContext(ctx, "failed to store results archive key", "tournament_id", st.tournament.ID, "key", key, "error", err)
		// Объект без ссылки из БД никто не найдёт, удаляем его
		if delErr := s.Archiver.Discard(ctx, key); delErr != nil {
			s.Logger.ErrorContext(ctx, "failed to discard orphaned results archive", "tournament_id", st.tournament.ID, "key", key, "error", delErr)
		}
	}
}

func (s *tournamentService) GetPodium(ctx context.Context, tournamentID int) (*PodiumView, error) {
	t, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.Status != models.StatusCompleted {
		return nil, errors.WithHintf(ErrTournamentNotCompleted, "tournament %d is %s", t.ID, t.Status)
	}

	rows, err := s.Standings.ListByTournament(ctx, nil, t.ID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load standings of tournament %d", t.ID)
	}
	view := newPodiumView(standings.ResolvePodium(rows))
	return &view, nil
}
