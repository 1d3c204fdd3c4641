package services

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/realtime"
	"github.com/Dosada05/tournament-engine/repositories"
)

type RegisterParticipantInput struct {
	// UserID lets the organizer register someone else; empty means the acting user.
	UserID     *int   `json:"userId" validate:"omitempty,min=1"`
	Name       string `json:"name" validate:"required,min=1,max=255"`
	IsBeginner bool   `json:"isBeginner"`
}

type ParticipantService interface {
	RegisterParticipant(ctx context.Context, tournamentID, actingUserID int, input RegisterParticipantInput) (*models.Participant, error)
	ConfirmParticipant(ctx context.Context, tournamentID, userID, actingUserID int) (*models.Participant, error)
	ListParticipants(ctx context.Context, tournamentID int) ([]*models.Participant, error)
	// GetParticipantStats returns the ranking; live while the tournament runs, frozen after.
	GetParticipantStats(ctx context.Context, tournamentID int) ([]ParticipantStatsView, error)
}

type participantService struct {
	*core
}

func registrationOpen(t *models.Tournament) error {
	if t.Status != models.StatusDraft && t.Status != models.StatusActive {
		return errors.WithHintf(ErrRegistrationClosed, "tournament %d is %s", t.ID, t.Status)
	}
	return nil
}

func (s *participantService) RegisterParticipant(ctx context.Context, tournamentID, actingUserID int, input RegisterParticipantInput) (*models.Participant, error) {
	if err := validateInput(ctx, input); err != nil {
		return nil, err
	}
	userID := actingUserID
	if input.UserID != nil {
		userID = *input.UserID
	}

	var created *models.Participant
	err := s.withTournament(ctx, tournamentID, func(exec repositories.SQLExecutor, t *models.Tournament) error {
		if userID != actingUserID {
			if err := requireOrganizer(t, actingUserID); err != nil {
				return err
			}
		}
		if err := registrationOpen(t); err != nil {
			return err
		}

		p := &models.Participant{
			TournamentID:   t.ID,
			UserID:         userID,
			Name:           input.Name,
			IsBeginner:     input.IsBeginner,
			ArmyListStatus: models.ArmyListNotSubmitted,
		}
		if err := s.Participants.Create(ctx, exec, p); err != nil {
			return mapRepositoryError(err)
		}
		created = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.InfoContext(ctx, "participant registered", "tournament_id", tournamentID, "user_id", userID)
	return created, nil
}

func (s *participantService) ConfirmParticipant(ctx context.Context, tournamentID, userID, actingUserID int) (*models.Participant, error) {
	var confirmed *models.Participant
	err := s.withTournament(ctx, tournamentID, func(exec repositories.SQLExecutor, t *models.Tournament) error {
		if err := requireOrganizer(t, actingUserID); err != nil {
			return err
		}
		if err := registrationOpen(t); err != nil {
			return err
		}
		if err := s.Participants.SetConfirmed(ctx, exec, t.ID, userID, true); err != nil {
			return mapRepositoryError(err)
		}
		p, err := s.Participants.FindByUserAndTournament(ctx, exec, userID, t.ID)
		if err != nil {
			return mapRepositoryError(err)
		}
		confirmed = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.InfoContext(ctx, "participant confirmed", "tournament_id", tournamentID, "user_id", userID)
	s.publish(tournamentID, realtime.EventTournamentUpdated, confirmed)
	return confirmed, nil
}

func (s *participantService) ListParticipants(ctx context.Context, tournamentID int) ([]*models.Participant, error) {
	if _, err := s.getTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	participants, err := s.Participants.ListByTournament(ctx, nil, tournamentID, false)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list participants of tournament %d", tournamentID)
	}
	if participants == nil {
		return []*models.Participant{}, nil
	}
	return participants, nil
}

func (s *participantService) GetParticipantStats(ctx context.Context, tournamentID int) ([]ParticipantStatsView, error) {
	t, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	if t.Status == models.StatusCompleted {
		rows, err := s.Standings.ListByTournament(ctx, nil, t.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load standings of tournament %d", t.ID)
		}
		return newStatsViews(rows), nil
	}

	st, err := s.loadState(ctx, nil, t)
	if err != nil {
		return nil, err
	}
	return newStatsViews(st.standings()), nil
}
