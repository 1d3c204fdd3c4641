package services

import (
	"github.com/cockroachdb/errors"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
)

// mapRepositoryError помечает ошибки репозитория сервисными sentinel-ошибками,
// сохраняя исходную цепочку для логов.
func mapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return errors.Mark(err, ErrTournamentNotFound)
	case errors.Is(err, repositories.ErrParticipantNotFound):
		return errors.Mark(err, ErrParticipantNotFound)
	case errors.Is(err, repositories.ErrMatchNotFound):
		return errors.Mark(err, ErrMatchNotFound)
	case errors.Is(err, repositories.ErrRoundDefinitionNotFound):
		return errors.Mark(err, ErrRoundDefinitionNotFound)
	case errors.Is(err, repositories.ErrParticipantConflict):
		return errors.Mark(err, ErrRegistrationConflict)
	case errors.Is(err, repositories.ErrMatchConflict):
		return errors.Mark(err, ErrPairingsAlreadyExist)
	case errors.Is(err, repositories.ErrTournamentInvalidValue):
		return errors.Mark(err, ErrValidationFailed)
	default:
		return err
	}
}

// --- Статусы турнира ---

func isValidStatusTransition(current, next models.TournamentStatus) bool {
	allowedTransitions := map[models.TournamentStatus][]models.TournamentStatus{
		models.StatusDraft:      {models.StatusActive, models.StatusCancelled},
		models.StatusActive:     {models.StatusInProgress, models.StatusCancelled},
		models.StatusInProgress: {models.StatusCompleted, models.StatusCancelled},
		models.StatusCompleted:  {},
		models.StatusCancelled:  {},
	}
	for _, allowed := range allowedTransitions[current] {
		if next == allowed {
			return true
		}
	}
	return false
}
