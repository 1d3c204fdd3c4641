package services

import "github.com/cockroachdb/errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден
	ErrNotFound                = errors.New("requested resource not found")
	ErrTournamentNotFound      = errors.New("tournament not found")
	ErrParticipantNotFound     = errors.New("participant registration not found")
	ErrMatchNotFound           = errors.New("match not found")
	ErrRoundDefinitionNotFound = errors.New("round definition not found")

	// Валидация и авторизация
	ErrValidationFailed   = errors.New("validation failed")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	// Жизненный цикл турнира
	ErrTournamentNotInProgress = errors.New("tournament is not in a status that allows this operation")
	ErrTournamentNotCompleted  = errors.New("tournament is not completed")
	ErrInvalidStatusTransition = errors.New("invalid tournament status transition")
	ErrRegistrationConflict    = errors.New("user is already registered for this tournament")
	ErrRegistrationClosed      = errors.New("tournament registration is closed")

	// Пары и раунды
	ErrInsufficientParticipants = errors.New("not enough confirmed participants")
	ErrPairingsAlreadyExist     = errors.New("pairings already exist for this round")
	ErrAllRoundsPaired          = errors.New("all rounds of the tournament are already paired")
	ErrRoundNotReady            = errors.New("round is not ready")
	ErrRoundAlreadyStarted      = errors.New("round has already been started")
	ErrRoundNotInProgress       = errors.New("round is not in progress")
	ErrRoundsIncomplete         = errors.New("not all rounds are finished")
	ErrRoundDefinitionLocked    = errors.New("round definition cannot be changed after the round started")
	ErrInvalidRoundStartMode    = errors.New("operation does not match the round start mode of the tournament")

	// Матчи
	ErrMatchAlreadyStarted  = errors.New("match has already been started")
	ErrMatchNotStarted      = errors.New("match has not been started")
	ErrMatchAlreadyResolved = errors.New("match already has a result")
	ErrMatchIsBye           = errors.New("operation is not possible for a bye")
	ErrSubmissionClosed     = errors.New("result submission deadline has passed")
)
