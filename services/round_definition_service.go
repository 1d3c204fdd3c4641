package services

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/realtime"
	"github.com/Dosada05/tournament-engine/repositories"
)

// UpdateRoundDefinitionInput is a partial update; nil fields keep their value.
type UpdateRoundDefinitionInput struct {
	DeploymentID               *int                               `json:"deploymentId" validate:"omitempty,min=1"`
	DeploymentName             *string                            `json:"deploymentName" validate:"omitempty,max=255"`
	PrimaryMissionID           *int                               `json:"primaryMissionId" validate:"omitempty,min=1"`
	PrimaryMissionName         *string                            `json:"primaryMissionName" validate:"omitempty,max=255"`
	IsSplitMapLayout           *bool                              `json:"isSplitMapLayout"`
	MapLayoutEven              *string                            `json:"mapLayoutEven" validate:"omitempty,max=255"`
	MapLayoutOdd               *string                            `json:"mapLayoutOdd" validate:"omitempty,max=255"`
	ByeLargePoints             *int                               `json:"byeLargePoints" validate:"omitempty,min=0"`
	ByeSmallPoints             *int                               `json:"byeSmallPoints" validate:"omitempty,min=0"`
	SplitLargePoints           *int                               `json:"splitLargePoints" validate:"omitempty,min=0"`
	SplitSmallPoints           *int                               `json:"splitSmallPoints" validate:"omitempty,min=0"`
	PairingAlgorithm           *models.PairingAlgorithm           `json:"pairingAlgorithm" validate:"omitempty,oneof=STANDARD CUSTOM"`
	PlayerLevelPairingStrategy *models.PlayerLevelPairingStrategy `json:"playerLevelPairingStrategy" validate:"omitempty,oneof=NONE BEGINNERS_WITH_VETERANS BEGINNERS_WITH_BEGINNERS"`
	TableAssignmentStrategy    *models.TableAssignmentStrategy    `json:"tableAssignmentStrategy" validate:"omitempty,oneof=BEST_FIRST RANDOM"`
}

type RoundDefinitionService interface {
	ListRoundDefinitions(ctx context.Context, tournamentID int) ([]*models.RoundDefinition, error)
	GetRoundDefinition(ctx context.Context, tournamentID, roundNumber int) (*models.RoundDefinition, error)
	UpdateRoundDefinition(ctx context.Context, tournamentID, roundNumber, actingUserID int, input UpdateRoundDefinitionInput) (*models.RoundDefinition, error)
}

type roundDefinitionService struct {
	*core
}

func (s *roundDefinitionService) ListRoundDefinitions(ctx context.Context, tournamentID int) ([]*models.RoundDefinition, error) {
	if _, err := s.getTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	defs, err := s.RoundDefinitions.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list round definitions of tournament %d", tournamentID)
	}
	if defs == nil {
		return []*models.RoundDefinition{}, nil
	}
	return defs, nil
}

func (s *roundDefinitionService) GetRoundDefinition(ctx context.Context, tournamentID, roundNumber int) (*models.RoundDefinition, error) {
	def, err := s.RoundDefinitions.Get(ctx, nil, tournamentID, roundNumber)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return def, nil
}

func (s *roundDefinitionService) UpdateRoundDefinition(ctx context.Context, tournamentID, roundNumber, actingUserID int, input UpdateRoundDefinitionInput) (*models.RoundDefinition, error) {
	if err := validateInput(ctx, input); err != nil {
		return nil, err
	}

	var updated *models.RoundDefinition
	err := s.withTournament(ctx, tournamentID, func(exec repositories.SQLExecutor, t *models.Tournament) error {
		if err := requireOrganizer(t, actingUserID); err != nil {
			return err
		}
		if t.Status.IsTerminal() {
			return errors.WithHintf(ErrTournamentNotInProgress, "tournament %d is %s", t.ID, t.Status)
		}

		def, err := s.RoundDefinitions.Get(ctx, exec, t.ID, roundNumber)
		if err != nil {
			return mapRepositoryError(err)
		}
		if def.IsStarted() {
			return errors.WithHintf(ErrRoundDefinitionLocked, "round %d started at %s", roundNumber, def.StartedAt.Format("2006-01-02 15:04"))
		}

		applyRoundDefinitionInput(def, input)
		if err := s.RoundDefinitions.Update(ctx, exec, def); err != nil {
			return mapRepositoryError(err)
		}
		updated = def
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.InfoContext(ctx, "round definition updated", "tournament_id", tournamentID, "round", roundNumber)
	s.publish(tournamentID, realtime.EventRoundUpdated, roundEvent{RoundNumber: roundNumber})
	return updated, nil
}

func applyRoundDefinitionInput(def *models.RoundDefinition, in UpdateRoundDefinitionInput) {
	if in.DeploymentID != nil {
		def.DeploymentID = in.DeploymentID
	}
	if in.DeploymentName != nil {
		def.DeploymentName = in.DeploymentName
	}
	if in.PrimaryMissionID != nil {
		def.PrimaryMissionID = in.PrimaryMissionID
	}
	if in.PrimaryMissionName != nil {
		def.PrimaryMissionName = in.PrimaryMissionName
	}
	if in.IsSplitMapLayout != nil {
		def.IsSplitMapLayout = *in.IsSplitMapLayout
	}
	if in.MapLayoutEven != nil {
		def.MapLayoutEven = in.MapLayoutEven
	}
	if in.MapLayoutOdd != nil {
		def.MapLayoutOdd = in.MapLayoutOdd
	}
	if in.ByeLargePoints != nil {
		def.ByeLargePoints = *in.ByeLargePoints
	}
	if in.ByeSmallPoints != nil {
		def.ByeSmallPoints = *in.ByeSmallPoints
	}
	if in.SplitLargePoints != nil {
		def.SplitLargePoints = *in.SplitLargePoints
	}
	if in.SplitSmallPoints != nil {
		def.SplitSmallPoints = *in.SplitSmallPoints
	}
	if in.PairingAlgorithm != nil {
		def.PairingAlgorithm = *in.PairingAlgorithm
	}
	if in.PlayerLevelPairingStrategy != nil {
		def.PlayerLevelPairingStrategy = *in.PlayerLevelPairingStrategy
	}
	if in.TableAssignmentStrategy != nil {
		def.TableAssignmentStrategy = *in.TableAssignmentStrategy
	}
}
