package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/Dosada05/tournament-engine/models"
)

var (
	ErrRoundDefinitionNotFound = errors.New("round definition not found")
	ErrRoundDefinitionConflict = errors.New("round definition already exists for this round")
)

type RoundDefinitionRepository interface {
	BatchCreate(ctx context.Context, exec SQLExecutor, defs []*models.RoundDefinition) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.RoundDefinition, error)
	Get(ctx context.Context, exec SQLExecutor, tournamentID, roundNumber int) (*models.RoundDefinition, error)
	Update(ctx context.Context, exec SQLExecutor, def *models.RoundDefinition) error
	MarkStarted(ctx context.Context, exec SQLExecutor, tournamentID, roundNumber int, at time.Time) error
}

type postgresRoundDefinitionRepository struct {
	db *sql.DB
}

func NewPostgresRoundDefinitionRepository(db *sql.DB) RoundDefinitionRepository {
	return &postgresRoundDefinitionRepository{db: db}
}

func (r *postgresRoundDefinitionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const roundDefinitionColumns = `
	id, tournament_id, round_number, deployment_id, deployment_name, primary_mission_id,
	primary_mission_name, is_split_map_layout, map_layout_even, map_layout_odd,
	bye_large_points, bye_small_points, split_large_points, split_small_points,
	pairing_algorithm, player_level_pairing_strategy, table_assignment_strategy, started_at`

func (r *postgresRoundDefinitionRepository) BatchCreate(ctx context.Context, exec SQLExecutor, defs []*models.RoundDefinition) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO round_definitions (
			tournament_id, round_number, deployment_id, deployment_name, primary_mission_id,
			primary_mission_name, is_split_map_layout, map_layout_even, map_layout_odd,
			bye_large_points, bye_small_points, split_large_points, split_small_points,
			pairing_algorithm, player_level_pairing_strategy, table_assignment_strategy
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id`

	for _, d := range defs {
		err := executor.QueryRowContext(ctx, query,
			d.TournamentID, d.RoundNumber, d.DeploymentID, d.DeploymentName, d.PrimaryMissionID,
			d.PrimaryMissionName, d.IsSplitMapLayout, d.MapLayoutEven, d.MapLayoutOdd,
			d.ByeLargePoints, d.ByeSmallPoints, d.SplitLargePoints, d.SplitSmallPoints,
			d.PairingAlgorithm, d.PlayerLevelPairingStrategy, d.TableAssignmentStrategy,
		).Scan(&d.ID)
		if err != nil {
			if code, _, ok := pqErrorCode(err); ok && code == pqUniqueViolation {
				return ErrRoundDefinitionConflict
			}
			return errors.Wrapf(err, "failed to create definition of round %d", d.RoundNumber)
		}
	}
	return nil
}

func (r *postgresRoundDefinitionRepository) scanDefinition(row rowScanner) (*models.RoundDefinition, error) {
	d := &models.RoundDefinition{}
	err := row.Scan(
		&d.ID, &d.TournamentID, &d.RoundNumber, &d.DeploymentID, &d.DeploymentName, &d.PrimaryMissionID,
		&d.PrimaryMissionName, &d.IsSplitMapLayout, &d.MapLayoutEven, &d.MapLayoutOdd,
		&d.ByeLargePoints, &d.ByeSmallPoints, &d.SplitLargePoints, &d.SplitSmallPoints,
		&d.PairingAlgorithm, &d.PlayerLevelPairingStrategy, &d.TableAssignmentStrategy, &d.StartedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundDefinitionNotFound
		}
		return nil, err
	}
	return d, nil
}

func (r *postgresRoundDefinitionRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.RoundDefinition, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + roundDefinitionColumns + ` FROM round_definitions WHERE tournament_id = $1 ORDER BY round_number`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list round definitions of tournament %d", tournamentID)
	}
	defer rows.Close()

	defs := make([]*models.RoundDefinition, 0)
	for rows.Next() {
		d, errScan := r.scanDefinition(rows)
		if errScan != nil {
			return nil, errScan
		}
		defs = append(defs, d)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return defs, nil
}

func (r *postgresRoundDefinitionRepository) Get(ctx context.Context, exec SQLExecutor, tournamentID, roundNumber int) (*models.RoundDefinition, error) {
	query := `SELECT ` + roundDefinitionColumns + ` FROM round_definitions WHERE tournament_id = $1 AND round_number = $2`
	return r.scanDefinition(r.getExecutor(exec).QueryRowContext(ctx, query, tournamentID, roundNumber))
}

func (r *postgresRoundDefinitionRepository) Update(ctx context.Context, exec SQLExecutor, d *models.RoundDefinition) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE round_definitions SET
			deployment_id = $1, deployment_name = $2, primary_mission_id = $3, primary_mission_name = $4,
			is_split_map_layout = $5, map_layout_even = $6, map_layout_odd = $7,
			bye_large_points = $8, bye_small_points = $9, split_large_points = $10, split_small_points = $11,
			pairing_algorithm = $12, player_level_pairing_strategy = $13, table_assignment_strategy = $14
		WHERE tournament_id = $15 AND round_number = $16`

	result, err := executor.ExecContext(ctx, query,
		d.DeploymentID, d.DeploymentName, d.PrimaryMissionID, d.PrimaryMissionName,
		d.IsSplitMapLayout, d.MapLayoutEven, d.MapLayoutOdd,
		d.ByeLargePoints, d.ByeSmallPoints, d.SplitLargePoints, d.SplitSmallPoints,
		d.PairingAlgorithm, d.PlayerLevelPairingStrategy, d.TableAssignmentStrategy,
		d.TournamentID, d.RoundNumber,
	)
	if err != nil {
		return errors.Wrapf(err, "failed to update definition of round %d", d.RoundNumber)
	}
	return checkAffectedRows(result, ErrRoundDefinitionNotFound)
}

func (r *postgresRoundDefinitionRepository) MarkStarted(ctx context.Context, exec SQLExecutor, tournamentID, roundNumber int, at time.Time) error {
	executor := r.getExecutor(exec)
	query := `UPDATE round_definitions SET started_at = $1 WHERE tournament_id = $2 AND round_number = $3`
	result, err := executor.ExecContext(ctx, query, at, tournamentID, roundNumber)
	if err != nil {
		return errors.Wrapf(err, "failed to mark round %d started", roundNumber)
	}
	return checkAffectedRows(result, ErrRoundDefinitionNotFound)
}
