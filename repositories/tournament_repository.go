package repositories

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"

	"github.com/Dosada05/tournament-engine/models"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentInvalidValue = errors.New("tournament violates a check constraint")
)

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	// GetForUpdate locks the tournament row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error
	UpdateArchiveKey(ctx context.Context, exec SQLExecutor, id int, key *string) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `
	id, name, organizer_id, status, number_of_rounds, round_duration_minutes,
	score_submission_extra_minutes, round_start_mode, tournament_points_system,
	points_for_win, points_for_draw, points_for_loss, results_archive_key, created_at`

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournaments (
			name, organizer_id, status, number_of_rounds, round_duration_minutes,
			score_submission_extra_minutes, round_start_mode, tournament_points_system,
			points_for_win, points_for_draw, points_for_loss
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		t.Name, t.OrganizerID, t.Status, t.NumberOfRounds, t.RoundDurationMinutes,
		t.ScoreSubmissionExtraMinutes, t.RoundStartMode, t.TournamentPointsSystem,
		t.PointsForWin, t.PointsForDraw, t.PointsForLoss,
	).Scan(&t.ID, &t.CreatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	return r.scanTournament(r.getExecutor(exec).QueryRowContext(ctx, query, id))
}

func (r *postgresTournamentRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1 FOR UPDATE`
	return r.scanTournament(r.getExecutor(exec).QueryRowContext(ctx, query, id))
}

func (r *postgresTournamentRepository) scanTournament(row rowScanner) (*models.Tournament, error) {
	t := &models.Tournament{}
	err := row.Scan(
		&t.ID, &t.Name, &t.OrganizerID, &t.Status, &t.NumberOfRounds, &t.RoundDurationMinutes,
		&t.ScoreSubmissionExtraMinutes, &t.RoundStartMode, &t.TournamentPointsSystem,
		&t.PointsForWin, &t.PointsForDraw, &t.PointsForLoss, &t.ResultsArchiveKey, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, errors.Wrap(err, "failed to scan tournament")
	}
	return t, nil
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET status = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, status, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateArchiveKey(ctx context.Context, exec SQLExecutor, id int, key *string) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET results_archive_key = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, key, id)
	if err != nil {
		return errors.Wrapf(err, "failed to update archive key of tournament %d", id)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if code, _, ok := pqErrorCode(err); ok && code == pqCheckViolation {
		return ErrTournamentInvalidValue
	}
	return err
}
