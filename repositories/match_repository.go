package repositories

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"

	"github.com/Dosada05/tournament-engine/models"
)

var (
	ErrMatchNotFound = errors.New("match not found")
	// ErrMatchConflict means a player or a table is used twice in one round.
	ErrMatchConflict          = errors.New("match conflicts with an existing pairing of the round")
	ErrMatchTournamentInvalid = errors.New("match tournament conflict or invalid")
)

type MatchRepository interface {
	BatchCreate(ctx context.Context, exec SQLExecutor, matches []*models.Match) error
	// ListByTournament returns matches ordered by round and table, byes last in each round.
	// A nil roundNumber returns every round.
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, roundNumber *int) ([]*models.Match, error)
	GetByID(ctx context.Context, exec SQLExecutor, tournamentID, matchID int) (*models.Match, error)
	Update(ctx context.Context, exec SQLExecutor, m *models.Match) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `
	id, tournament_id, round_number, table_number, player1_id, player2_id, status, resolution,
	start_time, game_end_time, result_submission_deadline, player1_score, player2_score,
	match_winner, scores_submitted_at, created_at`

func (r *postgresMatchRepository) BatchCreate(ctx context.Context, exec SQLExecutor, matches []*models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches (
			tournament_id, round_number, table_number, player1_id, player2_id, status, resolution,
			start_time, game_end_time, result_submission_deadline, player1_score, player2_score,
			match_winner, scores_submitted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at`

	for _, m := range matches {
		err := executor.QueryRowContext(ctx, query,
			m.TournamentID, m.RoundNumber, m.TableNumber, m.Player1ID, m.Player2ID, m.Status, m.Resolution,
			m.StartTime, m.GameEndTime, m.ResultSubmissionDeadline, m.Player1Score, m.Player2Score,
			m.Winner, m.ScoresSubmittedAt,
		).Scan(&m.ID, &m.CreatedAt)
		if err != nil {
			return r.handleMatchError(err)
		}
	}
	return nil
}

func (r *postgresMatchRepository) scanMatch(row rowScanner) (*models.Match, error) {
	m := &models.Match{}
	err := row.Scan(
		&m.ID, &m.TournamentID, &m.RoundNumber, &m.TableNumber, &m.Player1ID, &m.Player2ID,
		&m.Status, &m.Resolution, &m.StartTime, &m.GameEndTime, &m.ResultSubmissionDeadline,
		&m.Player1Score, &m.Player2Score, &m.Winner, &m.ScoresSubmittedAt, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, roundNumber *int) ([]*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1`
	args := []interface{}{tournamentID}
	if roundNumber != nil {
		query += ` AND round_number = $2`
		args = append(args, *roundNumber)
	}
	query += ` ORDER BY round_number, table_number = 0, table_number, id`

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list matches of tournament %d", tournamentID)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, errScan := r.scanMatch(rows)
		if errScan != nil {
			return nil, errScan
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, tournamentID, matchID int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1 AND id = $2`
	return r.scanMatch(r.getExecutor(exec).QueryRowContext(ctx, query, tournamentID, matchID))
}

func (r *postgresMatchRepository) Update(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches SET
			table_number = $1, status = $2, resolution = $3, start_time = $4, game_end_time = $5,
			result_submission_deadline = $6, player1_score = $7, player2_score = $8,
			match_winner = $9, scores_submitted_at = $10
		WHERE id = $11 AND tournament_id = $12`

	result, err := executor.ExecContext(ctx, query,
		m.TableNumber, m.Status, m.Resolution, m.StartTime, m.GameEndTime,
		m.ResultSubmissionDeadline, m.Player1Score, m.Player2Score,
		m.Winner, m.ScoresSubmittedAt,
		m.ID, m.TournamentID,
	)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if code, _, ok := pqErrorCode(err); ok {
		switch code {
		case pqUniqueViolation:
			return ErrMatchConflict
		case pqForeignKeyViolation:
			return ErrMatchTournamentInvalid
		}
	}
	return errors.Wrap(err, "match query failed")
}
