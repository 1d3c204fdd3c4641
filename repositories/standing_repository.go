package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/Dosada05/tournament-engine/models"
)

var ErrStandingTournamentInvalid = errors.New("standing tournament conflict or invalid")

// TournamentStandingRepository stores the standings frozen when a tournament completes.
type TournamentStandingRepository interface {
	ReplaceForTournament(ctx context.Context, exec SQLExecutor, tournamentID int, rows []models.TournamentStanding) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.TournamentStanding, error)
}

type postgresTournamentStandingRepository struct {
	db *sql.DB
}

func NewPostgresTournamentStandingRepository(db *sql.DB) TournamentStandingRepository {
	return &postgresTournamentStandingRepository{db: db}
}

func (r *postgresTournamentStandingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// ReplaceForTournament deletes the stored rows and writes the given ones. Call it inside a
// transaction so readers never see a half written table.
func (r *postgresTournamentStandingRepository) ReplaceForTournament(ctx context.Context, exec SQLExecutor, tournamentID int, rows []models.TournamentStanding) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx, `DELETE FROM tournament_standings WHERE tournament_id = $1`, tournamentID); err != nil {
		return errors.Wrapf(err, "failed to clear standings of tournament %d", tournamentID)
	}

	query := `
		INSERT INTO tournament_standings
		    (tournament_id, user_id, user_name, rank, wins, draws, losses, byes,
		     tournament_points, score_points, matches_played, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`
	now := time.Now()
	for i := range rows {
		s := &rows[i]
		s.TournamentID = tournamentID
		if s.UpdatedAt.IsZero() {
			s.UpdatedAt = now
		}
		err := executor.QueryRowContext(ctx, query,
			s.TournamentID, s.UserID, s.UserName, s.Rank, s.Wins, s.Draws, s.Losses, s.Byes,
			s.TournamentPoints, s.ScorePoints, s.MatchesPlayed, s.UpdatedAt,
		).Scan(&s.ID)
		if err != nil {
			if code, _, ok := pqErrorCode(err); ok && code == pqForeignKeyViolation {
				return ErrStandingTournamentInvalid
			}
			return errors.Wrapf(err, "failed to store standing of user %d", s.UserID)
		}
	}
	return nil
}

func (r *postgresTournamentStandingRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.TournamentStanding, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tournament_id, user_id, user_name, rank, wins, draws, losses, byes,
		       tournament_points, score_points, matches_played, updated_at
		FROM tournament_standings
		WHERE tournament_id = $1
		ORDER BY rank, id`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list standings of tournament %d", tournamentID)
	}
	defer rows.Close()

	standings := make([]models.TournamentStanding, 0)
	for rows.Next() {
		var s models.TournamentStanding
		if err := rows.Scan(
			&s.ID, &s.TournamentID, &s.UserID, &s.UserName, &s.Rank, &s.Wins, &s.Draws, &s.Losses,
			&s.Byes, &s.TournamentPoints, &s.ScorePoints, &s.MatchesPlayed, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		standings = append(standings, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return standings, nil
}
