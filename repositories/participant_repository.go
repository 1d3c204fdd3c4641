package repositories

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"

	"github.com/Dosada05/tournament-engine/models"
)

var (
	ErrParticipantNotFound          = errors.New("participant not found")
	ErrParticipantConflict          = errors.New("participant conflict: user already registered for this tournament")
	ErrParticipantTournamentInvalid = errors.New("participant tournament conflict or invalid")
)

type ParticipantRepository interface {
	Create(ctx context.Context, exec SQLExecutor, p *models.Participant) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, confirmedOnly bool) ([]*models.Participant, error)
	FindByUserAndTournament(ctx context.Context, exec SQLExecutor, userID, tournamentID int) (*models.Participant, error)
	SetConfirmed(ctx context.Context, exec SQLExecutor, tournamentID, userID int, confirmed bool) error
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const participantColumns = `
	id, tournament_id, user_id, name, confirmed, is_paid, is_beginner, army_list_status, created_at`

func (r *postgresParticipantRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Participant) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO participants (tournament_id, user_id, name, confirmed, is_paid, is_beginner, army_list_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		p.TournamentID, p.UserID, p.Name, p.Confirmed, p.IsPaid, p.IsBeginner, p.ArmyListStatus,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if code, constraint, ok := pqErrorCode(err); ok {
			switch code {
			case pqUniqueViolation:
				if constraint == "participants_user_id_tournament_id_key" {
					return ErrParticipantConflict
				}
			case pqForeignKeyViolation:
				return ErrParticipantTournamentInvalid
			}
		}
		return errors.Wrap(err, "failed to create participant")
	}
	return nil
}

func (r *postgresParticipantRepository) scanParticipant(row rowScanner) (*models.Participant, error) {
	p := &models.Participant{}
	err := row.Scan(
		&p.ID, &p.TournamentID, &p.UserID, &p.Name, &p.Confirmed, &p.IsPaid, &p.IsBeginner,
		&p.ArmyListStatus, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresParticipantRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, confirmedOnly bool) ([]*models.Participant, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + participantColumns + ` FROM participants WHERE tournament_id = $1`
	if confirmedOnly {
		query += ` AND confirmed = TRUE`
	}
	query += ` ORDER BY user_id`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list participants of tournament %d", tournamentID)
	}
	defer rows.Close()

	participants := make([]*models.Participant, 0)
	for rows.Next() {
		p, errScan := r.scanParticipant(rows)
		if errScan != nil {
			return nil, errScan
		}
		participants = append(participants, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *postgresParticipantRepository) FindByUserAndTournament(ctx context.Context, exec SQLExecutor, userID, tournamentID int) (*models.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE user_id = $1 AND tournament_id = $2`
	return r.scanParticipant(r.getExecutor(exec).QueryRowContext(ctx, query, userID, tournamentID))
}

func (r *postgresParticipantRepository) SetConfirmed(ctx context.Context, exec SQLExecutor, tournamentID, userID int, confirmed bool) error {
	executor := r.getExecutor(exec)
	query := `UPDATE participants SET confirmed = $1 WHERE tournament_id = $2 AND user_id = $3`
	result, err := executor.ExecContext(ctx, query, confirmed, tournamentID, userID)
	if err != nil {
		return errors.Wrap(err, "failed to update participant confirmation")
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}
