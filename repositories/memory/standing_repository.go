package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
)

type TournamentStandingRepository struct {
	mu    sync.RWMutex
	items map[int][]models.TournamentStanding
}

func NewTournamentStandingRepository() *TournamentStandingRepository {
	return &TournamentStandingRepository{items: make(map[int][]models.TournamentStanding)}
}

func (r *TournamentStandingRepository) ReplaceForTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int, rows []models.TournamentStanding) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	stored := make([]models.TournamentStanding, len(rows))
	for i, row := range rows {
		row.ID = i + 1
		row.TournamentID = tournamentID
		if row.UpdatedAt.IsZero() {
			row.UpdatedAt = now
		}
		stored[i] = row
	}
	r.items[tournamentID] = stored
	return nil
}

func (r *TournamentStandingRepository) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]models.TournamentStanding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]models.TournamentStanding{}, r.items[tournamentID]...), nil
}
