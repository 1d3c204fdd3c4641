package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
)

type roundKey struct {
	tournamentID int
	roundNumber  int
}

type RoundDefinitionRepository struct {
	mu     sync.RWMutex
	nextID int
	items  map[roundKey]models.RoundDefinition
}

func NewRoundDefinitionRepository() *RoundDefinitionRepository {
	return &RoundDefinitionRepository{items: make(map[roundKey]models.RoundDefinition)}
}

func (r *RoundDefinitionRepository) BatchCreate(_ context.Context, _ repositories.SQLExecutor, defs []*models.RoundDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range defs {
		if _, exists := r.items[roundKey{d.TournamentID, d.RoundNumber}]; exists {
			return repositories.ErrRoundDefinitionConflict
		}
	}
	for _, d := range defs {
		r.nextID++
		d.ID = r.nextID
		r.items[roundKey{d.TournamentID, d.RoundNumber}] = *d
	}
	return nil
}

func (r *RoundDefinitionRepository) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]*models.RoundDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]*models.RoundDefinition, 0)
	for key, item := range r.items {
		if key.tournamentID == tournamentID {
			d := item
			defs = append(defs, &d)
		}
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].RoundNumber < defs[j].RoundNumber })
	return defs, nil
}

func (r *RoundDefinitionRepository) Get(_ context.Context, _ repositories.SQLExecutor, tournamentID, roundNumber int) (*models.RoundDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[roundKey{tournamentID, roundNumber}]
	if !ok {
		return nil, repositories.ErrRoundDefinitionNotFound
	}
	return &item, nil
}

func (r *RoundDefinitionRepository) Update(_ context.Context, _ repositories.SQLExecutor, d *models.RoundDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := roundKey{d.TournamentID, d.RoundNumber}
	current, ok := r.items[key]
	if !ok {
		return repositories.ErrRoundDefinitionNotFound
	}
	updated := *d
	updated.ID = current.ID
	updated.StartedAt = current.StartedAt
	r.items[key] = updated
	return nil
}

func (r *RoundDefinitionRepository) MarkStarted(_ context.Context, _ repositories.SQLExecutor, tournamentID, roundNumber int, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := roundKey{tournamentID, roundNumber}
	item, ok := r.items[key]
	if !ok {
		return repositories.ErrRoundDefinitionNotFound
	}
	item.StartedAt = &at
	r.items[key] = item
	return nil
}
