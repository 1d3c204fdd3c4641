package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
)

type participantKey struct {
	tournamentID int
	userID       int
}

type ParticipantRepository struct {
	mu     sync.RWMutex
	nextID int
	items  map[participantKey]models.Participant
}

func NewParticipantRepository() *ParticipantRepository {
	return &ParticipantRepository{items: make(map[participantKey]models.Participant)}
}

func (r *ParticipantRepository) Create(_ context.Context, _ repositories.SQLExecutor, p *models.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := participantKey{p.TournamentID, p.UserID}
	if _, exists := r.items[key]; exists {
		return repositories.ErrParticipantConflict
	}
	r.nextID++
	p.ID = r.nextID
	p.CreatedAt = time.Now().UTC()
	r.items[key] = *p
	return nil
}

func (r *ParticipantRepository) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int, confirmedOnly bool) ([]*models.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Participant, 0)
	for key, item := range r.items {
		if key.tournamentID != tournamentID || (confirmedOnly && !item.Confirmed) {
			continue
		}
		p := item
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *ParticipantRepository) FindByUserAndTournament(_ context.Context, _ repositories.SQLExecutor, userID, tournamentID int) (*models.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[participantKey{tournamentID, userID}]
	if !ok {
		return nil, repositories.ErrParticipantNotFound
	}
	return &item, nil
}

func (r *ParticipantRepository) SetConfirmed(_ context.Context, _ repositories.SQLExecutor, tournamentID, userID int, confirmed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := participantKey{tournamentID, userID}
	item, ok := r.items[key]
	if !ok {
		return repositories.ErrParticipantNotFound
	}
	item.Confirmed = confirmed
	r.items[key] = item
	return nil
}
