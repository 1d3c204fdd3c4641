package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
)

type MatchRepository struct {
	mu     sync.RWMutex
	nextID int
	items  map[int]models.Match
}

func NewMatchRepository() *MatchRepository {
	return &MatchRepository{items: make(map[int]models.Match)}
}

func (r *MatchRepository) BatchCreate(_ context.Context, _ repositories.SQLExecutor, matches []*models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, m := range matches {
		if r.conflicts(m) {
			return repositories.ErrMatchConflict
		}
		for _, other := range matches[:i] {
			if sameSlot(m, other) {
				return repositories.ErrMatchConflict
			}
		}
	}
	now := time.Now().UTC()
	for _, m := range matches {
		r.nextID++
		m.ID = r.nextID
		m.CreatedAt = now
		r.items[m.ID] = *m
	}
	return nil
}

// conflicts mirrors the unique constraints of the matches table.
func (r *MatchRepository) conflicts(m *models.Match) bool {
	for _, existing := range r.items {
		if sameSlot(m, &existing) {
			return true
		}
	}
	return false
}

func sameSlot(a, b *models.Match) bool {
	if a.TournamentID != b.TournamentID || a.RoundNumber != b.RoundNumber {
		return false
	}
	if a.TableNumber > 0 && a.TableNumber == b.TableNumber {
		return true
	}
	for _, id := range []int{a.Player1ID, derefInt(a.Player2ID)} {
		if id != 0 && b.HasPlayer(id) {
			return true
		}
	}
	return false
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func (r *MatchRepository) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int, roundNumber *int) ([]*models.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Match, 0)
	for _, item := range r.items {
		if item.TournamentID != tournamentID || (roundNumber != nil && item.RoundNumber != *roundNumber) {
			continue
		}
		m := item
		out = append(out, &m)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.RoundNumber != b.RoundNumber {
			return a.RoundNumber < b.RoundNumber
		}
		if (a.TableNumber == 0) != (b.TableNumber == 0) {
			return b.TableNumber == 0
		}
		if a.TableNumber != b.TableNumber {
			return a.TableNumber < b.TableNumber
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (r *MatchRepository) GetByID(_ context.Context, _ repositories.SQLExecutor, tournamentID, matchID int) (*models.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[matchID]
	if !ok || item.TournamentID != tournamentID {
		return nil, repositories.ErrMatchNotFound
	}
	return &item, nil
}

func (r *MatchRepository) Update(_ context.Context, _ repositories.SQLExecutor, m *models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[m.ID]
	if !ok || current.TournamentID != m.TournamentID {
		return repositories.ErrMatchNotFound
	}
	r.items[m.ID] = *m
	return nil
}
