// Package memory keeps repository state in process. It backs STORAGE_DRIVER=memory and the
// service tests. Transactions are not isolated; callers serialize writers per tournament.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
)

type TournamentRepository struct {
	mu     sync.RWMutex
	nextID int
	items  map[int]models.Tournament
}

func NewTournamentRepository() *TournamentRepository {
	return &TournamentRepository{items: make(map[int]models.Tournament)}
}

func (r *TournamentRepository) Create(_ context.Context, _ repositories.SQLExecutor, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	t.ID = r.nextID
	t.CreatedAt = time.Now().UTC()
	r.items[t.ID] = *t
	return nil
}

func (r *TournamentRepository) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Tournament, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return &item, nil
}

func (r *TournamentRepository) GetForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	return r.GetByID(ctx, exec, id)
}

func (r *TournamentRepository) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	item.Status = status
	r.items[id] = item
	return nil
}

func (r *TournamentRepository) UpdateArchiveKey(_ context.Context, _ repositories.SQLExecutor, id int, key *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	item.ResultsArchiveKey = key
	r.items[id] = item
	return nil
}

// TxManager runs fn directly with a nil executor.
type TxManager struct{}

func NewTxManager() TxManager {
	return TxManager{}
}

func (TxManager) WithinTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}
