package services

import "sync"

// TournamentLocks serializes mutations per tournament inside this process. Across processes
// the row lock taken by TournamentRepository.GetForUpdate does the same job.
type TournamentLocks struct {
	mu    sync.Mutex
	locks map[int]*tournamentLock
}

type tournamentLock struct {
	mu   sync.Mutex
	refs int
}

func NewTournamentLocks() *TournamentLocks {
	return &TournamentLocks{locks: make(map[int]*tournamentLock)}
}

// Lock blocks until the caller owns the tournament and returns the release function.
func (l *TournamentLocks) Lock(tournamentID int) func() {
	l.mu.Lock()
	entry, ok := l.locks[tournamentID]
	if !ok {
		entry = &tournamentLock{}
		l.locks[tournamentID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, tournamentID)
		}
		l.mu.Unlock()
	}
}
