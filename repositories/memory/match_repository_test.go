package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
)

func pair(round, table, p1, p2 int) *models.Match {
	return &models.Match{
		TournamentID: 1, RoundNumber: round, TableNumber: table,
		Player1ID: p1, Player2ID: &p2, Status: models.MatchScheduled, Resolution: models.ResolutionNone,
	}
}

func TestMatchRepository_ListOrdersByTableWithByesLast(t *testing.T) {
	repo := NewMatchRepository()
	ctx := context.Background()

	bye := models.NewByeMatch(1, 1, 5)
	require.NoError(t, repo.BatchCreate(ctx, nil, []*models.Match{bye, pair(1, 2, 3, 4), pair(1, 1, 1, 2)}))
	require.NoError(t, repo.BatchCreate(ctx, nil, []*models.Match{pair(2, 1, 1, 3)}))

	round := 1
	got, err := repo.ListByTournament(ctx, nil, 1, &round)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 1, got[0].TableNumber)
	assert.Equal(t, 2, got[1].TableNumber)
	assert.True(t, got[2].IsBye())

	all, err := repo.ListByTournament(ctx, nil, 1, nil)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestMatchRepository_RejectsPlayerTwiceInRound(t *testing.T) {
	repo := NewMatchRepository()
	ctx := context.Background()

	require.NoError(t, repo.BatchCreate(ctx, nil, []*models.Match{pair(1, 1, 1, 2)}))
	err := repo.BatchCreate(ctx, nil, []*models.Match{pair(1, 2, 2, 3)})
	assert.ErrorIs(t, err, repositories.ErrMatchConflict)

	err = repo.BatchCreate(ctx, nil, []*models.Match{pair(1, 1, 3, 4)})
	assert.ErrorIs(t, err, repositories.ErrMatchConflict, "table reused in the same round")
}

func TestMatchRepository_ReturnsCopies(t *testing.T) {
	repo := NewMatchRepository()
	ctx := context.Background()
	m := pair(1, 1, 1, 2)
	require.NoError(t, repo.BatchCreate(ctx, nil, []*models.Match{m}))

	got, err := repo.GetByID(ctx, nil, 1, m.ID)
	require.NoError(t, err)
	got.Status = models.MatchCompleted

	again, err := repo.GetByID(ctx, nil, 1, m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchScheduled, again.Status)

	_, err = repo.GetByID(ctx, nil, 2, m.ID)
	assert.ErrorIs(t, err, repositories.ErrMatchNotFound)
}
