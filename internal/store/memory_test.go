package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrennick/gambit/internal/models"
)

func newRecord(gt models.GameType, status models.GameStatus) *models.GameRecord {
	return &models.GameRecord{
		ID:       uuid.New(),
		GameType: gt,
		Status:   status,
		WhiteID:  uuid.New(),
		BlackID:  uuid.New(),
	}
}

func TestMemoryGetNotFound(t *testing.T) {
	m := NewMemory()
	_, err := m.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCreateStampsVersion(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	g := newRecord(models.GameTypeChess, models.StatusWaiting)

	require.NoError(t, m.Create(ctx, g))
	assert.Equal(t, int64(1), g.Version)

	got, err := m.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.ID, got.ID)
}

func TestMemoryUpdateIsCompareAndSet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	g := newRecord(models.GameTypeChess, models.StatusPlaying)
	require.NoError(t, m.Create(ctx, g))

	// Two writers load the same version.
	a, err := m.Get(ctx, g.ID)
	require.NoError(t, err)
	b, err := m.Get(ctx, g.ID)
	require.NoError(t, err)

	a.MoveCount = 1
	require.NoError(t, m.Update(ctx, a))
	assert.Equal(t, int64(2), a.Version)

	// The second writer's stale version loses the race.
	b.MoveCount = 99
	assert.ErrorIs(t, m.Update(ctx, b), ErrVersionConflict)

	got, err := m.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.MoveCount, "the losing write must not land")

	// Reloading picks up the committed version and succeeds.
	b, err = m.Get(ctx, g.ID)
	require.NoError(t, err)
	b.MoveCount = 2
	assert.NoError(t, m.Update(ctx, b))
}

func TestMemoryReturnsCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	g := newRecord(models.GameTypeChess, models.StatusPlaying)
	require.NoError(t, m.Create(ctx, g))

	got, err := m.Get(ctx, g.ID)
	require.NoError(t, err)
	got.MoveCount = 42

	again, err := m.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, again.MoveCount, "mutating a returned record must not touch the store")
}

func TestMemoryFilter(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	playing := newRecord(models.GameTypeChess, models.StatusPlaying)
	waiting := newRecord(models.GameTypeCheckers, models.StatusWaiting)
	finished := newRecord(models.GameTypeChess, models.StatusFinished)
	for _, g := range []*models.GameRecord{playing, waiting, finished} {
		require.NoError(t, m.Create(ctx, g))
	}

	st := models.StatusPlaying
	out, err := m.Filter(ctx, GameFilter{Status: &st})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, playing.ID, out[0].ID)

	gt := models.GameTypeCheckers
	out, err = m.Filter(ctx, GameFilter{GameType: &gt})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, waiting.ID, out[0].ID)

	out, err = m.Filter(ctx, GameFilter{PlayerID: &playing.WhiteID})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, playing.ID, out[0].ID)

	out, err = m.Filter(ctx, GameFilter{})
	require.NoError(t, err)
	assert.Len(t, out, 3)
}
