// internal/store/memory.go
package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/jrennick/gambit/internal/models"
)

// Memory is an in-process GameStore used by tests and single-process runs.
// Records are deep-copied on the way in and out so callers never share
// mutable state with the store.
type Memory struct {
	mu    sync.RWMutex
	games map[uuid.UUID]*models.GameRecord
}

func NewMemory() *Memory {
	return &Memory{games: make(map[uuid.UUID]*models.GameRecord)}
}

func cloneRecord(g *models.GameRecord) *models.GameRecord {
	data, _ := json.Marshal(g)
	var out models.GameRecord
	_ = json.Unmarshal(data, &out)
	return &out
}

func (m *Memory) Get(_ context.Context, id uuid.UUID) (*models.GameRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRecord(g), nil
}

func (m *Memory) Filter(_ context.Context, f GameFilter) ([]*models.GameRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.GameRecord
	for _, g := range m.games {
		if f.Status != nil && g.Status != *f.Status {
			continue
		}
		if f.GameType != nil && g.GameType != *f.GameType {
			continue
		}
		if f.PlayerID != nil && g.WhiteID != *f.PlayerID && g.BlackID != *f.PlayerID {
			continue
		}
		out = append(out, cloneRecord(g))
	}
	return out, nil
}

func (m *Memory) Create(_ context.Context, g *models.GameRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g.Version = 1
	m.games[g.ID] = cloneRecord(g)
	return nil
}

func (m *Memory) Update(_ context.Context, g *models.GameRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.games[g.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != g.Version {
		return ErrVersionConflict
	}
	g.Version++
	m.games[g.ID] = cloneRecord(g)
	return nil
}
