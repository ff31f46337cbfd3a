package archive

import (
	"context"
	"sort"
	"sync"
)

// memstore is the in-memory Store used when no backend is configured.
type memstore struct {
	mu    sync.RWMutex
	games map[string]*Game
}

func NewMemoryStore() Store {
	return &memstore{games: make(map[string]*Game)}
}

func (m *memstore) SaveGame(ctx context.Context, g *Game) error {
	if g == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.games[g.RoomID]; ok && prev.ClosedAt.Equal(g.ClosedAt) {
		return ErrDuplicateGame
	}
	cp := *g
	m.games[g.RoomID] = &cp
	return nil
}

func (m *memstore) GetGame(ctx context.Context, roomID string) (*Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[roomID]
	if !ok {
		return nil, nil
	}
	cp := *g
	return &cp, nil
}

func (m *memstore) RecentGames(ctx context.Context, limit int) ([]*Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := make([]*Game, 0, len(m.games))
	for _, g := range m.games {
		cp := *g
		items = append(items, &cp)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ClosedAt.After(items[j].ClosedAt) })
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}
