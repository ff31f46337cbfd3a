package archive

import (
	"context"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/varkas/mannchess-server/internal/board"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(func() { mr.Close() })
	s, err := NewRedisStore(fmt.Sprintf("redis://%s/0", mr.Addr()))
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	return s
}

func sampleGame(roomID string, closed time.Time) *Game {
	b := board.New()
	return &Game{
		RoomID:    roomID,
		Phase:     "waiting",
		Moves:     4,
		Pieces:    b.Snapshot(),
		StartedAt: closed.Add(-10 * time.Minute),
		ClosedAt:  closed,
	}
}

func TestRedisSaveAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := sampleGame("r1", time.Now().UTC().Truncate(time.Second))
	if err := s.SaveGame(ctx, want); err != nil {
		t.Fatalf("SaveGame: %v", err)
	}

	got, err := s.GetGame(ctx, "r1")
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if got == nil || got.RoomID != "r1" || got.Moves != 4 {
		t.Fatalf("unexpected game: %+v", got)
	}
	if len(got.Pieces) != len(want.Pieces) {
		t.Fatalf("pieces lost in round trip: %d vs %d", len(got.Pieces), len(want.Pieces))
	}

	missing, err := s.GetGame(ctx, "nope")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for unknown room, got %+v err=%v", missing, err)
	}
}

func TestRedisRecentGamesOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		g := sampleGame(fmt.Sprintf("r%d", i), base.Add(time.Duration(i)*time.Minute))
		if err := s.SaveGame(ctx, g); err != nil {
			t.Fatalf("SaveGame %d: %v", i, err)
		}
	}

	games, err := s.RecentGames(ctx, 2)
	if err != nil {
		t.Fatalf("RecentGames: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("expected 2 games, got %d", len(games))
	}
	// most recently saved first
	if games[0].RoomID != "r2" || games[1].RoomID != "r1" {
		t.Fatalf("unexpected order: %s, %s", games[0].RoomID, games[1].RoomID)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	closed := time.Now()
	if err := s.SaveGame(ctx, sampleGame("r1", closed)); err != nil {
		t.Fatalf("SaveGame: %v", err)
	}
	if err := s.SaveGame(ctx, sampleGame("r1", closed)); err != ErrDuplicateGame {
		t.Fatalf("expected ErrDuplicateGame, got %v", err)
	}

	g, err := s.GetGame(ctx, "r1")
	if err != nil || g == nil {
		t.Fatalf("GetGame: %+v err=%v", g, err)
	}
	// returned copy must not alias the stored record
	g.Moves = 99
	again, _ := s.GetGame(ctx, "r1")
	if again.Moves == 99 {
		t.Fatalf("stored record mutated through returned copy")
	}
}
