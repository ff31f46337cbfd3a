// Package archive persists finished games. The room core calls into it
// through Store and works fine with a nil store; which backend runs is
// a deployment choice.
package archive

import (
	"context"
	"errors"
	"time"

	"github.com/varkas/mannchess-server/internal/board"
)

// ErrDuplicateGame reports an archive entry that already exists.
var ErrDuplicateGame = errors.New("game already archived")

// Game is the final snapshot of one room's play.
type Game struct {
	RoomID    string        `json:"room_id"`
	Phase     string        `json:"phase"`
	Winner    string        `json:"winner,omitempty"`
	Moves     int           `json:"moves"`
	Pieces    []board.Piece `json:"pieces"`
	StartedAt time.Time     `json:"started_at"`
	ClosedAt  time.Time     `json:"closed_at"`
}

// Store archives games and serves them back for inspection.
type Store interface {
	SaveGame(ctx context.Context, g *Game) error
	GetGame(ctx context.Context, roomID string) (*Game, error)
	RecentGames(ctx context.Context, limit int) ([]*Game, error)
}
