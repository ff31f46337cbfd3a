// Package rules is the legality boundary consulted once per move. A
// production deployment plugs a full rule engine in behind Oracle;
// the shipped implementation knows nothing about piece movement.
package rules

import (
	"errors"

	"github.com/varkas/mannchess-server/internal/board"
)

// ErrIllegalMove is returned for any move the oracle refuses.
var ErrIllegalMove = errors.New("illegal move")

// Move is a proposed relocation in board coordinates.
type Move struct {
	FromRow int
	FromCol int
	ToRow   int
	ToCol   int
}

// Oracle validates a proposed move against the current board. A nil
// error accepts the move; turn order and piece ownership are checked
// by the session before the oracle is consulted.
type Oracle interface {
	Validate(b *board.Board, mover board.Color, mv Move) error
}

// NullMoveOracle rejects only the degenerate move whose destination
// equals its source. Everything else is accepted.
type NullMoveOracle struct{}

func (NullMoveOracle) Validate(_ *board.Board, _ board.Color, mv Move) error {
	if mv.FromRow == mv.ToRow && mv.FromCol == mv.ToCol {
		return ErrIllegalMove
	}
	return nil
}
