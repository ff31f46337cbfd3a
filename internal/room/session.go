package room

import (
	"errors"
	"time"

	"github.com/varkas/mannchess-server/internal/board"
	"github.com/varkas/mannchess-server/internal/rules"
)

// Move rejection reasons. They never reach the transport as Go errors;
// the controller translates them into private error events.
var (
	ErrInvalidAttempt  = errors.New("invalid move attempt")
	ErrNoPieceAtSource = errors.New("no piece at source")
)

// Selection is the session-wide cursor over a tentatively chosen square.
type Selection struct {
	SessionID string
	Row       int
	Col       int
}

// MoveResult describes an accepted move for replication.
type MoveResult struct {
	Move     rules.Move
	Player   board.Color
	Captured bool
	NextTurn board.Color
}

// Session is the authoritative aggregate for one room: phase, turn,
// winner, selection cursor and the board. It is the only writer of that
// state; the controller serializes access.
type Session struct {
	phase     Phase
	turn      board.Color
	winner    string
	selection *Selection
	lastMove  time.Time
	moves     int

	board  *board.Board
	oracle rules.Oracle
	now    func() time.Time
}

func NewSession(oracle rules.Oracle, now func() time.Time) *Session {
	if oracle == nil {
		oracle = rules.NullMoveOracle{}
	}
	if now == nil {
		now = time.Now
	}
	return &Session{
		phase:  PhaseWaiting,
		turn:   board.White,
		board:  board.New(),
		oracle: oracle,
		now:    now,
	}
}

func (s *Session) Phase() Phase          { return s.phase }
func (s *Session) Turn() board.Color     { return s.turn }
func (s *Session) Winner() string        { return s.winner }
func (s *Session) Board() *board.Board   { return s.board }
func (s *Session) MoveCount() int        { return s.moves }
func (s *Session) LastMoveAt() time.Time { return s.lastMove }

// CurrentSelection returns the cursor and whether one is set.
func (s *Session) CurrentSelection() (Selection, bool) {
	if s.selection == nil {
		return Selection{}, false
	}
	return *s.selection, true
}

// Start enters playing from waiting. Called only when the second seat
// fills; any other phase is left alone.
func (s *Session) Start() {
	if s.phase == PhaseWaiting {
		s.phase = PhasePlaying
	}
}

// Pause returns to waiting when a seated player disconnects mid-game.
func (s *Session) Pause() {
	if s.phase == PhasePlaying {
		s.phase = PhaseWaiting
	}
}

// Restart reseeds the board and resets every piece of session state.
// Valid from any phase.
func (s *Session) Restart() {
	s.board.Reset()
	s.turn = board.White
	s.phase = PhasePlaying
	s.winner = ""
	s.selection = nil
	s.moves = 0
}

// Select sets the cursor to (row, col) when the caller is seated, it is
// their turn, and one of their own pieces occupies the square. Returns
// whether the cursor was set. Phase is deliberately not checked.
func (s *Session) Select(p *Player, row, col int) bool {
	if p == nil {
		return false
	}
	side, seated := p.Seat.Side()
	if !seated || side != s.turn {
		return false
	}
	if s.board.Owned(row, col, side) == nil {
		return false
	}
	s.selection = &Selection{SessionID: p.SessionID, Row: row, Col: col}
	return true
}

// Deselect clears the cursor when it belongs to sessionID. Returns
// whether anything was cleared.
func (s *Session) Deselect(sessionID string) bool {
	if s.selection == nil || s.selection.SessionID != sessionID {
		return false
	}
	s.selection = nil
	return true
}

// ApplyMove validates and applies a move. On acceptance the capture is
// removed strictly before the mover relocates, the turn flips, and the
// selection cursor is cleared no matter who held it. On rejection
// nothing mutates.
func (s *Session) ApplyMove(p *Player, mv rules.Move) (MoveResult, error) {
	if p == nil {
		return MoveResult{}, ErrInvalidAttempt
	}
	side, seated := p.Seat.Side()
	if !seated || s.phase != PhasePlaying || side != s.turn {
		return MoveResult{}, ErrInvalidAttempt
	}

	piece := s.board.Owned(mv.FromRow, mv.FromCol, side)
	if piece == nil {
		return MoveResult{}, ErrNoPieceAtSource
	}
	if err := s.oracle.Validate(s.board, side, mv); err != nil {
		return MoveResult{}, err
	}

	captured := s.board.Remove(mv.ToRow, mv.ToCol)
	piece.Row = mv.ToRow
	piece.Col = mv.ToCol
	piece.HasMoved = true

	s.turn = side.Opponent()
	s.lastMove = s.now()
	s.selection = nil
	s.moves++

	return MoveResult{Move: mv, Player: side, Captured: captured, NextTurn: s.turn}, nil
}
