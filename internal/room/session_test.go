package room

import (
	"errors"
	"testing"
	"time"

	"github.com/varkas/mannchess-server/internal/board"
	"github.com/varkas/mannchess-server/internal/rules"
)

func seatedPlayers() (*Player, *Player) {
	return &Player{SessionID: "w", Seat: SeatWhite, Connected: true},
		&Player{SessionID: "b", Seat: SeatBlack, Connected: true}
}

func TestPhaseTransitions(t *testing.T) {
	s := NewSession(nil, nil)
	if s.Phase() != PhaseWaiting {
		t.Fatalf("initial phase should be waiting, got %s", s.Phase())
	}

	s.Start()
	if s.Phase() != PhasePlaying {
		t.Fatalf("Start should enter playing, got %s", s.Phase())
	}
	// Start is waiting→playing only
	s.Pause()
	s.Start()
	if s.Phase() != PhasePlaying {
		t.Fatalf("second Start from waiting should work, got %s", s.Phase())
	}

	s.Pause()
	if s.Phase() != PhaseWaiting {
		t.Fatalf("Pause should return to waiting, got %s", s.Phase())
	}
	// Pause only applies while playing
	s.Pause()
	if s.Phase() != PhaseWaiting {
		t.Fatalf("redundant Pause changed phase: %s", s.Phase())
	}
}

func TestApplyMoveStampsTime(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewSession(nil, func() time.Time { return now })
	w, _ := seatedPlayers()
	s.Start()

	if _, err := s.ApplyMove(w, rules.Move{FromRow: 6, FromCol: 1, ToRow: 4, ToCol: 1}); err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}
	if !s.LastMoveAt().Equal(now) {
		t.Fatalf("last-move timestamp not stamped: %v", s.LastMoveAt())
	}
	if s.MoveCount() != 1 {
		t.Fatalf("move count: %d", s.MoveCount())
	}
}

func TestApplyMoveRejections(t *testing.T) {
	w, b := seatedPlayers()
	spectator := &Player{SessionID: "s", Seat: SeatSpectator}
	forward := rules.Move{FromRow: 6, FromCol: 1, ToRow: 4, ToCol: 1}

	cases := []struct {
		name    string
		prepare func(*Session)
		player  *Player
		mv      rules.Move
		want    error
	}{
		{"nil player", func(s *Session) { s.Start() }, nil, forward, ErrInvalidAttempt},
		{"spectator", func(s *Session) { s.Start() }, spectator, forward, ErrInvalidAttempt},
		{"not playing", func(s *Session) {}, w, forward, ErrInvalidAttempt},
		{"wrong turn", func(s *Session) { s.Start() }, b, rules.Move{FromRow: 1, FromCol: 1, ToRow: 3, ToCol: 1}, ErrInvalidAttempt},
		{"empty source", func(s *Session) { s.Start() }, w, rules.Move{FromRow: 4, FromCol: 4, ToRow: 3, ToCol: 4}, ErrNoPieceAtSource},
		{"opponent source", func(s *Session) { s.Start() }, w, rules.Move{FromRow: 1, FromCol: 1, ToRow: 3, ToCol: 1}, ErrNoPieceAtSource},
		{"null move", func(s *Session) { s.Start() }, w, rules.Move{FromRow: 6, FromCol: 1, ToRow: 6, ToCol: 1}, rules.ErrIllegalMove},
	}
	for _, tc := range cases {
		s := NewSession(nil, nil)
		tc.prepare(s)
		_, err := s.ApplyMove(tc.player, tc.mv)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, err, tc.want)
		}
		if s.Turn() != board.White {
			t.Fatalf("%s: rejected move flipped the turn", tc.name)
		}
		if s.Board().Len() != 36 {
			t.Fatalf("%s: rejected move mutated the board", tc.name)
		}
	}
}

func TestSelectionRules(t *testing.T) {
	s := NewSession(nil, nil)
	w, b := seatedPlayers()

	// selection works while waiting; phase is not part of the gate
	if !s.Select(w, 6, 1) {
		t.Fatalf("white should select own pawn on own turn")
	}
	if sel, ok := s.CurrentSelection(); !ok || sel.SessionID != "w" || sel.Row != 6 || sel.Col != 1 {
		t.Fatalf("unexpected cursor: %+v ok=%v", sel, ok)
	}

	// empty square and opposing piece are silent no-ops that keep the cursor
	if s.Select(w, 4, 4) || s.Select(w, 1, 1) {
		t.Fatalf("invalid selections should report false")
	}
	if _, ok := s.CurrentSelection(); !ok {
		t.Fatalf("failed selection must not clear an existing cursor")
	}

	// out of turn
	if s.Select(b, 1, 1) {
		t.Fatalf("black cannot select on white's turn")
	}

	// only the owner may deselect
	if s.Deselect("b") {
		t.Fatalf("non-owner deselect should fail")
	}
	if !s.Deselect("w") {
		t.Fatalf("owner deselect should succeed")
	}
	if s.Deselect("w") {
		t.Fatalf("deselect with no cursor should fail")
	}
}

func TestMoveClearsAnySelection(t *testing.T) {
	s := NewSession(nil, nil)
	w, b := seatedPlayers()
	s.Start()

	if !s.Select(w, 6, 1) {
		t.Fatalf("setup selection failed")
	}
	// white moves a different piece than the selected one
	if _, err := s.ApplyMove(w, rules.Move{FromRow: 6, FromCol: 2, ToRow: 4, ToCol: 2}); err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}
	if _, ok := s.CurrentSelection(); ok {
		t.Fatalf("accepted move must clear the cursor")
	}

	// black's selection is cleared by black's own later move too
	if !s.Select(b, 1, 1) {
		t.Fatalf("black selection failed")
	}
	if _, err := s.ApplyMove(b, rules.Move{FromRow: 1, FromCol: 2, ToRow: 3, ToCol: 2}); err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}
	if _, ok := s.CurrentSelection(); ok {
		t.Fatalf("cursor survived an accepted move")
	}
}

func TestRestartResetsEverything(t *testing.T) {
	s := NewSession(nil, nil)
	w, _ := seatedPlayers()
	s.Start()
	if _, err := s.ApplyMove(w, rules.Move{FromRow: 6, FromCol: 1, ToRow: 1, ToCol: 1}); err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}
	s.Pause()

	s.Restart()

	if s.Phase() != PhasePlaying || s.Turn() != board.White || s.Winner() != "" || s.MoveCount() != 0 {
		t.Fatalf("restart state: phase=%s turn=%s winner=%q moves=%d", s.Phase(), s.Turn(), s.Winner(), s.MoveCount())
	}
	if s.Board().Len() != 36 {
		t.Fatalf("board not reseeded: %d", s.Board().Len())
	}
}
