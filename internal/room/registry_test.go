package room

import "testing"

func TestFIFOSeatAssignment(t *testing.T) {
	r := NewRegistry()

	a, second := r.Join("a", "A")
	if a.Seat != SeatWhite || second {
		t.Fatalf("first joiner: %+v second=%v", a, second)
	}
	b, second := r.Join("b", "B")
	if b.Seat != SeatBlack || !second {
		t.Fatalf("second joiner: %+v second=%v", b, second)
	}
	c, second := r.Join("c", "C")
	if c.Seat != SeatSpectator || second {
		t.Fatalf("third joiner: %+v second=%v", c, second)
	}

	if r.Len() != 3 {
		t.Fatalf("expected 3 records, got %d", r.Len())
	}
	order := r.Players()
	if order[0].SessionID != "a" || order[1].SessionID != "b" || order[2].SessionID != "c" {
		t.Fatalf("join order not preserved: %+v", order)
	}
}

// A deleted seat is never reclaimed: later joiners still spectate.
func TestNoSeatReclaiming(t *testing.T) {
	r := NewRegistry()
	r.Join("a", "A")
	r.Join("b", "B")
	r.Remove("a")

	d, second := r.Join("d", "D")
	if d.Seat != SeatBlack && d.Seat != SeatSpectator {
		t.Fatalf("unexpected seat: %+v", d)
	}
	// count before insert was 1, so the policy hands out black again
	if d.Seat != SeatBlack || !second {
		t.Fatalf("FIFO count policy should assign by live record count: %+v second=%v", d, second)
	}
}

func TestRemoveUnknownIsNoop(t *testing.T) {
	r := NewRegistry()
	r.Join("a", "A")
	r.Remove("ghost")
	if r.Len() != 1 || r.Get("a") == nil {
		t.Fatalf("unexpected registry state after removing unknown id")
	}
}
