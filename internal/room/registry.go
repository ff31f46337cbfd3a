package room

// Registry assigns seats and tracks connection state. Assignment is a
// strict FIFO policy over non-deleted records: first joiner gets white,
// second gets black, everyone after spectates. No re-balancing and no
// reclaiming of a deleted player's seat.
//
// Not safe for concurrent use; the room's command loop is the only
// caller.
type Registry struct {
	players map[string]*Player
	order   []string
}

func NewRegistry() *Registry {
	return &Registry{players: make(map[string]*Player)}
}

// Join inserts a record and assigns its seat from the count of records
// present before the insert. The second return reports whether this
// join filled the second voting seat, which is the game-start trigger.
func (r *Registry) Join(sessionID, name string) (*Player, bool) {
	seat := SeatSpectator
	secondSeat := false
	switch len(r.order) {
	case 0:
		seat = SeatWhite
	case 1:
		seat = SeatBlack
		secondSeat = true
	}
	p := &Player{SessionID: sessionID, Name: name, Seat: seat, Connected: true}
	r.players[sessionID] = p
	r.order = append(r.order, sessionID)
	return p, secondSeat
}

// Get returns the record for sessionID, or nil.
func (r *Registry) Get(sessionID string) *Player {
	return r.players[sessionID]
}

// Remove deletes the record for sessionID, if present.
func (r *Registry) Remove(sessionID string) {
	if _, ok := r.players[sessionID]; !ok {
		return
	}
	delete(r.players, sessionID)
	for i, id := range r.order {
		if id == sessionID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of non-deleted records.
func (r *Registry) Len() int { return len(r.order) }

// Players returns all records in join order.
func (r *Registry) Players() []*Player {
	out := make([]*Player, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.players[id])
	}
	return out
}
