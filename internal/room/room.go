// Package room implements the authoritative session controller for one
// two-seat board game: seat assignment, the phase state machine, the
// move/selection protocol, and replication of every accepted mutation.
//
// All inbound traffic for a room funnels through a single command loop,
// so handlers never overlap and every one runs to completion before the
// next is accepted. The only deferred work is the disconnect grace
// timer, and even its expiry is re-enqueued as an ordinary command.
package room

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/varkas/mannchess-server/internal/archive"
	"github.com/varkas/mannchess-server/internal/msgcat"
	"github.com/varkas/mannchess-server/internal/notify"
	"github.com/varkas/mannchess-server/internal/obslog"
	"github.com/varkas/mannchess-server/internal/rules"
	"github.com/varkas/mannchess-server/internal/wire"
)

// DefaultGraceWindow is how long a disconnected player's record is held
// before eviction.
const DefaultGraceWindow = 30 * time.Second

// Broadcaster is the replication channel. The room only ever calls it;
// transport lives elsewhere.
type Broadcaster interface {
	// Send delivers an event to one connection.
	Send(sessionID string, ev wire.Event)
	// Broadcast delivers an event to every connection in the room.
	Broadcast(ev wire.Event)
}

// Options configures a room. Zero values select the null-move oracle,
// the embedded message catalog, the default grace window, and no
// archive or monitor.
type Options struct {
	Oracle      rules.Oracle
	Catalog     *msgcat.Catalog
	GraceWindow time.Duration
	Archive     archive.Store
	Notifier    *notify.Client
	Clock       func() time.Time
}

// Room wires inbound messages to the session state machine and drives
// replication after each accepted operation. It owns no invariants
// itself; those belong to the registry and the session.
type Room struct {
	id    string
	reg   *Registry
	sess  *Session
	bcast Broadcaster
	cat   *msgcat.Catalog
	grace time.Duration
	arch  archive.Store
	mon   *notify.Client
	clock func() time.Time

	evictions map[string]*time.Timer

	inbox       chan func()
	done        chan struct{}
	disposeOnce sync.Once

	createdAt time.Time
}

// New creates a room and starts its command loop.
func New(id string, b Broadcaster, opts Options) *Room {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.GraceWindow <= 0 {
		opts.GraceWindow = DefaultGraceWindow
	}
	if opts.Catalog == nil {
		opts.Catalog, _ = msgcat.New("")
	}
	r := &Room{
		id:        id,
		reg:       NewRegistry(),
		sess:      NewSession(opts.Oracle, opts.Clock),
		bcast:     b,
		cat:       opts.Catalog,
		grace:     opts.GraceWindow,
		arch:      opts.Archive,
		mon:       opts.Notifier,
		clock:     opts.Clock,
		evictions: make(map[string]*time.Timer),
		inbox:     make(chan func(), 256),
		done:      make(chan struct{}),
		createdAt: opts.Clock(),
	}
	go r.run()
	if r.mon != nil {
		go func() { _ = r.mon.RoomCreated(context.Background(), id) }()
	}
	obslog.L().Info("room_create", zap.String("room", id))
	return r
}

// ID returns the room identifier.
func (r *Room) ID() string { return r.id }

// Join admits a connection. Reconnection under a known session id
// cancels its pending eviction instead of taking a new seat.
func (r *Room) Join(sessionID, name string) {
	r.post(func() { r.handleJoin(sessionID, name) })
}

// Leave marks a connection gone and schedules the grace-window eviction.
func (r *Room) Leave(sessionID string) {
	r.post(func() { r.handleLeave(sessionID) })
}

// HandleMessage dispatches one inbound frame. Unknown kinds are ignored.
func (r *Room) HandleMessage(sessionID string, env wire.Envelope) {
	r.post(func() { r.handleMessage(sessionID, env) })
}

// Dispose archives the room if play happened, stops all timers, and
// shuts the command loop down. No message is processed afterward.
func (r *Room) Dispose() {
	r.disposeOnce.Do(func() {
		r.post(func() {
			for id, t := range r.evictions {
				t.Stop()
				delete(r.evictions, id)
			}
			r.closeOut()
			close(r.done)
		})
	})
}

func (r *Room) run() {
	for {
		select {
		case <-r.done:
			return
		case f := <-r.inbox:
			f()
		}
	}
}

// post enqueues a command unless the room is disposed.
func (r *Room) post(f func()) {
	select {
	case <-r.done:
		return
	default:
	}
	select {
	case r.inbox <- f:
	case <-r.done:
	}
}

func (r *Room) handleJoin(sessionID, name string) {
	if p := r.reg.Get(sessionID); p != nil {
		r.cancelEviction(sessionID)
		p.Connected = true
		r.bcast.Send(sessionID, r.snapshot(p))
		obslog.L().Info("room_rejoin", zap.String("room", r.id), zap.String("session", sessionID))
		return
	}

	if strings.TrimSpace(name) == "" {
		name = "Player " + shortID(sessionID)
	}
	p, secondSeat := r.reg.Join(sessionID, name)
	if secondSeat {
		r.sess.Start()
	}

	r.bcast.Send(sessionID, r.snapshot(p))
	r.bcast.Broadcast(wire.PlayerJoined(sessionID, p.Name, string(p.Seat), r.reg.Len()))
	obslog.L().Info("room_join",
		zap.String("room", r.id),
		zap.String("session", sessionID),
		zap.String("seat", string(p.Seat)),
		zap.Int("players", r.reg.Len()),
	)
}

func (r *Room) handleLeave(sessionID string) {
	p := r.reg.Get(sessionID)
	if p == nil {
		return
	}
	p.Connected = false

	if _, seated := p.Seat.Side(); seated && r.sess.Phase() == PhasePlaying {
		r.sess.Pause()
		r.bcast.Broadcast(wire.PlayerDisconnected(string(p.Seat)))
	}

	r.scheduleEviction(sessionID)
	obslog.L().Info("room_leave",
		zap.String("room", r.id),
		zap.String("session", sessionID),
		zap.String("seat", string(p.Seat)),
	)
}

func (r *Room) handleMessage(sessionID string, env wire.Envelope) {
	switch env.Kind {
	case wire.KindMove:
		pl, err := wire.DecodeMove(env.Payload)
		if err != nil {
			obslog.L().Warn("room_bad_payload", zap.String("room", r.id), zap.String("kind", env.Kind), zap.Error(err))
			return
		}
		r.handleMove(sessionID, pl)
	case wire.KindSelect:
		pl, err := wire.DecodeSelect(env.Payload)
		if err != nil {
			obslog.L().Warn("room_bad_payload", zap.String("room", r.id), zap.String("kind", env.Kind), zap.Error(err))
			return
		}
		r.handleSelect(sessionID, pl)
	case wire.KindDeselect:
		r.handleDeselect(sessionID)
	case wire.KindRestart:
		r.handleRestart(sessionID)
	case wire.KindReady:
		r.handleReady(sessionID)
	}
}

func (r *Room) handleMove(sessionID string, pl wire.MovePayload) {
	p := r.reg.Get(sessionID)
	mv := rules.Move{FromRow: pl.FromRow, FromCol: pl.FromCol, ToRow: pl.ToRow, ToCol: pl.ToCol}
	res, err := r.sess.ApplyMove(p, mv)
	if err != nil {
		r.bcast.Send(sessionID, wire.Error(r.rejectReason(err)))
		obslog.L().Debug("room_move_rejected",
			zap.String("room", r.id),
			zap.String("session", sessionID),
			zap.Error(err),
		)
		return
	}

	r.bcast.Broadcast(wire.MoveExecuted(
		wire.Square{Row: mv.FromRow, Col: mv.FromCol},
		wire.Square{Row: mv.ToRow, Col: mv.ToCol},
		string(res.Player),
		string(res.NextTurn),
	))
	obslog.L().Info("room_move",
		zap.String("room", r.id),
		zap.String("player", string(res.Player)),
		zap.Bool("captured", res.Captured),
		zap.String("next_turn", string(res.NextTurn)),
	)
}

func (r *Room) handleSelect(sessionID string, pl wire.SelectPayload) {
	p := r.reg.Get(sessionID)
	if p == nil {
		return
	}
	if !r.sess.Select(p, pl.Row, pl.Col) {
		return
	}
	side, _ := p.Seat.Side()
	r.bcast.Broadcast(wire.PieceSelected(pl.Row, pl.Col, string(side)))
}

func (r *Room) handleDeselect(sessionID string) {
	p := r.reg.Get(sessionID)
	if p == nil {
		return
	}
	if !r.sess.Deselect(sessionID) {
		return
	}
	side, _ := p.Seat.Side()
	r.bcast.Broadcast(wire.PieceDeselected(string(side)))
}

func (r *Room) handleRestart(sessionID string) {
	p := r.reg.Get(sessionID)
	if p == nil {
		return
	}
	if _, seated := p.Seat.Side(); !seated {
		return
	}
	r.sess.Restart()
	r.bcast.Broadcast(wire.GameRestarted())
	obslog.L().Info("room_restart", zap.String("room", r.id), zap.String("session", sessionID))
}

func (r *Room) handleReady(sessionID string) {
	p := r.reg.Get(sessionID)
	if p == nil || r.sess.Phase() != PhaseWaiting {
		return
	}
	r.bcast.Send(sessionID, wire.GameReady())
}

func (r *Room) scheduleEviction(sessionID string) {
	if t, ok := r.evictions[sessionID]; ok {
		t.Stop()
	}
	r.evictions[sessionID] = time.AfterFunc(r.grace, func() {
		r.post(func() { r.evict(sessionID) })
	})
}

func (r *Room) cancelEviction(sessionID string) {
	if t, ok := r.evictions[sessionID]; ok {
		t.Stop()
		delete(r.evictions, sessionID)
	}
}

func (r *Room) evict(sessionID string) {
	delete(r.evictions, sessionID)
	p := r.reg.Get(sessionID)
	if p == nil || p.Connected {
		// a reconnect raced the timer
		return
	}
	r.reg.Remove(sessionID)
	obslog.L().Info("room_evict", zap.String("room", r.id), zap.String("session", sessionID))
}

// closeOut archives the final state when any move was played and tells
// the monitor the room is gone.
func (r *Room) closeOut() {
	if r.sess.MoveCount() > 0 {
		g := &archive.Game{
			RoomID:    r.id,
			Phase:     string(r.sess.Phase()),
			Winner:    r.sess.Winner(),
			Moves:     r.sess.MoveCount(),
			Pieces:    r.sess.Board().Snapshot(),
			StartedAt: r.createdAt,
			ClosedAt:  r.clock(),
		}
		if r.arch != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := r.arch.SaveGame(ctx, g); err != nil && !errors.Is(err, archive.ErrDuplicateGame) {
				obslog.L().Error("room_archive_error", zap.String("room", r.id), zap.Error(err))
			}
			cancel()
		}
		if r.mon != nil {
			detail, _ := r.cat.Render("notify.game_finished", map[string]any{"Room": r.id, "Moves": g.Moves})
			mon, id, moves, winner := r.mon, r.id, g.Moves, g.Winner
			go func() { _ = mon.GameFinished(context.Background(), id, detail, moves, winner) }()
		}
	}
	if r.mon != nil {
		detail, _ := r.cat.Render("notify.room_disposed", map[string]any{"Room": r.id})
		mon, id := r.mon, r.id
		go func() { _ = mon.RoomDisposed(context.Background(), id, detail) }()
	}
	obslog.L().Info("room_dispose", zap.String("room", r.id), zap.Int("moves", r.sess.MoveCount()))
}

func (r *Room) rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrNoPieceAtSource):
		return r.cat.Text("error.no_piece_at_source")
	case errors.Is(err, ErrInvalidAttempt):
		return r.cat.Text("error.invalid_move_attempt")
	default:
		// anything the oracle refused
		return r.cat.Text("error.illegal_move")
	}
}

func (r *Room) snapshot(p *Player) wire.Event {
	return wire.GameState(
		string(p.Seat),
		string(r.sess.Phase()),
		string(r.sess.Turn()),
		r.sess.Board().Snapshot(),
	)
}

func shortID(id string) string {
	if len(id) > 6 {
		return id[:6]
	}
	return id
}
