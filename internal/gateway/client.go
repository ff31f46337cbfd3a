package gateway

import (
	"context"
	"sync"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/varkas/mannchess-server/internal/wire"
)

const sendQueueSize = 64

// client is one websocket connection. Outbound events go through a
// buffered queue drained by writePump so the room loop never blocks on
// a slow socket.
type client struct {
	sessionID string
	conn      *websocket.Conn
	send      chan wire.Event
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(sessionID string, conn *websocket.Conn) *client {
	return &client{
		sessionID: sessionID,
		conn:      conn,
		send:      make(chan wire.Event, sendQueueSize),
		done:      make(chan struct{}),
	}
}

// enqueue queues an event for delivery. A consumer that cannot keep up
// loses its connection instead of stalling the room.
func (c *client) enqueue(ev wire.Event) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- ev:
	default:
		c.close(websocket.StatusPolicyViolation, "send queue overflow")
	}
}

func (c *client) close(code websocket.StatusCode, reason string) {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close(code, reason)
		}
	})
}

func (c *client) writePump() {
	for {
		select {
		case <-c.done:
			return
		case ev := <-c.send:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err := wsjson.Write(ctx, c.conn, ev)
			cancel()
			if err != nil {
				c.close(websocket.StatusGoingAway, "write failed")
				return
			}
		}
	}
}
