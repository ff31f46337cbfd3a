// Package notify posts room lifecycle events to an external monitoring
// endpoint. The room core calls it fire-and-forget; a nil client is a
// valid no-op.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

// Event kinds posted to the monitor.
const (
	KindRoomCreated  = "roomCreated"
	KindRoomDisposed = "roomDisposed"
	KindGameFinished = "gameFinished"
)

// Event is the JSON body of one POST.
type Event struct {
	Kind   string    `json:"kind"`
	Room   string    `json:"room"`
	Detail string    `json:"detail,omitempty"`
	Moves  int       `json:"moves,omitempty"`
	Winner string    `json:"winner,omitempty"`
	At     time.Time `json:"at"`
}

type Client struct {
	baseURL string
	http    *fasthttp.Client
	timeout time.Duration
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New returns a client posting to baseURL, or nil when baseURL is empty.
func New(baseURL string, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		return nil
	}
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 16},
		timeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) RoomCreated(ctx context.Context, room string) error {
	return c.post(ctx, Event{Kind: KindRoomCreated, Room: room, At: time.Now()})
}

func (c *Client) RoomDisposed(ctx context.Context, room, detail string) error {
	return c.post(ctx, Event{Kind: KindRoomDisposed, Room: room, Detail: detail, At: time.Now()})
}

func (c *Client) GameFinished(ctx context.Context, room, detail string, moves int, winner string) error {
	return c.post(ctx, Event{Kind: KindGameFinished, Room: room, Detail: detail, Moves: moves, Winner: winner, At: time.Now()})
}

func (c *Client) post(ctx context.Context, ev Event) error {
	if c == nil {
		return nil
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(fasthttp.MethodPost)
	req.SetRequestURI(c.baseURL + "/events")
	req.Header.SetContentType("application/json")
	req.SetBody(payload)

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("post event: %w", err)
	}
	if code := resp.StatusCode(); code < 200 || code > 299 {
		return fmt.Errorf("monitor returned status %d", code)
	}
	return nil
}
