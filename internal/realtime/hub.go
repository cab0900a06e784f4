// Package realtime broadcasts board-scoped events to websocket subscribers.
//
// Each connection belongs to one authenticated user and may join any number
// of board channels; an event published for a board fans out to every
// connection currently joined to that board. Delivery is at-most-once and
// fire-and-forget: publishing never blocks, never retries, and never fails
// the mutation that produced the event. Clients that join late receive
// nothing retroactively; they re-fetch state on join.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/arefin/flowboard/internal/model"
)

// ErrClosed is returned by join once the hub has shut down.
var ErrClosed = errors.New("realtime: hub is closed")

// Event names on the wire.
const (
	EventTaskCreated   = "taskCreated"
	EventActivityAdded = "activityAdded"
)

// Event is the outbound frame sent to subscribers.
type Event struct {
	Event   string `json:"event"`
	BoardID string `json:"boardId"`
	Payload any    `json:"payload,omitempty"`
}

// JoinAuthorizer decides whether a user may subscribe to a board's channel.
// The board service provides it; the hub stays free of storage concerns.
type JoinAuthorizer interface {
	CanSubscribe(ctx context.Context, userID, boardID string) error
}

// Hub owns the per-board subscriber sets. It is created once at server
// wiring time and injected wherever events are published; there is no
// process-global registry.
type Hub struct {
	authorizer JoinAuthorizer
	logger     *slog.Logger

	mu     sync.RWMutex
	rooms  map[string]map[*Client]struct{}
	closed bool
}

// NewHub creates a Hub. The authorizer gates every join request.
func NewHub(authorizer JoinAuthorizer, logger *slog.Logger) *Hub {
	return &Hub{
		authorizer: authorizer,
		logger:     logger,
		rooms:      make(map[string]map[*Client]struct{}),
	}
}

// TaskCreated broadcasts a taskCreated event to the board's channel.
func (h *Hub) TaskCreated(boardID string, task *model.Task) {
	h.publish(Event{Event: EventTaskCreated, BoardID: boardID, Payload: task})
}

// ActivityAdded broadcasts an activityAdded event to the board's channel.
func (h *Hub) ActivityAdded(boardID string, entry *model.ActivityEntry) {
	h.publish(Event{Event: EventActivityAdded, BoardID: boardID, Payload: entry})
}

// publish fans the event out to every subscriber of its board. Slow clients
// whose send buffers are full miss the event rather than stall the
// publisher.
func (h *Hub) publish(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("realtime: encoding event", slog.String("event", ev.Event), slog.String("error", err.Error()))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[ev.BoardID] {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("realtime: dropping event for slow client",
				slog.String("event", ev.Event),
				slog.String("boardId", ev.BoardID),
				slog.String("userId", c.userID),
			)
		}
	}
}

// join subscribes the client to a board channel after the authorizer allows
// it.
func (h *Hub) join(ctx context.Context, c *Client, boardID string) error {
	if err := h.authorizer.CanSubscribe(ctx, c.userID, boardID); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	if h.rooms[boardID] == nil {
		h.rooms[boardID] = make(map[*Client]struct{})
	}
	h.rooms[boardID][c] = struct{}{}
	c.boards[boardID] = struct{}{}
	return nil
}

// leave unsubscribes the client from a board channel. Leaving a channel the
// client never joined is a no-op.
func (h *Hub) leave(c *Client, boardID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c, boardID)
}

// drop removes the client from every channel. Called on disconnect.
func (h *Hub) drop(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for boardID := range c.boards {
		h.removeLocked(c, boardID)
	}
}

func (h *Hub) removeLocked(c *Client, boardID string) {
	if subs, ok := h.rooms[boardID]; ok {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.rooms, boardID)
		}
	}
	delete(c.boards, boardID)
}

// subscriberCount reports how many clients are joined to a board.
// Used by tests.
func (h *Hub) subscriberCount(boardID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[boardID])
}

// Close disconnects every client and stops accepting joins.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	clients := make(map[*Client]struct{})
	for _, subs := range h.rooms {
		for c := range subs {
			clients[c] = struct{}{}
		}
	}
	h.rooms = make(map[string]map[*Client]struct{})
	h.mu.Unlock()

	for c := range clients {
		c.close()
	}
}
