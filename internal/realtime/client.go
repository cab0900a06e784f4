package realtime

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// sendBuffer is the per-client outbound queue. When it fills, further
	// events for this client are dropped until it drains.
	sendBuffer = 32

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 25 * time.Second

	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cookie auth means same-origin policy does the CSRF work for REST, but
	// websockets need an explicit origin check in production deployments;
	// same-host is the default here.
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || origin == "http://"+r.Host || origin == "https://"+r.Host
	},
}

// Client is one websocket connection owned by one authenticated user.
// A single writer goroutine drains the send channel, which preserves
// per-board event order for this connection.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string

	send   chan []byte
	boards map[string]struct{} // guarded by hub.mu

	closeOnce sync.Once
}

// inbound is the message clients send to manage subscriptions.
type inbound struct {
	Action  string `json:"action"` // "join" or "leave"
	BoardID string `json:"boardId"`
}

// errorFrame is sent back when a join is rejected.
type errorFrame struct {
	Event   string `json:"event"`
	BoardID string `json:"boardId,omitempty"`
	Message string `json:"message"`
}

// ServeWS upgrades the request to a websocket and runs the connection until
// it drops. The caller must have authenticated the request already: userID
// is trusted. Unauthenticated requests never reach this point.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("realtime: upgrade failed", slog.String("error", err.Error()))
		return
	}

	c := &Client{
		hub:    h,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendBuffer),
		boards: make(map[string]struct{}),
	}

	go c.writeLoop()
	c.readLoop(r)
}

// readLoop processes join/leave messages until the connection closes, then
// unsubscribes the client everywhere.
func (c *Client) readLoop(r *http.Request) {
	defer func() {
		c.hub.drop(c)
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil || msg.BoardID == "" {
			c.sendError("", "malformed message")
			continue
		}

		switch msg.Action {
		case "join":
			if err := c.hub.join(r.Context(), c, msg.BoardID); err != nil {
				c.hub.logger.Info("realtime: join rejected",
					slog.String("userId", c.userID),
					slog.String("boardId", msg.BoardID),
				)
				c.sendError(msg.BoardID, "cannot join this board")
			}
		case "leave":
			c.hub.leave(c, msg.BoardID)
		default:
			c.sendError(msg.BoardID, "unknown action")
		}
	}
}

// writeLoop is the connection's only writer. It drains the send channel and
// keeps the connection alive with pings.
func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) sendError(boardID, message string) {
	data, err := json.Marshal(errorFrame{Event: "error", BoardID: boardID, Message: message})
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}
