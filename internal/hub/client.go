package hub

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"chatspot/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20
	sendBuffer     = 64
)

// client is one hub-side connection with its writer queue.
type client struct {
	id     string
	hub    *Hub
	ws     *websocket.Conn
	remote string
	userID string

	sendMu sync.Mutex
	send   chan protocol.Frame
	closed bool

	roomsMu sync.Mutex
	rooms   map[string]struct{}
}

func newClient(h *Hub, ws *websocket.Conn, remote string) *client {
	return &client{
		id:     uuid.New().String(),
		hub:    h,
		ws:     ws,
		remote: remote,
		send:   make(chan protocol.Frame, sendBuffer),
		rooms:  make(map[string]struct{}),
	}
}

func (c *client) addRoom(name string) {
	c.roomsMu.Lock()
	defer c.roomsMu.Unlock()
	c.rooms[name] = struct{}{}
}

func (c *client) roomList() []string {
	c.roomsMu.Lock()
	defer c.roomsMu.Unlock()
	out := make([]string, 0, len(c.rooms))
	for name := range c.rooms {
		out = append(out, name)
	}
	return out
}

// enqueue queues a frame for delivery, reporting success. A full queue means
// the client stopped draining; it is closed and pruned rather than allowed
// to stall the fan-out.
func (c *client) enqueue(f protocol.Frame) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- f:
		return true
	default:
		c.closed = true
		close(c.send)
		return false
	}
}

func (c *client) close() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// readPump reads frames until the connection dies, dispatching each decoded
// frame to the hub. Bad frames are dropped, never fatal.
func (c *client) readPump() {
	defer func() {
		c.hub.drop(c)
		c.close()
		c.ws.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.hub.log.Debug().Err(err).Str("conn", c.id).Msg("read error")
			}
			return
		}
		frame, err := protocol.Decode(raw)
		if err != nil {
			c.hub.log.Debug().Err(err).Str("conn", c.id).Msg("dropped frame")
			continue
		}
		c.hub.handleFrame(c, frame)
	}
}

// writePump drains the send queue onto the socket and keeps the connection
// alive with pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.ws.WriteJSON(frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
