package hub

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"chatspot/internal/protocol"
)

// DefaultHistoryCap bounds per-room history unless configured otherwise.
const DefaultHistoryCap = 1000

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Development hub: any origin may connect, there is nothing to protect
	// server-side and clients bring their own encryption.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Hub relays envelopes between subscribers and keeps per-room history.
type Hub struct {
	log        zerolog.Logger
	historyCap int

	mu    sync.Mutex
	rooms map[string]*room
}

type room struct {
	history []protocol.Envelope
	subs    map[*client]struct{}
}

// New builds a hub. historyCap < 0 selects DefaultHistoryCap; 0 means
// unbounded history.
func New(log zerolog.Logger, historyCap int) *Hub {
	if historyCap < 0 {
		historyCap = DefaultHistoryCap
	}
	return &Hub{
		log:        log.With().Str("component", "hub").Logger(),
		historyCap: historyCap,
		rooms:      make(map[string]*room),
	}
}

// ServeHTTP upgrades the request and runs the connection's pumps.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("upgrade failed")
		return
	}
	c := newClient(h, ws, r.RemoteAddr)
	h.log.Info().Str("conn", c.id).Str("remote", r.RemoteAddr).Msg("client connected")
	go c.writePump()
	c.readPump()
}

// handleFrame dispatches one decoded frame from c.
func (h *Hub) handleFrame(c *client, f protocol.Frame) {
	switch f.Action {
	case protocol.ActionIdentify:
		c.userID = f.UserID
		c.enqueue(protocol.Identified(f.UserID))
		h.log.Debug().Str("conn", c.id).Str("user", f.UserID).Msg("identified")

	case protocol.ActionSubscribe:
		h.subscribe(c, f.ConversationID)

	case protocol.ActionMessage:
		h.broadcast(c, *f.Envelope)

	default:
		// identified/history are hub-to-client; a client sending them is
		// out of protocol and ignored.
		h.log.Debug().Str("conn", c.id).Str("action", f.Action).Msg("ignored action")
	}
}

func (h *Hub) subscribe(c *client, conversationID string) {
	h.mu.Lock()
	rm := h.rooms[conversationID]
	if rm == nil {
		rm = &room{subs: make(map[*client]struct{})}
		h.rooms[conversationID] = rm
	}
	rm.subs[c] = struct{}{}
	hist := append([]protocol.Envelope(nil), rm.history...)
	h.mu.Unlock()

	c.addRoom(conversationID)
	c.enqueue(protocol.History(conversationID, hist))
	h.log.Debug().Str("conn", c.id).Str("room", conversationID).Int("history", len(hist)).Msg("subscribed")
}

func (h *Hub) broadcast(from *client, env protocol.Envelope) {
	if env.Timestamp == 0 {
		env.Timestamp = protocol.Now()
	}

	h.mu.Lock()
	rm := h.rooms[env.ConversationID]
	if rm == nil {
		rm = &room{subs: make(map[*client]struct{})}
		h.rooms[env.ConversationID] = rm
	}
	rm.history = append(rm.history, env)
	if h.historyCap > 0 && len(rm.history) > h.historyCap {
		rm.history = rm.history[len(rm.history)-h.historyCap:]
	}
	subs := make([]*client, 0, len(rm.subs))
	for c := range rm.subs {
		subs = append(subs, c)
	}
	h.mu.Unlock()

	frame := protocol.Message(env)
	delivered := 0
	for _, c := range subs {
		if c.enqueue(frame) {
			delivered++
		}
	}
	h.log.Debug().
		Str("conn", from.id).
		Str("room", env.ConversationID).
		Str("id", env.ID).
		Int("delivered", delivered).
		Msg("fanned out")
}

// drop removes a dead client from every room it subscribed to.
func (h *Hub) drop(c *client) {
	h.mu.Lock()
	for _, name := range c.roomList() {
		if rm := h.rooms[name]; rm != nil {
			delete(rm.subs, c)
		}
	}
	h.mu.Unlock()
	h.log.Info().Str("conn", c.id).Str("user", c.userID).Msg("client disconnected")
}
