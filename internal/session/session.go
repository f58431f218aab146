package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"chatspot/internal/crypto"
	"chatspot/internal/domain"
	"chatspot/internal/protocol"
	"chatspot/internal/services/codec"
)

// State is the session's position in its lifecycle.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	Joined
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Joined:
		return "joined"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	// ErrNotConnected is returned when an operation needs an open connection.
	ErrNotConnected = errors.New("session: not connected")

	// ErrNotJoined is returned when Send is called before Join. A caller
	// precondition, surfaced to the user, never a crash.
	ErrNotJoined = errors.New("session: no room joined")

	// ErrAlreadyConnected is returned by Connect on a live session.
	ErrAlreadyConnected = errors.New("session: already connected")
)

// seenCapacity bounds the duplicate-suppression window.
const seenCapacity = 512

// eventBuffer absorbs bursts (history replay) without stalling the reader.
const eventBuffer = 64

// Session is one client's connection to a hub: user identity, active room
// and key, the frame connection, and the event stream for the renderer.
type Session struct {
	dial   domain.Dialer
	codec  *codec.Service
	user   domain.UserID
	hubURL string
	log    zerolog.Logger

	mu      sync.Mutex
	state   State
	conn    domain.FrameConn
	room    domain.RoomID
	key     *crypto.RoomKey
	seen    *seenSet
	dropped int

	// evMu serializes sends on events against its close, so a Send racing
	// a disconnect drops its local echo instead of panicking.
	evMu     sync.Mutex
	evClosed bool
	events   chan Event
}

// New builds a disconnected session. Events is usable immediately; it closes
// when the connection ends.
func New(dial domain.Dialer, c *codec.Service, user domain.UserID, hubURL string, log zerolog.Logger) *Session {
	return &Session{
		dial:   dial,
		codec:  c,
		user:   user,
		hubURL: hubURL,
		log:    log.With().Str("component", "session").Str("user", string(user)).Logger(),
		seen:   newSeenSet(seenCapacity),
		events: make(chan Event, eventBuffer),
	}
}

// Events returns the typed event stream. Closed after DisconnectedEvent.
func (s *Session) Events() <-chan Event { return s.events }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Room returns the active room, or "" before Join.
func (s *Session) Room() domain.RoomID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room
}

// Connect dials the hub, announces the user id and starts the reader.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.state != Disconnected {
		s.mu.Unlock()
		return ErrAlreadyConnected
	}
	s.state = Connecting
	s.mu.Unlock()

	conn, err := s.dial(ctx, s.hubURL)
	if err != nil {
		s.mu.Lock()
		s.state = Disconnected
		s.mu.Unlock()
		return fmt.Errorf("connect: %w", err)
	}
	if err := conn.WriteFrame(protocol.Identify(string(s.user))); err != nil {
		conn.Close()
		s.mu.Lock()
		s.state = Disconnected
		s.mu.Unlock()
		return fmt.Errorf("identify: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.state = Connected
	s.mu.Unlock()

	s.log.Debug().Str("hub", s.hubURL).Msg("connected")
	go s.readLoop(conn)
	return nil
}

// Join loads or creates the room key, then subscribes. Valid from Connected
// or Joined; rejoining replaces the active room and key in place. A key
// error leaves the state unchanged: no key, no join, no unencrypted mode.
func (s *Session) Join(room domain.RoomID) error {
	s.mu.Lock()
	if s.state != Connected && s.state != Joined {
		s.mu.Unlock()
		return ErrNotConnected
	}
	conn := s.conn
	s.mu.Unlock()

	key, created, err := s.codec.LoadOrCreateKey(room)
	if err != nil {
		return fmt.Errorf("join %q: %w", room, err)
	}
	if err := conn.WriteFrame(protocol.Subscribe(string(room))); err != nil {
		return fmt.Errorf("subscribe %q: %w", room, err)
	}

	s.mu.Lock()
	s.room = room
	s.key = key
	s.state = Joined
	s.mu.Unlock()

	s.log.Info().Str("room", string(room)).Bool("key_created", created).Msg("joined room")
	return nil
}

// Send seals text and writes one message frame. The message is emitted
// locally as a MessageEvent and its id marked seen, so the hub's echo is
// suppressed and exactly one copy renders.
func (s *Session) Send(text string) (protocol.Envelope, error) {
	s.mu.Lock()
	if s.state != Joined {
		s.mu.Unlock()
		return protocol.Envelope{}, ErrNotJoined
	}
	conn, key, room := s.conn, s.key, s.room
	s.mu.Unlock()

	env, err := s.codec.EncryptText(key, room, s.user, text)
	if err != nil {
		return protocol.Envelope{}, err
	}
	if err := conn.WriteFrame(protocol.Message(env)); err != nil {
		return protocol.Envelope{}, fmt.Errorf("send: %w", err)
	}

	s.mu.Lock()
	s.seen.Observe(env.ID)
	s.mu.Unlock()

	s.emit(MessageEvent{Message: domain.Message{
		ID:     env.ID,
		Room:   room,
		Sender: s.user,
		Text:   text,
		SentAt: env.SentAt(),
	}})
	return env, nil
}

// Close tears the connection down. The reader emits DisconnectedEvent and
// closes Events.
func (s *Session) Close() error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

// DroppedFrames reports how many malformed or unknown frames were ignored.
func (s *Session) DroppedFrames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

func (s *Session) readLoop(conn domain.FrameConn) {
	for {
		raw, err := conn.ReadFrame()
		if err != nil {
			s.mu.Lock()
			s.state = Disconnected
			s.conn = nil
			s.mu.Unlock()
			s.log.Debug().Err(err).Msg("read loop ended")
			s.emit(DisconnectedEvent{Err: err})
			s.closeEvents()
			return
		}

		frame, err := protocol.Decode(raw)
		if err != nil {
			// Explicit ignore policy: count, log, drop. One bad frame never
			// tears down the connection.
			s.mu.Lock()
			s.dropped++
			s.mu.Unlock()
			s.log.Debug().Err(err).Msg("dropped frame")
			continue
		}

		switch frame.Action {
		case protocol.ActionIdentified:
			s.emit(IdentifiedEvent{UserID: domain.UserID(frame.UserID)})
		case protocol.ActionMessage:
			s.handleEnvelope(*frame.Envelope, false)
		case protocol.ActionHistory:
			for _, env := range frame.History {
				s.handleEnvelope(env, true)
			}
		default:
			// Client-bound connection; identify/subscribe never arrive here.
			s.mu.Lock()
			s.dropped++
			s.mu.Unlock()
			s.log.Debug().Str("action", frame.Action).Msg("dropped unexpected action")
		}
	}
}

func (s *Session) handleEnvelope(env protocol.Envelope, replayed bool) {
	s.mu.Lock()
	room, key := s.room, s.key
	if key == nil || string(room) != env.ConversationID {
		s.mu.Unlock()
		s.log.Debug().Str("conversation", env.ConversationID).Msg("dropped envelope for inactive room")
		return
	}
	if s.seen.Observe(env.ID) {
		s.mu.Unlock()
		s.log.Debug().Str("id", env.ID).Msg("suppressed duplicate envelope")
		return
	}
	s.mu.Unlock()

	msg := s.codec.DecryptEnvelope(key, env)
	msg.Replayed = replayed
	if msg.Undecryptable {
		s.log.Debug().Str("id", env.ID).Str("sender", env.SenderID).Msg("undecryptable envelope")
	}
	s.emit(MessageEvent{Message: msg})
}

func (s *Session) emit(ev Event) {
	s.evMu.Lock()
	defer s.evMu.Unlock()
	if s.evClosed {
		return
	}
	s.events <- ev
}

func (s *Session) closeEvents() {
	s.evMu.Lock()
	defer s.evMu.Unlock()
	if s.evClosed {
		return
	}
	s.evClosed = true
	close(s.events)
}
