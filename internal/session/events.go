package session

import "chatspot/internal/domain"

// Event is one item on the session's event channel. The concrete types are
// IdentifiedEvent, MessageEvent and DisconnectedEvent.
type Event interface {
	event()
}

// IdentifiedEvent reports the hub's acknowledgement of our identify frame.
type IdentifiedEvent struct {
	UserID domain.UserID
}

// MessageEvent carries one rendered message, live or replayed from history.
type MessageEvent struct {
	Message domain.Message
}

// DisconnectedEvent is the last event before the channel closes. Err is nil
// on a clean local Close, otherwise the read error that ended the session.
type DisconnectedEvent struct {
	Err error
}

func (IdentifiedEvent) event()   {}
func (MessageEvent) event()      {}
func (DisconnectedEvent) event() {}
