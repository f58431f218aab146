package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Frame actions. Identify, Subscribe and Message originate from clients;
// Identified, History and Message (echo/fan-out) originate from the hub.
const (
	ActionIdentify   = "identify"
	ActionSubscribe  = "subscribe"
	ActionMessage    = "message"
	ActionIdentified = "identified"
	ActionHistory    = "history"
)

var (
	// ErrMalformed is returned for frames that are not valid JSON objects or
	// that lack the fields their action requires.
	ErrMalformed = errors.New("protocol: malformed frame")

	// ErrUnknownAction is returned for well-formed frames whose action is not
	// one of the constants above.
	ErrUnknownAction = errors.New("protocol: unknown action")
)

// Frame is the transport unit. Exactly one of the optional fields is
// populated depending on Action.
type Frame struct {
	Action         string     `json:"action"`
	UserID         string     `json:"userId,omitempty"`
	ConversationID string     `json:"conversationId,omitempty"`
	Envelope       *Envelope  `json:"envelope,omitempty"`
	History        []Envelope `json:"history,omitempty"`
}

// Identify builds the frame announcing the client's user id.
func Identify(userID string) Frame {
	return Frame{Action: ActionIdentify, UserID: userID}
}

// Identified builds the hub's acknowledgement of an identify frame.
func Identified(userID string) Frame {
	return Frame{Action: ActionIdentified, UserID: userID}
}

// Subscribe builds the frame joining a conversation.
func Subscribe(conversationID string) Frame {
	return Frame{Action: ActionSubscribe, ConversationID: conversationID}
}

// Message builds the frame carrying one envelope in either direction.
func Message(env Envelope) Frame {
	return Frame{Action: ActionMessage, Envelope: &env}
}

// History builds the hub's replay of prior envelopes for a conversation.
// The slice may be empty but is always present in the encoded frame.
func History(conversationID string, envs []Envelope) Frame {
	if envs == nil {
		envs = []Envelope{}
	}
	return Frame{Action: ActionHistory, ConversationID: conversationID, History: envs}
}

// Encode renders the frame as a single JSON object.
func Encode(f Frame) ([]byte, error) {
	return json.Marshal(f)
}

// Decode parses and validates one raw frame. The returned error wraps
// ErrMalformed or ErrUnknownAction; the frame is only usable when err is nil.
func Decode(raw []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := f.Validate(); err != nil {
		return Frame{}, err
	}
	return f, nil
}

// Validate checks that the frame carries the fields its action requires.
func (f Frame) Validate() error {
	switch f.Action {
	case ActionIdentify, ActionIdentified:
		if f.UserID == "" {
			return fmt.Errorf("%w: %s without userId", ErrMalformed, f.Action)
		}
	case ActionSubscribe:
		if f.ConversationID == "" {
			return fmt.Errorf("%w: subscribe without conversationId", ErrMalformed)
		}
	case ActionMessage:
		if f.Envelope == nil {
			return fmt.Errorf("%w: message without envelope", ErrMalformed)
		}
		if err := f.Envelope.Validate(); err != nil {
			return err
		}
	case ActionHistory:
		if f.ConversationID == "" {
			return fmt.Errorf("%w: history without conversationId", ErrMalformed)
		}
	case "":
		return fmt.Errorf("%w: missing action", ErrMalformed)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, f.Action)
	}
	return nil
}
