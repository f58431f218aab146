package protocol

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// Envelope kinds. An empty Kind means KindText.
const (
	KindText = "text"

	// KindFile marks a file reference: Ciphertext holds a URL instead of
	// encrypted bytes and Meta carries at least the filename. The payload
	// behind the URL is encrypted and uploaded elsewhere; envelopes of this
	// kind pass through the codec without decryption.
	KindFile = "file"
)

// Envelope is the encrypted chat payload relayed by the hub. Ciphertext and
// Nonce are standard base64; Timestamp is epoch milliseconds. ID is optional
// on receive — envelopes without one render fine but cannot be deduplicated.
type Envelope struct {
	ID             string            `json:"id,omitempty"`
	ConversationID string            `json:"conversationId"`
	SenderID       string            `json:"senderId"`
	Ciphertext     string            `json:"ciphertext"`
	Nonce          string            `json:"nonce,omitempty"`
	Timestamp      int64             `json:"timestamp,omitempty"`
	Kind           string            `json:"kind,omitempty"`
	Meta           map[string]string `json:"meta,omitempty"`
}

// UnmarshalJSON accepts the legacy "iv" field name for the nonce, used by
// the browser AES-GCM clients. "nonce" wins when both are present.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	type alias Envelope
	aux := struct {
		*alias
		IV string `json:"iv,omitempty"`
	}{alias: (*alias)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if e.Nonce == "" {
		e.Nonce = aux.IV
	}
	return nil
}

// Validate checks the fields every envelope must carry to be relayed and
// rendered. Text envelopes need ciphertext and nonce; file references need a
// URL in the ciphertext field. Decoding the base64 or opening the ciphertext
// is the codec's job and its failures are per-message, not frame errors.
func (e *Envelope) Validate() error {
	if e.ConversationID == "" {
		return fmt.Errorf("%w: envelope without conversationId", ErrMalformed)
	}
	if e.SenderID == "" {
		return fmt.Errorf("%w: envelope without senderId", ErrMalformed)
	}
	switch e.Kind {
	case "", KindText:
		if e.Ciphertext == "" || e.Nonce == "" {
			return fmt.Errorf("%w: text envelope without ciphertext or nonce", ErrMalformed)
		}
	case KindFile:
		if e.Ciphertext == "" {
			return fmt.Errorf("%w: file envelope without URL", ErrMalformed)
		}
	default:
		return fmt.Errorf("%w: envelope kind %q", ErrMalformed, e.Kind)
	}
	return nil
}

// DecodePayload returns the raw ciphertext and nonce bytes.
func (e *Envelope) DecodePayload() (ciphertext, nonce []byte, err error) {
	ciphertext, err = base64.StdEncoding.DecodeString(e.Ciphertext)
	if err != nil {
		return nil, nil, fmt.Errorf("decode ciphertext: %w", err)
	}
	nonce, err = base64.StdEncoding.DecodeString(e.Nonce)
	if err != nil {
		return nil, nil, fmt.Errorf("decode nonce: %w", err)
	}
	return ciphertext, nonce, nil
}

// SentAt converts the epoch-millisecond timestamp. A zero timestamp maps to
// the zero time.
func (e *Envelope) SentAt() time.Time {
	if e.Timestamp == 0 {
		return time.Time{}
	}
	return time.UnixMilli(e.Timestamp)
}

// Now returns the current time as an envelope timestamp.
func Now() int64 { return time.Now().UnixMilli() }
