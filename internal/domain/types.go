package domain

import (
	"strings"
	"time"
)

// RoomID identifies one conversation. All participants who want to read each
// other must join the same RoomID and hold the same key.
type RoomID string

// UserID is the locally chosen, unauthenticated sender identifier.
type UserID string

// Valid reports whether the id is usable on the wire: non-empty after
// trimming and free of whitespace.
func (r RoomID) Valid() bool { return validID(string(r)) }

// Valid reports whether the id is usable on the wire.
func (u UserID) Valid() bool { return validID(string(u)) }

func validID(s string) bool {
	return s != "" && strings.TrimSpace(s) == s && !strings.ContainsAny(s, " \t\r\n")
}

// Suite names the authenticated-encryption construction a room key belongs
// to. A conversation uses exactly one suite; it is fixed when the key is
// created and stored alongside it. The two are not interchangeable: an
// envelope sealed under one suite never opens under the other.
type Suite string

const (
	// SuiteAESGCM is AES-256-GCM with a 12-byte random nonce.
	SuiteAESGCM Suite = "aes256-gcm"

	// SuiteSecretbox is NaCl XSalsa20-Poly1305 with a 24-byte random nonce.
	SuiteSecretbox Suite = "xsalsa20-secretbox"
)

// Valid reports whether s is a known suite.
func (s Suite) Valid() bool {
	return s == SuiteAESGCM || s == SuiteSecretbox
}

// NonceSize returns the nonce length in bytes required by the suite, or 0
// for an unknown suite.
func (s Suite) NonceSize() int {
	switch s {
	case SuiteAESGCM:
		return 12
	case SuiteSecretbox:
		return 24
	default:
		return 0
	}
}

// Message is the rendered form of an envelope after the codec has processed
// it: either recovered plaintext, a file reference, or an undecryptable
// placeholder carrying the raw ciphertext.
type Message struct {
	ID     string
	Room   RoomID
	Sender UserID
	Text   string
	SentAt time.Time

	// Kind is "" or "text" for encrypted text, "file" for a file reference
	// whose Text holds the URL.
	Kind string
	Meta map[string]string

	// Replayed marks messages delivered from room history rather than live.
	Replayed bool

	// Undecryptable marks envelopes the local key could not open. Text is
	// empty and Ciphertext holds the encoded payload for display.
	Undecryptable bool
	Ciphertext    string
}

// RoomKeyInfo describes one stored room key without exposing its bytes.
type RoomKeyInfo struct {
	Room      RoomID
	Suite     Suite
	CreatedAt time.Time
}

// Profile is the locally stored client identity and defaults. The user id is
// chosen client-side and never authenticated by the hub.
type Profile struct {
	UserID UserID
	HubURL string
}
