package codec

import (
	"fmt"

	"github.com/awnumar/memguard"
	"github.com/google/uuid"

	"chatspot/internal/crypto"
	"chatspot/internal/domain"
	"chatspot/internal/protocol"
)

// Service is the symmetric channel codec. It owns key lifecycle against the
// keyring and the envelope seal/open path. Stateless apart from the keyring;
// safe for concurrent use.
type Service struct {
	keys  domain.Keyring
	suite domain.Suite // suite for newly created keys
}

// New constructs the codec over a keyring. suite applies only when a room
// has no key yet; existing keys keep the suite they were created with.
func New(keys domain.Keyring, suite domain.Suite) (*Service, error) {
	if !suite.Valid() {
		return nil, fmt.Errorf("codec: unknown suite %q", suite)
	}
	return &Service{keys: keys, suite: suite}, nil
}

// LoadOrCreateKey returns the room's key, generating and persisting a fresh
// one on first join. created reports whether this call generated the key.
// Storage or randomness failure means no message can be sent or read in the
// room; the error is returned, never worked around.
func (s *Service) LoadOrCreateKey(room domain.RoomID) (key *crypto.RoomKey, created bool, err error) {
	if !room.Valid() {
		return nil, false, fmt.Errorf("codec: invalid room id %q", room)
	}

	suite, raw, ok, err := s.keys.LoadRoomKey(room)
	if err != nil {
		return nil, false, fmt.Errorf("load key for %q: %w", room, err)
	}
	if ok {
		defer wipe(raw)
		k, err := crypto.ImportRoomKey(suite, raw)
		if err != nil {
			return nil, false, fmt.Errorf("import key for %q: %w", room, err)
		}
		return k, false, nil
	}

	k, err := crypto.GenerateRoomKey(s.suite)
	if err != nil {
		return nil, false, fmt.Errorf("generate key for %q: %w", room, err)
	}
	raw, err = k.Raw()
	if err != nil {
		return nil, false, err
	}
	defer wipe(raw)
	if err := s.keys.SaveRoomKey(room, s.suite, raw); err != nil {
		return nil, false, fmt.Errorf("persist key for %q: %w", room, err)
	}

	// A concurrent first join may have won the insert; reload so both
	// callers end up holding the persisted key.
	suite, stored, ok, err := s.keys.LoadRoomKey(room)
	if err != nil {
		return nil, false, fmt.Errorf("reload key for %q: %w", room, err)
	}
	if !ok {
		return nil, false, fmt.Errorf("reload key for %q: key missing after save", room)
	}
	defer wipe(stored)
	k2, err := crypto.ImportRoomKey(suite, stored)
	if err != nil {
		return nil, false, err
	}
	return k2, true, nil
}

// EncryptText seals text into a wire envelope: fresh nonce, base64 payload,
// UUID id, epoch-millisecond timestamp.
func (s *Service) EncryptText(key *crypto.RoomKey, room domain.RoomID, sender domain.UserID, text string) (protocol.Envelope, error) {
	ct, nonce, err := key.Seal([]byte(text))
	if err != nil {
		return protocol.Envelope{}, fmt.Errorf("encrypt for %q: %w", room, err)
	}
	return protocol.Envelope{
		ID:             uuid.New().String(),
		ConversationID: string(room),
		SenderID:       string(sender),
		Ciphertext:     crypto.B64(ct),
		Nonce:          crypto.B64(nonce),
		Timestamp:      protocol.Now(),
	}, nil
}

// DecryptEnvelope turns a received envelope into a renderable message. It
// never fails: envelopes the key cannot open (wrong key, tampering, bad
// encoding) come back marked undecryptable with the raw ciphertext in place
// of text. File references pass through without decryption, the URL in Text.
func (s *Service) DecryptEnvelope(key *crypto.RoomKey, env protocol.Envelope) domain.Message {
	msg := domain.Message{
		ID:     env.ID,
		Room:   domain.RoomID(env.ConversationID),
		Sender: domain.UserID(env.SenderID),
		SentAt: env.SentAt(),
		Kind:   env.Kind,
		Meta:   env.Meta,
	}

	if env.Kind == protocol.KindFile {
		msg.Text = env.Ciphertext
		return msg
	}

	ct, nonce, err := env.DecodePayload()
	if err != nil {
		msg.Undecryptable = true
		msg.Ciphertext = env.Ciphertext
		return msg
	}
	pt, err := key.Open(ct, nonce)
	if err != nil {
		msg.Undecryptable = true
		msg.Ciphertext = env.Ciphertext
		return msg
	}
	msg.Text = string(pt)
	return msg
}

func wipe(b []byte) { memguard.WipeBytes(b) }
