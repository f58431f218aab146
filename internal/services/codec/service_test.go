package codec_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"chatspot/internal/domain"
	"chatspot/internal/protocol"
	"chatspot/internal/services/codec"
	"chatspot/internal/store"
)

func newService(t *testing.T, suite domain.Suite) *codec.Service {
	t.Helper()
	db, err := store.Open(t.TempDir(), "")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	svc, err := codec.New(db, suite)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	return svc
}

func TestLoadOrCreateKey_Idempotent(t *testing.T) {
	svc := newService(t, domain.SuiteAESGCM)

	k1, created, err := svc.LoadOrCreateKey("room1")
	if err != nil {
		t.Fatalf("first load-or-create: %v", err)
	}
	if !created {
		t.Fatal("first call did not create a key")
	}

	k2, created, err := svc.LoadOrCreateKey("room1")
	if err != nil {
		t.Fatalf("second load-or-create: %v", err)
	}
	if created {
		t.Fatal("second call created a new key")
	}

	fp1, _ := k1.Fingerprint()
	fp2, _ := k2.Fingerprint()
	if fp1 != fp2 {
		t.Fatal("load-or-create returned different key material across calls")
	}
}

func TestLoadOrCreateKey_DistinctRooms(t *testing.T) {
	svc := newService(t, domain.SuiteAESGCM)

	k1, _, err := svc.LoadOrCreateKey("room1")
	if err != nil {
		t.Fatalf("room1: %v", err)
	}
	k2, _, err := svc.LoadOrCreateKey("room2")
	if err != nil {
		t.Fatalf("room2: %v", err)
	}
	fp1, _ := k1.Fingerprint()
	fp2, _ := k2.Fingerprint()
	if fp1 == fp2 {
		t.Fatal("two rooms share one key")
	}
}

func TestLoadOrCreateKey_InvalidRoom(t *testing.T) {
	svc := newService(t, domain.SuiteAESGCM)
	for _, room := range []domain.RoomID{"", " ", "has space", "has\ttab"} {
		if _, _, err := svc.LoadOrCreateKey(room); err == nil {
			t.Fatalf("LoadOrCreateKey(%q) succeeded, want error", room)
		}
	}
}

// vanishingKeyring accepts saves but never returns a key, as when another
// process deletes the row between the insert and the reload.
type vanishingKeyring struct{}

func (vanishingKeyring) SaveRoomKey(domain.RoomID, domain.Suite, []byte) error    { return nil }
func (vanishingKeyring) ReplaceRoomKey(domain.RoomID, domain.Suite, []byte) error { return nil }
func (vanishingKeyring) LoadRoomKey(domain.RoomID) (domain.Suite, []byte, bool, error) {
	return "", nil, false, nil
}
func (vanishingKeyring) DeleteRoomKey(domain.RoomID) (bool, error)   { return false, nil }
func (vanishingKeyring) ListRoomKeys() ([]domain.RoomKeyInfo, error) { return nil, nil }

func TestLoadOrCreateKey_KeyVanishedAfterSave(t *testing.T) {
	svc, err := codec.New(vanishingKeyring{}, domain.SuiteAESGCM)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	_, _, err = svc.LoadOrCreateKey("room1")
	if err == nil {
		t.Fatal("load-or-create succeeded with a keyring that drops keys")
	}
	if !strings.Contains(err.Error(), "key missing after save") {
		t.Fatalf("err = %v, want key-missing message", err)
	}
}

func TestEncryptDecrypt_EndToEnd(t *testing.T) {
	for _, suite := range []domain.Suite{domain.SuiteAESGCM, domain.SuiteSecretbox} {
		t.Run(string(suite), func(t *testing.T) {
			svc := newService(t, suite)
			k, _, err := svc.LoadOrCreateKey("room1")
			if err != nil {
				t.Fatalf("key: %v", err)
			}

			env, err := svc.EncryptText(k, "room1", "alice", "hello")
			if err != nil {
				t.Fatalf("encrypt: %v", err)
			}
			if env.ID == "" || env.Timestamp == 0 {
				t.Fatalf("envelope missing id or timestamp: %+v", env)
			}
			if env.ConversationID != "room1" || env.SenderID != "alice" {
				t.Fatalf("envelope routing fields wrong: %+v", env)
			}
			nonce, err := base64.StdEncoding.DecodeString(env.Nonce)
			if err != nil {
				t.Fatalf("nonce not base64: %v", err)
			}
			if len(nonce) != suite.NonceSize() {
				t.Fatalf("nonce length = %d, want %d", len(nonce), suite.NonceSize())
			}
			if env.Ciphertext == "hello" || env.Ciphertext == "" {
				t.Fatalf("ciphertext suspicious: %q", env.Ciphertext)
			}
			if err := env.Validate(); err != nil {
				t.Fatalf("produced envelope fails validation: %v", err)
			}

			msg := svc.DecryptEnvelope(k, env)
			if msg.Undecryptable {
				t.Fatal("own envelope undecryptable")
			}
			if msg.Text != "hello" {
				t.Fatalf("text = %q, want %q", msg.Text, "hello")
			}
			if msg.Sender != "alice" || msg.Room != "room1" {
				t.Fatalf("message routing fields wrong: %+v", msg)
			}
		})
	}
}

func TestDecryptEnvelope_WrongKey_Placeholder(t *testing.T) {
	svc := newService(t, domain.SuiteAESGCM)
	other := newService(t, domain.SuiteAESGCM)

	k1, _, err := svc.LoadOrCreateKey("room1")
	if err != nil {
		t.Fatalf("key: %v", err)
	}
	k2, _, err := other.LoadOrCreateKey("room1")
	if err != nil {
		t.Fatalf("other key: %v", err)
	}

	env, err := svc.EncryptText(k1, "room1", "alice", "secret")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	msg := other.DecryptEnvelope(k2, env)
	if !msg.Undecryptable {
		t.Fatal("wrong key produced a readable message")
	}
	if msg.Ciphertext != env.Ciphertext {
		t.Fatal("placeholder does not carry the raw ciphertext")
	}
	if msg.Text != "" {
		t.Fatalf("placeholder has plaintext %q", msg.Text)
	}
}

func TestDecryptEnvelope_BadEncoding_Placeholder(t *testing.T) {
	svc := newService(t, domain.SuiteAESGCM)
	k, _, err := svc.LoadOrCreateKey("room1")
	if err != nil {
		t.Fatalf("key: %v", err)
	}

	env := protocol.Envelope{
		ConversationID: "room1",
		SenderID:       "mallory",
		Ciphertext:     "not base64 !!!",
		Nonce:          "also not base64 !!!",
	}
	msg := svc.DecryptEnvelope(k, env)
	if !msg.Undecryptable {
		t.Fatal("garbage envelope not marked undecryptable")
	}
}

func TestDecryptEnvelope_FilePassthrough(t *testing.T) {
	svc := newService(t, domain.SuiteAESGCM)
	k, _, err := svc.LoadOrCreateKey("room1")
	if err != nil {
		t.Fatalf("key: %v", err)
	}

	env := protocol.Envelope{
		ConversationID: "room1",
		SenderID:       "bob",
		Ciphertext:     "https://files.example/abc",
		Kind:           protocol.KindFile,
		Meta:           map[string]string{"filename": "notes.pdf"},
	}
	msg := svc.DecryptEnvelope(k, env)
	if msg.Undecryptable {
		t.Fatal("file envelope marked undecryptable")
	}
	if msg.Text != "https://files.example/abc" {
		t.Fatalf("file URL = %q", msg.Text)
	}
	if msg.Meta["filename"] != "notes.pdf" {
		t.Fatalf("meta lost: %+v", msg.Meta)
	}
}
