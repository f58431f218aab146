package crypto

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/awnumar/memguard"

	"chatspot/internal/domain"
)

// RoomKey is one conversation's symmetric secret together with the suite it
// belongs to. The key bytes live in a memguard enclave and are only opened
// for the duration of a single seal, open or export call.
type RoomKey struct {
	suite domain.Suite
	key   *memguard.Enclave
}

// GenerateRoomKey draws a fresh 256-bit key for suite from crypto/rand.
func GenerateRoomKey(suite domain.Suite) (*RoomKey, error) {
	if !suite.Valid() {
		return nil, fmt.Errorf("crypto: unknown suite %q", suite)
	}
	raw := make([]byte, KeyBytes)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return nil, fmt.Errorf("key generation: %w", err)
	}
	// NewEnclave wipes raw.
	return &RoomKey{suite: suite, key: memguard.NewEnclave(raw)}, nil
}

// ImportRoomKey wraps existing key material, copying it into an enclave.
// The caller keeps ownership of raw and should wipe it.
func ImportRoomKey(suite domain.Suite, raw []byte) (*RoomKey, error) {
	if !suite.Valid() {
		return nil, fmt.Errorf("crypto: unknown suite %q", suite)
	}
	if len(raw) != KeyBytes {
		return nil, ErrBadKeySize
	}
	cp := make([]byte, KeyBytes)
	copy(cp, raw)
	return &RoomKey{suite: suite, key: memguard.NewEnclave(cp)}, nil
}

// Suite returns the construction this key encrypts under.
func (k *RoomKey) Suite() domain.Suite { return k.suite }

// Seal encrypts plaintext with a fresh random nonce.
func (k *RoomKey) Seal(plaintext []byte) (ciphertext, nonce []byte, err error) {
	err = k.withRaw(func(raw []byte) error {
		ciphertext, nonce, err = Seal(k.suite, raw, plaintext)
		return err
	})
	return ciphertext, nonce, err
}

// Open decrypts and authenticates ciphertext. Failures are ErrDecrypt.
func (k *RoomKey) Open(ciphertext, nonce []byte) (plaintext []byte, err error) {
	err = k.withRaw(func(raw []byte) error {
		plaintext, err = Open(k.suite, raw, ciphertext, nonce)
		return err
	})
	return plaintext, err
}

// Fingerprint returns the short hex fingerprint of the key material, for
// operators comparing keys out-of-band.
func (k *RoomKey) Fingerprint() (fp string, err error) {
	err = k.withRaw(func(raw []byte) error {
		fp = Fingerprint(raw)
		return nil
	})
	return fp, err
}

// Export encodes the key as a sharing token for the out-of-band channel.
func (k *RoomKey) Export() (token string, err error) {
	err = k.withRaw(func(raw []byte) error {
		token = FormatToken(k.suite, raw)
		return nil
	})
	return token, err
}

// Raw copies the key material into a fresh slice. Callers wipe it when done;
// this exists for persistence only.
func (k *RoomKey) Raw() (raw []byte, err error) {
	err = k.withRaw(func(b []byte) error {
		raw = make([]byte, len(b))
		copy(raw, b)
		return nil
	})
	return raw, err
}

func (k *RoomKey) withRaw(fn func([]byte) error) error {
	buf, err := k.key.Open()
	if err != nil {
		return fmt.Errorf("open key enclave: %w", err)
	}
	defer buf.Destroy()
	return fn(buf.Bytes())
}

func wipe(b []byte) { memguard.WipeBytes(b) }
