package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"

	"chatspot/internal/domain"
)

// KeyBytes is the key length shared by both suites.
const KeyBytes = 32

var (
	// ErrDecrypt is returned for every decryption failure: wrong key,
	// truncated or tampered ciphertext, bad nonce length. It wraps no
	// further detail on purpose.
	ErrDecrypt = errors.New("crypto: decrypt failed")

	// ErrBadKeySize is returned when key material is not KeyBytes long.
	ErrBadKeySize = errors.New("crypto: key must be 32 bytes")
)

// Seal encrypts plaintext under key with a fresh random nonce of the suite's
// size. It returns the ciphertext (with the suite's auth tag appended) and
// the nonce separately; the wire envelope carries them as two fields.
func Seal(suite domain.Suite, key, plaintext []byte) (ciphertext, nonce []byte, err error) {
	if len(key) != KeyBytes {
		return nil, nil, ErrBadKeySize
	}
	nonce = make([]byte, suite.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, fmt.Errorf("nonce generation: %w", err)
	}

	switch suite {
	case domain.SuiteAESGCM:
		aead, err := newGCM(key)
		if err != nil {
			return nil, nil, err
		}
		return aead.Seal(nil, nonce, plaintext, nil), nonce, nil

	case domain.SuiteSecretbox:
		var k [KeyBytes]byte
		var n [24]byte
		copy(k[:], key)
		copy(n[:], nonce)
		ct := secretbox.Seal(nil, plaintext, &n, &k)
		wipe(k[:])
		return ct, nonce, nil

	default:
		return nil, nil, fmt.Errorf("crypto: unknown suite %q", suite)
	}
}

// Open decrypts and authenticates ciphertext under key and nonce. Any
// failure is reported as ErrDecrypt.
func Open(suite domain.Suite, key, ciphertext, nonce []byte) ([]byte, error) {
	if len(key) != KeyBytes {
		return nil, ErrBadKeySize
	}
	if len(nonce) != suite.NonceSize() {
		return nil, fmt.Errorf("%w: bad nonce length %d for %s", ErrDecrypt, len(nonce), suite)
	}

	switch suite {
	case domain.SuiteAESGCM:
		aead, err := newGCM(key)
		if err != nil {
			return nil, err
		}
		pt, err := aead.Open(nil, nonce, ciphertext, nil)
		if err != nil {
			return nil, ErrDecrypt
		}
		return pt, nil

	case domain.SuiteSecretbox:
		var k [KeyBytes]byte
		var n [24]byte
		copy(k[:], key)
		copy(n[:], nonce)
		pt, ok := secretbox.Open(nil, ciphertext, &n, &k)
		wipe(k[:])
		if !ok {
			return nil, ErrDecrypt
		}
		return pt, nil

	default:
		return nil, fmt.Errorf("crypto: unknown suite %q", suite)
	}
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("AES cipher creation: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("GCM creation: %w", err)
	}
	return aead, nil
}
