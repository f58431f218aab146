package crypto_test

import (
	"bytes"
	"errors"
	"testing"

	"chatspot/internal/crypto"
	"chatspot/internal/domain"
)

var suites = []domain.Suite{domain.SuiteAESGCM, domain.SuiteSecretbox}

func newKey(t *testing.T, suite domain.Suite) *crypto.RoomKey {
	t.Helper()
	k, err := crypto.GenerateRoomKey(suite)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return k
}

func TestSealOpen_RoundTrip(t *testing.T) {
	for _, suite := range suites {
		t.Run(string(suite), func(t *testing.T) {
			k := newKey(t, suite)
			plaintexts := []string{"hello", "", "héllo wörld ünïcode", string(make([]byte, 4096))}
			for _, pt := range plaintexts {
				ct, nonce, err := k.Seal([]byte(pt))
				if err != nil {
					t.Fatalf("seal %q: %v", pt, err)
				}
				if len(nonce) != suite.NonceSize() {
					t.Fatalf("nonce length = %d, want %d", len(nonce), suite.NonceSize())
				}
				if bytes.Equal(ct, []byte(pt)) {
					t.Fatal("ciphertext equals plaintext")
				}
				got, err := k.Open(ct, nonce)
				if err != nil {
					t.Fatalf("open: %v", err)
				}
				if string(got) != pt {
					t.Fatalf("round trip: got %q, want %q", got, pt)
				}
			}
		})
	}
}

func TestOpen_WrongKey(t *testing.T) {
	for _, suite := range suites {
		t.Run(string(suite), func(t *testing.T) {
			k1 := newKey(t, suite)
			k2 := newKey(t, suite)

			ct, nonce, err := k1.Seal([]byte("secret"))
			if err != nil {
				t.Fatalf("seal: %v", err)
			}
			if _, err := k2.Open(ct, nonce); !errors.Is(err, crypto.ErrDecrypt) {
				t.Fatalf("open under wrong key: err = %v, want ErrDecrypt", err)
			}
		})
	}
}

func TestSeal_FreshNonces(t *testing.T) {
	for _, suite := range suites {
		t.Run(string(suite), func(t *testing.T) {
			k := newKey(t, suite)
			ct1, n1, err := k.Seal([]byte("same plaintext"))
			if err != nil {
				t.Fatalf("seal: %v", err)
			}
			ct2, n2, err := k.Seal([]byte("same plaintext"))
			if err != nil {
				t.Fatalf("seal: %v", err)
			}
			if bytes.Equal(n1, n2) {
				t.Fatal("two seals produced the same nonce")
			}
			if bytes.Equal(ct1, ct2) {
				t.Fatal("two seals produced the same ciphertext")
			}
		})
	}
}

func TestOpen_TamperDetection(t *testing.T) {
	for _, suite := range suites {
		t.Run(string(suite), func(t *testing.T) {
			k := newKey(t, suite)
			ct, nonce, err := k.Seal([]byte("integrity matters"))
			if err != nil {
				t.Fatalf("seal: %v", err)
			}

			for i := range ct {
				mangled := append([]byte(nil), ct...)
				mangled[i] ^= 0x01
				if _, err := k.Open(mangled, nonce); !errors.Is(err, crypto.ErrDecrypt) {
					t.Fatalf("ciphertext byte %d flipped: err = %v, want ErrDecrypt", i, err)
				}
			}
			for i := range nonce {
				mangled := append([]byte(nil), nonce...)
				mangled[i] ^= 0x01
				if _, err := k.Open(ct, mangled); !errors.Is(err, crypto.ErrDecrypt) {
					t.Fatalf("nonce byte %d flipped: err = %v, want ErrDecrypt", i, err)
				}
			}
		})
	}
}

func TestOpen_Truncated(t *testing.T) {
	for _, suite := range suites {
		t.Run(string(suite), func(t *testing.T) {
			k := newKey(t, suite)
			ct, nonce, err := k.Seal([]byte("short me"))
			if err != nil {
				t.Fatalf("seal: %v", err)
			}
			cases := [][2][]byte{
				{ct[:len(ct)-1], nonce},
				{ct, nonce[:len(nonce)-1]},
				{nil, nonce},
				{ct, nil},
			}
			for i, c := range cases {
				if _, err := k.Open(c[0], c[1]); !errors.Is(err, crypto.ErrDecrypt) {
					t.Fatalf("case %d: err = %v, want ErrDecrypt", i, err)
				}
			}
		})
	}
}

func TestToken_RoundTrip(t *testing.T) {
	for _, suite := range suites {
		t.Run(string(suite), func(t *testing.T) {
			k := newKey(t, suite)
			token, err := k.Export()
			if err != nil {
				t.Fatalf("export: %v", err)
			}

			gotSuite, raw, err := crypto.ParseToken(token)
			if err != nil {
				t.Fatalf("parse token: %v", err)
			}
			if gotSuite != suite {
				t.Fatalf("suite = %q, want %q", gotSuite, suite)
			}

			imported, err := crypto.ImportRoomKey(gotSuite, raw)
			if err != nil {
				t.Fatalf("import: %v", err)
			}

			// The imported key must open what the original sealed.
			ct, nonce, err := k.Seal([]byte("shared out of band"))
			if err != nil {
				t.Fatalf("seal: %v", err)
			}
			pt, err := imported.Open(ct, nonce)
			if err != nil {
				t.Fatalf("open with imported key: %v", err)
			}
			if string(pt) != "shared out of band" {
				t.Fatalf("got %q", pt)
			}
		})
	}
}

func TestParseToken_Errors(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"no separator", "aes256-gcm"},
		{"unknown suite", "rot13:AAAA"},
		{"bad base64", "aes256-gcm:!!!!"},
		{"short key", "aes256-gcm:AAAA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := crypto.ParseToken(tt.token); err == nil {
				t.Fatalf("ParseToken(%q) succeeded, want error", tt.token)
			}
		})
	}
}

func TestFingerprint_Deterministic(t *testing.T) {
	k := newKey(t, domain.SuiteAESGCM)
	fp1, err := k.Fingerprint()
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	fp2, err := k.Fingerprint()
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	if fp1 != fp2 {
		t.Fatalf("fingerprint not deterministic: %q != %q", fp1, fp2)
	}
	if len(fp1) != 20 {
		t.Fatalf("fingerprint length = %d, want 20 hex chars", len(fp1))
	}

	other := newKey(t, domain.SuiteAESGCM)
	fp3, err := other.Fingerprint()
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	if fp1 == fp3 {
		t.Fatal("distinct keys share a fingerprint")
	}
}
