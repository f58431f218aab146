package crypto

import (
	"encoding/base64"
	"fmt"
	"strings"

	"chatspot/internal/domain"
)

// B64 returns standard base64 encoding without newlines.
func B64(b []byte) string { return base64.StdEncoding.EncodeToString(b) }

// FormatToken renders a key as a sharing token, "<suite>:<base64 key>".
// Tokens travel over whatever out-of-band channel the operators trust;
// nothing in chatspot ever puts one on the wire.
func FormatToken(suite domain.Suite, raw []byte) string {
	return string(suite) + ":" + B64(raw)
}

// ParseToken decodes a sharing token back into suite and key material.
// The caller owns the returned slice and should wipe it after import.
func ParseToken(token string) (domain.Suite, []byte, error) {
	suiteStr, keyStr, found := strings.Cut(strings.TrimSpace(token), ":")
	if !found {
		return "", nil, fmt.Errorf("crypto: token missing suite prefix")
	}
	suite := domain.Suite(suiteStr)
	if !suite.Valid() {
		return "", nil, fmt.Errorf("crypto: unknown suite %q in token", suiteStr)
	}
	raw, err := base64.StdEncoding.DecodeString(keyStr)
	if err != nil {
		return "", nil, fmt.Errorf("crypto: decode token key: %w", err)
	}
	if len(raw) != KeyBytes {
		return "", nil, ErrBadKeySize
	}
	return suite, raw, nil
}
