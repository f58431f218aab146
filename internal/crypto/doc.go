// Package crypto exposes the symmetric primitives used by chatspot.
//
// Contents
//
//   - Authenticated encryption under the two wire suites, AES-256-GCM and
//     NaCl XSalsa20-Poly1305 (Seal, Open)
//   - Room keys held in memguard enclaves while in memory (GenerateRoomKey,
//     ImportRoomKey, RoomKey.Seal/Open)
//   - Out-of-band key sharing tokens (RoomKey.Export, ParseToken)
//   - Short key fingerprints for display/logging (Fingerprint)
//
// # Notes
//
// Every conversation uses exactly one suite, fixed when its key is created.
// Nonces are drawn fresh from crypto/rand for every Seal call; a repeated
// nonce under the same key would void both confidentiality and integrity, so
// nothing in this package ever derives a nonce from message content or a
// counter. All decryption failures collapse into ErrDecrypt: callers cannot
// and should not distinguish a wrong key from a tampered ciphertext.
package crypto
