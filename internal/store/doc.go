// Package store provides durable persistence for chatspot's client state.
//
// It contains the sqlite-backed implementation of the domain storage
// interfaces: one symmetric key per conversation plus the local profile,
// all in a single database file under the user's configured home directory.
// All methods are concurrency-safe within a process; cross-process access
// relies on sqlite's own locking, which is enough for a single-client cache.
//
// When a passphrase is configured, key blobs are sealed at rest with a
// scrypt-derived key and ChaCha20-Poly1305. A wrong passphrase or a modified
// blob surfaces as ErrSealedKey on load; the store never falls back to
// returning the raw blob.
package store
