// Package codec implements the symmetric channel codec: the one component
// that turns plaintext into transportable envelopes and envelopes back into
// renderable messages.
//
// It loads or creates the per-conversation key (generate on first join,
// byte-identical loads thereafter), seals outgoing text under a fresh random
// nonce, and opens incoming envelopes. An envelope the local key cannot open
// is not an error to the render pipeline: it comes back as a message marked
// undecryptable, carrying the raw ciphertext for display.
package codec
