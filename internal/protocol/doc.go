// Package protocol defines the JSON frames exchanged between clients and the
// hub, one object per WebSocket text frame.
//
// Client to hub:
//
//	{"action":"identify","userId":"user-1"}
//	{"action":"subscribe","conversationId":"room1"}
//	{"action":"message","envelope":{...}}
//
// Hub to client:
//
//	{"action":"identified","userId":"user-1"}
//	{"action":"history","conversationId":"room1","history":[{...},...]}
//	{"action":"message","envelope":{...}}
//
// An envelope carries base64 ciphertext and nonce, an epoch-millisecond
// timestamp, and an optional UUID id used for duplicate suppression. The hub
// treats envelopes as opaque; only clients hold keys.
//
// Decode is strict so that dropping bad input is a policy, not an accident:
// malformed JSON and structurally invalid frames return ErrMalformed, frames
// with an unrecognized action return ErrUnknownAction. Callers log and drop,
// they never tear down the connection over one bad frame.
package protocol
