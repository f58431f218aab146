// Package main runs the in-memory WebSocket hub used by chatspot during
// development and tests. It fans opaque envelopes out to room subscribers
// and replays bounded per-room history to late joiners.
//
// # WebSocket API
//
// One JSON object per text frame, on the path configured by -path
// (default /ws).
//
// Client to hub:
//
//	{"action":"identify","userId":"..."}       announce the (unauthenticated) user id
//	{"action":"subscribe","conversationId":"..."}  join a room; history is replayed
//	{"action":"message","envelope":{...}}      relay one envelope to the room
//
// Hub to client:
//
//	{"action":"identified","userId":"..."}
//	{"action":"history","conversationId":"...","history":[...]}
//	{"action":"message","envelope":{...}}
//
// Behaviour
//
//   - All state is held in memory and lost on process exit.
//   - Envelopes are opaque: the hub stores and forwards ciphertext, never
//     keys or plaintext.
//   - Envelopes arriving without a timestamp are stamped with the current
//     epoch milliseconds.
//   - Malformed frames and unknown actions are logged and dropped; they do
//     not close the connection.
//   - Per-room history is capped by -history (0 = unbounded).
//
// The hub performs no authentication or authorization; it is intended for
// local use or a private network.
package main
