// Package hub implements the development hub: an in-memory WebSocket
// fan-out of opaque envelopes with per-room history.
//
// Clients speak the internal/protocol frames. An identify frame stores the
// connection's user id and is echoed back as identified; subscribe registers
// the connection for a room and replays that room's history in one frame;
// message appends the envelope to history and fans it out to every current
// subscriber, including the sender. The hub never inspects ciphertext and
// holds no keys.
//
// Malformed frames and unknown actions are logged and dropped without
// closing the connection. All state lives in memory and is lost on process
// exit; history length per room is capped (0 disables the cap).
package hub
