// Package session holds the per-client connection state machine:
//
//	Disconnected -> Connecting -> Connected -> Joined
//
// A Session replaces what the browser clients kept as ambient globals (the
// socket, the active room, the loaded key) with one explicit object. Connect
// dials the hub and starts a reader goroutine that decodes frames and
// dispatches typed events onto the Events channel; Join loads or creates the
// room key before subscribing; Send seals and writes one envelope.
//
// Malformed and unknown frames are counted, logged at debug level and
// dropped. Decrypt failures never stop the reader: they surface as messages
// marked undecryptable. When the connection dies for any reason the session
// returns to Disconnected, emits a DisconnectedEvent and closes the Events
// channel.
package session
