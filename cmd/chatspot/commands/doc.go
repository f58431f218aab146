// Package commands defines the chatspot CLI and wires dependencies for
// subcommands.
//
// Commands
//
//   - whoami   Show or set the locally chosen user id
//   - join     Ensure a room has a key; print its suite and fingerprint
//   - rooms    List rooms with stored keys
//   - key      Export, import or show a room key (out-of-band sharing)
//   - send     Connect, join a room, send one message, exit
//   - chat     Interactive session streaming a room to stdout
//
// # Implementation
//
// The root command builds the dependency graph (sqlite store, codec,
// WebSocket dialer) before any subcommand runs, so handlers share one app
// context. Keys never leave the local store except through the explicit
// key export command; the hub only ever sees ciphertext.
package commands
