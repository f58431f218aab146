package app

import "chatspot/internal/domain"

// Config holds runtime wiring options for building the app.
type Config struct {
	Home       string       // config directory, e.g. $HOME/.chatspot
	HubURL     string       // hub WebSocket URL, e.g. ws://127.0.0.1:8080/ws
	Passphrase string       // optional; seals room keys at rest when set
	Suite      domain.Suite // suite for newly created room keys
	Verbose    bool         // debug logging
}
