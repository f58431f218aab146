package app

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"chatspot/internal/domain"
	"chatspot/internal/services/codec"
	"chatspot/internal/store"
	"chatspot/internal/transport"
)

// Wire bundles the store, services, and transport for the CLI.
type Wire struct {
	DB      *store.DB
	Keyring domain.Keyring
	Profile domain.ProfileStore
	Codec   *codec.Service
	Dial    domain.Dialer
	HubURL  string
	Log     zerolog.Logger
}

// NewWire constructs the dependency graph from cfg. The home directory is
// created if missing, 0700 like any other key material directory.
func NewWire(cfg Config) (*Wire, error) {
	if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
		return nil, fmt.Errorf("create home dir: %w", err)
	}

	db, err := store.Open(cfg.Home, cfg.Passphrase)
	if err != nil {
		return nil, err
	}

	suite := cfg.Suite
	if suite == "" {
		suite = domain.SuiteAESGCM
	}
	codecSvc, err := codec.New(db, suite)
	if err != nil {
		db.Close()
		return nil, err
	}

	level := zerolog.InfoLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	return &Wire{
		DB:      db,
		Keyring: db,
		Profile: db,
		Codec:   codecSvc,
		Dial:    transport.Dial,
		HubURL:  cfg.HubURL,
		Log:     log,
	}, nil
}

// Close releases the store.
func (w *Wire) Close() error {
	return w.DB.Close()
}

// EnsureProfile loads the stored profile, creating one with a generated
// user id ("user-" + 8 hex chars) on first use.
func (w *Wire) EnsureProfile() (domain.Profile, error) {
	p, ok, err := w.Profile.LoadProfile()
	if err != nil {
		return domain.Profile{}, err
	}
	if ok && p.UserID != "" {
		return p, nil
	}

	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return domain.Profile{}, fmt.Errorf("generate user id: %w", err)
	}
	p.UserID = domain.UserID("user-" + hex.EncodeToString(b[:]))
	if err := w.Profile.SaveProfile(p); err != nil {
		return domain.Profile{}, err
	}
	w.Log.Debug().Str("user", string(p.UserID)).Msg("generated local user id")
	return p, nil
}
