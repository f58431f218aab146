package domain

import "context"

// Keyring persists one symmetric key per conversation. Implementations keep
// key bytes confidential at rest; callers wipe the returned slices when done.
type Keyring interface {
	// SaveRoomKey stores key under room if no key exists yet. It never
	// overwrites: a concurrent or earlier write wins and the call is a no-op.
	SaveRoomKey(room RoomID, suite Suite, key []byte) error

	// ReplaceRoomKey stores key under room, overwriting any existing entry.
	// Reserved for explicit operator action (key import --force).
	ReplaceRoomKey(room RoomID, suite Suite, key []byte) error

	// LoadRoomKey returns the stored key material, or ok=false when the room
	// has no key yet.
	LoadRoomKey(room RoomID) (suite Suite, key []byte, ok bool, err error)

	// DeleteRoomKey removes the key for room, reporting whether one existed.
	DeleteRoomKey(room RoomID) (bool, error)

	// ListRoomKeys returns metadata for every stored key, newest first.
	ListRoomKeys() ([]RoomKeyInfo, error)
}

// ProfileStore persists the locally chosen user identity and defaults.
type ProfileStore interface {
	SaveProfile(p Profile) error
	LoadProfile() (Profile, bool, error)
}

// FrameConn is one open connection to a hub carrying JSON frames. ReadFrame
// blocks until a frame arrives or the connection dies; WriteFrame is safe for
// concurrent use.
type FrameConn interface {
	ReadFrame() ([]byte, error)
	WriteFrame(v any) error
	Close() error
}

// Dialer opens a FrameConn to the hub at url.
type Dialer func(ctx context.Context, url string) (FrameConn, error)
