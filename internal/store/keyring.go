package store

import (
	"database/sql"
	"fmt"
	"time"

	"chatspot/internal/domain"
)

// SaveRoomKey stores key under room if no key exists yet. An existing entry
// wins and the call is a no-op, so a near-simultaneous first join cannot
// clobber a key another caller already persisted.
func (s *DB) SaveRoomKey(room domain.RoomID, suite domain.Suite, key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, sealed, err := s.wrapKey(key)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO room_keys (room, suite, key, sealed, created_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(room) DO NOTHING`,
		string(room), string(suite), blob, sealed, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("save room key: %w", err)
	}
	return nil
}

// ReplaceRoomKey stores key under room, overwriting any existing entry.
// Reserved for explicit operator action (key import --force).
func (s *DB) ReplaceRoomKey(room domain.RoomID, suite domain.Suite, key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, sealed, err := s.wrapKey(key)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO room_keys (room, suite, key, sealed, created_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(room) DO UPDATE SET suite=excluded.suite, key=excluded.key,
		 sealed=excluded.sealed, created_at=excluded.created_at`,
		string(room), string(suite), blob, sealed, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("replace room key: %w", err)
	}
	return nil
}

// LoadRoomKey returns the stored key material, or ok=false when the room has
// no key yet. Sealed blobs that fail to open surface ErrSealedKey.
func (s *DB) LoadRoomKey(room domain.RoomID) (domain.Suite, []byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		suiteStr string
		blob     []byte
		sealed   int
	)
	err := s.db.QueryRow(
		`SELECT suite, key, sealed FROM room_keys WHERE room = ?`, string(room),
	).Scan(&suiteStr, &blob, &sealed)
	if err == sql.ErrNoRows {
		return "", nil, false, nil
	}
	if err != nil {
		return "", nil, false, fmt.Errorf("load room key: %w", err)
	}

	key := blob
	if sealed != 0 {
		if s.passphrase == "" {
			return "", nil, false, fmt.Errorf("%w: key for %q is sealed, passphrase required", ErrSealedKey, room)
		}
		key, err = unseal(s.passphrase, blob)
		if err != nil {
			return "", nil, false, err
		}
	}
	return domain.Suite(suiteStr), key, true, nil
}

// DeleteRoomKey removes the key for room, reporting whether one existed.
func (s *DB) DeleteRoomKey(room domain.RoomID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM room_keys WHERE room = ?`, string(room))
	if err != nil {
		return false, fmt.Errorf("delete room key: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListRoomKeys returns metadata for every stored key, newest first.
func (s *DB) ListRoomKeys() ([]domain.RoomKeyInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT room, suite, created_at FROM room_keys ORDER BY created_at DESC, room`)
	if err != nil {
		return nil, fmt.Errorf("list room keys: %w", err)
	}
	defer rows.Close()

	var out []domain.RoomKeyInfo
	for rows.Next() {
		var (
			room, suite string
			createdAt   int64
		)
		if err := rows.Scan(&room, &suite, &createdAt); err != nil {
			return nil, err
		}
		out = append(out, domain.RoomKeyInfo{
			Room:      domain.RoomID(room),
			Suite:     domain.Suite(suite),
			CreatedAt: time.Unix(createdAt, 0),
		})
	}
	return out, rows.Err()
}

func (s *DB) wrapKey(key []byte) (blob []byte, sealed int, err error) {
	if s.passphrase == "" {
		cp := make([]byte, len(key))
		copy(cp, key)
		return cp, 0, nil
	}
	blob, err = seal(s.passphrase, key)
	if err != nil {
		return nil, 0, fmt.Errorf("seal room key: %w", err)
	}
	return blob, 1, nil
}

// Compile-time assertion that DB implements the domain storage interfaces.
var (
	_ domain.Keyring      = (*DB)(nil)
	_ domain.ProfileStore = (*DB)(nil)
)
