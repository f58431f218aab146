package store

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// DBFile is the database file name under the home directory.
const DBFile = "chatspot.db"

// DB is the sqlite-backed keyring and profile store. A zero passphrase means
// key blobs are stored raw, matching the browser localStorage behaviour the
// keyring replaces; with a passphrase they are sealed at rest.
type DB struct {
	db         *sql.DB
	passphrase string
	mu         sync.Mutex
}

// Open opens (creating if needed) the database under dir.
func Open(dir, passphrase string) (*DB, error) {
	db, err := sql.Open("sqlite", filepath.Join(dir, DBFile))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	s := &DB{db: db, passphrase: passphrase}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

func (s *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS room_keys (
		room TEXT PRIMARY KEY,
		suite TEXT NOT NULL,
		key BLOB NOT NULL,
		sealed INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS profile (
		k TEXT PRIMARY KEY,
		v TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *DB) Close() error {
	return s.db.Close()
}
