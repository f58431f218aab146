package store

import (
	"fmt"

	"chatspot/internal/domain"
)

const (
	profileUserID = "user_id"
	profileHubURL = "hub_url"
)

// SaveProfile persists the local user id and defaults.
func (s *DB) SaveProfile(p domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	defer tx.Rollback()

	for k, v := range map[string]string{
		profileUserID: string(p.UserID),
		profileHubURL: p.HubURL,
	} {
		if _, err := tx.Exec(
			`INSERT INTO profile (k, v) VALUES (?, ?)
			 ON CONFLICT(k) DO UPDATE SET v=excluded.v`, k, v,
		); err != nil {
			return fmt.Errorf("save profile %s: %w", k, err)
		}
	}
	return tx.Commit()
}

// LoadProfile returns the stored profile, or ok=false when none was saved.
func (s *DB) LoadProfile() (domain.Profile, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT k, v FROM profile`)
	if err != nil {
		return domain.Profile{}, false, fmt.Errorf("load profile: %w", err)
	}
	defer rows.Close()

	var p domain.Profile
	found := false
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return domain.Profile{}, false, err
		}
		switch k {
		case profileUserID:
			p.UserID = domain.UserID(v)
			found = found || v != ""
		case profileHubURL:
			p.HubURL = v
		}
	}
	if err := rows.Err(); err != nil {
		return domain.Profile{}, false, err
	}
	return p, found, nil
}
