package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// StateStore is a durable key/value table holding serialized application state.
type StateStore struct {
	db *sql.DB
}

func NewStateStore(db *sql.DB) *StateStore {
	return &StateStore{db: db}
}

// Load returns the value stored under key. ok is false when the key was never saved.
func (s *StateStore) Load(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM app_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load state %q: %w", key, err)
	}
	return value, true, nil
}

func (s *StateStore) Save(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO app_state (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save state %q: %w", key, err)
	}
	return nil
}
