package database

import (
	"database/sql"
	"fmt"
	"time"
)

// SQLStateRepository handles small key-value state that must survive
// restarts, like the last dispatcher sweep time.
type SQLStateRepository struct {
	db *DB
}

// NewStateRepository creates a new state repository
func NewStateRepository(db *DB) *SQLStateRepository {
	return &SQLStateRepository{db: db}
}

// Get retrieves a state value by key. The second return value is false
// when the key has never been set.
func (r *SQLStateRepository) Get(key string) (string, bool, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM app_state WHERE key = ?", key).Scan(&value)

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get state %q: %w", key, err)
	}

	return value, true, nil
}

// Set stores a state value, overwriting any previous one
func (r *SQLStateRepository) Set(key, value string) error {
	_, err := r.db.Exec(`
		INSERT INTO app_state (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, encodeTime(time.Now()))

	if err != nil {
		return fmt.Errorf("failed to set state %q: %w", key, err)
	}

	return nil
}
