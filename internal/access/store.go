package access

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"pegasusedge/internal/logging"
)

const profileKey = "user_profile"

// Store persists the user profile in a small SQLite key-value table.
// Malformed or invalid stored data never fails a load; the caller gets
// the default profile and the bad row is overwritten on the next save.
type Store struct {
	db     *sql.DB
	mu     sync.Mutex
	dbPath string
}

// NewStore opens (or creates) the profile database at the given path.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.AccessDebug("Failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.AccessDebug("Failed to set sqlite journal_mode=WAL: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logging.AccessDebug("Failed to set sqlite synchronous=NORMAL: %v", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS kv_state (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Access("Profile store opened at %s", path)
	return &Store{db: db, dbPath: path}, nil
}

// Load returns the stored profile, or the default profile when nothing
// valid is stored. Corruption is logged, never surfaced.
func (s *Store) Load() Profile {
	s.mu.Lock()
	defer s.mu.Unlock()

	var raw string
	err := s.db.QueryRow("SELECT value FROM kv_state WHERE key = ?", profileKey).Scan(&raw)
	if err == sql.ErrNoRows {
		return DefaultProfile()
	}
	if err != nil {
		logging.Get(logging.CategoryAccess).Error("Failed to read profile: %v", err)
		return DefaultProfile()
	}

	var p Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		logging.Get(logging.CategoryAccess).Warn("Stored profile is not valid JSON, resetting: %v", err)
		return DefaultProfile()
	}
	if p.Tier == TierNone {
		p.Tier = TierTrialAvailable
	}
	if err := p.Validate(); err != nil {
		logging.Get(logging.CategoryAccess).Warn("Stored profile failed validation, resetting: %v", err)
		return DefaultProfile()
	}
	return p
}

// Save writes the profile. Invalid profiles are rejected.
func (s *Store) Save(p Profile) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid profile: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO kv_state (key, value, updated_at) VALUES (?, ?, datetime('now'))
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		profileKey, string(data),
	)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	logging.Access("Profile saved: tier=%s trial_consumed=%t", p.Tier, p.TrialConsumed)
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
