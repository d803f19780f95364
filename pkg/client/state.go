package client

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Config keys for the durable key-value store. The credential pair is the
// only entry other components depend on; it is written by the auth machine
// alone, so there is no write contention.
const (
	configKeyAPIID      = "telegram_api_id"
	configKeyAPIHash    = "telegram_api_hash"
	configKeyLastServer = "last_server_address"
)

// State manages client-side persistent state
type State struct {
	db  *sql.DB
	dir string // Directory where state is stored
}

// OpenState opens or creates the client state database
func OpenState(path string) (*State, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	// Configure for better reliability
	db.SetMaxOpenConns(1) // Client only needs one connection
	db.SetMaxIdleConns(1)

	// Enable WAL mode
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set busy timeout
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS Config (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &State{db: db, dir: dir}, nil
}

// Close closes the state database
func (s *State) Close() error {
	return s.db.Close()
}

// GetConfig retrieves a configuration value
func (s *State) GetConfig(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM Config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetConfig stores a configuration value
func (s *State) SetConfig(key, value string) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO Config (key, value) VALUES (?, ?)
	`, key, value)
	return err
}

// DeleteConfig removes a configuration value
func (s *State) DeleteConfig(key string) error {
	_, err := s.db.Exec("DELETE FROM Config WHERE key = ?", key)
	return err
}

// Credential returns the saved link credential, ok=false when either half
// is missing.
func (s *State) Credential() (string, string, bool) {
	apiID, _ := s.GetConfig(configKeyAPIID)
	apiHash, _ := s.GetConfig(configKeyAPIHash)
	if apiID == "" || apiHash == "" {
		return "", "", false
	}
	return apiID, apiHash, true
}

// SetCredential persists the link credential for later silent resumption.
func (s *State) SetCredential(apiID, apiHash string) error {
	if err := s.SetConfig(configKeyAPIID, apiID); err != nil {
		return err
	}
	return s.SetConfig(configKeyAPIHash, apiHash)
}

// ClearCredential removes the link credential (logout or link failure).
func (s *State) ClearCredential() error {
	if err := s.DeleteConfig(configKeyAPIID); err != nil {
		return err
	}
	return s.DeleteConfig(configKeyAPIHash)
}

// GetLastServer returns the last gateway address the client connected to.
func (s *State) GetLastServer() string {
	addr, _ := s.GetConfig(configKeyLastServer)
	return addr
}

// SetLastServer records the gateway address for the next start.
func (s *State) SetLastServer(addr string) error {
	return s.SetConfig(configKeyLastServer, addr)
}

// GetStateDir returns the directory where state is stored
func (s *State) GetStateDir() string {
	return s.dir
}
