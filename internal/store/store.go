// Package store is the persistence collaborator around the scoring engine:
// it serializes templates, band authoring state, and computed results as
// JSON in sqlite. The engine itself never touches it.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store wraps the sqlite connection with prepared statements.
type Store struct {
	*sql.DB
	prepared map[string]*sql.Stmt
	mutex    sync.RWMutex
}

// Open creates (or opens) the database under dataDir and runs migrations.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "checkin_engine.db")
	connStr := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{
		DB:       db,
		prepared: make(map[string]*sql.Stmt),
	}

	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := s.initPreparedStatements(); err != nil {
		return nil, fmt.Errorf("failed to initialize prepared statements: %w", err)
	}

	slog.Info("Store initialized", "path", dbPath)
	return s, nil
}

func (s *Store) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS templates (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			body TEXT NOT NULL, -- JSON template
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS band_states (
			template_id TEXT PRIMARY KEY,
			active TEXT NOT NULL, -- preset name or 'custom'
			custom_bands TEXT,    -- JSON band list, last custom snapshot
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (template_id) REFERENCES templates(id)
		)`,

		`CREATE TABLE IF NOT EXISTS checkin_scores (
			id TEXT PRIMARY KEY,
			template_id TEXT NOT NULL,
			template_version INTEGER NOT NULL,
			client_ref TEXT,
			overall REAL NOT NULL,
			band_name TEXT NOT NULL,
			per_category TEXT,        -- JSON map
			unanswered_required TEXT, -- JSON list
			created_at DATETIME NOT NULL,
			FOREIGN KEY (template_id) REFERENCES templates(id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_checkin_scores_template ON checkin_scores(template_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_templates_updated ON templates(updated_at DESC)`,
	}

	for _, query := range queries {
		if _, err := s.Exec(query); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}
	return nil
}

func (s *Store) initPreparedStatements() error {
	statements := map[string]string{
		"upsert_template": `INSERT INTO templates (id, name, version, body, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?) ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			version = excluded.version,
			body = excluded.body,
			updated_at = excluded.updated_at`,

		"get_template": `SELECT body, version FROM templates WHERE id = ?`,

		"get_template_version": `SELECT version FROM templates WHERE id = ?`,

		"upsert_band_state": `INSERT INTO band_states (template_id, active, custom_bands, updated_at)
			VALUES (?, ?, ?, ?) ON CONFLICT(template_id) DO UPDATE SET
			active = excluded.active,
			custom_bands = excluded.custom_bands,
			updated_at = excluded.updated_at`,

		"get_band_state": `SELECT active, custom_bands, updated_at FROM band_states WHERE template_id = ?`,

		"insert_score": `INSERT INTO checkin_scores (
			id, template_id, template_version, client_ref, overall, band_name,
			per_category, unanswered_required, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,

		"list_scores": `SELECT id, template_id, template_version, client_ref, overall, band_name,
			per_category, unanswered_required, created_at
			FROM checkin_scores WHERE template_id = ? ORDER BY created_at DESC LIMIT ?`,
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	for name, query := range statements {
		stmt, err := s.Prepare(query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement %s: %w", name, err)
		}
		s.prepared[name] = stmt
	}
	return nil
}

func (s *Store) stmt(name string) (*sql.Stmt, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	stmt, exists := s.prepared[name]
	if !exists {
		return nil, fmt.Errorf("prepared statement %s not found", name)
	}
	return stmt, nil
}

// Close closes the prepared statements and the underlying connection.
func (s *Store) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for name, stmt := range s.prepared {
		if err := stmt.Close(); err != nil {
			slog.Warn("Failed to close prepared statement", "name", name, "error", err)
		}
	}
	s.prepared = make(map[string]*sql.Stmt)

	return s.DB.Close()
}
