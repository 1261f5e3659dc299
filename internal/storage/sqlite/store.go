package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/nexus/internal/models"
)

type Store struct {
	path string
	db   *sql.DB
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	if err := s.createSchema(); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	// Seed defaults on first run.
	settings, err := s.GetSettings()
	if err != nil || settings.DayStart == "" {
		defaults := models.Settings{}
		models.ApplyDefaultSettings(&defaults)
		if err := s.SaveSettings(defaults); err != nil {
			return fmt.Errorf("failed to save default settings: %w", err)
		}
	}

	return nil
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'nexus init' first")
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db
	return nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) GetConfigDir() string {
	return filepath.Dir(s.path)
}

func (s *Store) createSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS goals (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			category TEXT,
			priority INTEGER NOT NULL DEFAULT 3,
			deadline TEXT,
			parent_id TEXT,
			target_share REAL NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			deleted_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			goal_id TEXT,
			name TEXT NOT NULL,
			category TEXT,
			complexity INTEGER NOT NULL DEFAULT 3,
			estimated_min INTEGER NOT NULL,
			energy TEXT,
			min_block_min INTEGER NOT NULL DEFAULT 0,
			max_block_min INTEGER NOT NULL DEFAULT 0,
			hard_due TEXT,
			soft_due TEXT,
			depends_on TEXT,
			splittable INTEGER NOT NULL DEFAULT 0,
			context TEXT,
			recurrence_type TEXT,
			recurrence_interval INTEGER NOT NULL DEFAULT 0,
			recurrence_weekdays TEXT,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at TEXT NOT NULL,
			deleted_at TEXT,
			FOREIGN KEY(goal_id) REFERENCES goals(id)
		)`,
		`CREATE TABLE IF NOT EXISTS busy_intervals (
			id TEXT PRIMARY KEY,
			date TEXT NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			kind TEXT NOT NULL,
			title TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS schedules (
			date TEXT NOT NULL,
			revision INTEGER NOT NULL,
			payload TEXT NOT NULL,
			created_at TEXT NOT NULL,
			PRIMARY KEY (date, revision)
		)`,
		`CREATE TABLE IF NOT EXISTS completions (
			id TEXT PRIMARY KEY,
			task_id TEXT NOT NULL,
			date TEXT NOT NULL,
			planned_start TEXT,
			planned_end TEXT,
			actual_start TEXT,
			actual_end TEXT,
			energy INTEGER NOT NULL DEFAULT 0,
			focus INTEGER NOT NULL DEFAULT 0,
			difficulty INTEGER NOT NULL DEFAULT 0,
			satisfaction INTEGER NOT NULL DEFAULT 0,
			percent_complete INTEGER NOT NULL DEFAULT 100,
			created_at TEXT NOT NULL,
			FOREIGN KEY(task_id) REFERENCES tasks(id)
		)`,
		`CREATE TABLE IF NOT EXISTS patterns (
			pattern_type TEXT NOT NULL,
			name TEXT NOT NULL,
			payload TEXT NOT NULL,
			confidence REAL NOT NULL DEFAULT 0,
			sample_size INTEGER NOT NULL DEFAULT 0,
			active INTEGER NOT NULL DEFAULT 1,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (pattern_type, name)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_busy_date ON busy_intervals(date)`,
		`CREATE INDEX IF NOT EXISTS idx_completions_task ON completions(task_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) GetSettings() (models.Settings, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return models.Settings{}, err
	}
	defer rows.Close()

	data := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return models.Settings{}, err
		}
		data[k] = v
	}
	if err := rows.Err(); err != nil {
		return models.Settings{}, err
	}
	return models.MapToSettings(data)
}

func (s *Store) SaveSettings(settings models.Settings) error {
	for k, v := range models.SettingsToMap(settings) {
		if _, err := s.db.Exec(`
			INSERT INTO settings (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`, k, v); err != nil {
			return err
		}
	}
	return nil
}
