package persist

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/kayz/promptsmith/internal/logger"
	"github.com/kayz/promptsmith/internal/promptbuild"
)

// ErrNotFound is returned when a named configuration does not exist.
var ErrNotFound = errors.New("prompt config not found")

// Store keeps named prompt configurations and render history in SQLite
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

// NewStore creates a new SQLite-backed store at the given path
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	s := &Store{db: db, now: time.Now}

	if err := s.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	logger.Debug("persist: opened store at %s", path)
	return s, nil
}

// init creates the necessary tables if they don't exist
func (s *Store) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS prompt_configs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			name        TEXT NOT NULL UNIQUE,
			config      TEXT NOT NULL,
			digest      TEXT NOT NULL,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS renders (
			id           TEXT PRIMARY KEY,
			config_name  TEXT NOT NULL DEFAULT '',
			builder_id   TEXT NOT NULL,
			encoding     TEXT NOT NULL,
			digest       TEXT NOT NULL,
			text         TEXT NOT NULL,
			chars        INTEGER NOT NULL,
			created_at   TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_renders_config ON renders(config_name);
		CREATE INDEX IF NOT EXISTS idx_renders_created ON renders(created_at);
	`)
	return err
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveConfig stores the configuration of b under name, replacing any
// existing configuration with that name.
func (s *Store) SaveConfig(name string, b *promptbuild.Builder) (*SavedConfig, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("config name is required")
	}

	cfg := b.ExportConfig()
	payload, err := toJSON(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	digest, err := promptbuild.ConfigDigest(cfg)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	nowStr := formatTime(s.now())
	_, err = s.db.Exec(`
		INSERT INTO prompt_configs (name, config, digest, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			config=excluded.config, digest=excluded.digest, updated_at=excluded.updated_at
	`, name, payload, digest, nowStr, nowStr)
	if err != nil {
		return nil, fmt.Errorf("save config %s: %w", name, err)
	}

	return s.getConfigInternal(name)
}

// LoadConfig returns the saved configuration called name
func (s *Store) LoadConfig(name string) (*SavedConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getConfigInternal(strings.TrimSpace(name))
}

// LoadBuilder returns a builder for the saved configuration called name
func (s *Store) LoadBuilder(name string) (*promptbuild.Builder, error) {
	saved, err := s.LoadConfig(name)
	if err != nil {
		return nil, err
	}
	return promptbuild.FromConfig(saved.Config), nil
}

func (s *Store) getConfigInternal(name string) (*SavedConfig, error) {
	row := s.db.QueryRow(`
		SELECT id, name, config, digest, created_at, updated_at
		FROM prompt_configs
		WHERE name = ?
	`, name)

	saved, err := scanConfig(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return saved, err
}

// ListConfigs returns every saved configuration ordered by name
func (s *Store) ListConfigs() ([]*SavedConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, name, config, digest, created_at, updated_at
		FROM prompt_configs
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []*SavedConfig
	for rows.Next() {
		saved, err := scanConfig(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, saved)
	}
	return configs, rows.Err()
}

// DeleteConfig removes a saved configuration. Its render history is kept.
func (s *Store) DeleteConfig(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM prompt_configs WHERE name = ?`, strings.TrimSpace(name))
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

func scanConfig(row scanner) (*SavedConfig, error) {
	var saved SavedConfig
	var payload, createdAt, updatedAt string
	if err := row.Scan(&saved.ID, &saved.Name, &payload, &saved.Digest, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := fromJSON(payload, &saved.Config); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", saved.Name, err)
	}
	saved.CreatedAt = parseTime(createdAt)
	saved.UpdatedAt = parseTime(updatedAt)
	return &saved, nil
}

// RecordRender stores text, which b rendered in enc. configName may be
// empty for prompts that were never saved.
func (s *Store) RecordRender(configName string, b *promptbuild.Builder, enc promptbuild.Encoding, text string) (*RenderRecord, error) {
	digest, err := promptbuild.ConfigDigest(b.ExportConfig())
	if err != nil {
		return nil, err
	}
	if !enc.Valid() {
		enc = b.Encoding()
	}

	rec := &RenderRecord{
		ID:         uuid.NewString(),
		ConfigName: strings.TrimSpace(configName),
		BuilderID:  b.ID(),
		Encoding:   enc,
		Digest:     digest,
		Text:       text,
		Chars:      len(text),
		CreatedAt:  s.now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(`
		INSERT INTO renders (id, config_name, builder_id, encoding, digest, text, chars, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.ConfigName, rec.BuilderID, string(rec.Encoding), rec.Digest, rec.Text, rec.Chars,
		formatTime(rec.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("record render: %w", err)
	}
	return rec, nil
}

// ListRenders returns the newest renders first. An empty configName lists
// renders of every configuration.
func (s *Store) ListRenders(configName string, limit int) ([]*RenderRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, config_name, builder_id, encoding, digest, text, chars, created_at
		FROM renders`
	args := []any{}
	if name := strings.TrimSpace(configName); name != "" {
		query += ` WHERE config_name = ?`
		args = append(args, name)
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*RenderRecord
	for rows.Next() {
		var rec RenderRecord
		var enc, createdAt string
		if err := rows.Scan(&rec.ID, &rec.ConfigName, &rec.BuilderID, &enc, &rec.Digest, &rec.Text, &rec.Chars, &createdAt); err != nil {
			return nil, err
		}
		rec.Encoding = promptbuild.Encoding(enc)
		rec.CreatedAt = parseTime(createdAt)
		records = append(records, &rec)
	}
	return records, rows.Err()
}
