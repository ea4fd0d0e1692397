package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/kidchat/internal/domain"
	"github.com/doeshing/kidchat/internal/ports"
)

// SQLiteStore persists device records in a SQLite table keyed by device id.
type SQLiteStore struct {
	db   *sql.DB
	path string
	opts options
	mu   sync.Mutex
}

// OpenSQLiteStore opens (or creates) the database at path. Use ":memory:" in tests.
func OpenSQLiteStore(path string, opts ...Option) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
			return nil, fmt.Errorf("%w: create %s: %v", domain.ErrPersistenceFailure, filepath.Dir(path), err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrPersistenceFailure, path, err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)
	store := &SQLiteStore{db: db, path: path, opts: buildOptions(opts)}
	if err := store.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: migrate %s: %v", domain.ErrPersistenceFailure, path, err)
	}
	return store, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS device_records (
		device_id TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`)
	return err
}

// Load implements ports.SettingsStore.
func (s *SQLiteStore) Load(ctx context.Context, deviceID string) (domain.DeviceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM device_records WHERE device_id = ?`, deviceID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return s.opts.fresh(deviceID), nil
	}
	if err != nil {
		return domain.DeviceRecord{}, fmt.Errorf("%w: query %s: %v", domain.ErrPersistenceFailure, deviceID, err)
	}

	rec, changed, err := Decode(deviceID, []byte(payload), s.opts.now())
	if err != nil {
		// The row is left as is until the next save.
		return s.opts.fresh(deviceID), fmt.Errorf("%w: decode %s: %v", domain.ErrPersistenceFailure, deviceID, err)
	}
	if changed {
		s.opts.logRepair(deviceID)
		if err := s.upsert(ctx, rec); err != nil {
			return rec, err
		}
	}
	return rec, nil
}

// Persist implements ports.SettingsStore.
func (s *SQLiteStore) Persist(ctx context.Context, rec domain.DeviceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upsert(ctx, rec)
}

// Path returns the sqlite database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) upsert(ctx context.Context, rec domain.DeviceRecord) error {
	data, err := Encode(rec)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO device_records (device_id, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(device_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		rec.DeviceID,
		string(data),
		s.opts.now().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("%w: upsert %s: %v", domain.ErrPersistenceFailure, rec.DeviceID, err)
	}
	return nil
}

var _ ports.SettingsStore = (*SQLiteStore)(nil)
