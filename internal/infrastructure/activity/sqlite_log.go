package activity

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/kidchat/internal/domain"
	"github.com/doeshing/kidchat/internal/ports"
)

// SQLiteLog persists activity entries in a SQLite database.
type SQLiteLog struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open returns a SQLiteLog at path, or a FileLog next to it when the database
// cannot be opened.
func Open(path string) ports.ActivityLog {
	log, err := OpenSQLiteLog(path)
	if err != nil {
		return NewFileLog(strings.TrimSuffix(path, filepath.Ext(path)) + ".jsonl")
	}
	return log
}

// OpenSQLiteLog opens (or creates) the activity database at path.
func OpenSQLiteLog(path string) (*SQLiteLog, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	log := &SQLiteLog{db: db, path: path}
	if err := log.init(); err != nil {
		db.Close()
		return nil, err
	}
	return log, nil
}

func (s *SQLiteLog) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS activity (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		device_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		detail TEXT
	);`)
	return err
}

// Record implements ports.ActivityLog.
func (s *SQLiteLog) Record(entry domain.ActivityEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	_, err := s.db.Exec(`INSERT INTO activity (timestamp, device_id, kind, detail) VALUES (?, ?, ?, ?)`,
		entry.Timestamp.UTC().Format(time.RFC3339Nano),
		entry.DeviceID,
		string(entry.Kind),
		entry.Detail,
	)
	return err
}

// Entries returns the newest entries first (limit and kind optional).
func (s *SQLiteLog) Entries(limit int, kind domain.ActivityKind) ([]domain.ActivityEntry, error) {
	builder := strings.Builder{}
	builder.WriteString("SELECT timestamp, device_id, kind, detail FROM activity")
	var args []interface{}
	if kind != "" {
		builder.WriteString(" WHERE kind = ?")
		args = append(args, string(kind))
	}
	builder.WriteString(" ORDER BY id DESC")
	if limit > 0 {
		builder.WriteString(" LIMIT ?")
		args = append(args, limit)
	}
	rows, err := s.db.Query(builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []domain.ActivityEntry
	for rows.Next() {
		var entry domain.ActivityEntry
		var ts, kindText string
		var detail sql.NullString
		if err := rows.Scan(&ts, &entry.DeviceID, &kindText, &detail); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			entry.Timestamp = t
		}
		entry.Kind = domain.ActivityKind(kindText)
		entry.Detail = detail.String
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Clear deletes all entries.
func (s *SQLiteLog) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec("DELETE FROM activity")
	return err
}

// ExportJSON writes the activity table to a jsonl file.
func (s *SQLiteLog) ExportJSON(dest string) error {
	entries, err := s.Entries(0, "")
	if err != nil {
		return err
	}
	return writeJSONLines(dest, entries)
}

// Path returns the sqlite database path.
func (s *SQLiteLog) Path() string {
	return s.path
}

// Close releases the database handle.
func (s *SQLiteLog) Close() error {
	return s.db.Close()
}

var _ ports.ActivityLog = (*SQLiteLog)(nil)
