// Package activity keeps the guardian activity log.
//
// SQLiteLog is the primary store. FileLog appends JSON lines and is used when the
// database cannot be opened.
package activity

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/doeshing/kidchat/internal/domain"
	"github.com/doeshing/kidchat/internal/ports"
)

// FileLog appends activity entries to a jsonl file.
type FileLog struct {
	path string
	mu   sync.Mutex
}

// NewFileLog creates a log backed by path.
func NewFileLog(path string) *FileLog {
	return &FileLog{path: path}
}

// Record implements ports.ActivityLog.
func (f *FileLog) Record(entry domain.ActivityEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(f.path), domain.DirectoryPermissions); err != nil {
		return err
	}
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, domain.SecureFilePermissions)
	if err != nil {
		return err
	}
	defer file.Close()
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	_, err = file.Write(append(data, '\n'))
	return err
}

// Entries returns the newest entries first, optionally filtered by kind.
// Malformed lines are skipped.
func (f *FileLog) Entries(limit int, kind domain.ActivityKind) ([]domain.ActivityEntry, error) {
	f.mu.Lock()
	data, err := os.ReadFile(f.path)
	f.mu.Unlock()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var entries []domain.ActivityEntry
	for _, line := range bytes.Split(bytes.TrimSpace(data), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var entry domain.ActivityEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		if kind != "" && entry.Kind != kind {
			continue
		}
		entries = append(entries, entry)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Clear removes the log file.
func (f *FileLog) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ExportJSON writes every entry to dest as JSON lines.
func (f *FileLog) ExportJSON(dest string) error {
	entries, err := f.Entries(0, "")
	if err != nil {
		return err
	}
	return writeJSONLines(dest, entries)
}

// Path returns the backing file path.
func (f *FileLog) Path() string {
	return f.path
}

func writeJSONLines(dest string, entries []domain.ActivityEntry) error {
	if err := os.MkdirAll(filepath.Dir(dest), domain.DirectoryPermissions); err != nil {
		return err
	}
	file, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer file.Close()
	enc := json.NewEncoder(file)
	for _, entry := range entries {
		if err := enc.Encode(entry); err != nil {
			return err
		}
	}
	return nil
}

var _ ports.ActivityLog = (*FileLog)(nil)
