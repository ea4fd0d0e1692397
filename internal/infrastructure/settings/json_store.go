package settings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/doeshing/kidchat/internal/domain"
	"github.com/doeshing/kidchat/internal/pkg/filesystem"
	"github.com/doeshing/kidchat/internal/ports"
)

// JSONFileStore keeps one <device>.json file per device under dir.
type JSONFileStore struct {
	dir  string
	opts options
	mu   sync.Mutex
}

// NewJSONFileStore creates a store rooted at dir. The directory is created on first write.
func NewJSONFileStore(dir string, opts ...Option) *JSONFileStore {
	return &JSONFileStore{dir: dir, opts: buildOptions(opts)}
}

// Load implements ports.SettingsStore.
func (s *JSONFileStore) Load(ctx context.Context, deviceID string) (domain.DeviceRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.DeviceRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.pathFor(deviceID))
	if errors.Is(err, os.ErrNotExist) {
		return s.opts.fresh(deviceID), nil
	}
	if err != nil {
		return domain.DeviceRecord{}, fmt.Errorf("%w: read %s: %v", domain.ErrPersistenceFailure, s.pathFor(deviceID), err)
	}

	rec, changed, err := Decode(deviceID, data, s.opts.now())
	if err != nil {
		// The file is left as is until the next save.
		return s.opts.fresh(deviceID), fmt.Errorf("%w: decode %s: %v", domain.ErrPersistenceFailure, s.pathFor(deviceID), err)
	}
	if changed {
		s.opts.logRepair(deviceID)
		if err := s.write(rec); err != nil {
			return rec, err
		}
	}
	return rec, nil
}

// Persist implements ports.SettingsStore.
func (s *JSONFileStore) Persist(ctx context.Context, rec domain.DeviceRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(rec)
}

// Path returns the directory holding the device files.
func (s *JSONFileStore) Path() string {
	return s.dir
}

func (s *JSONFileStore) write(rec domain.DeviceRecord) error {
	data, err := Encode(rec)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}
	if err := filesystem.AtomicWriteFile(s.pathFor(rec.DeviceID), data, domain.SecureFilePermissions); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}
	return nil
}

func (s *JSONFileStore) pathFor(deviceID string) string {
	return filepath.Join(s.dir, sanitizeID(deviceID)+".json")
}

// sanitizeID keeps device ids from escaping the store directory.
func sanitizeID(id string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, id)
	clean = strings.Trim(clean, ".")
	if clean == "" {
		return "default"
	}
	return clean
}

var _ ports.SettingsStore = (*JSONFileStore)(nil)
