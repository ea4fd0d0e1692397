package settings

import (
	"fmt"
	"path/filepath"

	"github.com/doeshing/kidchat/internal/domain"
	"github.com/doeshing/kidchat/internal/ports"
)

// Open builds the store selected by backend under dataDir.
func Open(backend, dataDir string, opts ...Option) (ports.SettingsStore, error) {
	switch backend {
	case "", domain.StorageBackendJSON:
		return NewJSONFileStore(filepath.Join(dataDir, "devices"), opts...), nil
	case domain.StorageBackendSQLite:
		return OpenSQLiteStore(filepath.Join(dataDir, "kidchat.db"), opts...)
	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q", domain.ErrInvalidState, backend)
	}
}
