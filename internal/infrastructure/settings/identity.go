package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/doeshing/kidchat/internal/domain"
	"github.com/doeshing/kidchat/internal/pkg/filesystem"
)

const deviceIDFile = "device_id"

// ResolveDeviceID returns configured when set. Otherwise it returns the id kept in
// <dataDir>/device_id, generating and saving a new uuid on first use.
func ResolveDeviceID(configured, dataDir string) (string, error) {
	if id := strings.TrimSpace(configured); id != "" {
		return id, nil
	}
	path := filepath.Join(dataDir, deviceIDFile)
	data, err := os.ReadFile(path)
	if err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: read %s: %v", domain.ErrPersistenceFailure, path, err)
	}

	id := uuid.NewString()
	if err := filesystem.AtomicWriteFile(path, []byte(id+"\n"), domain.SecureFilePermissions); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}
	return id, nil
}
