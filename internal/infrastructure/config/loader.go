// Package config loads ~/.kidchat/config.yaml (or a .toml file) into domain.Config.
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/kidchat/assets"
	appconfig "github.com/doeshing/kidchat/internal/application/config"
	"github.com/doeshing/kidchat/internal/domain"
	"github.com/doeshing/kidchat/internal/pkg/filesystem"
	"github.com/doeshing/kidchat/internal/ports"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "KIDCHAT_CONFIG"

// FileLoader loads configuration from ~/.kidchat/config.yaml (overridable via KIDCHAT_CONFIG).
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader. An empty path uses the environment or the default.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider. A missing file is created with defaults.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.Path()
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return domain.Config{}, fmt.Errorf("create config dir: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := writeDefaultConfig(path, cfg); err != nil {
				return domain.Config{}, err
			}
			return hydrateDefaults(cfg), nil
		}
		return domain.Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg, err := decode(path, data)
	if err != nil {
		return domain.Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg = hydrateDefaults(cfg)
	if err := appconfig.Validate(cfg); err != nil {
		return domain.Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Path returns the file Load reads.
func (l *FileLoader) Path() string {
	if l.overridePath != "" {
		return filesystem.ExpandHome(l.overridePath)
	}
	if custom := os.Getenv(EnvConfigPath); custom != "" {
		return filesystem.ExpandHome(custom)
	}
	return filepath.Join(DefaultDataDir(), "config.yaml")
}

// DefaultDataDir is ~/.kidchat.
func DefaultDataDir() string {
	return filepath.Join(filesystem.UserHomeDir(), ".kidchat")
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func decode(path string, data []byte) (domain.Config, error) {
	var cfg domain.Config
	if isTOML(path) {
		_, err := toml.Decode(string(data), &cfg)
		return cfg, err
	}
	err := yaml.Unmarshal(data, &cfg)
	return cfg, err
}

// writeDefaultConfig keeps the commented template for YAML and encodes cfg for TOML.
func writeDefaultConfig(path string, cfg domain.Config) error {
	raw := assets.DefaultConfigYAML
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return err
		}
		raw = buf.Bytes()
	}
	return filesystem.AtomicWriteFile(path, raw, domain.SecureFilePermissions)
}

// DefaultConfig is the bootstrap configuration written on first run.
func DefaultConfig() domain.Config {
	var cfg domain.Config
	if err := yaml.Unmarshal(assets.DefaultConfigYAML, &cfg); err != nil {
		// Fallback to an offline-only config if the embedded YAML is corrupted
		return domain.Config{
			ConfigFormatVersion: "1",
			Preferences:         domain.Preferences{DefaultModel: "offline"},
			Models: []domain.ModelDefinition{
				{Name: "offline", Provider: string(domain.ProviderKindOffline)},
			},
		}
	}
	return cfg
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = "1"
	}
	if cfg.Preferences.DefaultModel == "" && len(cfg.Models) > 0 {
		cfg.Preferences.DefaultModel = cfg.Models[0].Name
	}
	if cfg.Preferences.TimeoutSeconds <= 0 {
		cfg.Preferences.TimeoutSeconds = domain.DefaultRequestTimeoutSeconds
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = domain.StorageBackendJSON
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = DefaultDataDir()
	}
	cfg.Storage.DataDir = filesystem.ExpandHome(cfg.Storage.DataDir)
	if cfg.Filter.Placeholder == "" {
		cfg.Filter.Placeholder = domain.DefaultRedactionPlaceholder
	}
	if cfg.Filter.SeedFile != "" {
		cfg.Filter.SeedFile = filesystem.ExpandHome(cfg.Filter.SeedFile)
	}
	if cfg.Budget.DefaultMinutes <= 0 {
		cfg.Budget.DefaultMinutes = domain.DefaultTimeLimitMinutes
	}
	return cfg
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
