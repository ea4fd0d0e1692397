// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and external
// adapters (infrastructure). The guardian core (credential, budget, reveal, session)
// depends only on these abstractions, never on a concrete store, model vendor or
// terminal.
package ports

import (
	"context"
	"iter"

	"github.com/doeshing/kidchat/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.kidchat/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// SettingsStore is durable key-value persistence of device records, keyed by device id.
// Load of an unknown id returns a fresh default record. Persist is atomic per call.
type SettingsStore interface {
	Load(ctx context.Context, deviceID string) (domain.DeviceRecord, error)
	Persist(ctx context.Context, record domain.DeviceRecord) error
}

// PasswordHasher produces and checks salted password hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// ContentFilter redacts assistant output that contains a banned term.
type ContentFilter interface {
	Normalize(raw string) []string
	Apply(text string, terms []string) (string, bool)
	Evaluate(text string, terms []string) domain.FilterResult
}

// ProviderFactory builds model providers from model definitions.
type ProviderFactory interface {
	ForModel(domain.ModelDefinition) (Generator, error)
}

// Generator is the model call. The returned sequence is finite and not restartable;
// each fragment is incremental text, and a non-nil error ends the stream.
type Generator interface {
	Name() string
	Generate(ctx context.Context, history []domain.PromptMessage) iter.Seq2[string, error]
}

// ActivityLog records guardian-facing events.
type ActivityLog interface {
	Record(entry domain.ActivityEntry) error
	Entries(limit int, kind domain.ActivityKind) ([]domain.ActivityEntry, error)
	Clear() error
	ExportJSON(dest string) error
	Path() string
}

// PasswordPrompter reads a secret from the user without echoing it.
type PasswordPrompter interface {
	ReadPassword(prompt string) (string, error)
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
