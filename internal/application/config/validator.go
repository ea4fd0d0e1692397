// Package config validates a loaded configuration.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/doeshing/kidchat/internal/domain"
)

// Validate ensures config structure is consistent.
func Validate(cfg domain.Config) error {
	if len(cfg.Models) == 0 {
		return errors.New("at least one model must be configured")
	}
	if err := cfg.ValidateConsistency(); err != nil {
		return err
	}
	if cfg.Preferences.DefaultModel != "" {
		if _, err := cfg.GetDefaultModel(); err != nil {
			return err
		}
	}
	for _, model := range cfg.Models {
		if err := validateModel(model); err != nil {
			return err
		}
	}
	if err := validateStorage(cfg.Storage); err != nil {
		return err
	}
	if cfg.Budget.DefaultMinutes < 0 {
		return fmt.Errorf("budget.default_minutes must be >= 0")
	}
	if cfg.Preferences.TimeoutSeconds < 0 {
		return fmt.Errorf("preferences.timeout must be >= 0")
	}
	return nil
}

func validateModel(model domain.ModelDefinition) error {
	if strings.TrimSpace(model.Name) == "" {
		return errors.New("models[].name must be set")
	}
	switch domain.ProviderKind(strings.ToLower(model.Provider)) {
	case "", domain.ProviderKindOpenAI, domain.ProviderKindAnthropic, domain.ProviderKindOllama, domain.ProviderKindOffline:
	default:
		return fmt.Errorf("model %s: provider must be openai|anthropic|ollama|offline, got %s", model.Name, model.Provider)
	}
	if model.MaxTokens < 0 {
		return fmt.Errorf("model %s: max_tokens must be >= 0", model.Name)
	}
	return nil
}

func validateStorage(storage domain.StorageSettings) error {
	switch strings.ToLower(storage.Backend) {
	case "", domain.StorageBackendJSON, domain.StorageBackendSQLite:
		return nil
	default:
		return fmt.Errorf("storage.backend must be json|sqlite, got %s", storage.Backend)
	}
}
