package domain

import "fmt"

// GetDefaultModel retrieves the default model definition from configuration
// Returns an error if the default model is not found
func (c *Config) GetDefaultModel() (ModelDefinition, error) {
	if c.Preferences.DefaultModel == "" {
		return ModelDefinition{}, fmt.Errorf("no default model configured")
	}

	for _, model := range c.Models {
		if model.Name == c.Preferences.DefaultModel {
			return model, nil
		}
	}

	return ModelDefinition{}, fmt.Errorf("default model %s not found in configuration", c.Preferences.DefaultModel)
}

// FindModelByName searches for a model by its name
func (c *Config) FindModelByName(name string) (ModelDefinition, bool) {
	for _, model := range c.Models {
		if model.Name == name {
			return model, true
		}
	}
	return ModelDefinition{}, false
}

// HasModel checks if a model with the given name exists in the configuration
func (c *Config) HasModel(name string) bool {
	_, exists := c.FindModelByName(name)
	return exists
}

// GetStorageBackend returns the configured settings backend, json by default
func (c *Config) GetStorageBackend() string {
	if c.Storage.Backend == "" {
		return StorageBackendJSON
	}
	return c.Storage.Backend
}

// GetPlaceholder returns the redaction placeholder
func (c *Config) GetPlaceholder() string {
	if c.Filter.Placeholder == "" {
		return DefaultRedactionPlaceholder
	}
	return c.Filter.Placeholder
}

// GetDefaultMinutes returns the daily budget given to new device records
func (c *Config) GetDefaultMinutes() int {
	if c.Budget.DefaultMinutes <= 0 {
		return DefaultTimeLimitMinutes
	}
	return c.Budget.DefaultMinutes
}

// GetTimeoutSeconds returns the per-turn request timeout in seconds
func (c *Config) GetTimeoutSeconds() int {
	if c.Preferences.TimeoutSeconds <= 0 {
		return DefaultRequestTimeoutSeconds
	}
	return c.Preferences.TimeoutSeconds
}

// ValidateConsistency checks the internal consistency of the configuration
func (c *Config) ValidateConsistency() error {
	if c.Preferences.DefaultModel != "" && !c.HasModel(c.Preferences.DefaultModel) {
		return fmt.Errorf("default model %s does not exist in models list", c.Preferences.DefaultModel)
	}

	seen := make(map[string]bool, len(c.Models))
	for _, model := range c.Models {
		if seen[model.Name] {
			return fmt.Errorf("model %s is declared more than once", model.Name)
		}
		seen[model.Name] = true
	}

	return nil
}
