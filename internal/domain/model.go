// Package domain defines core business entities and value objects for kidchat.
//
// This file contains AI model and provider definitions used throughout the application.
// The domain layer is independent of infrastructure concerns and represents pure
// business logic and data structures.
package domain

// ModelDefinition describes an AI provider configuration declared in the config file.
type ModelDefinition struct {
	Name         string `yaml:"name" toml:"name"`
	Provider     string `yaml:"provider,omitempty" toml:"provider,omitempty"`
	Endpoint     string `yaml:"endpoint" toml:"endpoint"`
	AuthEnvVar   string `yaml:"auth_env_var" toml:"auth_env_var"`
	ModelID      string `yaml:"model_id" toml:"model_id"`
	MaxTokens    int    `yaml:"max_tokens" toml:"max_tokens"`
	SystemPrompt string `yaml:"system_prompt,omitempty" toml:"system_prompt,omitempty"`
}

// ProviderKind identifies the wire protocol spoken by a model endpoint.
type ProviderKind string

const (
	ProviderKindOpenAI    ProviderKind = "openai"
	ProviderKindAnthropic ProviderKind = "anthropic"
	ProviderKindOllama    ProviderKind = "ollama"
	ProviderKindOffline   ProviderKind = "offline"
)

// PromptMessage follows the role/content pair required by most chat APIs.
type PromptMessage struct {
	Role    string `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}
