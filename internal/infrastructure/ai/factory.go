// Package ai implements model providers behind ports.Generator.
//
// OpenAI and Ollama speak the chat-completions SSE stream, Anthropic the
// messages SSE stream. Models without a usable endpoint or API key get the
// offline provider so the rest of the app keeps working.
package ai

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/doeshing/kidchat/internal/domain"
	"github.com/doeshing/kidchat/internal/ports"
)

const (
	defaultOpenAIEndpoint    = "https://api.openai.com/v1/chat/completions"
	defaultAnthropicEndpoint = "https://api.anthropic.com/v1/messages"
	defaultOllamaEndpoint    = "http://localhost:11434/v1/chat/completions"
)

// Factory creates providers and shares one HTTP client between them.
type Factory struct {
	httpClient *http.Client
}

// NewFactory creates a factory whose requests time out after timeout (0 means the default).
func NewFactory(timeout time.Duration) *Factory {
	if timeout <= 0 {
		timeout = domain.DefaultHTTPClientTimeout
	}
	return &Factory{httpClient: &http.Client{Timeout: timeout}}
}

// NewFactoryWithClient is used by tests to point providers at a local server.
func NewFactoryWithClient(client *http.Client) *Factory {
	return &Factory{httpClient: client}
}

// ForModel picks the provider for model.
func (f *Factory) ForModel(model domain.ModelDefinition) (ports.Generator, error) {
	switch kind := InferProviderKind(model); kind {
	case domain.ProviderKindAnthropic:
		if resolveAuth(model.AuthEnvVar, envAnthropicKey) == "" {
			return newOfflineProvider("no Anthropic API key"), nil
		}
		return newHTTPProvider("anthropic", valueOrDefault(model.Endpoint, defaultAnthropicEndpoint), model, f.httpClient, anthropicAdapter()), nil
	case domain.ProviderKindOpenAI:
		if resolveAuth(model.AuthEnvVar, envOpenAIKey) == "" {
			return newOfflineProvider("no OpenAI API key"), nil
		}
		return newHTTPProvider("openai", valueOrDefault(model.Endpoint, defaultOpenAIEndpoint), model, f.httpClient, openaiAdapter()), nil
	case domain.ProviderKindOllama:
		return newHTTPProvider("ollama", valueOrDefault(model.Endpoint, defaultOllamaEndpoint), model, f.httpClient, ollamaAdapter()), nil
	case domain.ProviderKindOffline:
		return newOfflineProvider(""), nil
	default:
		return nil, fmt.Errorf("%w: unsupported provider kind %q", domain.ErrInvalidState, kind)
	}
}

// InferProviderKind uses the explicit provider field, then endpoint and name hints.
func InferProviderKind(model domain.ModelDefinition) domain.ProviderKind {
	if model.Provider != "" {
		return domain.ProviderKind(strings.ToLower(model.Provider))
	}
	endpoint := strings.ToLower(model.Endpoint)
	name := strings.ToLower(model.Name)
	switch {
	case strings.Contains(endpoint, "anthropic.com"), strings.Contains(name, "claude"):
		return domain.ProviderKindAnthropic
	case strings.Contains(endpoint, "openai.com"), strings.Contains(name, "gpt"):
		return domain.ProviderKindOpenAI
	case strings.Contains(name, "ollama"), strings.Contains(endpoint, "11434"), strings.Contains(endpoint, "localhost"):
		return domain.ProviderKindOllama
	default:
		return domain.ProviderKindOffline
	}
}

var _ ports.ProviderFactory = (*Factory)(nil)
