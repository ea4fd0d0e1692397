package ai

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/doeshing/kidchat/internal/domain"
)

const (
	anthropicVersion      = "2023-06-01"
	defaultAnthropicModel = "claude-3-5-sonnet-20240620"
)

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
	Stream    bool               `json:"stream"`
}

type anthropicEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func anthropicAdapter() providerAdapter {
	return providerAdapter{
		buildRequest: buildAnthropicRequest,
		setHeaders:   setAnthropicHeaders,
		parseEvent:   parseAnthropicEvent,
	}
}

func buildAnthropicRequest(model domain.ModelDefinition, messages []domain.PromptMessage) ([]byte, error) {
	var system []string
	chat := make([]anthropicMessage, 0, len(messages))
	for _, msg := range messages {
		if strings.EqualFold(msg.Role, string(domain.RoleSystem)) {
			system = append(system, msg.Content)
			continue
		}
		chat = append(chat, anthropicMessage{Role: strings.ToLower(msg.Role), Content: msg.Content})
	}
	return json.Marshal(anthropicRequest{
		Model:     valueOrDefault(model.ModelID, defaultAnthropicModel),
		MaxTokens: valueOrDefaultInt(model.MaxTokens, domain.DefaultMaxTokens),
		System:    strings.TrimSpace(strings.Join(system, "\n")),
		Messages:  chat,
		Stream:    true,
	})
}

func parseAnthropicEvent(event string, data []byte) (string, error) {
	var decoded anthropicEvent
	if err := json.Unmarshal(data, &decoded); err != nil {
		return "", fmt.Errorf("decode event: %w", err)
	}
	kind := decoded.Type
	if kind == "" {
		kind = event
	}
	switch kind {
	case "content_block_delta":
		if decoded.Delta.Type == "" || decoded.Delta.Type == "text_delta" {
			return decoded.Delta.Text, nil
		}
		return "", nil
	case "message_stop":
		return "", errStreamDone
	case "error":
		return "", fmt.Errorf("upstream error: %s: %s", decoded.Error.Type, decoded.Error.Message)
	default:
		return "", nil
	}
}

func setAnthropicHeaders(req *http.Request, model domain.ModelDefinition) error {
	apiKey := resolveAuth(model.AuthEnvVar, envAnthropicKey)
	if apiKey == "" {
		return fmt.Errorf("missing API key: set %s", authHint(model.AuthEnvVar, envAnthropicKey))
	}
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	return nil
}
