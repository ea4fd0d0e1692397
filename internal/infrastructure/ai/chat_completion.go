package ai

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/doeshing/kidchat/internal/domain"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
	Stream    bool          `json:"stream"`
}

type chatCompletionChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func openaiAdapter() providerAdapter {
	return providerAdapter{
		buildRequest: buildChatCompletionRequest,
		setHeaders:   setOpenAIHeaders,
		parseEvent:   parseChatCompletionEvent,
	}
}

func ollamaAdapter() providerAdapter {
	return providerAdapter{
		buildRequest: buildChatCompletionRequest,
		setHeaders:   func(*http.Request, domain.ModelDefinition) error { return nil },
		parseEvent:   parseChatCompletionEvent,
	}
}

func buildChatCompletionRequest(model domain.ModelDefinition, messages []domain.PromptMessage) ([]byte, error) {
	chat := make([]chatMessage, 0, len(messages))
	for _, msg := range messages {
		chat = append(chat, chatMessage{Role: strings.ToLower(msg.Role), Content: msg.Content})
	}
	return json.Marshal(chatCompletionRequest{
		Model:     model.ModelID,
		Messages:  chat,
		MaxTokens: model.MaxTokens,
		Stream:    true,
	})
}

func parseChatCompletionEvent(_ string, data []byte) (string, error) {
	if string(data) == "[DONE]" {
		return "", errStreamDone
	}
	var chunk chatCompletionChunk
	if err := json.Unmarshal(data, &chunk); err != nil {
		return "", fmt.Errorf("decode chunk: %w", err)
	}
	if chunk.Error != nil {
		return "", fmt.Errorf("upstream error: %s", chunk.Error.Message)
	}
	if len(chunk.Choices) == 0 {
		return "", nil
	}
	return chunk.Choices[0].Delta.Content, nil
}

func setOpenAIHeaders(req *http.Request, model domain.ModelDefinition) error {
	apiKey := resolveAuth(model.AuthEnvVar, envOpenAIKey)
	if apiKey == "" {
		return fmt.Errorf("missing API key: set %s", authHint(model.AuthEnvVar, envOpenAIKey))
	}
	req.Header.Set("authorization", "Bearer "+apiKey)
	return nil
}
