package ai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"

	"github.com/doeshing/kidchat/internal/domain"
	"github.com/doeshing/kidchat/internal/ports"
)

// httpProvider streams completions from an HTTP endpoint. The adapter decides
// the request body, the auth headers and how each SSE event maps to text.
type httpProvider struct {
	name       string
	model      domain.ModelDefinition
	endpoint   string
	httpClient *http.Client
	adapter    providerAdapter
}

type providerAdapter struct {
	buildRequest func(domain.ModelDefinition, []domain.PromptMessage) ([]byte, error)
	setHeaders   func(*http.Request, domain.ModelDefinition) error
	// parseEvent returns the text delta of one event, or errStreamDone at the end.
	parseEvent func(event string, data []byte) (string, error)
}

func newHTTPProvider(name, endpoint string, model domain.ModelDefinition, client *http.Client, adapter providerAdapter) ports.Generator {
	return &httpProvider{
		name:       name,
		model:      model,
		endpoint:   endpoint,
		httpClient: client,
		adapter:    adapter,
	}
}

func (p *httpProvider) Name() string {
	return p.name
}

// Generate posts the history and yields text deltas as they arrive.
func (p *httpProvider) Generate(ctx context.Context, history []domain.PromptMessage) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		resp, err := p.open(ctx, withSystemPrompt(p.model, history))
		if err != nil {
			yield("", err)
			return
		}
		defer resp.Body.Close()

		reader := newSSEReader(resp.Body)
		for {
			event, data, err := reader.next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield("", fmt.Errorf("%s: read stream: %w", p.name, err))
				return
			}
			text, err := p.adapter.parseEvent(event, data)
			if errors.Is(err, errStreamDone) {
				return
			}
			if err != nil {
				yield("", fmt.Errorf("%s: %w", p.name, err))
				return
			}
			if text == "" {
				continue
			}
			if !yield(text, nil) {
				return
			}
		}
	}
}

func (p *httpProvider) open(ctx context.Context, messages []domain.PromptMessage) (*http.Response, error) {
	body, err := p.adapter.buildRequest(p.model, messages)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("content-type", "application/json")
	req.Header.Set("accept", "text/event-stream")
	if err := p.adapter.setHeaders(req, p.model); err != nil {
		return nil, err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.name, err)
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		msg := strings.TrimSpace(string(detail))
		if msg == "" {
			return nil, fmt.Errorf("%s: %s", p.name, resp.Status)
		}
		return nil, fmt.Errorf("%s: %s: %s", p.name, resp.Status, msg)
	}
	return resp, nil
}

func withSystemPrompt(model domain.ModelDefinition, history []domain.PromptMessage) []domain.PromptMessage {
	if strings.TrimSpace(model.SystemPrompt) == "" {
		return history
	}
	out := make([]domain.PromptMessage, 0, len(history)+1)
	out = append(out, domain.PromptMessage{Role: string(domain.RoleSystem), Content: model.SystemPrompt})
	return append(out, history...)
}

var _ ports.Generator = (*httpProvider)(nil)
