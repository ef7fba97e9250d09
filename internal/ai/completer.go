package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Provider identifies which backend serves a model
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderGroq   Provider = "groq"
)

// ProviderForModel derives the provider from a model identifier: gemini
// models go to Google, everything else to Groq.
func ProviderForModel(model string) Provider {
	if strings.Contains(model, "gemini") {
		return ProviderGoogle
	}
	return ProviderGroq
}

// Request is the narrow contract with the text-completion collaborator
type Request struct {
	Prompt   string   `json:"prompt"`
	Provider Provider `json:"provider"`
	Model    string   `json:"model"`
}

// Completer produces a text completion for a prompt. Implementations may
// fail; the adapter converts every failure into a deterministic fallback.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

type completionResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// HTTPCompleter calls the completion endpoint over HTTP with a JSON body of
// {prompt, provider, model} and expects {text} back.
type HTTPCompleter struct {
	endpoint string
	client   *http.Client
	logger   *log.Logger
}

// NewHTTPCompleter creates a completer for the given endpoint URL
func NewHTTPCompleter(endpoint string, logger *log.Logger) *HTTPCompleter {
	return &HTTPCompleter{
		endpoint: endpoint,
		// The adapter enforces its own deadline; this is a safety net for
		// connections that hang without a caller deadline.
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger.WithPrefix("completer"),
	}
}

// Complete implements Completer
func (c *HTTPCompleter) Complete(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	c.logger.Debug("requesting completion", "provider", req.Provider, "model", req.Model)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read completion response: %w", err)
	}

	var parsed completionResponse
	if resp.StatusCode != http.StatusOK {
		// Error bodies are JSON when the collaborator produced them, but
		// treat anything else as opaque.
		_ = json.Unmarshal(data, &parsed)
		if parsed.Error != "" {
			return "", fmt.Errorf("completion failed: %d %s", resp.StatusCode, parsed.Error)
		}
		return "", fmt.Errorf("completion failed: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if parsed.Text == "" {
		return "", fmt.Errorf("completion response missing text")
	}

	return parsed.Text, nil
}
