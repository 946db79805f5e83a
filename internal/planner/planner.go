// Package planner talks to the material planning assistant: it sends the
// buyer's project description plus a catalog summary to a completion
// endpoint and extracts the machine-readable material suggestions embedded
// in the reply.
package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/asapobra/quote-service/internal/catalog"
	"github.com/asapobra/quote-service/internal/quote"
)

// Reply is the assistant's answer: the prose shown to the buyer, with the
// suggestion block already stripped out and decoded.
type Reply struct {
	Text        string             `json:"text"`
	Suggestions []quote.Suggestion `json:"suggestions"`
}

// Planner produces material suggestions for a project description.
type Planner interface {
	Plan(ctx context.Context, message string, materials []catalog.Material) (*Reply, error)
}

// Config holds the completion endpoint settings.
type Config struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// HTTPPlanner calls an OpenAI-compatible chat completion endpoint.
type HTTPPlanner struct {
	cfg    Config
	client *http.Client
	logger zerolog.Logger
}

// NewHTTPPlanner creates a planner against the configured endpoint.
func NewHTTPPlanner(cfg Config) *HTTPPlanner {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &HTTPPlanner{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: log.With().Str("component", "planner").Logger(),
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Plan sends the buyer's message with the catalog summary and decodes the
// suggestion block from the reply.
func (p *HTTPPlanner) Plan(ctx context.Context, message string, materials []catalog.Material) (*Reply, error) {
	payload, err := json.Marshal(chatRequest{
		Model: p.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(materials)},
			{Role: "user", Content: message},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encode planner request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build planner request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("planner request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read planner response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("planner returned status %d", resp.StatusCode)
	}

	var decoded chatResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode planner response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return nil, fmt.Errorf("planner returned no choices")
	}

	text, suggestions := ExtractSuggestions(decoded.Choices[0].Message.Content)
	p.logger.Debug().Int("suggestions", len(suggestions)).Msg("planner reply decoded")
	return &Reply{Text: text, Suggestions: suggestions}, nil
}

// systemPrompt instructs the model and inlines the material catalog so
// suggestions reference real ids.
func systemPrompt(materials []catalog.Material) string {
	var b strings.Builder
	b.WriteString("Voce e um assistente de planejamento de obras. ")
	b.WriteString("Sugira materiais do catalogo abaixo para o projeto do cliente. ")
	b.WriteString("Ao final da resposta inclua um bloco delimitado por ")
	b.WriteString(suggestionsOpen + " e " + suggestionsClose)
	b.WriteString(` contendo JSON no formato {"suggestions":[{"materialId":1,"quantity":10,"rationale":"..."}]}. `)
	b.WriteString("Use apenas ids do catalogo.\n\nCatalogo:\n")
	for _, m := range materials {
		fmt.Fprintf(&b, "- id=%d nome=%s unidade=%s\n", m.ID, m.Name, m.Unit)
	}
	return b.String()
}
