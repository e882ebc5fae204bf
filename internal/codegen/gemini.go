package codegen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/Houeta/scrum-agent/internal/config"
)

const DefaultModel = "gemini-2.0-flash"

var ErrEmptyResponse = errors.New("model returned no text")

type Gemini struct {
	log    *slog.Logger
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini API client. cfg.BaseURL overrides the API endpoint when not empty.
func NewGemini(ctx context.Context, log *slog.Logger, cfg config.GeminiConfig) (*Gemini, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Gemini{
		log:    log.With(slog.String("division", "codegen")),
		client: client,
		model:  model,
	}, nil
}

// Generate sends prompt to the model and returns the text of its reply.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	g.log.DebugContext(ctx, "Generating code", "model", g.model, "prompt_chars", len(prompt))

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content with %s: %w", g.model, err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}

	g.log.DebugContext(ctx, "Code generated", "model", g.model, "reply_chars", len(text))

	return text, nil
}
