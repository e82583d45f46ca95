// Package gemini adapts google.golang.org/genai to the single-prompt model
// interface used by the form assistant.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	BackendGeminiAPI = "gemini-api"
	BackendVertex    = "vertex"

	defaultModel = "gemini-2.0-flash"
)

type Config struct {
	Backend  string
	APIKey   string
	Project  string
	Location string
	Model    string
	// BaseURL overrides the service endpoint. Empty uses the SDK default.
	BaseURL string
}

type Client struct {
	client *genai.Client
	model  string
}

func New(ctx context.Context, cfg Config) (*Client, error) {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	cc := &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{BaseURL: strings.TrimSpace(cfg.BaseURL)},
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendGeminiAPI:
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, errors.New("gemini: api key is required for the gemini-api backend")
		}
		cc.APIKey = cfg.APIKey
		cc.Backend = genai.BackendGeminiAPI
	case BackendVertex:
		if cfg.Project == "" || cfg.Location == "" {
			return nil, errors.New("gemini: project and location are required for the vertex backend")
		}
		cc.Project = cfg.Project
		cc.Location = cfg.Location
		cc.Backend = genai.BackendVertexAI
	default:
		return nil, fmt.Errorf("gemini: unknown backend %q", cfg.Backend)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

// Complete sends prompt as a single user turn and asks for a JSON response.
// An empty reply is returned as "" so the caller can classify it.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	res, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	return res.Text(), nil
}
