package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"codeberg.org/mitsuba/kaisetsu/internal/fault"
)

// GeminiClient generates explanations through the Gemini API.
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a new Gemini chat client
func NewGeminiClient(ctx context.Context, config *Config) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.GeminiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, config: config}, nil
}

// Name returns the backend name
func (c *GeminiClient) Name() string {
	return BackendGemini
}

// Generate requests one explanation from Gemini.
func (c *GeminiClient) Generate(ctx context.Context, r Request) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(r.Prompt)}
	if r.Image != nil {
		mime := r.Image.MIME
		if mime == "" {
			mime = "image/jpeg"
		}
		parts = append(parts, genai.NewPartFromBytes(r.Image.Data, mime))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	genConfig := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(c.config.Temperature),
		MaxOutputTokens: int32(c.config.MaxTokens),
	}
	if c.config.SystemPrompt != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(c.config.SystemPrompt, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model(), contents, genConfig)
	if err != nil {
		return "", classifyGeminiError(err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &fault.MalformedResponseError{Service: "Gemini", Message: "no text in response"}
	}
	return text, nil
}

func (c *GeminiClient) model() string {
	if c.config.Model != "" {
		return c.config.Model
	}
	return DefaultGeminiModel
}

func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fault.FromHTTPStatus("Gemini", apiErr.Code, apiErr.Message)
	}
	return &fault.NetworkError{Service: "Gemini", Err: err}
}
