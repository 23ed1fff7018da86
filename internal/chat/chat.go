// Package chat generates explanation text for a note through a
// configurable model backend.
package chat

import (
	"context"
	"fmt"

	"codeberg.org/mitsuba/kaisetsu/internal/fault"
)

// Request defaults sent with every generation.
const (
	DefaultSystemPrompt = "You are a helpful assistant for Japanese language learners."
	DefaultOpenAIModel  = "gpt-4o"
	DefaultGeminiModel  = "gemini-2.0-flash"
	DefaultTemperature  = 0.7
	DefaultMaxTokens    = 500
)

// Backend names accepted in configuration.
const (
	BackendOpenAI = "openai"
	BackendGemini = "gemini"
)

// Backends returns the supported backend names.
func Backends() []string {
	return []string{BackendOpenAI, BackendGemini}
}

// Image is a picture attached to a generation request for
// vision-capable models.
type Image struct {
	Data []byte
	MIME string
}

// Request carries one generation request.
type Request struct {
	Prompt string
	Image  *Image
}

// Client produces explanation text for a request. Implementations do
// not retry; the caller decides what a failure means for the note.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
	Name() string
}

// Config holds common configuration for chat backends
type Config struct {
	Backend string // "openai" or "gemini"
	Model   string // empty selects the backend default

	OpenAIKey string
	GeminiKey string

	SystemPrompt string
	Temperature  float32
	MaxTokens    int
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Backend:      BackendOpenAI,
		SystemPrompt: DefaultSystemPrompt,
		Temperature:  DefaultTemperature,
		MaxTokens:    DefaultMaxTokens,
	}
}

// NewClient creates the appropriate chat backend based on configuration
func NewClient(ctx context.Context, config *Config) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Backend {
	case BackendOpenAI:
		if config.OpenAIKey == "" {
			return nil, &fault.ConfigurationError{Setting: "chat.openai_key", Message: "OpenAI API key is required"}
		}
		return NewOpenAIClient(config), nil
	case BackendGemini:
		if config.GeminiKey == "" {
			return nil, &fault.ConfigurationError{Setting: "chat.gemini_key", Message: "Gemini API key is required"}
		}
		return NewGeminiClient(ctx, config)
	default:
		return nil, &fault.ConfigurationError{
			Setting: "chat.backend",
			Message: fmt.Sprintf("unknown backend %q, supported: %v", config.Backend, Backends()),
		}
	}
}
