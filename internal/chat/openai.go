package chat

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"codeberg.org/mitsuba/kaisetsu/internal/fault"
)

// chatCompleter is the slice of the OpenAI client Generate needs.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIClient generates explanations through the chat completion API.
// A circuit breaker fails calls fast once the API has failed several
// times in a row, so a dead backend does not burn a full timeout on
// every remaining note of a batch.
type OpenAIClient struct {
	client  chatCompleter
	config  *Config
	breaker *gobreaker.CircuitBreaker
}

// NewOpenAIClient creates a new OpenAI chat client
func NewOpenAIClient(config *Config) *OpenAIClient {
	return &OpenAIClient{
		client: openai.NewClient(config.OpenAIKey),
		config: config,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "openai-chat",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

// Name returns the backend name
func (c *OpenAIClient) Name() string {
	return BackendOpenAI
}

// Generate requests one explanation. No retries are made; the error
// reports which kind of failure occurred.
func (c *OpenAIClient) Generate(ctx context.Context, r Request) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model(),
		Messages:    c.buildMessages(r),
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.client.CreateChatCompletion(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", &fault.NetworkError{
				Service: "OpenAI",
				Err:     fmt.Errorf("skipping call, too many recent failures: %w", err),
			}
		}
		return "", fault.FromOpenAI("OpenAI", err)
	}

	resp := result.(openai.ChatCompletionResponse)
	if len(resp.Choices) == 0 {
		return "", &fault.MalformedResponseError{Service: "OpenAI", Message: "no choices returned"}
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", &fault.MalformedResponseError{Service: "OpenAI", Message: "empty message content"}
	}
	return content, nil
}

func (c *OpenAIClient) model() string {
	if c.config.Model != "" {
		return c.config.Model
	}
	return DefaultOpenAIModel
}

// buildMessages assembles the system and user messages. When an image
// is attached the user message switches to multi-part content with an
// inline data URI.
func (c *OpenAIClient) buildMessages(r Request) []openai.ChatCompletionMessage {
	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: c.config.SystemPrompt,
		},
	}

	if r.Image == nil {
		return append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: r.Prompt,
		})
	}

	mime := r.Image.MIME
	if mime == "" {
		mime = "image/jpeg"
	}
	return append(messages, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{
				Type: openai.ChatMessagePartTypeText,
				Text: r.Prompt,
			},
			{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(r.Image.Data)),
					Detail: openai.ImageURLDetailAuto,
				},
			},
		},
	})
}
