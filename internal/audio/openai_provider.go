package audio

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sashabaranov/go-openai"

	"codeberg.org/mitsuba/kaisetsu/internal/fault"
)

// openAIVoices are the voices the speech endpoint accepts.
var openAIVoices = []string{
	"alloy", "ash", "ballad", "coral", "echo", "fable",
	"onyx", "nova", "sage", "shimmer", "verse",
}

// OpenAIProvider implements Provider for the OpenAI speech endpoint
type OpenAIProvider struct {
	client *openai.Client
	config *Config
}

// NewOpenAIProvider creates a new OpenAI TTS engine
func NewOpenAIProvider(config *Config) (Provider, error) {
	if config.OpenAIKey == "" {
		return nil, &fault.ConfigurationError{Setting: "audio.openai_key", Message: "OpenAI API key is required"}
	}

	return &OpenAIProvider{
		client: openai.NewClient(config.OpenAIKey),
		config: config,
	}, nil
}

// Synthesize renders text using OpenAI TTS
func (p *OpenAIProvider) Synthesize(ctx context.Context, text string) (*Clip, error) {
	if err := ValidateText(text); err != nil {
		return nil, err
	}

	req := openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(p.config.OpenAIModel),
		Input:          text,
		Voice:          openai.SpeechVoice(p.config.OpenAIVoice),
		Speed:          p.config.OpenAISpeed,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	}

	response, err := p.client.CreateSpeech(ctx, req)
	if err != nil {
		// Check if it's a model access error
		if strings.Contains(err.Error(), "does not have access to model") {
			return nil, &fault.ConfigurationError{
				Setting: "audio.openai_model",
				Message: fmt.Sprintf("no access to model %s, try tts-1-hd instead", p.config.OpenAIModel),
			}
		}
		return nil, fault.FromOpenAI("OpenAI TTS", err)
	}
	defer response.Close()

	data, err := io.ReadAll(response)
	if err != nil {
		return nil, &fault.NetworkError{Service: "OpenAI TTS", Err: err}
	}
	if len(data) == 0 {
		return nil, &fault.MalformedResponseError{Service: "OpenAI TTS", Message: "no audio data received"}
	}

	return &Clip{Audio: data, Extension: "mp3", MimeType: "audio/mpeg"}, nil
}

// Voices returns the fixed voice list of the speech endpoint
func (p *OpenAIProvider) Voices(ctx context.Context) ([]Voice, error) {
	voices := make([]Voice, 0, len(openAIVoices))
	for _, v := range openAIVoices {
		voices = append(voices, Voice{ID: v, Name: v})
	}
	return voices, nil
}

// Name returns the engine name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the OpenAI API is accessible
func (p *OpenAIProvider) IsAvailable(ctx context.Context) error {
	if p.config.OpenAIKey == "" {
		return &fault.ConfigurationError{Setting: "audio.openai_key", Message: "OpenAI API key not configured"}
	}

	// We could make a test API call here, but that would use credits
	// For now, just check that we have a key
	return nil
}
