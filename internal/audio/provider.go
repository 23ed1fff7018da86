package audio

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/mitsuba/kaisetsu/internal/fault"
)

// Provider defines the interface for text-to-speech engines
type Provider interface {
	// Synthesize renders text to speech and returns the encoded clip
	Synthesize(ctx context.Context, text string) (*Clip, error)

	// Voices lists the voices the engine offers for selection
	Voices(ctx context.Context) ([]Voice, error)

	// Name returns the engine name
	Name() string

	// IsAvailable checks if the engine is properly configured and reachable
	IsAvailable(ctx context.Context) error
}

// Clip is one synthesized audio payload.
type Clip struct {
	Audio     []byte
	Extension string // "wav" or "mp3"
	MimeType  string
}

// Voice identifies a selectable voice or speaker style.
type Voice struct {
	ID   string
	Name string
}

// Engine names accepted in configuration.
const (
	EngineVoicevox   = "voicevox"
	EngineAivis      = "aivisspeech"
	EngineOpenAI     = "openai"
	EngineElevenLabs = "elevenlabs"
)

// Engines returns the supported engine names.
func Engines() []string {
	return []string{EngineVoicevox, EngineAivis, EngineOpenAI, EngineElevenLabs}
}

// OpenAI TTS accepts playback speeds in this range only.
const (
	MinOpenAISpeed = 0.5
	MaxOpenAISpeed = 3.0
)

// Config holds common configuration for audio engines
type Config struct {
	Engine string // "voicevox", "aivisspeech", "openai" or "elevenlabs"

	// VOICEVOX / AivisSpeech settings (same protocol, different server)
	VoicevoxURL     string
	VoicevoxSpeaker int
	AivisURL        string
	AivisSpeaker    int

	// OpenAI-specific settings
	OpenAIKey   string
	OpenAIModel string  // "tts-1", "tts-1-hd", or "gpt-4o-mini-tts"
	OpenAIVoice string  // "alloy", "ash", "ballad", "coral", "echo", "fable", "onyx", "nova", "sage", "shimmer", "verse"
	OpenAISpeed float64 // 0.5 to 3.0

	// ElevenLabs-specific settings
	ElevenLabsKey     string
	ElevenLabsURL     string
	ElevenLabsVoiceID string
	ElevenLabsModelID string

	// Timeout bounds every HTTP call an engine makes
	Timeout time.Duration
}

// DefaultProviderConfig returns default configuration
func DefaultProviderConfig() *Config {
	return &Config{
		Engine:            EngineVoicevox,
		VoicevoxURL:       "http://127.0.0.1:50021",
		VoicevoxSpeaker:   11,
		AivisURL:          "http://127.0.0.1:10101",
		AivisSpeaker:      888753760,
		OpenAIModel:       "gpt-4o-mini-tts",
		OpenAIVoice:       "alloy",
		OpenAISpeed:       1.0,
		ElevenLabsModelID: "eleven_multilingual_v2",
		Timeout:           30 * time.Second,
	}
}

// ValidateConfig rejects settings that would only fail later, during
// synthesis. It runs before any engine is constructed.
func ValidateConfig(config *Config) error {
	switch config.Engine {
	case EngineVoicevox, EngineAivis:
		// Local engines need no credentials.
	case EngineOpenAI:
		if config.OpenAIKey == "" {
			return &fault.ConfigurationError{Setting: "audio.openai_key", Message: "OpenAI API key is required"}
		}
		if config.OpenAISpeed < MinOpenAISpeed || config.OpenAISpeed > MaxOpenAISpeed {
			return &fault.ConfigurationError{
				Setting: "audio.openai_speed",
				Message: fmt.Sprintf("speed %.2f out of range [%.1f, %.1f]", config.OpenAISpeed, MinOpenAISpeed, MaxOpenAISpeed),
			}
		}
	case EngineElevenLabs:
		if config.ElevenLabsKey == "" {
			return &fault.ConfigurationError{Setting: "audio.elevenlabs_key", Message: "ElevenLabs API key is required"}
		}
	default:
		return &fault.ConfigurationError{
			Setting: "audio.engine",
			Message: fmt.Sprintf("unknown engine %q, supported: %v", config.Engine, Engines()),
		}
	}
	return nil
}

// NewProvider creates the appropriate audio engine based on configuration
func NewProvider(config *Config) (Provider, error) {
	if config == nil {
		config = DefaultProviderConfig()
	}
	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	switch config.Engine {
	case EngineVoicevox:
		return NewVoicevoxProvider("VOICEVOX", config.VoicevoxURL, config.VoicevoxSpeaker, config.Timeout), nil
	case EngineAivis:
		return NewVoicevoxProvider("AivisSpeech", config.AivisURL, config.AivisSpeaker, config.Timeout), nil
	case EngineOpenAI:
		return NewOpenAIProvider(config)
	case EngineElevenLabs:
		return NewElevenLabsProvider(config), nil
	default:
		return nil, &fault.ConfigurationError{Setting: "audio.engine", Message: fmt.Sprintf("unknown engine %q", config.Engine)}
	}
}
