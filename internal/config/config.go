// Package config holds the tool configuration. Values resolve through
// viper in the usual order: command line flags, environment variables
// with the KAISETSU prefix, the config file, then the defaults
// registered here. API keys additionally fall back to the conventional
// environment variables of each service.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"codeberg.org/mitsuba/kaisetsu/internal/audio"
	"codeberg.org/mitsuba/kaisetsu/internal/chat"
	"codeberg.org/mitsuba/kaisetsu/internal/fault"
	"codeberg.org/mitsuba/kaisetsu/internal/logging"
	"codeberg.org/mitsuba/kaisetsu/internal/prompt"
)

// Fields names the note fields the tool reads and writes. Picture is
// optional; leaving it empty disables image lookup entirely.
type Fields struct {
	Word        string
	Sentence    string
	Definition  string
	Picture     string
	Explanation string
	Audio       string
}

// Config is the full tool configuration.
type Config struct {
	Collection string // path to collection.anki2
	Deck       string // empty means every deck
	NoteType   string

	Fields Fields

	PromptTemplate string
	Vision         bool          // attach the picture field to chat requests
	Override       bool          // regenerate over non-empty target fields
	SkipAudio      bool          // text only, no synthesis
	Timeout        time.Duration // per network call

	Chat  chat.Config
	Audio audio.Config

	LogFile string
	Verbose bool
}

// DefaultCollectionPath returns the stock Anki collection location for
// the first profile. Anki keeps per-profile data under
// ~/.local/share/Anki2/<profile>/ on Linux.
func DefaultCollectionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "collection.anki2"
	}
	return filepath.Join(home, ".local", "share", "Anki2", "User 1", "collection.anki2")
}

func setDefaults() {
	audioDefaults := audio.DefaultProviderConfig()

	viper.SetDefault("collection.path", DefaultCollectionPath())
	viper.SetDefault("collection.note_type", "Japanese Vocabulary")

	viper.SetDefault("fields.word", "Expression")
	viper.SetDefault("fields.sentence", "Sentence")
	viper.SetDefault("fields.definition", "Meaning")
	viper.SetDefault("fields.explanation", "Explanation")
	viper.SetDefault("fields.audio", "ExplanationAudio")

	viper.SetDefault("prompt.template", prompt.DefaultTemplate)

	viper.SetDefault("run.timeout", time.Minute)

	viper.SetDefault("chat.backend", chat.BackendOpenAI)
	viper.SetDefault("chat.system_prompt", chat.DefaultSystemPrompt)
	viper.SetDefault("chat.temperature", chat.DefaultTemperature)
	viper.SetDefault("chat.max_tokens", chat.DefaultMaxTokens)
	viper.SetDefault("chat.vision", true)

	viper.SetDefault("audio.engine", audioDefaults.Engine)
	viper.SetDefault("audio.voicevox_url", audioDefaults.VoicevoxURL)
	viper.SetDefault("audio.voicevox_speaker", audioDefaults.VoicevoxSpeaker)
	viper.SetDefault("audio.aivis_url", audioDefaults.AivisURL)
	viper.SetDefault("audio.aivis_speaker", audioDefaults.AivisSpeaker)
	viper.SetDefault("audio.openai_model", audioDefaults.OpenAIModel)
	viper.SetDefault("audio.openai_voice", audioDefaults.OpenAIVoice)
	viper.SetDefault("audio.openai_speed", audioDefaults.OpenAISpeed)
	viper.SetDefault("audio.elevenlabs_model", audioDefaults.ElevenLabsModelID)

	viper.SetDefault("log.file", logging.DefaultPath())
}

// keyFromEnv prefers the conventional environment variable of a
// service over the config value, matching what the service SDKs
// themselves read.
func keyFromEnv(envVar, viperKey string) string {
	if key := os.Getenv(envVar); key != "" {
		return key
	}
	return viper.GetString(viperKey)
}

// Load assembles the configuration from viper. Defaults are registered
// first so every key resolves even without a config file; bound flags
// and environment variables take precedence over both.
func Load() *Config {
	setDefaults()

	cfg := &Config{
		Collection: viper.GetString("collection.path"),
		Deck:       viper.GetString("collection.deck"),
		NoteType:   viper.GetString("collection.note_type"),
		Fields: Fields{
			Word:        viper.GetString("fields.word"),
			Sentence:    viper.GetString("fields.sentence"),
			Definition:  viper.GetString("fields.definition"),
			Picture:     viper.GetString("fields.picture"),
			Explanation: viper.GetString("fields.explanation"),
			Audio:       viper.GetString("fields.audio"),
		},
		PromptTemplate: viper.GetString("prompt.template"),
		Vision:         viper.GetBool("chat.vision"),
		Override:       viper.GetBool("run.override"),
		SkipAudio:      viper.GetBool("run.skip_audio"),
		Timeout:        viper.GetDuration("run.timeout"),
		LogFile:        viper.GetString("log.file"),
		Verbose:        viper.GetBool("log.verbose"),
	}

	cfg.Chat = chat.Config{
		Backend:      viper.GetString("chat.backend"),
		Model:        viper.GetString("chat.model"),
		OpenAIKey:    keyFromEnv("OPENAI_API_KEY", "chat.openai_key"),
		GeminiKey:    keyFromEnv("GEMINI_API_KEY", "chat.gemini_key"),
		SystemPrompt: viper.GetString("chat.system_prompt"),
		Temperature:  float32(viper.GetFloat64("chat.temperature")),
		MaxTokens:    viper.GetInt("chat.max_tokens"),
	}

	cfg.Audio = audio.Config{
		Engine:            viper.GetString("audio.engine"),
		VoicevoxURL:       viper.GetString("audio.voicevox_url"),
		VoicevoxSpeaker:   viper.GetInt("audio.voicevox_speaker"),
		AivisURL:          viper.GetString("audio.aivis_url"),
		AivisSpeaker:      viper.GetInt("audio.aivis_speaker"),
		OpenAIKey:         keyFromEnv("OPENAI_API_KEY", "audio.openai_key"),
		OpenAIModel:       viper.GetString("audio.openai_model"),
		OpenAIVoice:       viper.GetString("audio.openai_voice"),
		OpenAISpeed:       viper.GetFloat64("audio.openai_speed"),
		ElevenLabsKey:     keyFromEnv("ELEVENLABS_API_KEY", "audio.elevenlabs_key"),
		ElevenLabsVoiceID: viper.GetString("audio.elevenlabs_voice"),
		ElevenLabsModelID: viper.GetString("audio.elevenlabs_model"),
		Timeout:           cfg.Timeout,
	}

	return cfg
}

// Validate checks the configuration before any note is touched. All
// failures are ConfigurationErrors naming the offending setting.
func (c *Config) Validate() error {
	if c.Collection == "" {
		return &fault.ConfigurationError{Setting: "collection.path", Message: "collection path is required"}
	}
	if c.NoteType == "" {
		return &fault.ConfigurationError{Setting: "collection.note_type", Message: "note type is required"}
	}
	for _, f := range []struct{ setting, name string }{
		{"fields.word", c.Fields.Word},
		{"fields.sentence", c.Fields.Sentence},
		{"fields.definition", c.Fields.Definition},
		{"fields.explanation", c.Fields.Explanation},
	} {
		if f.name == "" {
			return &fault.ConfigurationError{Setting: f.setting, Message: "field name is required"}
		}
	}
	if !c.SkipAudio && c.Fields.Audio == "" {
		return &fault.ConfigurationError{Setting: "fields.audio", Message: "field name is required"}
	}
	if c.Timeout <= 0 {
		return &fault.ConfigurationError{Setting: "run.timeout", Message: "timeout must be positive"}
	}

	if err := prompt.Validate(c.PromptTemplate); err != nil {
		return err
	}
	if !prompt.References(c.PromptTemplate, prompt.PlaceholderWord) {
		return &fault.ConfigurationError{
			Setting: "prompt.template",
			Message: "template must reference {word}",
		}
	}

	switch c.Chat.Backend {
	case chat.BackendOpenAI:
		if c.Chat.OpenAIKey == "" {
			return &fault.ConfigurationError{
				Setting: "chat.openai_key",
				Message: "OpenAI API key is required (set OPENAI_API_KEY)",
			}
		}
	case chat.BackendGemini:
		if c.Chat.GeminiKey == "" {
			return &fault.ConfigurationError{
				Setting: "chat.gemini_key",
				Message: "Gemini API key is required (set GEMINI_API_KEY)",
			}
		}
	default:
		return &fault.ConfigurationError{
			Setting: "chat.backend",
			Message: fmt.Sprintf("unknown backend %q, valid backends: %s",
				c.Chat.Backend, strings.Join(chat.Backends(), ", ")),
		}
	}

	if !c.SkipAudio {
		if err := audio.ValidateConfig(&c.Audio); err != nil {
			return err
		}
	}

	return nil
}
