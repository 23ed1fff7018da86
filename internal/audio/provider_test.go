package audio

import (
	"errors"
	"testing"

	"codeberg.org/mitsuba/kaisetsu/internal/fault"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		config   func() *Config
		wantName string
		wantErr  bool
	}{
		{
			name:     "nil config uses defaults",
			config:   func() *Config { return nil },
			wantName: "VOICEVOX",
		},
		{
			name: "voicevox",
			config: func() *Config {
				return DefaultProviderConfig()
			},
			wantName: "VOICEVOX",
		},
		{
			name: "aivisspeech",
			config: func() *Config {
				c := DefaultProviderConfig()
				c.Engine = EngineAivis
				return c
			},
			wantName: "AivisSpeech",
		},
		{
			name: "openai with key",
			config: func() *Config {
				c := DefaultProviderConfig()
				c.Engine = EngineOpenAI
				c.OpenAIKey = "sk-test"
				return c
			},
			wantName: "openai",
		},
		{
			name: "openai without key",
			config: func() *Config {
				c := DefaultProviderConfig()
				c.Engine = EngineOpenAI
				return c
			},
			wantErr: true,
		},
		{
			name: "elevenlabs with key",
			config: func() *Config {
				c := DefaultProviderConfig()
				c.Engine = EngineElevenLabs
				c.ElevenLabsKey = "el-test"
				return c
			},
			wantName: "elevenlabs",
		},
		{
			name: "elevenlabs without key",
			config: func() *Config {
				c := DefaultProviderConfig()
				c.Engine = EngineElevenLabs
				return c
			},
			wantErr: true,
		},
		{
			name: "unknown engine",
			config: func() *Config {
				c := DefaultProviderConfig()
				c.Engine = "espeak"
				return c
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.config())
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewProvider() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var confErr *fault.ConfigurationError
				if !errors.As(err, &confErr) {
					t.Errorf("NewProvider() error type = %T, want *fault.ConfigurationError", err)
				}
				return
			}
			if p.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", p.Name(), tt.wantName)
			}
		})
	}
}

func TestValidateConfigSpeedBounds(t *testing.T) {
	tests := []struct {
		name    string
		speed   float64
		wantErr bool
	}{
		{"lower bound", 0.5, false},
		{"normal", 1.0, false},
		{"upper bound", 3.0, false},
		{"below range", 0.25, true},
		{"above range", 3.5, true},
		{"zero", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultProviderConfig()
			c.Engine = EngineOpenAI
			c.OpenAIKey = "sk-test"
			c.OpenAISpeed = tt.speed
			err := ValidateConfig(c)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig(speed=%v) error = %v, wantErr %v", tt.speed, err, tt.wantErr)
			}
		})
	}
}

func TestValidateConfigLocalEnginesNeedNoKey(t *testing.T) {
	for _, engine := range []string{EngineVoicevox, EngineAivis} {
		c := DefaultProviderConfig()
		c.Engine = engine
		if err := ValidateConfig(c); err != nil {
			t.Errorf("ValidateConfig(%s) error = %v, want nil", engine, err)
		}
	}
}

func TestDefaultProviderConfig(t *testing.T) {
	c := DefaultProviderConfig()

	if c.Engine != EngineVoicevox {
		t.Errorf("Engine = %q, want %q", c.Engine, EngineVoicevox)
	}
	if c.VoicevoxURL != "http://127.0.0.1:50021" {
		t.Errorf("VoicevoxURL = %q", c.VoicevoxURL)
	}
	if c.AivisURL != "http://127.0.0.1:10101" {
		t.Errorf("AivisURL = %q", c.AivisURL)
	}
	if c.VoicevoxSpeaker != 11 {
		t.Errorf("VoicevoxSpeaker = %d, want 11", c.VoicevoxSpeaker)
	}
	if c.OpenAISpeed != 1.0 {
		t.Errorf("OpenAISpeed = %v, want 1.0", c.OpenAISpeed)
	}
	if c.OpenAIVoice != "alloy" {
		t.Errorf("OpenAIVoice = %q, want alloy", c.OpenAIVoice)
	}
}

func TestEngines(t *testing.T) {
	engines := Engines()
	if len(engines) != 4 {
		t.Fatalf("Engines() returned %d entries, want 4", len(engines))
	}
	want := map[string]bool{
		EngineVoicevox:   true,
		EngineAivis:      true,
		EngineOpenAI:     true,
		EngineElevenLabs: true,
	}
	for _, e := range engines {
		if !want[e] {
			t.Errorf("Engines() contains unexpected %q", e)
		}
	}
}
