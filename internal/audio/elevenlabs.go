package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"codeberg.org/mitsuba/kaisetsu/internal/fault"
)

// ElevenLabsProvider implements Provider for the ElevenLabs API.
type ElevenLabsProvider struct {
	apiKey  string
	baseURL string
	voiceID string
	modelID string
	client  *http.Client
}

// NewElevenLabsProvider creates a new ElevenLabs engine
func NewElevenLabsProvider(config *Config) *ElevenLabsProvider {
	p := &ElevenLabsProvider{
		apiKey:  config.ElevenLabsKey,
		baseURL: config.ElevenLabsURL,
		voiceID: config.ElevenLabsVoiceID,
		modelID: config.ElevenLabsModelID,
		client:  &http.Client{Timeout: config.Timeout},
	}
	if p.baseURL == "" {
		p.baseURL = "https://api.elevenlabs.io"
	}
	if p.voiceID == "" {
		p.voiceID = "pMsXgVXv3BLzUgSXRplE"
	}
	if p.modelID == "" {
		p.modelID = "eleven_multilingual_v2"
	}
	if p.client.Timeout <= 0 {
		p.client.Timeout = 30 * time.Second
	}
	return p
}

// Name returns the engine name
func (p *ElevenLabsProvider) Name() string {
	return "elevenlabs"
}

// Synthesize calls the ElevenLabs text-to-speech endpoint
func (p *ElevenLabsProvider) Synthesize(ctx context.Context, text string) (*Clip, error) {
	if err := ValidateText(text); err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"text":     text,
		"model_id": p.modelID,
		"voice_settings": map[string]interface{}{
			"stability":         0.5,
			"similarity_boost":  0.75,
			"style":             0.0,
			"use_speaker_boost": true,
		},
	}
	bodyJSON, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal synthesis request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=mp3_44100_128", p.baseURL, p.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &fault.NetworkError{Service: "ElevenLabs", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &fault.NetworkError{Service: "ElevenLabs", Err: err}
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return nil, &fault.RateLimitError{Service: "ElevenLabs", RetryAfter: time.Duration(retryAfter) * time.Second}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fault.FromHTTPStatus("ElevenLabs", resp.StatusCode, elevenLabsDetail(data))
	}
	if len(data) == 0 {
		return nil, &fault.MalformedResponseError{Service: "ElevenLabs", Message: "no audio data received"}
	}

	return &Clip{Audio: data, Extension: "mp3", MimeType: "audio/mpeg"}, nil
}

// Voices lists the voices available to the account
func (p *ElevenLabsProvider) Voices(ctx context.Context) ([]Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/v1/voices", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create voices request: %w", err)
	}
	req.Header.Set("xi-api-key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &fault.NetworkError{Service: "ElevenLabs", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &fault.NetworkError{Service: "ElevenLabs", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fault.FromHTTPStatus("ElevenLabs", resp.StatusCode, elevenLabsDetail(data))
	}

	var parsed struct {
		Voices []struct {
			VoiceID string `json:"voice_id"`
			Name    string `json:"name"`
		} `json:"voices"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, &fault.MalformedResponseError{Service: "ElevenLabs", Message: fmt.Sprintf("cannot parse voices: %v", err)}
	}

	voices := make([]Voice, 0, len(parsed.Voices))
	for _, v := range parsed.Voices {
		voices = append(voices, Voice{ID: v.VoiceID, Name: v.Name})
	}
	return voices, nil
}

// IsAvailable checks if the engine is configured
func (p *ElevenLabsProvider) IsAvailable(ctx context.Context) error {
	if p.apiKey == "" {
		return &fault.ConfigurationError{Setting: "audio.elevenlabs_key", Message: "ElevenLabs API key not configured"}
	}
	return nil
}

// elevenLabsDetail extracts the message from an ElevenLabs error body,
// falling back to the raw body.
func elevenLabsDetail(body []byte) string {
	var parsed struct {
		Detail struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		} `json:"detail"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Detail.Message != "" {
		return parsed.Detail.Message
	}
	return errorDetail(body)
}
