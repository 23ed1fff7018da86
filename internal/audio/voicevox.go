package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"codeberg.org/mitsuba/kaisetsu/internal/fault"
)

// VoicevoxProvider talks to a VOICEVOX-compatible synthesis server.
// VOICEVOX itself and AivisSpeech expose the same HTTP API on different
// ports, so both engines share this implementation.
type VoicevoxProvider struct {
	name    string
	baseURL string
	speaker int
	client  *http.Client
}

// NewVoicevoxProvider creates a client for a VOICEVOX-compatible server.
func NewVoicevoxProvider(name, baseURL string, speaker int, timeout time.Duration) *VoicevoxProvider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &VoicevoxProvider{
		name:    name,
		baseURL: baseURL,
		speaker: speaker,
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the engine name
func (p *VoicevoxProvider) Name() string {
	return p.name
}

// IsAvailable checks that the local server answers its version endpoint
func (p *VoicevoxProvider) IsAvailable(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/version", nil)
	if err != nil {
		return fmt.Errorf("failed to create version request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return p.transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &fault.EngineNotRunningError{Engine: p.name, Addr: p.baseURL}
	}
	return nil
}

// Synthesize renders text through the two-step query/synthesis protocol
func (p *VoicevoxProvider) Synthesize(ctx context.Context, text string) (*Clip, error) {
	if err := ValidateText(text); err != nil {
		return nil, err
	}

	query, err := p.audioQuery(ctx, text)
	if err != nil {
		return nil, err
	}

	wav, err := p.synthesis(ctx, query)
	if err != nil {
		return nil, err
	}

	return &Clip{Audio: wav, Extension: "wav", MimeType: "audio/wav"}, nil
}

// audioQuery asks the server to build the synthesis parameters for text.
// The response JSON is passed through to the synthesis call untouched.
func (p *VoicevoxProvider) audioQuery(ctx context.Context, text string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("text", text)
	params.Set("speaker", strconv.Itoa(p.speaker))

	endpoint := fmt.Sprintf("%s/audio_query?%s", p.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio_query request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, p.transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &fault.NetworkError{Service: p.name, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &fault.NetworkError{
			Service: p.name,
			Err:     fmt.Errorf("audio_query returned status %d: %s", resp.StatusCode, errorDetail(body)),
		}
	}

	if !json.Valid(body) {
		return nil, &fault.MalformedResponseError{Service: p.name, Message: "audio_query did not return JSON"}
	}
	return json.RawMessage(body), nil
}

// synthesis turns a query into WAV data.
func (p *VoicevoxProvider) synthesis(ctx context.Context, query json.RawMessage) ([]byte, error) {
	params := url.Values{}
	params.Set("speaker", strconv.Itoa(p.speaker))

	endpoint := fmt.Sprintf("%s/synthesis?%s", p.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(query))
	if err != nil {
		return nil, fmt.Errorf("failed to create synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/wav")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, p.transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &fault.NetworkError{Service: p.name, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &fault.NetworkError{
			Service: p.name,
			Err:     fmt.Errorf("synthesis returned status %d: %s", resp.StatusCode, errorDetail(body)),
		}
	}
	if len(body) == 0 {
		return nil, &fault.MalformedResponseError{Service: p.name, Message: "synthesis returned no audio data"}
	}
	return body, nil
}

// Voices lists the speaker styles the server has installed
func (p *VoicevoxProvider) Voices(ctx context.Context) ([]Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/speakers", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create speakers request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, p.transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &fault.NetworkError{Service: p.name, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &fault.NetworkError{
			Service: p.name,
			Err:     fmt.Errorf("speakers returned status %d: %s", resp.StatusCode, errorDetail(body)),
		}
	}

	var speakers []struct {
		Name   string `json:"name"`
		Styles []struct {
			Name string `json:"name"`
			ID   int    `json:"id"`
		} `json:"styles"`
	}
	if err := json.Unmarshal(body, &speakers); err != nil {
		return nil, &fault.MalformedResponseError{Service: p.name, Message: fmt.Sprintf("cannot parse speakers: %v", err)}
	}

	var voices []Voice
	for _, s := range speakers {
		for _, style := range s.Styles {
			voices = append(voices, Voice{
				ID:   strconv.Itoa(style.ID),
				Name: fmt.Sprintf("%s (%s)", s.Name, style.Name),
			})
		}
	}
	return voices, nil
}

// transportError classifies a failed HTTP round trip. Timeouts are
// network failures; anything else on a localhost server means the
// engine is not running.
func (p *VoicevoxProvider) transportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &fault.NetworkError{Service: p.name, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &fault.NetworkError{Service: p.name, Err: err}
	}
	return &fault.EngineNotRunningError{Engine: p.name, Addr: p.baseURL}
}

// errorDetail extracts the detail message from a FastAPI style error
// body, falling back to the raw body.
func errorDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	const max = 200
	s := string(body)
	if len(s) > max {
		s = s[:max]
	}
	return s
}
