package testutil

import (
	"context"
	"fmt"

	"codeberg.org/mitsuba/kaisetsu/internal/audio"
	"codeberg.org/mitsuba/kaisetsu/internal/chat"
)

// MockChatClient mocks a chat backend for testing
type MockChatClient struct {
	Responses map[string]string // keyed by prompt
	Errors    map[string]error  // keyed by prompt
	Calls     []string
	Requests  []chat.Request
}

// Generate mocks an explanation request
func (m *MockChatClient) Generate(ctx context.Context, req chat.Request) (string, error) {
	m.Requests = append(m.Requests, req)

	call := fmt.Sprintf("Generate: %s", req.Prompt)
	if req.Image != nil {
		call = fmt.Sprintf("%s (+image %s)", call, req.Image.MIME)
	}
	m.Calls = append(m.Calls, call)

	if err, ok := m.Errors[req.Prompt]; ok {
		return "", err
	}

	if text, ok := m.Responses[req.Prompt]; ok {
		return text, nil
	}

	// Default response
	return "mock explanation", nil
}

// Name identifies the mock backend
func (m *MockChatClient) Name() string {
	return "mock-chat"
}

// MockAudioProvider mocks a TTS backend for testing
type MockAudioProvider struct {
	Clips     map[string]*audio.Clip // keyed by input text
	Errors    map[string]error       // keyed by input text
	Available error                  // returned by IsAvailable
	Calls     []string
}

// Synthesize mocks a synthesis request
func (m *MockAudioProvider) Synthesize(ctx context.Context, text string) (*audio.Clip, error) {
	m.Calls = append(m.Calls, fmt.Sprintf("Synthesize: %s", text))

	if err, ok := m.Errors[text]; ok {
		return nil, err
	}

	if clip, ok := m.Clips[text]; ok {
		return clip, nil
	}

	// Default clip
	gen := &TestDataGenerator{}
	return &audio.Clip{
		Audio:     gen.GenerateAudioData(),
		Extension: "mp3",
		MimeType:  "audio/mpeg",
	}, nil
}

// Voices mocks the voice listing
func (m *MockAudioProvider) Voices(ctx context.Context) ([]audio.Voice, error) {
	m.Calls = append(m.Calls, "Voices")
	return []audio.Voice{{ID: "1", Name: "Mock Voice"}}, nil
}

// Name identifies the mock engine
func (m *MockAudioProvider) Name() string {
	return "mock-tts"
}

// IsAvailable mocks the liveness check
func (m *MockAudioProvider) IsAvailable(ctx context.Context) error {
	m.Calls = append(m.Calls, "IsAvailable")
	return m.Available
}

// TestDataGenerator generates test data
type TestDataGenerator struct{}

// GenerateJapaneseWord generates a test Japanese word
func (g *TestDataGenerator) GenerateJapaneseWord() string {
	words := []string{"猫", "犬", "本", "水", "空", "花", "月", "山"}
	return words[0] // Simple implementation, could be randomized
}

// GenerateAudioData generates mock audio data
func (g *TestDataGenerator) GenerateAudioData() []byte {
	// Simple mock MP3 header
	return []byte{0xFF, 0xFB, 0x90, 0x00, 0x00, 0x00, 0x00, 0x00}
}

// GenerateImageData generates mock image data
func (g *TestDataGenerator) GenerateImageData() []byte {
	// Simple mock JPEG header
	return []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46}
}
