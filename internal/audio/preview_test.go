package audio

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

type stubProvider struct {
	lastText     string
	availableErr error
}

func (s *stubProvider) Synthesize(ctx context.Context, text string) (*Clip, error) {
	s.lastText = text
	return &Clip{Audio: []byte("clip"), Extension: "wav", MimeType: "audio/wav"}, nil
}

func (s *stubProvider) Voices(ctx context.Context) ([]Voice, error) { return nil, nil }
func (s *stubProvider) Name() string                                { return "stub" }
func (s *stubProvider) IsAvailable(ctx context.Context) error       { return s.availableErr }

func TestPreviewUsesDefaultText(t *testing.T) {
	stub := &stubProvider{}
	clip, err := Preview(context.Background(), stub, "")
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if stub.lastText != DefaultPreviewText {
		t.Errorf("Preview() synthesized %q, want default text", stub.lastText)
	}
	if len(clip.Audio) == 0 {
		t.Error("Preview() returned empty clip")
	}
}

func TestPreviewCustomText(t *testing.T) {
	stub := &stubProvider{}
	if _, err := Preview(context.Background(), stub, "やあ"); err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if stub.lastText != "やあ" {
		t.Errorf("Preview() synthesized %q, want やあ", stub.lastText)
	}
}

func TestPreviewChecksAvailability(t *testing.T) {
	stub := &stubProvider{availableErr: os.ErrDeadlineExceeded}
	if _, err := Preview(context.Background(), stub, "x"); err == nil {
		t.Error("Preview() should fail when the engine is unavailable")
	}
}

func TestWriteClip(t *testing.T) {
	dir := t.TempDir()
	clip := &Clip{Audio: []byte("audio-bytes"), Extension: "mp3", MimeType: "audio/mpeg"}

	path, err := WriteClip(clip, filepath.Join(dir, "sample"))
	if err != nil {
		t.Fatalf("WriteClip() error = %v", err)
	}
	if filepath.Ext(path) != ".mp3" {
		t.Errorf("WriteClip() path = %q, want .mp3 extension", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written clip: %v", err)
	}
	if string(data) != "audio-bytes" {
		t.Errorf("written data = %q", data)
	}
}

func TestWriteClipKeepsExplicitExtension(t *testing.T) {
	dir := t.TempDir()
	clip := &Clip{Audio: []byte("x"), Extension: "mp3"}

	path, err := WriteClip(clip, filepath.Join(dir, "sample.wav"))
	if err != nil {
		t.Fatalf("WriteClip() error = %v", err)
	}
	if filepath.Base(path) != "sample.wav" {
		t.Errorf("WriteClip() path = %q, want sample.wav kept", path)
	}
}
