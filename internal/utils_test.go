package internal

import (
	"regexp"
	"strings"
	"testing"
)

func TestAudioFileName(t *testing.T) {
	name := AudioFileName("猫が好きです", "wav")

	pattern := regexp.MustCompile(`^explanation_audio_[0-9a-f]{1,16}_\d+\.wav$`)
	if !pattern.MatchString(name) {
		t.Errorf("AudioFileName() = %q, does not match %s", name, pattern)
	}

	// Same text, same hash prefix.
	other := AudioFileName("猫が好きです", "wav")
	prefix := func(s string) string {
		parts := strings.Split(s, "_")
		return strings.Join(parts[:3], "_")
	}
	if prefix(name) != prefix(other) {
		t.Errorf("hash prefix differs for identical text: %q vs %q", name, other)
	}
}

func TestAudioFileNameShortText(t *testing.T) {
	name := AudioFileName("あ", "mp3")
	if !strings.HasPrefix(name, "explanation_audio_") || !strings.HasSuffix(name, ".mp3") {
		t.Errorf("AudioFileName() = %q", name)
	}
}

