package collection

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestAddMedia(t *testing.T) {
	col := openTestCollection(t, Config{Path: createTestCollection(t)})

	name, err := col.AddMedia("clip.wav", []byte("wav data"))
	if err != nil {
		t.Fatalf("AddMedia() error = %v", err)
	}
	if name != "clip.wav" {
		t.Errorf("Expected name 'clip.wav', got '%s'", name)
	}

	data, err := os.ReadFile(filepath.Join(col.MediaDir(), "clip.wav"))
	if err != nil {
		t.Fatalf("Media file not written: %v", err)
	}
	if !bytes.Equal(data, []byte("wav data")) {
		t.Errorf("Expected 'wav data', got '%s'", data)
	}
}

func TestAddMediaCollision(t *testing.T) {
	col := openTestCollection(t, Config{Path: createTestCollection(t)})

	if _, err := col.AddMedia("clip.wav", []byte("first")); err != nil {
		t.Fatalf("AddMedia() error = %v", err)
	}

	name, err := col.AddMedia("clip.wav", []byte("second"))
	if err != nil {
		t.Fatalf("AddMedia() error = %v", err)
	}
	if name != "clip_1.wav" {
		t.Errorf("Expected collision name 'clip_1.wav', got '%s'", name)
	}

	// The original file must be left untouched.
	data, err := col.ReadMedia("clip.wav")
	if err != nil {
		t.Fatalf("ReadMedia() error = %v", err)
	}
	if string(data) != "first" {
		t.Errorf("Expected original content 'first', got '%s'", data)
	}

	data, err = col.ReadMedia("clip_1.wav")
	if err != nil {
		t.Fatalf("ReadMedia() error = %v", err)
	}
	if string(data) != "second" {
		t.Errorf("Expected 'second', got '%s'", data)
	}
}

func TestAddMediaRejectsPathSeparators(t *testing.T) {
	col := openTestCollection(t, Config{Path: createTestCollection(t)})

	if _, err := col.AddMedia("../escape.wav", []byte("x")); err == nil {
		t.Error("Expected error for name with path separator")
	}
	if _, err := col.AddMedia("", []byte("x")); err == nil {
		t.Error("Expected error for empty name")
	}
	if _, err := col.ReadMedia("../collection.anki2"); err == nil {
		t.Error("Expected error for read outside media directory")
	}
}

func TestReadMediaMissing(t *testing.T) {
	col := openTestCollection(t, Config{Path: createTestCollection(t)})

	if _, err := col.ReadMedia("nope.png"); err == nil {
		t.Error("Expected error for missing media file")
	}
}
