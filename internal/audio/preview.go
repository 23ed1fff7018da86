package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultPreviewText is spoken when no sample text is given.
const DefaultPreviewText = "こんにちは。これは音声のプレビューです。"

// Preview synthesizes a short sample clip so a voice can be judged
// before committing it to configuration. Works the same for every
// engine.
func Preview(ctx context.Context, p Provider, text string) (*Clip, error) {
	if text == "" {
		text = DefaultPreviewText
	}
	if err := p.IsAvailable(ctx); err != nil {
		return nil, err
	}
	return p.Synthesize(ctx, text)
}

// WriteClip saves a clip to path, appending the clip's extension when
// path has none. Returns the path actually written.
func WriteClip(clip *Clip, path string) (string, error) {
	if filepath.Ext(path) == "" {
		path = path + "." + clip.Extension
	}
	if err := os.WriteFile(path, clip.Audio, 0644); err != nil {
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}
	return path, nil
}
