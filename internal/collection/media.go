package collection

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AddMedia writes data into the collection.media directory. When the
// name is already taken the file is stored as base_1.ext, base_2.ext
// and so on, and the name actually used is returned.
func (c *Collection) AddMedia(name string, data []byte) (string, error) {
	if name == "" {
		return "", fmt.Errorf("media name must not be empty")
	}
	if strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("media name %q must not contain path separators", name)
	}

	if err := os.MkdirAll(c.mediaDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	target := name
	for i := 1; fileExists(filepath.Join(c.mediaDir, target)); i++ {
		target = fmt.Sprintf("%s_%d%s", base, i, ext)
	}

	if err := os.WriteFile(filepath.Join(c.mediaDir, target), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write media file %s: %w", target, err)
	}

	return target, nil
}

// ReadMedia returns the content of a file in the media directory.
func (c *Collection) ReadMedia(name string) ([]byte, error) {
	if strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("media name %q must not contain path separators", name)
	}

	data, err := os.ReadFile(filepath.Join(c.mediaDir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read media file %s: %w", name, err)
	}

	return data, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
