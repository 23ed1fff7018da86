// Package backup copies the Anki collection database aside before a
// run writes into it.
package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Collection copies the collection database at path into a backups
// directory next to it, named with a timestamp, and returns the path
// of the copy.
func Collection(path string) (string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", fmt.Errorf("collection does not exist: %s", path)
	}

	backupDir := filepath.Join(filepath.Dir(path), "backups")
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	backupPath := filepath.Join(backupDir, fmt.Sprintf("collection-%s.anki2", timestamp))

	// Two runs within the same second get a microsecond suffix.
	if _, err := os.Stat(backupPath); err == nil {
		timestamp = time.Now().Format("20060102-150405.000000")
		backupPath = filepath.Join(backupDir, fmt.Sprintf("collection-%s.anki2", timestamp))
	}

	if err := copyFile(path, backupPath); err != nil {
		return "", fmt.Errorf("failed to back up collection: %w", err)
	}

	return backupPath, nil
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer dstFile.Close()

	_, err = io.Copy(dstFile, srcFile)
	return err
}
