// Package batch reads note ID lists for batch runs.
package batch

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ReadIDFile reads note IDs from a file, one ID per line. Empty lines
// and lines starting with # are skipped, so a file exported from the
// Anki browser can be annotated freely.
func ReadIDFile(filename string) ([]int64, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read ID file: %w", err)
	}

	var ids []int64
	for i, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		id, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %q is not a note ID", i+1, line)
		}
		ids = append(ids, id)
	}

	return ids, nil
}
