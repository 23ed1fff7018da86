package audio

import (
	"fmt"
	"strings"
)

// maxTextLength caps synthesis input length in bytes.
const maxTextLength = 4096

// ValidateText validates synthesis input before any engine call
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text cannot be empty")
	}
	if len(text) > maxTextLength {
		return fmt.Errorf("text too long: %d bytes, maximum is %d", len(text), maxTextLength)
	}
	return nil
}
