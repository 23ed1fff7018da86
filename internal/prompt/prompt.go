// Package prompt builds the chat prompt from a user configurable
// template. Templates reference note fields through lowercase
// placeholders in braces; matching is exact case, so {Word} is an
// error rather than a fuzzy hit.
package prompt

import (
	"fmt"
	"regexp"
	"strings"

	"codeberg.org/mitsuba/kaisetsu/internal/fault"
)

// DefaultTemplate is the stock prompt used when the user has not
// configured their own.
const DefaultTemplate = "Please write an example sentence using the word '{word}' in the context of the original sentence: '{sentence}'. The definition of the word is: '{definition}'. Create an explanation that helps a Japanese language learner understand how this word is used."

// PlaceholderWord and friends are the recognized placeholder names.
const (
	PlaceholderWord       = "word"
	PlaceholderSentence   = "sentence"
	PlaceholderDefinition = "definition"
)

var placeholderPattern = regexp.MustCompile(`\{([^{}]*)\}`)

func recognized(name string) bool {
	switch name {
	case PlaceholderWord, PlaceholderSentence, PlaceholderDefinition:
		return true
	}
	return false
}

// Validate checks that every placeholder in template belongs to the
// recognized set. It is called at configuration time so that a broken
// template is reported before any note is touched.
func Validate(template string) error {
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if !recognized(m[1]) {
			return &fault.ConfigurationError{
				Setting: "prompt.template",
				Message: fmt.Sprintf("unknown placeholder {%s}", m[1]),
			}
		}
	}
	return nil
}

// References reports whether template contains the given placeholder.
func References(template, name string) bool {
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if m[1] == name {
			return true
		}
	}
	return false
}

// Build substitutes the recognized placeholders into template. values
// maps placeholder names to note field content; a name listed in
// required must carry non-empty content when the template references
// it. Unknown placeholders fail with a ConfigurationError.
func Build(template string, values map[string]string, required map[string]bool) (string, error) {
	var out strings.Builder
	last := 0
	for _, loc := range placeholderPattern.FindAllStringSubmatchIndex(template, -1) {
		name := template[loc[2]:loc[3]]
		if !recognized(name) {
			return "", &fault.ConfigurationError{
				Setting: "prompt.template",
				Message: fmt.Sprintf("unknown placeholder {%s}", name),
			}
		}
		value := values[name]
		if required[name] && strings.TrimSpace(value) == "" {
			return "", &fault.ConfigurationError{
				Setting: "prompt.template",
				Message: fmt.Sprintf("field for placeholder {%s} is required but empty", name),
			}
		}
		out.WriteString(template[last:loc[0]])
		out.WriteString(value)
		last = loc[1]
	}
	out.WriteString(template[last:])
	return out.String(), nil
}
