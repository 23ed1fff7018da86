package prompt

import (
	"errors"
	"strings"
	"testing"

	"codeberg.org/mitsuba/kaisetsu/internal/fault"
)

func TestBuild(t *testing.T) {
	values := map[string]string{
		"word":       "猫",
		"sentence":   "猫が好きです",
		"definition": "cat",
	}

	tests := []struct {
		name     string
		template string
		values   map[string]string
		required map[string]bool
		want     string
		wantErr  bool
	}{
		{
			name:     "all placeholders substituted",
			template: "Word: {word}, sentence: {sentence}, meaning: {definition}.",
			values:   values,
			want:     "Word: 猫, sentence: 猫が好きです, meaning: cat.",
		},
		{
			name:     "repeated placeholder",
			template: "{word} and {word} again",
			values:   values,
			want:     "猫 and 猫 again",
		},
		{
			name:     "no placeholders",
			template: "just a fixed instruction",
			values:   values,
			want:     "just a fixed instruction",
		},
		{
			name:     "mixed case placeholder rejected",
			template: "Explain {Word} please",
			values:   values,
			wantErr:  true,
		},
		{
			name:     "unknown placeholder rejected",
			template: "Explain {reading} please",
			values:   values,
			wantErr:  true,
		},
		{
			name:     "empty optional value is fine",
			template: "{word}: {definition}",
			values:   map[string]string{"word": "猫"},
			want:     "猫: ",
		},
		{
			name:     "empty required value rejected",
			template: "{word}: {definition}",
			values:   map[string]string{"word": "猫", "definition": "  "},
			required: map[string]bool{"definition": true},
			wantErr:  true,
		},
		{
			name:     "required but unreferenced field is not checked",
			template: "{word}",
			values:   map[string]string{"word": "猫"},
			required: map[string]bool{"sentence": true},
			want:     "猫",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Build(tt.template, tt.values, tt.required)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Build() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var confErr *fault.ConfigurationError
				if !errors.As(err, &confErr) {
					t.Errorf("Build() error type = %T, want *fault.ConfigurationError", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("Build() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildDefaultTemplate(t *testing.T) {
	got, err := Build(DefaultTemplate, map[string]string{
		"word":       "猫",
		"sentence":   "猫が好きです",
		"definition": "cat",
	}, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	for _, want := range []string{"猫", "猫が好きです", "cat"} {
		if !strings.Contains(got, want) {
			t.Errorf("Build() result missing %q: %q", want, got)
		}
	}
	if strings.Contains(got, "{") || strings.Contains(got, "}") {
		t.Errorf("Build() left unsubstituted braces: %q", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		wantErr  bool
	}{
		{"default template", DefaultTemplate, false},
		{"all recognized", "{word} {sentence} {definition}", false},
		{"plain text", "no placeholders here", false},
		{"unknown name", "{pronunciation}", true},
		{"uppercase variant", "{WORD}", true},
		{"empty braces", "{}", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.template)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%q) error = %v, wantErr %v", tt.template, err, tt.wantErr)
			}
		})
	}
}

func TestReferences(t *testing.T) {
	template := "uses {word} and {sentence}"
	if !References(template, "word") {
		t.Error("References() should find {word}")
	}
	if References(template, "definition") {
		t.Error("References() should not find {definition}")
	}
}
