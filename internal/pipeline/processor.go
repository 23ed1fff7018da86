// Package pipeline runs the per-note generation flow: resolve the
// configured fields, generate an explanation through a chat backend,
// synthesize audio for it and write both back into the note. Every
// stage failure is converted into a per-note status so a batch keeps
// going no matter what happens to an individual note.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"codeberg.org/mitsuba/kaisetsu/internal"
	"codeberg.org/mitsuba/kaisetsu/internal/audio"
	"codeberg.org/mitsuba/kaisetsu/internal/chat"
	"codeberg.org/mitsuba/kaisetsu/internal/fault"
	"codeberg.org/mitsuba/kaisetsu/internal/image"
	"codeberg.org/mitsuba/kaisetsu/internal/note"
	"codeberg.org/mitsuba/kaisetsu/internal/prompt"
)

// DefaultCallTimeout bounds a single remote call when the
// configuration does not set its own limit.
const DefaultCallTimeout = 60 * time.Second

// Config maps note fields to pipeline inputs and outputs and carries
// the per-run policies.
type Config struct {
	// Input field names. ImageField may be empty, which disables the
	// image lookup entirely.
	WordField       string
	SentenceField   string
	DefinitionField string
	ImageField      string

	// Output field names.
	ExplanationField string
	AudioField       string

	// PromptTemplate is the explanation prompt with {word}, {sentence}
	// and {definition} placeholders.
	PromptTemplate string

	// Override replaces non-empty output fields. When false a filled
	// field makes the stage report skipped and leaves the content
	// alone.
	Override bool

	// SkipAudio turns the audio stage off for the whole run.
	SkipAudio bool

	// CallTimeout bounds each remote call. Zero means
	// DefaultCallTimeout.
	CallTimeout time.Duration
}

// Processor runs the generation flow for single notes.
type Processor struct {
	config Config
	store  note.Store
	media  note.MediaStore
	chat   chat.Client
	tts    audio.Provider
	logger *slog.Logger
}

// NewProcessor wires a processor to its store and backends. tts may
// be nil when no audio should be generated. logger may be nil.
func NewProcessor(config Config, store note.Store, media note.MediaStore, chatClient chat.Client, tts audio.Provider, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Processor{
		config: config,
		store:  store,
		media:  media,
		chat:   chatClient,
		tts:    tts,
		logger: logger,
	}
}

// ProcessNote runs the full flow for one note and reports the outcome
// as statuses. It never returns an error: whatever goes wrong with a
// note ends up in the Result so the caller can keep processing the
// rest of a batch.
func (p *Processor) ProcessNote(ctx context.Context, id int64) Result {
	res := Result{NoteID: id}

	n, err := p.store.Note(ctx, id)
	if err != nil {
		res.Text = FieldResolutionFailed
		res.Err = err
		p.logger.Warn("note lookup failed", "note_id", id, "error", err)
		return res
	}

	if missing := p.missingFields(n); len(missing) > 0 {
		res.Text = FieldResolutionFailed
		res.Err = &fault.ConfigurationError{
			Setting: "fields",
			Message: fmt.Sprintf("note type %q is missing configured fields: %s", n.Type, strings.Join(missing, ", ")),
		}
		p.logger.Warn("field resolution failed", "note_id", id, "missing", strings.Join(missing, ", "))
		return res
	}

	res.Word, _ = n.Field(p.config.WordField)

	explanation, status, err := p.generateText(ctx, n)
	res.Text = status
	if status == TextGenFailed {
		res.Err = err
		p.logger.Warn("explanation generation failed", "note_id", id, "error", err)
		return res
	}

	// A skipped text stage still feeds the audio stage, using the
	// explanation that is already on the note.
	if status == TextGenSkipped {
		explanation, _ = n.Field(p.config.ExplanationField)
	}

	if p.config.SkipAudio || p.tts == nil {
		res.Audio = AudioDisabled
		return res
	}

	res.Audio, err = p.generateAudio(ctx, n, explanation)
	if err != nil {
		res.Err = err
		p.logger.Warn("audio generation failed", "note_id", id, "error", err)
	}

	return res
}

// missingFields lists every configured field the note does not have.
// The audio output field only counts while the audio stage is active.
func (p *Processor) missingFields(n *note.Note) []string {
	names := []string{
		p.config.WordField,
		p.config.SentenceField,
		p.config.DefinitionField,
		p.config.ImageField,
		p.config.ExplanationField,
	}
	if !p.config.SkipAudio && p.tts != nil {
		names = append(names, p.config.AudioField)
	}

	var missing []string
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := n.Field(name); !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// generateText produces the explanation and writes it into the
// configured output field.
func (p *Processor) generateText(ctx context.Context, n *note.Note) (string, TextStatus, error) {
	existing, _ := n.Field(p.config.ExplanationField)
	if strings.TrimSpace(existing) != "" && !p.config.Override {
		return "", TextGenSkipped, nil
	}

	word, _ := n.Field(p.config.WordField)
	sentence, _ := n.Field(p.config.SentenceField)
	definition, _ := n.Field(p.config.DefinitionField)

	promptText, err := prompt.Build(p.config.PromptTemplate, map[string]string{
		prompt.PlaceholderWord:       word,
		prompt.PlaceholderSentence:   sentence,
		prompt.PlaceholderDefinition: definition,
	}, map[string]bool{prompt.PlaceholderWord: true})
	if err != nil {
		return "", TextGenFailed, err
	}

	req := chat.Request{Prompt: promptText}
	if p.config.ImageField != "" {
		if html, ok := n.Field(p.config.ImageField); ok && html != "" {
			att, err := image.Resolve(ctx, html, p.media)
			if err != nil {
				// A broken image never blocks the explanation.
				p.logger.Warn("image resolution failed", "note_id", n.ID, "error", err)
			} else if att != nil {
				req.Image = &chat.Image{Data: att.Data, MIME: att.MIME}
			}
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout())
	defer cancel()

	text, err := p.chat.Generate(callCtx, req)
	if err != nil {
		return "", TextGenFailed, err
	}

	if err := p.store.UpdateFields(ctx, n.ID, map[string]string{p.config.ExplanationField: text}); err != nil {
		return "", TextGenFailed, err
	}

	return text, TextGenSucceeded, nil
}

// generateAudio synthesizes the explanation, stores the clip as a
// media file and writes a [sound:...] reference into the audio field.
func (p *Processor) generateAudio(ctx context.Context, n *note.Note, text string) (AudioStatus, error) {
	existing, _ := n.Field(p.config.AudioField)
	if strings.TrimSpace(existing) != "" && !p.config.Override {
		return AudioGenSkipped, nil
	}

	if strings.TrimSpace(text) == "" {
		return AudioGenFailed, fmt.Errorf("no explanation text to synthesize")
	}

	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout())
	defer cancel()

	clip, err := p.tts.Synthesize(callCtx, text)
	if err != nil {
		return AudioGenFailed, err
	}

	name := internal.AudioFileName(text, clip.Extension)
	stored, err := p.media.AddMedia(name, clip.Audio)
	if err != nil {
		return AudioGenFailed, fmt.Errorf("failed to store audio clip: %w", err)
	}

	ref := fmt.Sprintf("[sound:%s]", stored)
	if err := p.store.UpdateFields(ctx, n.ID, map[string]string{p.config.AudioField: ref}); err != nil {
		return AudioGenFailed, err
	}

	return AudioGenSucceeded, nil
}

func (p *Processor) callTimeout() time.Duration {
	if p.config.CallTimeout > 0 {
		return p.config.CallTimeout
	}
	return DefaultCallTimeout
}
