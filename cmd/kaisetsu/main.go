package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"codeberg.org/mitsuba/kaisetsu/internal/audio"
	"codeberg.org/mitsuba/kaisetsu/internal/backup"
	"codeberg.org/mitsuba/kaisetsu/internal/batch"
	"codeberg.org/mitsuba/kaisetsu/internal/chat"
	"codeberg.org/mitsuba/kaisetsu/internal/cli"
	"codeberg.org/mitsuba/kaisetsu/internal/collection"
	"codeberg.org/mitsuba/kaisetsu/internal/config"
	"codeberg.org/mitsuba/kaisetsu/internal/logging"
	"codeberg.org/mitsuba/kaisetsu/internal/models"
	"codeberg.org/mitsuba/kaisetsu/internal/pipeline"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, args, flags)
	}

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, args []string, flags *cli.Flags) error {
	ctx := context.Background()
	cfg := config.Load()

	// Handle --list-models flag
	if flags.ListModels {
		lister := models.NewLister(cfg.Chat.OpenAIKey)
		return lister.ListAvailableModels(ctx)
	}

	// Handle --list-voices flag
	if flags.ListVoices {
		return listVoices(ctx, cfg)
	}

	// Handle --preview-voice flag
	if flags.PreviewVoice != "" {
		return previewVoice(ctx, cfg, flags.PreviewVoice)
	}

	// A dry run reads the collection only, so it needs no API keys.
	if !flags.DryRun {
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	// Back up before the collection is opened for writing
	if flags.Backup && !flags.DryRun {
		backupPath, err := backup.Collection(cfg.Collection)
		if err != nil {
			return fmt.Errorf("failed to back up collection: %w", err)
		}
		fmt.Printf("Backup created: %s\n", backupPath)
	}

	col, err := collection.Open(collection.Config{Path: cfg.Collection, Deck: cfg.Deck})
	if err != nil {
		return err
	}
	defer col.Close()

	ids, err := selectNoteIDs(ctx, col, cfg, flags)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Println("No matching notes found.")
		return nil
	}

	// Handle --dry-run flag
	if flags.DryRun {
		return dryRun(ctx, col, cfg, ids)
	}

	return runBatch(ctx, col, cfg, ids)
}

// selectNoteIDs picks the notes to process: a single note, the IDs
// from a file, or every note of the configured type.
func selectNoteIDs(ctx context.Context, col *collection.Collection, cfg *config.Config, flags *cli.Flags) ([]int64, error) {
	if flags.NoteID != 0 {
		return []int64{flags.NoteID}, nil
	}
	if flags.IDsFile != "" {
		return batch.ReadIDFile(flags.IDsFile)
	}
	return col.NoteIDs(ctx, cfg.NoteType)
}

func runBatch(ctx context.Context, col *collection.Collection, cfg *config.Config, ids []int64) error {
	logger, closeLog, err := logging.Setup(logging.Options{
		Path:  cfg.LogFile,
		Echo:  cfg.Verbose,
		Debug: cfg.Verbose,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer closeLog()

	chatClient, err := chat.NewClient(ctx, &cfg.Chat)
	if err != nil {
		return err
	}

	// An unreachable engine is not fatal: notes still get their text,
	// each audio stage just reports as failed.
	var tts audio.Provider
	if !cfg.SkipAudio {
		tts, err = audio.NewProvider(&cfg.Audio)
		if err != nil {
			return err
		}
		if err := tts.IsAvailable(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %s engine not reachable, notes will be processed without audio: %v\n", tts.Name(), err)
		}
	}

	// The picture field only reaches the chat backend when vision is on.
	imageField := ""
	if cfg.Vision {
		imageField = cfg.Fields.Picture
	}

	proc := pipeline.NewProcessor(pipeline.Config{
		WordField:        cfg.Fields.Word,
		SentenceField:    cfg.Fields.Sentence,
		DefinitionField:  cfg.Fields.Definition,
		ImageField:       imageField,
		ExplanationField: cfg.Fields.Explanation,
		AudioField:       cfg.Fields.Audio,
		PromptTemplate:   cfg.PromptTemplate,
		Override:         cfg.Override,
		SkipAudio:        cfg.SkipAudio,
		CallTimeout:      cfg.Timeout,
	}, col, col, chatClient, tts, logger)

	progress := func(index, total int, result pipeline.Result) {
		word := result.Word
		if word == "" {
			word = fmt.Sprintf("note %d", result.NoteID)
		}
		fmt.Printf("\nProcessing %d/%d: %s\n", index, total, word)
		fmt.Printf("  Text: %s\n", result.Text)
		if result.Audio != pipeline.AudioNotRun {
			fmt.Printf("  Audio: %s\n", result.Audio)
		}
		if result.Err != nil {
			fmt.Fprintf(os.Stderr, "  Error: %v\n", result.Err)
		}
	}

	runner := pipeline.NewRunner(proc, progress, logger)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// First interrupt stops after the current note, second aborts.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nInterrupted, finishing the current note (interrupt again to abort)")
		runner.Stop()
		<-sigCh
		cancel()
	}()

	report := runner.Run(runCtx, ids)
	fmt.Printf("\n%s\n", report.Summary())
	return nil
}

// dryRun lists what a real run would touch without contacting any
// backend or writing to the collection.
func dryRun(ctx context.Context, col *collection.Collection, cfg *config.Config, ids []int64) error {
	fmt.Printf("Dry run: %d notes of type %q\n", len(ids), cfg.NoteType)

	for _, id := range ids {
		n, err := col.Note(ctx, id)
		if err != nil {
			fmt.Printf("  %d: not found\n", id)
			continue
		}

		word, ok := n.Field(cfg.Fields.Word)
		if !ok {
			fmt.Printf("  %d: field %q not on note\n", id, cfg.Fields.Word)
			continue
		}

		state := "would generate"
		if explanation, _ := n.Field(cfg.Fields.Explanation); strings.TrimSpace(explanation) != "" && !cfg.Override {
			state = "has explanation, would skip"
		}
		fmt.Printf("  %d: %s (%s)\n", id, word, state)
	}

	fmt.Println("\nNo changes were made.")
	return nil
}

func listVoices(ctx context.Context, cfg *config.Config) error {
	provider, err := audio.NewProvider(&cfg.Audio)
	if err != nil {
		return err
	}

	voices, err := provider.Voices(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Available %s voices:\n", provider.Name())
	for _, v := range voices {
		fmt.Printf("  %s: %s\n", v.ID, v.Name)
	}
	return nil
}

func previewVoice(ctx context.Context, cfg *config.Config, text string) error {
	provider, err := audio.NewProvider(&cfg.Audio)
	if err != nil {
		return err
	}

	clip, err := audio.Preview(ctx, provider, text)
	if err != nil {
		return fmt.Errorf("failed to synthesize preview: %w", err)
	}

	path, err := audio.WriteClip(clip, fmt.Sprintf("preview_%s", cfg.Audio.Engine))
	if err != nil {
		return err
	}

	fmt.Printf("Preview saved: %s\n", path)
	return nil
}
