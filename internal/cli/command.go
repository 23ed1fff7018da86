package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/mitsuba/kaisetsu/internal"
	"codeberg.org/mitsuba/kaisetsu/internal/audio"
	"codeberg.org/mitsuba/kaisetsu/internal/config"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "kaisetsu",
		Short: "Japanese Vocabulary Explanation Generator for Anki",
		Long: `kaisetsu fills the explanation and audio fields of Japanese
vocabulary notes in an Anki collection.

For each note it generates a short explanation with OpenAI or Gemini
and synthesizes it to speech with VOICEVOX, AivisSpeech, OpenAI TTS
or ElevenLabs. Close Anki before running; the collection database is
locked while Anki is open.

Examples:
  kaisetsu                          # Process every note of the configured type
  kaisetsu --deck "日本語::N3"      # Only notes with cards in that deck
  kaisetsu --note 1372897156812     # Process a single note
  kaisetsu --ids-file notes.txt     # Note IDs exported from the Anki browser
  kaisetsu --dry-run                # Show what would be processed`,
		Args:    cobra.NoArgs,
		Version: internal.Version,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.kaisetsu.yaml)")

	// Collection flags
	cmd.Flags().StringVar(&flags.Collection, "collection", config.DefaultCollectionPath(), "Path to the Anki collection (collection.anki2)")
	cmd.Flags().StringVar(&flags.Deck, "deck", "", "Only process notes with cards in this deck")
	cmd.Flags().StringVar(&flags.NoteType, "note-type", flags.NoteType, "Note type to process")

	// Note selection flags
	cmd.Flags().Int64Var(&flags.NoteID, "note", 0, "Process a single note by ID")
	cmd.Flags().StringVar(&flags.IDsFile, "ids-file", "", "Process note IDs from file, one per line")

	// Field name flags
	cmd.Flags().StringVar(&flags.WordField, "word-field", flags.WordField, "Field holding the word")
	cmd.Flags().StringVar(&flags.SentenceField, "sentence-field", flags.SentenceField, "Field holding the example sentence")
	cmd.Flags().StringVar(&flags.DefinitionField, "definition-field", flags.DefinitionField, "Field holding the definition")
	cmd.Flags().StringVar(&flags.PictureField, "picture-field", "", "Field holding an image (empty disables image lookup)")
	cmd.Flags().StringVar(&flags.ExplanationField, "explanation-field", flags.ExplanationField, "Field the explanation is written to")
	cmd.Flags().StringVar(&flags.AudioField, "audio-field", flags.AudioField, "Field the audio reference is written to")

	// Chat flags
	cmd.Flags().StringVar(&flags.Backend, "backend", flags.Backend, "Chat backend: openai or gemini")
	cmd.Flags().StringVar(&flags.Model, "model", "", "Chat model (default depends on backend)")
	cmd.Flags().StringVar(&flags.Template, "template", "", "Prompt template with {word}, {sentence} and {definition} placeholders")

	// Audio engine flags
	cmd.Flags().StringVar(&flags.Engine, "engine", flags.Engine, "Audio engine: voicevox, aivisspeech, openai or elevenlabs")
	cmd.Flags().StringVar(&flags.VoicevoxURL, "voicevox-url", flags.VoicevoxURL, "VOICEVOX engine URL")
	cmd.Flags().IntVar(&flags.VoicevoxSpeaker, "voicevox-speaker", flags.VoicevoxSpeaker, "VOICEVOX speaker ID")
	cmd.Flags().StringVar(&flags.AivisURL, "aivis-url", flags.AivisURL, "AivisSpeech engine URL")
	cmd.Flags().IntVar(&flags.AivisSpeaker, "aivis-speaker", flags.AivisSpeaker, "AivisSpeech speaker ID")
	cmd.Flags().StringVar(&flags.OpenAIModel, "openai-model", flags.OpenAIModel, "OpenAI TTS model: tts-1, tts-1-hd, gpt-4o-mini-tts")
	cmd.Flags().StringVar(&flags.OpenAIVoice, "openai-voice", flags.OpenAIVoice, "OpenAI voice: alloy, ash, ballad, coral, echo, fable, onyx, nova, sage, shimmer, verse")
	cmd.Flags().Float64Var(&flags.OpenAISpeed, "openai-speed", flags.OpenAISpeed, "OpenAI speech speed (0.5 to 3.0)")
	cmd.Flags().StringVar(&flags.ElevenLabsVoice, "elevenlabs-voice", "", "ElevenLabs voice ID")
	cmd.Flags().StringVar(&flags.ElevenLabsModel, "elevenlabs-model", flags.ElevenLabsModel, "ElevenLabs model ID")

	// Run behaviour flags
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "Show what would be processed without calling any backend")
	cmd.Flags().BoolVar(&flags.Override, "override", false, "Regenerate even when the target fields already have content")
	cmd.Flags().BoolVar(&flags.SkipAudio, "skip-audio", false, "Skip audio synthesis")
	cmd.Flags().BoolVar(&flags.Backup, "backup", false, "Back up the collection before writing")
	cmd.Flags().DurationVar(&flags.Timeout, "timeout", flags.Timeout, "Timeout per network call")

	// Discovery flags
	cmd.Flags().BoolVar(&flags.ListVoices, "list-voices", false, "List voices offered by the selected audio engine")
	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List available OpenAI models for the current API key")
	cmd.Flags().StringVar(&flags.PreviewVoice, "preview-voice", "", "Synthesize the given text to a preview file and exit")
	// Bare --preview-voice speaks a stock sample sentence.
	cmd.Flags().Lookup("preview-voice").NoOptDefVal = audio.DefaultPreviewText

	// Logging flags
	cmd.Flags().StringVar(&flags.LogFile, "log-file", "", "Log file path (default is $HOME/.kaisetsu.log)")
	cmd.Flags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Echo the log to stderr and enable debug logging")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("collection.path", cmd.Flags().Lookup("collection"))
	viper.BindPFlag("collection.deck", cmd.Flags().Lookup("deck"))
	viper.BindPFlag("collection.note_type", cmd.Flags().Lookup("note-type"))
	viper.BindPFlag("fields.word", cmd.Flags().Lookup("word-field"))
	viper.BindPFlag("fields.sentence", cmd.Flags().Lookup("sentence-field"))
	viper.BindPFlag("fields.definition", cmd.Flags().Lookup("definition-field"))
	viper.BindPFlag("fields.picture", cmd.Flags().Lookup("picture-field"))
	viper.BindPFlag("fields.explanation", cmd.Flags().Lookup("explanation-field"))
	viper.BindPFlag("fields.audio", cmd.Flags().Lookup("audio-field"))
	viper.BindPFlag("prompt.template", cmd.Flags().Lookup("template"))
	viper.BindPFlag("chat.backend", cmd.Flags().Lookup("backend"))
	viper.BindPFlag("chat.model", cmd.Flags().Lookup("model"))
	viper.BindPFlag("audio.engine", cmd.Flags().Lookup("engine"))
	viper.BindPFlag("audio.voicevox_url", cmd.Flags().Lookup("voicevox-url"))
	viper.BindPFlag("audio.voicevox_speaker", cmd.Flags().Lookup("voicevox-speaker"))
	viper.BindPFlag("audio.aivis_url", cmd.Flags().Lookup("aivis-url"))
	viper.BindPFlag("audio.aivis_speaker", cmd.Flags().Lookup("aivis-speaker"))
	viper.BindPFlag("audio.openai_model", cmd.Flags().Lookup("openai-model"))
	viper.BindPFlag("audio.openai_voice", cmd.Flags().Lookup("openai-voice"))
	viper.BindPFlag("audio.openai_speed", cmd.Flags().Lookup("openai-speed"))
	viper.BindPFlag("audio.elevenlabs_voice", cmd.Flags().Lookup("elevenlabs-voice"))
	viper.BindPFlag("audio.elevenlabs_model", cmd.Flags().Lookup("elevenlabs-model"))
	viper.BindPFlag("run.override", cmd.Flags().Lookup("override"))
	viper.BindPFlag("run.skip_audio", cmd.Flags().Lookup("skip-audio"))
	viper.BindPFlag("run.timeout", cmd.Flags().Lookup("timeout"))
	viper.BindPFlag("log.file", cmd.Flags().Lookup("log-file"))
	viper.BindPFlag("log.verbose", cmd.Flags().Lookup("verbose"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".kaisetsu" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".kaisetsu")
	}

	// Environment variables
	viper.SetEnvPrefix("KAISETSU")
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
