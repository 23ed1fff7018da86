package cli

import (
	"time"

	"codeberg.org/mitsuba/kaisetsu/internal/audio"
	"codeberg.org/mitsuba/kaisetsu/internal/chat"
)

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile    string
	Collection string
	Deck       string
	NoteType   string

	// Note selection
	NoteID  int64
	IDsFile string

	// Field names
	WordField        string
	SentenceField    string
	DefinitionField  string
	PictureField     string
	ExplanationField string
	AudioField       string

	// Chat flags
	Backend  string
	Model    string
	Template string

	// Audio engine flags
	Engine          string
	VoicevoxURL     string
	VoicevoxSpeaker int
	AivisURL        string
	AivisSpeaker    int
	OpenAIModel     string
	OpenAIVoice     string
	OpenAISpeed     float64
	ElevenLabsVoice string
	ElevenLabsModel string

	// Run behaviour
	DryRun    bool
	Override  bool
	SkipAudio bool
	Backup    bool
	Timeout   time.Duration

	// Discovery
	ListVoices   bool
	ListModels   bool
	PreviewVoice string

	// Logging
	LogFile string
	Verbose bool
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	audioDefaults := audio.DefaultProviderConfig()

	return &Flags{
		NoteType:         "Japanese Vocabulary",
		WordField:        "Expression",
		SentenceField:    "Sentence",
		DefinitionField:  "Meaning",
		ExplanationField: "Explanation",
		AudioField:       "ExplanationAudio",
		Backend:          chat.BackendOpenAI,
		Engine:           audioDefaults.Engine,
		VoicevoxURL:      audioDefaults.VoicevoxURL,
		VoicevoxSpeaker:  audioDefaults.VoicevoxSpeaker,
		AivisURL:         audioDefaults.AivisURL,
		AivisSpeaker:     audioDefaults.AivisSpeaker,
		OpenAIModel:      audioDefaults.OpenAIModel,
		OpenAIVoice:      audioDefaults.OpenAIVoice,
		OpenAISpeed:      audioDefaults.OpenAISpeed,
		ElevenLabsModel:  audioDefaults.ElevenLabsModelID,
		Timeout:          time.Minute,
	}
}
