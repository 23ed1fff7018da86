package pipeline

// TextStatus is the terminal state of the explanation stage for one
// note.
type TextStatus int

const (
	TextPending TextStatus = iota
	FieldResolutionFailed
	TextGenFailed
	TextGenSkipped
	TextGenSucceeded
)

func (s TextStatus) String() string {
	switch s {
	case TextPending:
		return "pending"
	case FieldResolutionFailed:
		return "fields unresolved"
	case TextGenFailed:
		return "failed"
	case TextGenSkipped:
		return "skipped"
	case TextGenSucceeded:
		return "generated"
	default:
		return "unknown"
	}
}

// AudioStatus is the terminal state of the audio stage for one note.
// AudioNotRun means the text stage ended in a state that never let
// the audio stage start.
type AudioStatus int

const (
	AudioNotRun AudioStatus = iota
	AudioGenFailed
	AudioGenSkipped
	AudioGenSucceeded
	AudioDisabled
)

func (s AudioStatus) String() string {
	switch s {
	case AudioNotRun:
		return "not run"
	case AudioGenFailed:
		return "failed"
	case AudioGenSkipped:
		return "skipped"
	case AudioGenSucceeded:
		return "generated"
	case AudioDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// Result is the outcome of processing a single note. Err carries the
// first stage error, nil when nothing failed.
type Result struct {
	NoteID int64
	Word   string
	Text   TextStatus
	Audio  AudioStatus
	Err    error
}

// Done reports whether every stage of the note ended without failure.
// Skipped stages and disabled audio still count as done.
func (r Result) Done() bool {
	textOK := r.Text == TextGenSucceeded || r.Text == TextGenSkipped
	audioOK := r.Audio == AudioGenSucceeded || r.Audio == AudioGenSkipped || r.Audio == AudioDisabled
	return textOK && audioOK
}
