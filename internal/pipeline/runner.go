package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// Progress is called after each processed note with its position in
// the batch and the outcome.
type Progress func(index, total int, result Result)

// Runner drives a batch of notes through a Processor, one note at a
// time.
type Runner struct {
	processor *Processor
	progress  Progress
	logger    *slog.Logger
	stopped   atomic.Bool
}

// NewRunner creates a batch runner. progress and logger may be nil.
func NewRunner(processor *Processor, progress Progress, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{
		processor: processor,
		progress:  progress,
		logger:    logger,
	}
}

// Stop makes the runner halt after the note currently being
// processed. Safe to call from another goroutine.
func (r *Runner) Stop() {
	r.stopped.Store(true)
}

// Run processes the given notes strictly in order. One note's failure
// never stops the rest; only Stop or context cancellation end the run
// early, and both finish the current note first.
func (r *Runner) Run(ctx context.Context, ids []int64) *Report {
	report := &Report{RunID: uuid.New().String()}

	r.logger.Info("batch started", "run_id", report.RunID, "notes", len(ids))

	for i, id := range ids {
		if r.stopped.Load() || ctx.Err() != nil {
			report.Stopped = true
			report.Remaining = len(ids) - i
			break
		}

		result := r.processor.ProcessNote(ctx, id)
		report.add(result)

		r.logger.Info("note processed",
			"run_id", report.RunID,
			"note_id", id,
			"text", result.Text.String(),
			"audio", result.Audio.String(),
		)

		if r.progress != nil {
			r.progress(i+1, len(ids), result)
		}
	}

	r.logger.Info("batch finished",
		"run_id", report.RunID,
		"attempted", report.Attempted,
		"done", report.Done,
		"stopped", report.Stopped,
	)

	return report
}

// Report aggregates the outcome of a batch run. Every attempted note
// lands in exactly one text bucket, so the text buckets always sum to
// Attempted.
type Report struct {
	RunID     string
	Attempted int
	Remaining int
	Stopped   bool
	Done      int
	Results   []Result

	FieldResolutionFailures int
	TextFailures            int
	TextSkips               int
	TextSuccesses           int

	AudioFailures  int
	AudioSkips     int
	AudioSuccesses int
	AudioOff       int
}

// Total is the number of notes the run was asked to process.
func (r *Report) Total() int {
	return r.Attempted + r.Remaining
}

func (r *Report) add(result Result) {
	r.Attempted++
	r.Results = append(r.Results, result)

	switch result.Text {
	case FieldResolutionFailed:
		r.FieldResolutionFailures++
	case TextGenFailed:
		r.TextFailures++
	case TextGenSkipped:
		r.TextSkips++
	case TextGenSucceeded:
		r.TextSuccesses++
	}

	switch result.Audio {
	case AudioGenFailed:
		r.AudioFailures++
	case AudioGenSkipped:
		r.AudioSkips++
	case AudioGenSucceeded:
		r.AudioSuccesses++
	case AudioDisabled:
		r.AudioOff++
	}

	if result.Done() {
		r.Done++
	}
}

// Summary renders the aggregate counts as a printable block.
func (r *Report) Summary() string {
	var b strings.Builder

	fmt.Fprintf(&b, "=== Batch Summary ===\n")
	fmt.Fprintf(&b, "Notes processed: %d\n", r.Attempted)
	fmt.Fprintf(&b, "Fully done: %d\n", r.Done)
	fmt.Fprintf(&b, "Text: %d generated, %d skipped, %d failed\n",
		r.TextSuccesses, r.TextSkips, r.TextFailures)
	if r.AudioOff == r.Attempted && r.Attempted > 0 {
		fmt.Fprintf(&b, "Audio: disabled\n")
	} else {
		fmt.Fprintf(&b, "Audio: %d generated, %d skipped, %d failed\n",
			r.AudioSuccesses, r.AudioSkips, r.AudioFailures)
	}
	if r.FieldResolutionFailures > 0 {
		fmt.Fprintf(&b, "Field resolution failures: %d\n", r.FieldResolutionFailures)
	}
	if r.Stopped {
		fmt.Fprintf(&b, "Stopped early, %d notes not attempted\n", r.Remaining)
	}
	fmt.Fprintf(&b, "=====================")

	return b.String()
}
