package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"codeberg.org/mitsuba/kaisetsu/internal/fault"
	"codeberg.org/mitsuba/kaisetsu/internal/note"
	"codeberg.org/mitsuba/kaisetsu/internal/testutil"
)

const dogPrompt = "Explain 犬 in context: 犬が走る"

// mixedStore seeds three notes: one that succeeds, one with a missing
// field and one whose prompt the chat mock will fail.
func mixedStore(t *testing.T) *note.Memory {
	t.Helper()

	store := note.NewMemory()
	store.Add(&note.Note{ID: 1, Type: "Japanese Vocabulary", Fields: map[string]string{
		"Expression": "猫", "Sentence": "猫が好きです", "Meaning": "cat",
		"Explanation": "", "Audio": "",
	}})
	store.Add(&note.Note{ID: 2, Type: "Japanese Vocabulary", Fields: map[string]string{
		"Expression": "鳥", "Sentence": "鳥が飛ぶ",
		"Explanation": "", "Audio": "",
		// no Meaning field
	}})
	store.Add(&note.Note{ID: 3, Type: "Japanese Vocabulary", Fields: map[string]string{
		"Expression": "犬", "Sentence": "犬が走る", "Meaning": "dog",
		"Explanation": "", "Audio": "",
	}})
	return store
}

func newMixedRunner(t *testing.T, progress Progress) (*Runner, *note.Memory) {
	t.Helper()

	store := mixedStore(t)
	chatMock := &testutil.MockChatClient{
		Errors: map[string]error{
			dogPrompt: &fault.RateLimitError{Service: "OpenAI"},
		},
	}
	p := NewProcessor(testConfig(), store, store, chatMock, &testutil.MockAudioProvider{}, nil)
	return NewRunner(p, progress, nil), store
}

func TestRunnerRun(t *testing.T) {
	var seen []Result
	runner, _ := newMixedRunner(t, func(index, total int, result Result) {
		if total != 3 {
			t.Errorf("Expected total 3, got %d", total)
		}
		if index != len(seen)+1 {
			t.Errorf("Expected progress index %d, got %d", len(seen)+1, index)
		}
		seen = append(seen, result)
	})

	report := runner.Run(context.Background(), []int64{1, 2, 3})

	if report.RunID == "" {
		t.Error("Expected a run ID")
	}
	if report.Attempted != 3 {
		t.Errorf("Expected 3 attempted, got %d", report.Attempted)
	}
	if report.Remaining != 0 || report.Stopped {
		t.Errorf("Expected a complete run, got remaining=%d stopped=%v", report.Remaining, report.Stopped)
	}
	if report.Total() != 3 {
		t.Errorf("Expected Total() 3, got %d", report.Total())
	}

	if report.TextSuccesses != 1 {
		t.Errorf("Expected 1 text success, got %d", report.TextSuccesses)
	}
	if report.FieldResolutionFailures != 1 {
		t.Errorf("Expected 1 field resolution failure, got %d", report.FieldResolutionFailures)
	}
	if report.TextFailures != 1 {
		t.Errorf("Expected 1 text failure, got %d", report.TextFailures)
	}
	if report.Done != 1 {
		t.Errorf("Expected 1 fully done note, got %d", report.Done)
	}

	// Every attempted note lands in exactly one text bucket.
	sum := report.FieldResolutionFailures + report.TextFailures + report.TextSkips + report.TextSuccesses
	if sum != report.Attempted {
		t.Errorf("Text buckets sum to %d, expected %d", sum, report.Attempted)
	}

	if len(seen) != 3 {
		t.Errorf("Expected 3 progress calls, got %d", len(seen))
	}

	// One failing note never stops the following ones.
	if len(report.Results) != 3 || report.Results[2].NoteID != 3 {
		t.Error("Expected all three notes to be processed in order")
	}
}

func TestRunnerStop(t *testing.T) {
	var runner *Runner
	runner, _ = newMixedRunner(t, func(index, total int, result Result) {
		if index == 1 {
			runner.Stop()
		}
	})

	report := runner.Run(context.Background(), []int64{1, 2, 3})

	if !report.Stopped {
		t.Error("Expected the run to be marked stopped")
	}
	if report.Attempted != 1 {
		t.Errorf("Expected 1 attempted note, got %d", report.Attempted)
	}
	if report.Remaining != 2 {
		t.Errorf("Expected 2 remaining notes, got %d", report.Remaining)
	}
	if report.Total() != 3 {
		t.Errorf("Expected Total() 3, got %d", report.Total())
	}
}

func TestRunnerContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runner, _ := newMixedRunner(t, func(index, total int, result Result) {
		if index == 1 {
			cancel()
		}
	})

	report := runner.Run(ctx, []int64{1, 2, 3})

	if !report.Stopped {
		t.Error("Expected the run to stop on context cancellation")
	}
	if report.Attempted != 1 || report.Remaining != 2 {
		t.Errorf("Expected 1 attempted and 2 remaining, got %d and %d", report.Attempted, report.Remaining)
	}
}

func TestRunnerEmptyBatch(t *testing.T) {
	runner, _ := newMixedRunner(t, nil)

	report := runner.Run(context.Background(), nil)

	if report.Attempted != 0 || report.Total() != 0 {
		t.Errorf("Expected an empty report, got attempted=%d total=%d", report.Attempted, report.Total())
	}
	if report.Stopped {
		t.Error("Expected an empty run not to be marked stopped")
	}
}

func TestReportSummary(t *testing.T) {
	report := &Report{}
	report.add(Result{NoteID: 1, Text: TextGenSucceeded, Audio: AudioGenSucceeded})
	report.add(Result{NoteID: 2, Text: TextGenSkipped, Audio: AudioGenSkipped})
	report.add(Result{NoteID: 3, Text: TextGenFailed, Err: errors.New("boom")})
	report.Stopped = true
	report.Remaining = 2

	summary := report.Summary()

	for _, want := range []string{
		"Notes processed: 3",
		"Fully done: 2",
		"Text: 1 generated, 1 skipped, 1 failed",
		"Audio: 1 generated, 1 skipped, 0 failed",
		"Stopped early, 2 notes not attempted",
	} {
		if !strings.Contains(summary, want) {
			t.Errorf("Summary missing %q:\n%s", want, summary)
		}
	}
}

func TestReportSummaryAudioDisabled(t *testing.T) {
	report := &Report{}
	report.add(Result{NoteID: 1, Text: TextGenSucceeded, Audio: AudioDisabled})
	report.add(Result{NoteID: 2, Text: TextGenSucceeded, Audio: AudioDisabled})

	summary := report.Summary()
	if !strings.Contains(summary, "Audio: disabled") {
		t.Errorf("Expected disabled audio line, got:\n%s", summary)
	}
}

func TestStatusStrings(t *testing.T) {
	tests := []struct {
		status fmt.Stringer
		want   string
	}{
		{TextPending, "pending"},
		{FieldResolutionFailed, "fields unresolved"},
		{TextGenFailed, "failed"},
		{TextGenSkipped, "skipped"},
		{TextGenSucceeded, "generated"},
		{AudioNotRun, "not run"},
		{AudioGenFailed, "failed"},
		{AudioGenSkipped, "skipped"},
		{AudioGenSucceeded, "generated"},
		{AudioDisabled, "disabled"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
