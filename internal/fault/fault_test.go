package fault

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{
			name: "nil error",
			err:  nil,
			want: KindUnknown,
		},
		{
			name: "configuration error",
			err:  &ConfigurationError{Setting: "audio.openai_speed", Message: "out of range"},
			want: KindConfiguration,
		},
		{
			name: "auth error",
			err:  &AuthError{Service: "OpenAI", Message: "invalid api key"},
			want: KindAuth,
		},
		{
			name: "rate limit error",
			err:  &RateLimitError{Service: "ElevenLabs"},
			want: KindRateLimit,
		},
		{
			name: "network error",
			err:  &NetworkError{Service: "OpenAI", Err: errors.New("connection reset")},
			want: KindNetwork,
		},
		{
			name: "engine not running",
			err:  &EngineNotRunningError{Engine: "VOICEVOX", Addr: "127.0.0.1:50021"},
			want: KindEngineNotRunning,
		},
		{
			name: "malformed response",
			err:  &MalformedResponseError{Service: "Gemini", Message: "no candidates"},
			want: KindMalformedResponse,
		},
		{
			name: "wrapped configuration error",
			err:  fmt.Errorf("loading settings: %w", &ConfigurationError{Message: "bad template"}),
			want: KindConfiguration,
		},
		{
			name: "deeply wrapped network error",
			err:  fmt.Errorf("text stage: %w", fmt.Errorf("request: %w", &NetworkError{Service: "x", Err: errors.New("eof")})),
			want: KindNetwork,
		},
		{
			name: "deadline exceeded counts as network",
			err:  fmt.Errorf("synthesis: %w", context.DeadlineExceeded),
			want: KindNetwork,
		},
		{
			name: "plain error",
			err:  errors.New("something else"),
			want: KindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{
			name:     "configuration error with setting",
			err:      &ConfigurationError{Setting: "prompt", Message: "unknown placeholder {Word}"},
			contains: []string{"prompt", "unknown placeholder {Word}"},
		},
		{
			name:     "configuration error without setting",
			err:      &ConfigurationError{Message: "note type missing"},
			contains: []string{"configuration error", "note type missing"},
		},
		{
			name:     "rate limit with retry hint",
			err:      &RateLimitError{Service: "OpenAI", RetryAfter: 30 * time.Second},
			contains: []string{"OpenAI", "retry after 30s"},
		},
		{
			name:     "engine not running names the address",
			err:      &EngineNotRunningError{Engine: "AivisSpeech", Addr: "127.0.0.1:10101"},
			contains: []string{"AivisSpeech", "127.0.0.1:10101"},
		},
		{
			name:     "network error keeps the cause",
			err:      &NetworkError{Service: "VOICEVOX", Err: errors.New("connection refused")},
			contains: []string{"VOICEVOX", "connection refused"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, want := range tt.contains {
				if !strings.Contains(msg, want) {
					t.Errorf("Error() = %q, want it to contain %q", msg, want)
				}
			}
		})
	}
}

func TestNetworkErrorUnwrap(t *testing.T) {
	cause := errors.New("broken pipe")
	err := &NetworkError{Service: "test", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("errors.Is() should find the wrapped cause")
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindConfiguration, "configuration"},
		{KindAuth, "authentication"},
		{KindRateLimit, "rate limit"},
		{KindNetwork, "network"},
		{KindEngineNotRunning, "engine not running"},
		{KindMalformedResponse, "malformed response"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}
