// Package fault defines the error categories shared by the generation
// pipeline, the backend clients and the CLI. Callers wrap transport and
// API failures into these types so that the pipeline can bucket results
// and the CLI can print a message that names the actual problem.
package fault

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// Kind is a coarse failure category, derived from an error chain.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfiguration
	KindAuth
	KindRateLimit
	KindNetwork
	KindEngineNotRunning
	KindMalformedResponse
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindAuth:
		return "authentication"
	case KindRateLimit:
		return "rate limit"
	case KindNetwork:
		return "network"
	case KindEngineNotRunning:
		return "engine not running"
	case KindMalformedResponse:
		return "malformed response"
	default:
		return "unknown"
	}
}

// ConfigurationError reports an invalid or incomplete setting. It is
// raised before any remote call is made.
type ConfigurationError struct {
	Setting string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Setting == "" {
		return fmt.Sprintf("configuration error: %s", e.Message)
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Setting, e.Message)
}

// AuthError indicates a rejected or missing credential for a remote service.
type AuthError struct {
	Service string
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s authentication failed: %s", e.Service, e.Message)
}

// RateLimitError indicates the remote service refused the call due to
// quota or rate limiting. RetryAfter is zero when the service did not say.
type RateLimitError struct {
	Service    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s rate limit exceeded, retry after %s", e.Service, e.RetryAfter)
	}
	return fmt.Sprintf("%s rate limit exceeded", e.Service)
}

// NetworkError wraps a transport level failure, including timeouts.
type NetworkError struct {
	Service string
	Err     error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s network error: %v", e.Service, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// EngineNotRunningError indicates a local synthesis engine could not be
// reached at its address. Audio generation treats this as skippable.
type EngineNotRunningError struct {
	Engine string
	Addr   string
}

func (e *EngineNotRunningError) Error() string {
	return fmt.Sprintf("%s is not running at %s", e.Engine, e.Addr)
}

// MalformedResponseError indicates a response that could not be parsed
// or that was missing the expected payload.
type MalformedResponseError struct {
	Service string
	Message string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s returned a malformed response: %s", e.Service, e.Message)
}

// KindOf walks the error chain and returns the matching category.
// Deadline and transport timeouts count as network failures.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var (
		confErr      *ConfigurationError
		authErr      *AuthError
		rateErr      *RateLimitError
		netErr       *NetworkError
		engineErr    *EngineNotRunningError
		malformedErr *MalformedResponseError
	)
	switch {
	case errors.As(err, &confErr):
		return KindConfiguration
	case errors.As(err, &authErr):
		return KindAuth
	case errors.As(err, &rateErr):
		return KindRateLimit
	case errors.As(err, &engineErr):
		return KindEngineNotRunning
	case errors.As(err, &malformedErr):
		return KindMalformedResponse
	case errors.As(err, &netErr):
		return KindNetwork
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindNetwork
	}
	var timeoutErr net.Error
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return KindNetwork
	}
	return KindUnknown
}
