// Package analysis provides the facial analysis capability: the engine
// interface, its subprocess and hosted-model implementations, and the HTTP
// client used by capture sessions to reach the relay.
//
// Analysis is advisory. Every error produced here is classified into a small
// taxonomy so callers can log it and move on; nothing in this package is ever
// fatal to a capture.
package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/evanly-gh/remember-me/internal/config"
)

// Engine is the facial analysis capability. Implementations may shell out to
// a local engine process, call a hosted vision model, or relay over HTTP; the
// caller cannot tell the difference.
type Engine interface {
	Name() string
	Analyze(ctx context.Context, image []byte) (*Result, error)
}

// ErrEngineUnavailable means analysis is not configured at all. Callers treat
// it as "no result", never as a failure.
var ErrEngineUnavailable = errors.New("analysis engine unavailable")

// ErrMissingImage means the request carried no image data. Checked before any
// engine work happens.
var ErrMissingImage = errors.New("no image data provided")

// ErrorKind classifies engine failures.
type ErrorKind string

const (
	// ErrorStartup: the engine could not be launched or reached at all.
	ErrorStartup ErrorKind = "startup"
	// ErrorExecution: the engine ran but finished unsuccessfully.
	ErrorExecution ErrorKind = "execution"
	// ErrorResponse: the engine answered, but not with a parseable result.
	ErrorResponse ErrorKind = "response"
)

// EngineError is a classified engine failure. Detail holds diagnostic output
// (engine stderr, response bodies) meant for logs, not for untrusted callers.
type EngineError struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

func (e *EngineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("engine %s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("engine %s error", e.Kind)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// NewEngine builds the engine selected by configuration.
func NewEngine(ctx context.Context, cfg *config.Config) (Engine, error) {
	switch cfg.Engine.Provider {
	case "", "exec":
		return NewExecEngine(&cfg.Engine), nil
	case "relay":
		// Forward to another instance's analyze endpoint. An unset endpoint
		// is allowed; analysis is simply off.
		return NewRelayClient(cfg.Analysis.Endpoint), nil
	case "openai":
		if cfg.OpenAI.Token == "" {
			return nil, errors.New("OPENAI_TOKEN environment variable is required for the openai engine")
		}
		return NewOpenAIEngine(cfg.OpenAI.Token), nil
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, errors.New("GEMINI_API_KEY environment variable is required for the gemini engine")
		}
		return NewGeminiEngine(ctx, cfg.Gemini.APIKey)
	default:
		return nil, fmt.Errorf("unknown engine provider: %s", cfg.Engine.Provider)
	}
}
