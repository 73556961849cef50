package analysis

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os/exec"
	"time"

	"github.com/evanly-gh/remember-me/internal/config"
)

// ExecEngine runs a locally installed analysis engine as a subprocess.
// Protocol: raw image bytes are written to the process's stdin and the stream
// is closed to signal end-of-input; stdout must be a single JSON result
// document; stderr is diagnostic only.
type ExecEngine struct {
	command string
	args    []string
	timeout time.Duration
}

// NewExecEngine creates an exec engine from configuration.
func NewExecEngine(cfg *config.EngineConfig) *ExecEngine {
	return &ExecEngine{
		command: cfg.Command,
		args:    cfg.Args,
		timeout: cfg.Timeout,
	}
}

func (e *ExecEngine) Name() string {
	return e.command
}

// Analyze launches one engine process for this request, feeds it the image
// and classifies the outcome. No state is shared between invocations, so
// concurrent calls are independent. A failure here never takes down the
// hosting process.
func (e *ExecEngine) Analyze(ctx context.Context, image []byte) (*Result, error) {
	if len(image) == 0 {
		return nil, ErrMissingImage
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, e.command, e.args...) //nolint:gosec // command comes from operator config, not request data

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &EngineError{Kind: ErrorStartup, Err: err}
	}

	if err := cmd.Start(); err != nil {
		return nil, &EngineError{Kind: ErrorStartup, Err: err}
	}

	// A write failure (e.g., the engine exited before reading its input) must
	// not escape; the exit code below decides the outcome.
	if _, werr := stdin.Write(image); werr != nil {
		log.Printf("engine stdin write error: %v", werr)
	}
	if cerr := stdin.Close(); cerr != nil {
		log.Printf("engine stdin close error: %v", cerr)
	}

	if err := cmd.Wait(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &EngineError{Kind: ErrorExecution, Detail: stderr.String(), Err: context.DeadlineExceeded}
		}
		return nil, &EngineError{Kind: ErrorExecution, Detail: stderr.String(), Err: err}
	}

	result, err := ParseResult(stdout.Bytes())
	if err != nil {
		return nil, &EngineError{Kind: ErrorResponse, Detail: stdout.String(), Err: err}
	}
	return result, nil
}
