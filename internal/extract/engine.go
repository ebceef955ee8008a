package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/uxmanan-cloud/Arogya/internal/fetch"
)

// Engine names as reported in responses.
const (
	EngineNative   = "native"
	EngineCloudOCR = "cloud-ocr"
	EngineLocalOCR = "local-ocr"
)

// Engine is one strategy for turning document bytes into plain text.
type Engine interface {
	// Name identifies the engine in result metadata.
	Name() string

	// Configured reports whether the engine can run at all. An
	// unconfigured engine is skipped, not counted as failed.
	Configured() bool

	// Extract returns the recognized text or an error. Insufficient
	// yield is the orchestrator's call, not the engine's.
	Extract(ctx context.Context, doc fetch.Document) (string, error)
}

// EngineError wraps one engine's failure; the orchestrator absorbs
// these and falls through to the next engine.
type EngineError struct {
	Engine string
	Err    error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s extraction failed: %v", e.Engine, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }

// AllEnginesFailedError is surfaced only after every engine in the
// chain has failed, been skipped, or yielded insufficient text.
type AllEnginesFailedError struct {
	Attempted []string
	Skipped   []string
	LastErr   error
}

func (e *AllEnginesFailedError) Error() string {
	msg := fmt.Sprintf("all extraction engines failed (attempted: %s",
		strings.Join(e.Attempted, ", "))
	if len(e.Skipped) > 0 {
		msg += "; skipped: " + strings.Join(e.Skipped, ", ")
	}
	msg += ")"
	if e.LastErr != nil {
		msg += ": " + e.LastErr.Error()
	}
	return msg
}

func (e *AllEnginesFailedError) Unwrap() error { return e.LastErr }
