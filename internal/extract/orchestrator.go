package extract

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/uxmanan-cloud/Arogya/internal/fetch"
)

// Result records which engine produced the text and which engines
// never ran. Immutable once returned.
type Result struct {
	Text           string
	EngineUsed     string
	EnginesSkipped []string
}

// Orchestrator tries engines strictly in order, falling through on
// failure or insufficient yield. Engines are never run in parallel:
// OCR is expensive and the native path succeeds for most documents.
type Orchestrator struct {
	engines      []Engine
	minTextChars int

	// preferOCRFirst skips the native engine outright, for deployments
	// where the text layer is known to be unreliable. An explicit flag,
	// not environment sniffing, so the transitions stay deterministic.
	preferOCRFirst bool
}

func NewOrchestrator(engines []Engine, minTextChars int, preferOCRFirst bool) *Orchestrator {
	if minTextChars <= 0 {
		minTextChars = 50
	}
	return &Orchestrator{
		engines:        engines,
		minTextChars:   minTextChars,
		preferOCRFirst: preferOCRFirst,
	}
}

// Run attempts extraction engine by engine. The first engine yielding
// at least minTextChars characters (after trimming) short-circuits the
// chain. If every engine fails, is skipped, or yields too little text,
// an AllEnginesFailedError is returned; there is no partial success.
func (o *Orchestrator) Run(ctx context.Context, doc fetch.Document) (Result, error) {
	var (
		attempted []string
		skipped   []string
		lastErr   error
	)

	for _, eng := range o.engines {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		if o.preferOCRFirst && eng.Name() == EngineNative {
			skipped = append(skipped, eng.Name())
			continue
		}
		if !eng.Configured() {
			skipped = append(skipped, eng.Name())
			continue
		}

		attempted = append(attempted, eng.Name())

		text, err := eng.Extract(ctx, doc)
		if err != nil {
			lastErr = &EngineError{Engine: eng.Name(), Err: err}
			logEngineFailure(eng.Name(), err)
			continue
		}

		if len(strings.TrimSpace(text)) < o.minTextChars {
			lastErr = &EngineError{
				Engine: eng.Name(),
				Err:    fmt.Errorf("insufficient text (%d chars, need %d)", len(strings.TrimSpace(text)), o.minTextChars),
			}
			continue
		}

		return Result{
			Text:           text,
			EngineUsed:     eng.Name(),
			EnginesSkipped: skipped,
		}, nil
	}

	return Result{}, &AllEnginesFailedError{
		Attempted: attempted,
		Skipped:   skipped,
		LastErr:   lastErr,
	}
}

func logEngineFailure(engine string, err error) {
	fmt.Fprintf(os.Stderr, "extract: %s engine failed: %v\n", engine, err)
}
