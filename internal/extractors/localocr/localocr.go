package localocr

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/otiai10/gosseract/v2"

	"github.com/uxmanan-cloud/Arogya/internal/extract"
	"github.com/uxmanan-cloud/Arogya/internal/fetch"
	"github.com/uxmanan-cloud/Arogya/internal/render"
)

// Extractor runs tesseract in-process as the credential-free,
// last-resort engine. Recognition is raced against a hard wall-clock
// timeout; a timeout is an ordinary extraction failure so the
// orchestrator can still report a final outcome instead of hanging.
type Extractor struct {
	renderCfg render.Config
	maxPages  int
	timeout   time.Duration
	language  string
}

func New(renderCfg render.Config, maxPages int, timeout time.Duration, language string) *Extractor {
	if maxPages <= 0 {
		maxPages = 3
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Extractor{
		renderCfg: renderCfg,
		maxPages:  maxPages,
		timeout:   timeout,
		language:  tesseractLanguage(language),
	}
}

func (e *Extractor) Name() string { return extract.EngineLocalOCR }

func (e *Extractor) Configured() bool { return true }

func (e *Extractor) Extract(ctx context.Context, doc fetch.Document) (string, error) {
	deadline := time.Now().Add(e.timeout)
	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	if !doc.IsPDF() {
		return e.recognize(ctx, doc.Bytes)
	}

	info, err := render.Info(ctx, doc.Bytes, e.renderCfg)
	if err != nil {
		return "", fmt.Errorf("page count: %w", err)
	}

	pages := info.Pages
	if pages > e.maxPages {
		pages = e.maxPages
	}

	var parts []string
	for page := 1; page <= pages; page++ {
		img, err := render.Page(ctx, doc.Bytes, page, e.renderCfg)
		if err != nil {
			return "", fmt.Errorf("render page %d: %w", page, err)
		}

		pageText, err := e.recognize(ctx, img)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", page, err)
		}
		if pageText = strings.TrimSpace(pageText); pageText != "" {
			parts = append(parts, pageText)
		}
	}

	return strings.Join(parts, "\n"), nil
}

type recognition struct {
	text string
	err  error
}

// recognize races one tesseract call against the context deadline. The
// gosseract call itself cannot be interrupted; on timeout its goroutine
// is left to finish and its result discarded.
func (e *Extractor) recognize(ctx context.Context, image []byte) (string, error) {
	done := make(chan recognition, 1)

	go func() {
		client := gosseract.NewClient()
		defer client.Close()

		if err := client.SetLanguage(e.language); err != nil {
			done <- recognition{err: fmt.Errorf("set language %q: %w", e.language, err)}
			return
		}
		if err := client.SetImageFromBytes(image); err != nil {
			done <- recognition{err: fmt.Errorf("set image: %w", err)}
			return
		}

		text, err := client.Text()
		if err != nil {
			done <- recognition{err: fmt.Errorf("tesseract: %w", err)}
			return
		}
		done <- recognition{text: text}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("local OCR timed out: %w", ctx.Err())
	case r := <-done:
		return r.text, r.err
	}
}

// tesseractLanguage maps the request's BCP-47-ish language hint onto a
// tesseract traineddata code. Unknown hints fall back to English.
func tesseractLanguage(hint string) string {
	switch strings.ToLower(strings.TrimSpace(hint)) {
	case "", "en", "eng":
		return "eng"
	case "hi", "hin":
		return "hin"
	case "ta", "tam":
		return "tam"
	case "te", "tel":
		return "tel"
	case "bn", "ben":
		return "ben"
	default:
		return "eng"
	}
}
