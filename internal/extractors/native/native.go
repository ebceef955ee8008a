package native

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/uxmanan-cloud/Arogya/internal/extract"
	"github.com/uxmanan-cloud/Arogya/internal/fetch"
)

// Extractor reads the PDF's embedded text layer directly. The fast
// path: no external process, no credentials. Fails on scanned or
// image-only documents, which the orchestrator handles by falling
// through to OCR.
type Extractor struct{}

func New() *Extractor { return &Extractor{} }

func (e *Extractor) Name() string { return extract.EngineNative }

func (e *Extractor) Configured() bool { return true }

func (e *Extractor) Extract(ctx context.Context, doc fetch.Document) (text string, err error) {
	if !doc.IsPDF() {
		return "", fmt.Errorf("%s input has no text layer", doc.Kind)
	}

	// The pdf package panics on some malformed cross-reference tables;
	// convert that into an ordinary extraction failure.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("text layer parse panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(doc.Bytes), doc.Size)
	if err != nil {
		return "", fmt.Errorf("open text layer: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}

		pageText, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		if pageText = strings.TrimSpace(pageText); pageText != "" {
			sb.WriteString(pageText)
			sb.WriteString("\n")
		}
	}

	return sb.String(), nil
}
