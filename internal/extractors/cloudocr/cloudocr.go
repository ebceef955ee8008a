package cloudocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/uxmanan-cloud/Arogya/internal/extract"
	"github.com/uxmanan-cloud/Arogya/internal/fetch"
	"github.com/uxmanan-cloud/Arogya/internal/ocr"
	"github.com/uxmanan-cloud/Arogya/internal/render"
)

// Extractor renders PDF pages to images and submits each for document
// text detection via the Vision client. More expensive than the native
// path; best for scanned reports. Image inputs skip rendering and are
// submitted directly.
type Extractor struct {
	client    *ocr.Client
	renderCfg render.Config
	maxPages  int
}

func New(client *ocr.Client, renderCfg render.Config, maxPages int) *Extractor {
	if maxPages <= 0 {
		maxPages = 3
	}
	return &Extractor{client: client, renderCfg: renderCfg, maxPages: maxPages}
}

func (e *Extractor) Name() string { return extract.EngineCloudOCR }

// Configured is false when the Vision API key is absent: the engine is
// unusable, which is "skip", not "fail".
func (e *Extractor) Configured() bool { return e.client.Configured() }

func (e *Extractor) Extract(ctx context.Context, doc fetch.Document) (string, error) {
	if !doc.IsPDF() {
		return e.client.DetectText(ctx, doc.Bytes)
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

		pageText, err := e.client.DetectText(ctx, img)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", page, err)
		}
		if pageText = strings.TrimSpace(pageText); pageText != "" {
			parts = append(parts, pageText)
		}
	}

	return strings.Join(parts, "\n"), nil
}
