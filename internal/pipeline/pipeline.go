package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/uxmanan-cloud/Arogya/internal/config"
	"github.com/uxmanan-cloud/Arogya/internal/extract"
	"github.com/uxmanan-cloud/Arogya/internal/extractors/cloudocr"
	"github.com/uxmanan-cloud/Arogya/internal/extractors/localocr"
	"github.com/uxmanan-cloud/Arogya/internal/extractors/native"
	"github.com/uxmanan-cloud/Arogya/internal/fetch"
	"github.com/uxmanan-cloud/Arogya/internal/ocr"
	"github.com/uxmanan-cloud/Arogya/internal/parse"
	"github.com/uxmanan-cloud/Arogya/internal/render"
)

// EngineFactory builds the ordered engine chain for one request. The
// chain is per-request because the page cap and language hint come
// from the request; engines share no mutable state across requests.
type EngineFactory func(pages int, language string) []extract.Engine

// Pipeline wires fetch → extraction → parsing → assembly. It is a pure
// function of its request plus immutable configuration, safe for
// concurrent use.
type Pipeline struct {
	cfg        config.Config
	parser     *parse.Parser
	newEngines EngineFactory
}

func New(cfg config.Config) (*Pipeline, error) {
	tables, err := parse.LoadTables(cfg.ParserTablesPath)
	if err != nil {
		return nil, err
	}

	renderCfg := render.Config{
		PDFInfoTimeout:  cfg.PDFInfoTimeout,
		PDFToPPMTimeout: cfg.PDFToPPMTimeout,
	}
	visionClient := &ocr.Client{APIKey: cfg.VisionAPIKey, APIURL: cfg.VisionAPIURL}

	factory := func(pages int, language string) []extract.Engine {
		return []extract.Engine{
			native.New(),
			cloudocr.New(visionClient, renderCfg, pages),
			localocr.New(renderCfg, pages, cfg.LocalOCRTimeout, language),
		}
	}

	return &Pipeline{
		cfg:        cfg,
		parser:     parse.NewParser(parse.DefaultOptions(), tables),
		newEngines: factory,
	}, nil
}

// NewWithEngines injects a custom engine chain; used by tests.
func NewWithEngines(cfg config.Config, factory EngineFactory) (*Pipeline, error) {
	p, err := New(cfg)
	if err != nil {
		return nil, err
	}
	p.newEngines = factory
	return p, nil
}

// Run executes one request end to end and tags the result with its
// HTTP-equivalent status.
func (p *Pipeline) Run(ctx context.Context, req Request) Outcome {
	if strings.TrimSpace(req.FileURL) == "" {
		return errOutcome(http.StatusBadRequest, "fileUrl is required", nil, nil)
	}

	if req.Mode == ModeMock {
		return Outcome{Status: http.StatusOK, Response: MockResponse()}
	}

	doc, err := fetch.Fetch(ctx, req.FileURL, p.cfg.MaxFileBytes, p.cfg.FetchTimeout)
	if err != nil {
		return fetchOutcome(err)
	}

	pages := req.Pages
	if pages <= 0 || pages > p.cfg.MaxOCRPages {
		pages = p.cfg.MaxOCRPages
	}

	orch := extract.NewOrchestrator(p.newEngines(pages, req.Language), p.cfg.MinTextChars, p.cfg.PreferOCRFirst)
	res, err := orch.Run(ctx, doc)
	if err != nil {
		var allFailed *extract.AllEnginesFailedError
		if errors.As(err, &allFailed) {
			return errOutcome(http.StatusInternalServerError,
				"text extraction failed",
				fmt.Sprintf("attempted: %s", strings.Join(allFailed.Attempted, ", ")),
				&Meta{
					ContentType:    doc.ContentType,
					Size:           doc.Size,
					Status:         doc.Status,
					EnginesSkipped: allFailed.Skipped,
				})
		}
		return errOutcome(http.StatusInternalServerError, "text extraction failed", err.Error(), nil)
	}

	text := parse.CleanText(res.Text)
	findings := p.parser.ParseFindings(text)
	patient := p.parser.ParsePatientInfo(text)
	ecgFlags := parse.ParseECGFlags(text)

	return Outcome{
		Status:   http.StatusOK,
		Response: Assemble(doc, res, findings, patient, ecgFlags, p.cfg.PreviewMaxChars),
	}
}

func fetchOutcome(err error) Outcome {
	var (
		validationErr *fetch.ValidationError
		formatErr     *fetch.FormatError
		fetchErr      *fetch.FetchError
	)
	switch {
	case errors.As(err, &validationErr):
		return errOutcome(http.StatusBadRequest, validationErr.Error(), nil, nil)
	case errors.As(err, &formatErr):
		return errOutcome(http.StatusBadRequest, "not a valid document or link expired", formatErr.Reason, nil)
	case errors.As(err, &fetchErr):
		var meta *Meta
		if fetchErr.Status > 0 {
			meta = &Meta{Status: fetchErr.Status}
		}
		return errOutcome(http.StatusBadGateway, "could not fetch file", fetchErr.Reason, meta)
	default:
		return errOutcome(http.StatusBadGateway, "could not fetch file", err.Error(), nil)
	}
}

func errOutcome(status int, msg string, details any, meta *Meta) Outcome {
	return Outcome{
		Status: status,
		Response: Response{
			OK:      false,
			Error:   msg,
			Details: details,
			Meta:    meta,
		},
		Err: errors.New(msg),
	}
}
