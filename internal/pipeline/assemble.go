package pipeline

import (
	"github.com/uxmanan-cloud/Arogya/internal/extract"
	"github.com/uxmanan-cloud/Arogya/internal/fetch"
	"github.com/uxmanan-cloud/Arogya/internal/parse"
)

// Assemble composes extractor metadata, findings and patient info into
// the response envelope. No logic beyond composition; previewText is a
// bounded prefix for display and audit so callers never re-send the
// full text.
func Assemble(doc fetch.Document, res extract.Result, findings []parse.Finding, patient parse.PatientInfo, ecgFlags []string, previewMax int) Response {
	if previewMax <= 0 {
		previewMax = 300
	}

	preview := res.Text
	if len(preview) > previewMax {
		preview = preview[:previewMax]
	}

	return Response{
		OK: true,
		Meta: &Meta{
			ContentType:    doc.ContentType,
			Size:           doc.Size,
			Status:         doc.Status,
			Used:           res.EngineUsed,
			ParsedCount:    len(findings),
			EnginesSkipped: res.EnginesSkipped,
		},
		Patient: &patient,
		Data: &Data{
			Findings:    findings,
			ECGFlags:    ecgFlags,
			PreviewText: preview,
		},
	}
}
