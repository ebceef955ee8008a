package pipeline

import "github.com/uxmanan-cloud/Arogya/internal/parse"

// Request is the analyze contract. Language and Prefs ride along for
// the caller's downstream use; the core only consumes Language as an
// OCR hint. Mode "mock" bypasses the pipeline entirely.
type Request struct {
	FileURL  string         `json:"fileUrl"`
	Pages    int            `json:"pages,omitempty"`
	Language string         `json:"language,omitempty"`
	Prefs    map[string]any `json:"prefs,omitempty"`
	Mode     string         `json:"mode,omitempty"`
}

const (
	ModeLive = "live"
	ModeMock = "mock"
)

type Meta struct {
	ContentType    string   `json:"contentType"`
	Size           int64    `json:"size"`
	Status         int      `json:"status"`
	Used           string   `json:"used,omitempty"`
	ParsedCount    int      `json:"parsedCount"`
	EnginesSkipped []string `json:"enginesSkipped,omitempty"`
}

type Data struct {
	Findings    []parse.Finding `json:"findings"`
	ECGFlags    []string        `json:"ecgFlags"`
	PreviewText string          `json:"previewText"`
}

// Response is the single envelope both success and error share, so
// callers always switch on ok.
type Response struct {
	OK      bool               `json:"ok"`
	Meta    *Meta              `json:"meta,omitempty"`
	Patient *parse.PatientInfo `json:"patient,omitempty"`
	Data    *Data              `json:"data,omitempty"`
	Error   string             `json:"error,omitempty"`
	Details any                `json:"details,omitempty"`
}

// Outcome tags a pipeline run with its HTTP-equivalent status so the
// boundary handler writes exactly what the run decided, no partial or
// corrupted success responses.
type Outcome struct {
	Status   int
	Response Response
	Err      error
}
