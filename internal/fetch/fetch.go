package fetch

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// Kind classifies fetched bytes by the extraction path they can take.
type Kind string

const (
	KindPDF   Kind = "pdf"
	KindImage Kind = "image"
)

var pdfSignature = []byte("%PDF-")

// Document is a fully fetched payload plus the response metadata the
// caller reports back. Bytes are held in memory; lab reports are capped
// well below the process budget by maxBytes.
type Document struct {
	Bytes       []byte
	ContentType string
	Status      int
	Size        int64
	Kind        Kind
}

func (d Document) IsPDF() bool { return d.Kind == KindPDF }

// Fetch validates the URL, performs one redirect-following GET and
// returns the body with its observed metadata. The 5-byte PDF signature
// is enforced for PDF payloads; PNG/JPEG are passed through for OCR.
func Fetch(ctx context.Context, fileURL string, maxBytes int64, timeout time.Duration) (Document, error) {
	if err := ValidateURL(fileURL); err != nil {
		return Document{}, err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", strings.TrimSpace(fileURL), nil)
	if err != nil {
		return Document{}, &ValidationError{Reason: "malformed URL"}
	}
	req.Header.Set("User-Agent", "arogya-extract/1.0")

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return Document{}, &FetchError{Reason: "network error", Err: err}
	}
	defer resp.Body.Close()

	contentType := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Type")))
	if i := strings.Index(contentType, ";"); i > 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Document{}, &FetchError{Status: resp.StatusCode, Reason: resp.Status}
	}

	lr := &io.LimitedReader{R: resp.Body, N: maxBytes + 1}
	body, err := io.ReadAll(lr)
	if err != nil {
		return Document{}, &FetchError{Status: resp.StatusCode, Reason: "read body", Err: err}
	}
	if int64(len(body)) > maxBytes {
		return Document{}, &FormatError{Reason: "file exceeds size limit"}
	}

	doc := Document{
		Bytes:       body,
		ContentType: contentType,
		Status:      resp.StatusCode,
		Size:        int64(len(body)),
	}

	kind, err := classify(body, contentType)
	if err != nil {
		return Document{}, err
	}
	doc.Kind = kind

	return doc, nil
}

// classify decides the extraction path from the payload itself. The
// declared content type is only a tie-breaker: expired signed URLs often
// return HTML error pages with a 200 status.
func classify(body []byte, contentType string) (Kind, error) {
	if len(body) < len(pdfSignature) {
		return "", &FormatError{Reason: "file too small to be a valid document"}
	}

	if bytes.HasPrefix(body, pdfSignature) {
		return KindPDF, nil
	}

	mt := mimetype.Detect(body).String()
	switch {
	case mt == "image/png", mt == "image/jpeg":
		return KindImage, nil
	case mt == "application/pdf" || contentType == "application/pdf":
		// Claimed PDF without the %PDF- header: reject rather than hand
		// garbage to the extractors.
		return "", &FormatError{Reason: "missing %PDF- signature (file damaged or link expired)"}
	}

	return "", &FormatError{Reason: "unsupported document type " + mt}
}

// ValidateURL enforces the fetch policy: absolute http(s) URLs only, no
// local filesystem paths, no loopback or private hosts. Private hosts
// can be allowed explicitly for tests and self-hosted storage.
func ValidateURL(rawURL string) error {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return &ValidationError{Reason: "fileUrl is required"}
	}
	if strings.HasPrefix(raw, "./") || strings.HasPrefix(raw, "/") {
		return &ValidationError{Reason: "local file paths are not allowed"}
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return &ValidationError{Reason: "malformed URL"}
	}

	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
	default:
		return &ValidationError{Reason: "URL must use http or https"}
	}

	host := strings.ToLower(strings.TrimSpace(parsed.Hostname()))
	if host == "" {
		return &ValidationError{Reason: "URL host is required"}
	}

	isLocalName := host == "localhost" || strings.HasSuffix(host, ".localhost")
	isPrivateIP := false
	if ip := net.ParseIP(host); ip != nil {
		isPrivateIP = isPrivateOrLocalIP(ip)
	}

	if isLocalName || isPrivateIP {
		if allowPrivateFetchURLs() {
			return nil
		}
		return &ValidationError{Reason: "URL host is not allowed"}
	}

	return nil
}

func allowPrivateFetchURLs() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("ALLOW_PRIVATE_FETCH_URLS")))
	return v == "1" || v == "true" || v == "yes"
}

func isPrivateOrLocalIP(ip net.IP) bool {
	if ip.IsLoopback() || ip.IsLinkLocalMulticast() || ip.IsLinkLocalUnicast() || ip.IsMulticast() || ip.IsUnspecified() {
		return true
	}
	if ip.IsPrivate() {
		return true
	}

	// RFC6598 carrier-grade NAT range: 100.64.0.0/10
	if v4 := ip.To4(); v4 != nil && v4[0] == 100 && v4[1] >= 64 && v4[1] <= 127 {
		return true
	}
	return false
}
