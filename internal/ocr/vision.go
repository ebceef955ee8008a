package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client calls the Google Cloud Vision images:annotate endpoint with
// DOCUMENT_TEXT_DETECTION. An empty API key means the engine is not
// configured, which the orchestrator treats as "skip", never "fail".
type Client struct {
	APIKey string
	APIURL string

	// HTTPClient is overridable for tests; nil uses a tuned default.
	HTTPClient *http.Client
}

const (
	defaultVisionURL = "https://vision.googleapis.com/v1/images:annotate"
	maxRetries       = 2
	retryDelay       = 2 * time.Second
	requestTimeout   = 60 * time.Second
)

func (c *Client) Configured() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

type annotateRequest struct {
	Requests []imageRequest `json:"requests"`
}

type imageRequest struct {
	Image    imageContent `json:"image"`
	Features []feature    `json:"features"`
}

type imageContent struct {
	Content string `json:"content"`
}

type feature struct {
	Type string `json:"type"`
}

type annotateResponse struct {
	Responses []imageResponse `json:"responses"`
}

type imageResponse struct {
	FullTextAnnotation *struct {
		Text string `json:"text"`
	} `json:"fullTextAnnotation"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// DetectText submits one image for document text detection and returns
// the detected full text. Transient failures are retried with backoff;
// 4xx responses are not.
func (c *Client) DetectText(ctx context.Context, image []byte) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("GOOGLE_VISION_API_KEY not configured")
	}
	if len(image) == 0 {
		return "", fmt.Errorf("image bytes required")
	}

	body := annotateRequest{
		Requests: []imageRequest{{
			Image:    imageContent{Content: base64.StdEncoding.EncodeToString(image)},
			Features: []feature{{Type: "DOCUMENT_TEXT_DETECTION"}},
		}},
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}

	return withConcurrencyLimit(ctx, func() (string, error) {
		var lastErr error
		for attempt := 0; attempt <= maxRetries; attempt++ {
			if attempt > 0 {
				select {
				case <-ctx.Done():
					return "", ctx.Err()
				case <-time.After(retryDelay * time.Duration(attempt)):
				}
			}

			text, err := c.executeAnnotate(ctx, bodyBytes)
			if err == nil {
				return text, nil
			}

			lastErr = err

			// Don't retry client errors (4xx)
			if isClientError(err) {
				break
			}
		}

		return "", fmt.Errorf("vision OCR failed after %d attempts: %w", maxRetries+1, lastErr)
	})
}

func (c *Client) executeAnnotate(ctx context.Context, bodyBytes []byte) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	apiURL := c.APIURL
	if apiURL == "" {
		apiURL = defaultVisionURL
	}
	sep := "?"
	if strings.Contains(apiURL, "?") {
		sep = "&"
	}

	req, err := http.NewRequestWithContext(reqCtx, "POST", apiURL+sep+"key="+c.APIKey, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "arogya-extract/1.0")

	client := c.HTTPClient
	if client == nil {
		client = &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", parseErrorResponse(resp)
	}

	var result annotateResponse
	decoder := json.NewDecoder(io.LimitReader(resp.Body, 50<<20))
	if err := decoder.Decode(&result); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}

	if len(result.Responses) == 0 {
		return "", fmt.Errorf("vision returned no responses")
	}

	r := result.Responses[0]
	if r.Error != nil {
		return "", &VisionError{StatusCode: r.Error.Code, Message: r.Error.Message}
	}
	if r.FullTextAnnotation == nil {
		return "", nil
	}
	return r.FullTextAnnotation.Text, nil
}

func parseErrorResponse(resp *http.Response) error {
	bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var errResp struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	if json.Unmarshal(bodyBytes, &errResp) == nil && errResp.Error.Message != "" {
		return &VisionError{
			StatusCode: resp.StatusCode,
			Message:    errResp.Error.Message,
			Status:     errResp.Error.Status,
		}
	}

	return &VisionError{
		StatusCode: resp.StatusCode,
		Message:    string(bodyBytes),
		Status:     "unknown",
	}
}

type VisionError struct {
	StatusCode int
	Message    string
	Status     string
}

func (e *VisionError) Error() string {
	return fmt.Sprintf("vision OCR %d (%s): %s", e.StatusCode, e.Status, e.Message)
}

func isClientError(err error) bool {
	if vErr, ok := err.(*VisionError); ok {
		return vErr.StatusCode >= 400 && vErr.StatusCode < 500
	}
	return false
}
