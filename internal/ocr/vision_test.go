package ocr

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestConfigured(t *testing.T) {
	cases := []struct {
		key  string
		want bool
	}{
		{"", false},
		{"   ", false},
		{"AIza-test-key", true},
	}
	for _, c := range cases {
		client := &Client{APIKey: c.key}
		if got := client.Configured(); got != c.want {
			t.Errorf("Configured() with key %q = %v, want %v", c.key, got, c.want)
		}
	}
}

func TestDetectTextUnconfigured(t *testing.T) {
	client := &Client{}
	if _, err := client.DetectText(context.Background(), []byte{1}); err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestDetectTextEmptyImage(t *testing.T) {
	client := &Client{APIKey: "k"}
	if _, err := client.DetectText(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty image")
	}
}

func TestDetectTextSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if key := r.URL.Query().Get("key"); key != "test-key" {
			t.Errorf("key = %q", key)
		}

		var req struct {
			Requests []struct {
				Image struct {
					Content string `json:"content"`
				} `json:"image"`
				Features []struct {
					Type string `json:"type"`
				} `json:"features"`
			} `json:"requests"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Requests) != 1 || req.Requests[0].Features[0].Type != "DOCUMENT_TEXT_DETECTION" {
			t.Errorf("request = %+v", req)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"responses":[{"fullTextAnnotation":{"text":"Hemoglobin 13.5 g/dL"}}]}`))
	}))
	defer srv.Close()

	client := &Client{APIKey: "test-key", APIURL: srv.URL}
	text, err := client.DetectText(context.Background(), []byte("fake png bytes"))
	if err != nil {
		t.Fatalf("DetectText: %v", err)
	}
	if text != "Hemoglobin 13.5 g/dL" {
		t.Fatalf("text = %q", text)
	}
}

func TestDetectTextNoAnnotation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"responses":[{}]}`))
	}))
	defer srv.Close()

	client := &Client{APIKey: "test-key", APIURL: srv.URL}
	text, err := client.DetectText(context.Background(), []byte("blank page"))
	if err != nil {
		t.Fatalf("DetectText: %v", err)
	}
	if text != "" {
		t.Fatalf("text = %q, want empty for a blank page", text)
	}
}

func TestDetectTextClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"API key invalid","status":"PERMISSION_DENIED"}}`))
	}))
	defer srv.Close()

	client := &Client{APIKey: "bad-key", APIURL: srv.URL}
	_, err := client.DetectText(context.Background(), []byte("img"))
	if err == nil {
		t.Fatal("expected error")
	}

	var vErr *VisionError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected VisionError, got %v", err)
	}
	if vErr.StatusCode != http.StatusForbidden || vErr.Status != "PERMISSION_DENIED" {
		t.Errorf("vision error = %+v", vErr)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, 4xx must not be retried", got)
	}
}

func TestDetectTextPerImageError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"responses":[{"error":{"code":400,"message":"image too large"}}]}`))
	}))
	defer srv.Close()

	client := &Client{APIKey: "test-key", APIURL: srv.URL}
	_, err := client.DetectText(context.Background(), []byte("img"))

	var vErr *VisionError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected VisionError, got %v", err)
	}
	if vErr.Message != "image too large" {
		t.Errorf("message = %q", vErr.Message)
	}
}

func TestDetectTextKeyAppendedToExistingQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("alt") != "json" || r.URL.Query().Get("key") != "k" {
			t.Errorf("query = %q", r.URL.RawQuery)
		}
		w.Write([]byte(`{"responses":[{"fullTextAnnotation":{"text":"ok"}}]}`))
	}))
	defer srv.Close()

	client := &Client{APIKey: "k", APIURL: srv.URL + "?alt=json"}
	if _, err := client.DetectText(context.Background(), []byte("img")); err != nil {
		t.Fatalf("DetectText: %v", err)
	}
}

func TestVisionErrorMessage(t *testing.T) {
	err := &VisionError{StatusCode: 429, Message: "quota exceeded", Status: "RESOURCE_EXHAUSTED"}
	msg := err.Error()
	for _, want := range []string{"429", "RESOURCE_EXHAUSTED", "quota exceeded"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing %q", msg, want)
		}
	}
}
