package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Port string

	// Secrets
	InternalSharedSecret string
	VisionAPIKey         string

	// Vision endpoint (overridable for tests)
	VisionAPIURL string

	// Limits
	MaxJSONBodyBytes int64
	MaxFileBytes     int64

	// Extraction policy
	MinTextChars   int
	MaxOCRPages    int
	PreferOCRFirst bool

	// Concurrency
	MaxConcurrentRequests int64
	MaxOCRConcurrent      int64

	// Server timeouts
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration

	// Request timeouts
	AnalyzeTimeout  time.Duration
	FetchTimeout    time.Duration
	LocalOCRTimeout time.Duration

	// Poppler timeouts
	PDFInfoTimeout  time.Duration
	PDFToPPMTimeout time.Duration

	// Rate limiting (per IP)
	RateLimitEvery time.Duration
	RateLimitBurst int

	// Housekeeping
	CleanupInterval time.Duration

	// Health
	HealthDegradeRatio float64

	// HTTP
	MaxHeaderBytes int

	// Parser
	ParserTablesPath string
	PreviewMaxChars  int
}

func Load() Config {
	return Config{
		Port: envStr("PORT", "8080"),

		InternalSharedSecret: envStr("INTERNAL_SHARED_SECRET", ""),
		VisionAPIKey:         envStr("GOOGLE_VISION_API_KEY", ""),
		VisionAPIURL:         envStr("GOOGLE_VISION_API_URL", "https://vision.googleapis.com/v1/images:annotate"),

		MaxJSONBodyBytes: int64(envInt("MAX_JSON_BODY_BYTES", 1<<20)),
		MaxFileBytes:     int64(envInt("MAX_FILE_BYTES", int(25<<20))),

		MinTextChars:   envInt("MIN_TEXT_CHARS", 50),
		MaxOCRPages:    envInt("MAX_OCR_PAGES", 3),
		PreferOCRFirst: envBool("PREFER_OCR_FIRST", false),

		MaxConcurrentRequests: int64(envInt("MAX_CONCURRENT_REQUESTS", 15)),
		MaxOCRConcurrent:      int64(envInt("MAX_OCR_CONCURRENT", 3)),

		ReadHeaderTimeout: envDur("READ_HEADER_TIMEOUT", 10*time.Second),
		ReadTimeout:       envDur("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:      envDur("WRITE_TIMEOUT", 180*time.Second),
		IdleTimeout:       envDur("IDLE_TIMEOUT", 60*time.Second),

		AnalyzeTimeout:  envDur("ANALYZE_TIMEOUT", 120*time.Second),
		FetchTimeout:    envDur("FETCH_TIMEOUT", 25*time.Second),
		LocalOCRTimeout: envDur("LOCAL_OCR_TIMEOUT", 20*time.Second),

		PDFInfoTimeout:  envDur("PDFINFO_TIMEOUT", 5*time.Second),
		PDFToPPMTimeout: envDur("PDFTOPPM_TIMEOUT", 15*time.Second),

		RateLimitEvery: envDur("RATE_LIMIT_EVERY", 600*time.Millisecond),
		RateLimitBurst: envInt("RATE_LIMIT_BURST", 20),

		CleanupInterval: envDur("CLEANUP_INTERVAL", 5*time.Minute),

		HealthDegradeRatio: envFloat("HEALTH_DEGRADE_RATIO", 0.9),

		MaxHeaderBytes: envInt("MAX_HEADER_BYTES", 1<<20),

		ParserTablesPath: envStr("PARSER_TABLES_PATH", ""),
		PreviewMaxChars:  envInt("PREVIEW_MAX_CHARS", 300),
	}
}

func (c Config) Validate() error {
	if len(strings.TrimSpace(c.InternalSharedSecret)) < 32 {
		return fmt.Errorf("INTERNAL_SHARED_SECRET must be at least 32 characters")
	}
	if c.MinTextChars <= 0 {
		return fmt.Errorf("MIN_TEXT_CHARS must be positive")
	}
	if c.MaxOCRPages <= 0 {
		return fmt.Errorf("MAX_OCR_PAGES must be positive")
	}
	return nil
}

func envStr(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}

func envBool(key string, fallback bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return fallback
	}
	return v == "1" || v == "true" || v == "yes"
}

func envDur(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
