package render

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	PDFInfoTimeout  time.Duration
	PDFToPPMTimeout time.Duration
}

// Sensible defaults if you pass zeros.
func (c Config) withDefaults() Config {
	out := c
	if out.PDFInfoTimeout <= 0 {
		out.PDFInfoTimeout = 5 * time.Second
	}
	if out.PDFToPPMTimeout <= 0 {
		out.PDFToPPMTimeout = 15 * time.Second
	}
	return out
}

var (
	pageCountRegex = regexp.MustCompile(`(?m)^Pages:\s+(\d+)\s*$`)
	encryptedRegex = regexp.MustCompile(`(?mi)^Encrypted:\s+yes\s*$`)
)

type PDFInfo struct {
	Pages     int
	Encrypted bool
}

// Info runs pdfinfo once over in-memory PDF bytes and extracts page
// count + encryption flag.
func Info(ctx context.Context, pdfBytes []byte, cfg Config) (PDFInfo, error) {
	cfg = cfg.withDefaults()

	ctx, cancel := context.WithTimeout(ctx, cfg.PDFInfoTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "pdfinfo", "-")
	cmd.Stdin = bytes.NewReader(pdfBytes)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return PDFInfo{}, classifyPopplerErr("pdfinfo", err, ctx, stderr.String())
	}

	out := stdout.String()
	pages, err := parsePages(out)
	if err != nil {
		return PDFInfo{}, err
	}

	return PDFInfo{Pages: pages, Encrypted: encryptedRegex.MatchString(out)}, nil
}

// Page renders one page of a PDF to a PNG image using pdftoppm.
// Output is capped to avoid OOM on hostile documents.
func Page(ctx context.Context, pdfBytes []byte, page int, cfg Config) ([]byte, error) {
	cfg = cfg.withDefaults()

	if page < 1 {
		return nil, fmt.Errorf("invalid page number: %d (must be >= 1)", page)
	}

	// Cap rendered output to 20 MiB per page
	const maxPageBytes = 20<<20 + 1

	ctx, cancel := context.WithTimeout(ctx, cfg.PDFToPPMTimeout)
	defer cancel()

	// pdftoppm cannot stream a PNG to stdout for stdin input on all
	// builds, so go through a temp directory.
	tmpDir, err := os.MkdirTemp("", "arogya-render-*")
	if err != nil {
		return nil, fmt.Errorf("temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	cmd := exec.CommandContext(ctx,
		"pdftoppm",
		"-f", strconv.Itoa(page),
		"-l", strconv.Itoa(page),
		"-r", "200",
		"-png",
		"-", prefix,
	)
	cmd.Stdin = bytes.NewReader(pdfBytes)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, classifyPopplerErr("pdftoppm", err, ctx, stderr.String())
	}

	matches, err := filepath.Glob(prefix + "*.png")
	if err != nil || len(matches) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no output for page %d", page)
	}

	f, err := os.Open(matches[0])
	if err != nil {
		return nil, fmt.Errorf("open rendered page: %w", err)
	}
	defer f.Close()

	img, err := io.ReadAll(io.LimitReader(f, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("read rendered page: %w", err)
	}
	if len(img) >= maxPageBytes {
		return nil, fmt.Errorf("rendered page %d exceeds size limit", page)
	}
	return img, nil
}

// --- internals ---

func parsePages(pdfinfoOut string) (int, error) {
	matches := pageCountRegex.FindStringSubmatch(pdfinfoOut)
	if len(matches) == 2 {
		n, err := strconv.Atoi(matches[1])
		if err != nil {
			return 0, fmt.Errorf("pdfinfo: invalid page count: %w", err)
		}
		return validatePages(n)
	}

	// Fallback: scan lines to handle formatting variations
	sc := bufio.NewScanner(strings.NewReader(pdfinfoOut))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(strings.ToLower(line), "pages:") {
			rest := strings.TrimSpace(line[len("Pages:"):])
			fields := strings.Fields(rest)
			if len(fields) == 0 {
				continue
			}
			n, err := strconv.Atoi(fields[0])
			if err != nil {
				return 0, fmt.Errorf("pdfinfo: invalid page count: %w", err)
			}
			return validatePages(n)
		}
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("pdfinfo: scan failed: %w", err)
	}

	return 0, fmt.Errorf("pdfinfo: pages field not found in output")
}

func validatePages(count int) (int, error) {
	if count <= 0 || count > 50000 {
		return 0, fmt.Errorf("pdfinfo: unreasonable page count: %d", count)
	}
	return count, nil
}

func classifyPopplerErr(tool string, err error, ctx context.Context, stderr string) error {
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("%s timeout: %w", tool, ctx.Err())
	}
	stderr = strings.TrimSpace(stderr)
	if stderr != "" {
		// If poppler printed its help/usage text (bad args, etc.) don't
		// match on keywords that appear in the help descriptions.
		if isHelpOrUsageOutput(stderr) {
			logPopplerErr(tool, stderr)
			return fmt.Errorf("%s failed (bad invocation): %s", tool, truncate(stderr, 200))
		}

		if containsAny(stderr,
			"Incorrect password",
			"Command Line Error: Incorrect password",
		) {
			logPopplerErr(tool, stderr)
			return fmt.Errorf("PDF is password protected")
		}
		if containsAny(stderr,
			"PDF file is damaged",
			"Syntax Error",
			"Couldn't find trailer dictionary",
			"May not be a PDF file",
		) {
			logPopplerErr(tool, stderr)
			return fmt.Errorf("PDF appears to be damaged or invalid")
		}
		return fmt.Errorf("%s failed: %s", tool, truncate(stderr, 200))
	}
	return fmt.Errorf("%s failed: %w", tool, err)
}

// isHelpOrUsageOutput returns true when stderr looks like a poppler
// usage / help dump rather than an actual processing error.
func isHelpOrUsageOutput(stderr string) bool {
	return strings.Contains(stderr, "version ") && strings.Contains(stderr, "Usage:")
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func logPopplerErr(tool, stderr string) {
	msg := strings.TrimSpace(stderr)
	if msg == "" {
		return
	}
	fmt.Fprintf(os.Stderr, "%s error: %s\n", tool, truncate(msg, 500))
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
