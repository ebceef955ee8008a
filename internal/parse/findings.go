package parse

import (
	"regexp"
	"strconv"
	"strings"
)

// Flag is the qualitative status printed next to a result. The
// vocabulary mixes clinical severities with the summary-card phrase
// "Everything looks good"; it is carried as an opaque enum, no ordinal
// meaning is inferred.
type Flag string

const (
	FlagConcern    Flag = "Concern"
	FlagGood       Flag = "Everything looks good"
	FlagBorderline Flag = "Borderline"
	FlagHigh       Flag = "High"
	FlagLow        Flag = "Low"
)

// Finding is one structured test result extracted from a report line
// (or line pair). RawLine keeps the untouched source line for audit.
type Finding struct {
	Term     string  `json:"term"`
	Value    any     `json:"value"`
	Units    *string `json:"units"`
	RefRange *string `json:"refRange"`
	Flag     *Flag   `json:"flag"`
	RawLine  string  `json:"rawLine"`
}

// Options consolidates the knobs the matcher variants used to disagree
// on. One parameterized parser, not parallel copies.
type Options struct {
	MinLineLength    int
	MaxLineLength    int
	Stacked          bool
	PatientScanLines int
}

func DefaultOptions() Options {
	return Options{
		MinLineLength:    5,
		MaxLineLength:    300,
		Stacked:          true,
		PatientScanLines: 20,
	}
}

// Parser is a pure function of its input text: no state survives a
// parse, so one Parser can serve concurrent requests.
type Parser struct {
	opts   Options
	tables Tables
}

func NewParser(opts Options, tables Tables) *Parser {
	if opts.MinLineLength <= 0 {
		opts.MinLineLength = 5
	}
	if opts.MaxLineLength <= 0 {
		opts.MaxLineLength = 300
	}
	if opts.PatientScanLines <= 0 {
		opts.PatientScanLines = 20
	}
	if tables.Terms == nil || tables.Units == nil {
		tables = DefaultTables()
	}
	return &Parser{opts: opts, tables: tables}
}

var (
	// Administrative header lines carry no findings.
	headerPattern = regexp.MustCompile(`(?i)^(Dr\.|Doctor|Address|Phone|Date|Invoice|Patient ID|DOB|Test Name|Value|Unit|Bio\. Ref Interval|Method:|Page \d+)`)

	// Pattern 1: table row, with term, value, units and reference range
	// on one line, e.g. "Serum Creatinine 1.06 mg/dl 0.2-1.2".
	tableRowPattern = regexp.MustCompile(`^([A-Za-z0-9 /()\-.,+%]+?)\s+([+-]?\d+(?:\.\d+)?)\s+([A-Za-zµ/%^0-9·-]+)\s+((?:[<>=]?\s*\d+(?:\.\d+)?\s*(?:–|-|to)\s*\d+(?:\.\d+)?|[<>=]\s*\d+(?:\.\d+)?|[A-Za-z0-9 ./%^µ<>=–-]+))$`)

	// Pattern 2: card layout, "Haemoglobin (HB) : 14.6 g/dL".
	cardPattern = regexp.MustCompile(`^([A-Za-z0-9 ()/.,-]+?)\s*[:-]\s*([+-]?\d+(?:\.\d+)?)(?:\s*([A-Za-zµ/%^0-9·-]+))?`)

	// Pattern 3: summary card, "Vitamin D 11.94 ng/ml  Concern",
	// opportunistically capturing a trailing flag keyword.
	summaryPattern = regexp.MustCompile(`^([A-Za-z0-9 ()/.,-]+?)\s+([+-]?\d+(?:\.\d+)?)\s*([A-Za-zµ/%^0-9·-]+)?\s*(Concern|Everything looks good|Borderline|High|Low)?`)

	// Pattern 4: stacked, a bare term line followed by a value line.
	stackedTermPattern  = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9 ()/.,-]+)$`)
	stackedValuePattern = regexp.MustCompile(`^([+-]?\d+(?:\.\d+)?)(?:\s*([A-Za-zµ/%^0-9·-]+))?`)

	trailingSepPattern = regexp.MustCompile(`[:\-–—]+$`)
	flagPattern        = regexp.MustCompile(`(?i)(Everything looks good|Concern|Borderline|High|Low)`)
	flagOnlyPattern    = regexp.MustCompile(`(?i)^(Everything looks good|Concern|Borderline|High|Low)$`)

	// Secondary reference-range extraction when no matcher captured one.
	refTokenPattern = regexp.MustCompile(`(?i)\bRef\.?:?\s*([0-9.<>=\s–—-]+)`)
	parenRangePattern = regexp.MustCompile(`\(\s*(\d+(?:\.\d+)?\s*(?:–|—|-|to)\s*\d+(?:\.\d+)?)\s*\)`)

	nonAlnumPattern = regexp.MustCompile(`[^a-z0-9]`)
)

// ParseFindings turns raw multi-line text into a deduplicated list of
// findings. Total over any input: unmatched lines are dropped silently,
// never an error. First occurrence of a term wins; the list order is
// the source order.
func (p *Parser) ParseFindings(text string) []Finding {
	lines := nonEmptyLines(text)
	findings := make([]Finding, 0, 16)
	seen := make(map[string]bool)

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		nextLine := ""
		if i+1 < len(lines) {
			nextLine = lines[i+1]
		}

		if headerPattern.MatchString(line) {
			continue
		}
		if len(line) < p.opts.MinLineLength || len(line) > p.opts.MaxLineLength {
			continue
		}

		var term, value, units, refRange, flagHint string
		matched := false

		if m := tableRowPattern.FindStringSubmatch(line); m != nil {
			term, value, units, refRange = m[1], m[2], m[3], strings.TrimSpace(m[4])
			matched = true
		}

		if !matched {
			if m := cardPattern.FindStringSubmatch(line); m != nil {
				term, value, units = m[1], m[2], m[3]
				matched = true
			}
		}

		if !matched {
			if m := summaryPattern.FindStringSubmatch(line); m != nil {
				term, value, units, flagHint = m[1], m[2], m[3], m[4]
				matched = true
			}
		}

		if !matched && p.opts.Stacked && nextLine != "" {
			tm := stackedTermPattern.FindStringSubmatch(line)
			vm := stackedValuePattern.FindStringSubmatch(nextLine)
			if tm != nil && vm != nil {
				term, value, units = tm[1], vm[1], vm[2]
				matched = true
				i++ // value line consumed, don't reprocess it
			}
		}

		if !matched {
			continue
		}

		term = strings.TrimSpace(trailingSepPattern.ReplaceAllString(strings.TrimSpace(term), ""))
		if len(term) < 2 || value == "" {
			continue
		}

		canonical := p.tables.canonicalTerm(term)
		key := dedupKey(canonical)
		if key == "" || seen[key] {
			continue
		}

		// A "range" that is really the status keyword belongs to the
		// flag, not the reference interval.
		if refRange != "" && flagOnlyPattern.MatchString(refRange) {
			refRange = ""
		}
		if refRange == "" {
			refRange = secondaryRefRange(line)
		}

		units = p.tables.canonicalUnit(strings.TrimSpace(units))
		if units == "" {
			lower := strings.ToLower(canonical)
			switch {
			case strings.Contains(canonical, "%"):
				units = "%"
			case strings.Contains(lower, "ratio"):
				units = "Ratio"
			}
		}

		flag := detectFlag(flagHint, line, nextLine)

		findings = append(findings, Finding{
			Term:     canonical,
			Value:    parseValue(value),
			Units:    optional(units),
			RefRange: optional(strings.TrimSpace(refRange)),
			Flag:     flag,
			RawLine:  line,
		})
		seen[key] = true
	}

	return findings
}

// dedupKey lowercases the term and strips everything non-alphanumeric,
// so "Vitamin B-12" and "VITAMIN B12" collide.
func dedupKey(term string) string {
	return nonAlnumPattern.ReplaceAllString(strings.ToLower(term), "")
}

func parseValue(token string) any {
	if f, err := strconv.ParseFloat(token, 64); err == nil {
		return f
	}
	return token
}

// secondaryRefRange looks for a parenthesized numeric range or a range
// following a "Ref:" token.
func secondaryRefRange(line string) string {
	if m := refTokenPattern.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := parenRangePattern.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// detectFlag prefers a flag keyword captured by the matcher itself,
// then scans the current line and finally the next line.
func detectFlag(hint, line, nextLine string) *Flag {
	if hint != "" {
		return canonicalFlag(hint)
	}
	if m := flagPattern.FindStringSubmatch(line); m != nil {
		return canonicalFlag(m[1])
	}
	if nextLine != "" {
		if m := flagPattern.FindStringSubmatch(nextLine); m != nil {
			return canonicalFlag(m[1])
		}
	}
	return nil
}

func canonicalFlag(raw string) *Flag {
	var f Flag
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "everything looks good":
		f = FlagGood
	case "concern":
		f = FlagConcern
	case "borderline":
		f = FlagBorderline
	case "high":
		f = FlagHigh
	case "low":
		f = FlagLow
	default:
		return nil
	}
	return &f
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
