package parse

import (
	"testing"
)

func newTestParser() *Parser {
	return NewParser(DefaultOptions(), DefaultTables())
}

func findByTerm(findings []Finding, term string) *Finding {
	for i := range findings {
		if findings[i].Term == term {
			return &findings[i]
		}
	}
	return nil
}

func TestParseFindingsCardWithRefToken(t *testing.T) {
	p := newTestParser()

	findings := p.ParseFindings("Hemoglobin: 13.5 g/dL (Ref: 12–16)")
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}

	f := findings[0]
	if f.Term != "Hemoglobin" {
		t.Errorf("term = %q", f.Term)
	}
	if v, ok := f.Value.(float64); !ok || v != 13.5 {
		t.Errorf("value = %v", f.Value)
	}
	if f.Units == nil || *f.Units != "g/dL" {
		t.Errorf("units = %v", f.Units)
	}
	if f.RefRange == nil || *f.RefRange != "12–16" {
		t.Errorf("refRange = %v", f.RefRange)
	}
	if f.Flag != nil {
		t.Errorf("unexpected flag %v", *f.Flag)
	}
}

func TestParseFindingsTableRow(t *testing.T) {
	p := newTestParser()

	findings := p.ParseFindings("Serum Creatinine 1.06 mg/dl 0.2-1.2")
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}

	f := findings[0]
	if f.Term != "Creatinine" {
		t.Errorf("term = %q, want canonical Creatinine", f.Term)
	}
	if v, ok := f.Value.(float64); !ok || v != 1.06 {
		t.Errorf("value = %v", f.Value)
	}
	if f.Units == nil || *f.Units != "mg/dl" {
		t.Errorf("units = %v", f.Units)
	}
	if f.RefRange == nil || *f.RefRange != "0.2-1.2" {
		t.Errorf("refRange = %v", f.RefRange)
	}
	if f.RawLine != "Serum Creatinine 1.06 mg/dl 0.2-1.2" {
		t.Errorf("rawLine = %q", f.RawLine)
	}
}

func TestParseFindingsStackedLines(t *testing.T) {
	p := newTestParser()

	cases := []struct {
		name     string
		text     string
		wantTerm string
	}{
		{"plain term", "Vitamin D\n11.94 ng/ml", "Vitamin D"},
		{"aliased term", "Vitamin D (25-OH)\n11.94 ng/ml", "Vitamin D 25-OH"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			findings := p.ParseFindings(c.text)
			if len(findings) != 1 {
				t.Fatalf("expected 1 finding, got %d: %+v", len(findings), findings)
			}

			f := findings[0]
			if f.Term != c.wantTerm {
				t.Errorf("term = %q", f.Term)
			}
			if v, ok := f.Value.(float64); !ok || v != 11.94 {
				t.Errorf("value = %v", f.Value)
			}
			if f.Units == nil || *f.Units != "ng/ml" {
				t.Errorf("units = %v", f.Units)
			}
		})
	}
}

func TestParseFindingsStackedConsumesValueLine(t *testing.T) {
	p := newTestParser()

	// The value line must not be reprocessed as its own finding.
	text := "Packed Cell Volume\n45.5 %\nSerum Creatinine 1.06 mg/dl 0.2-1.2"
	findings := p.ParseFindings(text)
	if len(findings) != 2 {
		t.Fatalf("expected 2 findings, got %d: %+v", len(findings), findings)
	}
	if findings[0].Term != "Packed Cell Volume" {
		t.Errorf("first term = %q", findings[0].Term)
	}
	if findings[1].Term != "Creatinine" {
		t.Errorf("second term = %q", findings[1].Term)
	}
}

func TestParseFindingsDedupFirstWins(t *testing.T) {
	p := newTestParser()

	text := "Haemoglobin (HB) : 14.6 g/dL\nHemoglobin Hb 13.1 g/dL 13-17"
	findings := p.ParseFindings(text)
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding after dedup, got %d", len(findings))
	}

	f := findings[0]
	if f.Term != "Hemoglobin" {
		t.Errorf("term = %q", f.Term)
	}
	if v, ok := f.Value.(float64); !ok || v != 14.6 {
		t.Errorf("value = %v, first occurrence must win", f.Value)
	}
}

func TestParseFindingsDedupIgnoresCaseAndPunctuation(t *testing.T) {
	p := newTestParser()

	text := "VITAMIN B12 : 187 pg/ml\nVitamin B12 500 pg/ml"
	findings := p.ParseFindings(text)
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	if v, ok := findings[0].Value.(float64); !ok || v != 187 {
		t.Errorf("value = %v, first occurrence must win", findings[0].Value)
	}
}

func TestParseFindingsIdempotent(t *testing.T) {
	p := newTestParser()

	text := "Hemoglobin: 13.5 g/dL\nSerum Creatinine 1.06 mg/dl 0.2-1.2\nHemoglobin: 13.5 g/dL\nSerum Creatinine 1.06 mg/dl 0.2-1.2"
	findings := p.ParseFindings(text)
	if len(findings) != 2 {
		t.Fatalf("expected 2 findings from duplicated input, got %d", len(findings))
	}
}

func TestParseFindingsSkipsHeaderLines(t *testing.T) {
	p := newTestParser()

	text := "Dr. Anil Kumar MD 040 1234567\nTest Name Value Unit\nPage 1 of 2\nSerum Creatinine 1.06 mg/dl 0.2-1.2"
	findings := p.ParseFindings(text)
	if len(findings) != 1 {
		t.Fatalf("expected only the result row, got %d: %+v", len(findings), findings)
	}
	if findings[0].Term != "Creatinine" {
		t.Errorf("term = %q", findings[0].Term)
	}
}

func TestParseFindingsLineLengthBounds(t *testing.T) {
	p := NewParser(Options{MinLineLength: 5, MaxLineLength: 40, Stacked: false}, DefaultTables())

	cases := []struct {
		name string
		line string
	}{
		{"below minimum", "A: 1"},
		{"above maximum", "Serum Creatinine 1.06 mg/dl 0.2-1.2 extra trailing words here"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := p.ParseFindings(c.line); len(got) != 0 {
				t.Fatalf("expected no findings, got %+v", got)
			}
		})
	}
}

func TestParseFindingsFlagDetection(t *testing.T) {
	p := newTestParser()

	text := "Total Cholesterol 249 mg/dl Concern\nSerum Triglycerides 273 mg/dl High\nHemoglobin 14.6 g/dL Everything looks good"
	findings := p.ParseFindings(text)
	if len(findings) != 3 {
		t.Fatalf("expected 3 findings, got %d: %+v", len(findings), findings)
	}

	checks := []struct {
		term string
		flag Flag
	}{
		{"Total Cholesterol", FlagConcern},
		{"Triglycerides", FlagHigh},
		{"Hemoglobin", FlagGood},
	}
	for _, c := range checks {
		f := findByTerm(findings, c.term)
		if f == nil {
			t.Fatalf("missing finding for %q", c.term)
		}
		if f.Flag == nil || *f.Flag != c.flag {
			t.Errorf("%s: flag = %v, want %q", c.term, f.Flag, c.flag)
		}
		// A trailing flag keyword is not a reference range.
		if f.RefRange != nil {
			t.Errorf("%s: refRange = %q, want none", c.term, *f.RefRange)
		}
	}
}

func TestParseFindingsFlagFromNextLine(t *testing.T) {
	p := newTestParser()

	text := "Vitamin D (25-OH)\n11.94 ng/ml Concern"
	findings := p.ParseFindings(text)
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if f.Flag == nil || *f.Flag != FlagConcern {
		t.Errorf("flag = %v, want Concern", f.Flag)
	}
}

func TestParseFindingsUnitNormalization(t *testing.T) {
	p := newTestParser()

	findings := p.ParseFindings("TSH-Ultrasensitive : 2.4 uIU/ml")
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if f.Term != "TSH" {
		t.Errorf("term = %q", f.Term)
	}
	if f.Units == nil || *f.Units != "µIU/ml" {
		t.Errorf("units = %v, want µIU/ml", f.Units)
	}
}

func TestParseFindingsRatioUnitSynthesis(t *testing.T) {
	p := newTestParser()

	findings := p.ParseFindings("A/G Ratio : 1.2")
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if f.Units == nil || *f.Units != "Ratio" {
		t.Errorf("units = %v, want synthesized Ratio", f.Units)
	}
}

func TestParseFindingsShortTermDropped(t *testing.T) {
	p := NewParser(Options{MinLineLength: 1, MaxLineLength: 300}, DefaultTables())

	if got := p.ParseFindings("C: 12 mg/dl"); len(got) != 0 {
		t.Fatalf("single-letter term must be dropped, got %+v", got)
	}
}

func TestParseFindingsEmptyAndGarbageInput(t *testing.T) {
	p := newTestParser()

	for _, text := range []string{"", "\n\n\n", "just prose with no measurements at all in it whatsoever"} {
		if got := p.ParseFindings(text); len(got) != 0 {
			t.Fatalf("input %q: expected no findings, got %+v", text, got)
		}
	}
}

func TestCleanText(t *testing.T) {
	in := "Hemoglobin:\t 13.5  g/dL \r\n\r\n\r\n\r\nSerum Creatinine 1.06​ mg/dl"
	got := CleanText(in)
	want := "Hemoglobin: 13.5 g/dL\n\n\nSerum Creatinine 1.06 mg/dl"
	if got != want {
		t.Fatalf("CleanText = %q, want %q", got, want)
	}
}

func TestParseECGFlags(t *testing.T) {
	cases := []struct {
		name string
		text string
		want []string
	}{
		{"none", "Hemoglobin 13.5 g/dL", nil},
		{"st elevation", "Impression: ST elevation in leads V2-V4", []string{"ST-elevation"}},
		{"stemi keyword", "Consistent with anterior STEMI", []string{"ST-elevation"}},
		{"multiple", "Sinus tachycardia with occasional arrhythmia noted", []string{"Arrhythmia", "Tachycardia"}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ParseECGFlags(c.text)
			if len(got) != len(c.want) {
				t.Fatalf("flags = %v, want %v", got, c.want)
			}
			for i := range got {
				if got[i] != c.want[i] {
					t.Fatalf("flags = %v, want %v", got, c.want)
				}
			}
		})
	}
}
