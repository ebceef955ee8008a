package parse

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadTablesEmptyPathReturnsDefaults(t *testing.T) {
	tables, err := LoadTables("")
	if err != nil {
		t.Fatalf("LoadTables: %v", err)
	}
	if got := tables.canonicalTerm("Haemoglobin"); got != "Hemoglobin" {
		t.Errorf("canonicalTerm(Haemoglobin) = %q", got)
	}
	if got := tables.canonicalUnit("mg/dL"); got != "mg/dl" {
		t.Errorf("canonicalUnit(mg/dL) = %q", got)
	}
}

func TestLoadTablesMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.yaml")
	yaml := "terms:\n  \"Sugar Fasting\": \"Fasting Glucose\"\n  \"Haemoglobin\": \"Hgb\"\nunits:\n  \"mEq/L\": \"mEq/L\"\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	tables, err := LoadTables(path)
	if err != nil {
		t.Fatalf("LoadTables: %v", err)
	}

	// New entries are added, existing defaults can be overridden, and
	// untouched defaults survive the merge.
	if got := tables.canonicalTerm("Sugar Fasting"); got != "Fasting Glucose" {
		t.Errorf("canonicalTerm(Sugar Fasting) = %q", got)
	}
	if got := tables.canonicalTerm("Haemoglobin"); got != "Hgb" {
		t.Errorf("canonicalTerm(Haemoglobin) = %q", got)
	}
	if got := tables.canonicalTerm("Serum Creatinine"); got != "Creatinine" {
		t.Errorf("canonicalTerm(Serum Creatinine) = %q", got)
	}
}

func TestLoadTablesMissingFile(t *testing.T) {
	if _, err := LoadTables(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestCanonicalPassthrough(t *testing.T) {
	tables := DefaultTables()
	if got := tables.canonicalTerm("Completely Unknown Analyte"); got != "Completely Unknown Analyte" {
		t.Errorf("unknown term must pass through, got %q", got)
	}
	if got := tables.canonicalUnit("furlongs"); got != "furlongs" {
		t.Errorf("unknown unit must pass through, got %q", got)
	}
	if got := tables.canonicalUnit(""); got != "" {
		t.Errorf("empty unit must stay empty, got %q", got)
	}
}
