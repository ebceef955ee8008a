package parse

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tables canonicalize the spelling variants labs use for the same test
// and unit. Defaults cover the variants seen in Indian diagnostic-chain
// reports; deployments can extend them from a YAML file.
type Tables struct {
	Terms map[string]string `yaml:"terms"`
	Units map[string]string `yaml:"units"`
}

func DefaultTables() Tables {
	return Tables{
		Terms: map[string]string{
			"Hemoglobin Hb":    "Hemoglobin",
			"Haemoglobin (HB)": "Hemoglobin",
			"Haemoglobin":      "Hemoglobin",
			"Thyroid Stimulating Hormone (TSH)-Ultrasensitive": "TSH",
			"TSH-Ultrasensitive":        "TSH",
			"Serum Creatinine":          "Creatinine",
			"Cholesterol-Total, Serum":  "Total Cholesterol",
			"Cholesterol Total":         "Total Cholesterol",
			"Serum Triglycerides":       "Triglycerides",
			"Vitamin D Total-25 Hydroxy": "Vitamin D 25-OH",
			"Vitamin D (25-OH)":          "Vitamin D 25-OH",
			"25-OH Vitamin D":            "Vitamin D 25-OH",
			"VITAMIN B12":                "Vitamin B12",
			"Vitamin B-12":               "Vitamin B12",
			"LDL":                        "LDL Cholesterol",
			"LDL-C":                      "LDL Cholesterol",
			"HDL":                        "HDL Cholesterol",
			"HbA1C":                      "HbA1c",
			"BP":                         "Blood Pressure",
		},
		Units: map[string]string{
			"mg/dl":   "mg/dl",
			"mg/dL":   "mg/dl",
			"g/dL":    "g/dL",
			"g/dl":    "g/dL",
			"µIU/ml":  "µIU/ml",
			"uIU/ml":  "µIU/ml",
			"ng/ml":   "ng/ml",
			"ng/mL":   "ng/ml",
			"U/L":     "U/L",
			"mmol/L":  "mmol/L",
			"10^3/µl": "10^3/µl",
			"fL":      "fL",
			"pg":      "pg",
			"%":       "%",
		},
	}
}

// LoadTables reads extra term/unit mappings from a YAML file and merges
// them over the defaults. An empty path returns the defaults as-is.
func LoadTables(path string) (Tables, error) {
	tables := DefaultTables()
	if path == "" {
		return tables, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("read parser tables: %w", err)
	}

	var extra Tables
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return Tables{}, fmt.Errorf("parse parser tables: %w", err)
	}

	for k, v := range extra.Terms {
		tables.Terms[k] = v
	}
	for k, v := range extra.Units {
		tables.Units[k] = v
	}
	return tables, nil
}

func (t Tables) canonicalTerm(term string) string {
	if v, ok := t.Terms[term]; ok {
		return v
	}
	return term
}

func (t Tables) canonicalUnit(unit string) string {
	if unit == "" {
		return ""
	}
	if v, ok := t.Units[unit]; ok {
		return v
	}
	return unit
}
