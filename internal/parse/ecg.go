package parse

import "regexp"

var (
	stElevationPattern = regexp.MustCompile(`(?i)\b(st\s*elevation|stemi)\b`)
	arrhythmiaPattern  = regexp.MustCompile(`(?i)\barrhythmia\b`)
	tachycardiaPattern = regexp.MustCompile(`(?i)\btachycardia\b`)
)

// ParseECGFlags scans report text for ECG keywords. Reports from
// cardiac panels mix ECG commentary with lab tables; these flags are
// reported alongside findings, not merged into them.
func ParseECGFlags(text string) []string {
	flags := make([]string, 0, 3)
	if stElevationPattern.MatchString(text) {
		flags = append(flags, "ST-elevation")
	}
	if arrhythmiaPattern.MatchString(text) {
		flags = append(flags, "Arrhythmia")
	}
	if tachycardiaPattern.MatchString(text) {
		flags = append(flags, "Tachycardia")
	}
	return flags
}
