package parse

import (
	"regexp"
	"strconv"
	"strings"
)

// PatientInfo holds the header fields independently detected on a
// report's cover page. Every field is optional; the first match per
// field wins and is never overwritten.
type PatientInfo struct {
	Name       string `json:"name,omitempty"`
	AgeYears   int    `json:"ageYears,omitempty"`
	Gender     string `json:"gender,omitempty"`
	BookingID  string `json:"bookingId,omitempty"`
	SampleDate string `json:"sampleDate,omitempty"`
}

var (
	nameLabelPattern = regexp.MustCompile(`(?:Name|Patient)[:\s]+([A-Za-z\s]+)`)
	nameBarePattern  = regexp.MustCompile(`^([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)$`)
	bookingPattern   = regexp.MustCompile(`(?:Booking|ID|Reference)[:\s#]+([A-Z0-9]+)`)
	samplePattern    = regexp.MustCompile(`(?:Sample|Collection|Date)[:\s]+(\d{1,2}/\w{3}/\d{4}|\d{1,2}-\d{1,2}-\d{4})`)
	ageGenderPattern = regexp.MustCompile(`(?i)(\d{1,3})\s*(?:years?|yrs?|Y)\s*(?:old)?\s*[,\s]*([MF]ale|[MF])\b`)
)

// ParsePatientInfo scans only the leading lines of the text: patient
// details live on the cover page, and scanning further produces false
// positives from result commentary.
func (p *Parser) ParsePatientInfo(text string) PatientInfo {
	var patient PatientInfo

	lines := nonEmptyLines(text)
	if len(lines) > p.opts.PatientScanLines {
		lines = lines[:p.opts.PatientScanLines]
	}

	for _, line := range lines {
		if patient.Name == "" {
			m := nameLabelPattern.FindStringSubmatch(line)
			if m == nil {
				m = nameBarePattern.FindStringSubmatch(line)
			}
			// Length guard against matching paragraph text.
			if m != nil && len(m[1]) < 50 {
				patient.Name = strings.TrimSpace(m[1])
			}
		}

		if patient.BookingID == "" {
			if m := bookingPattern.FindStringSubmatch(line); m != nil {
				patient.BookingID = m[1]
			}
		}

		if patient.SampleDate == "" {
			if m := samplePattern.FindStringSubmatch(line); m != nil {
				patient.SampleDate = m[1]
			}
		}

		if patient.AgeYears == 0 || patient.Gender == "" {
			if m := ageGenderPattern.FindStringSubmatch(line); m != nil {
				age, err := strconv.Atoi(m[1])
				if err == nil {
					patient.AgeYears = age
					if strings.HasPrefix(strings.ToLower(m[2]), "m") {
						patient.Gender = "Male"
					} else {
						patient.Gender = "Female"
					}
				}
			}
		}
	}

	return patient
}
