package pipeline

import "github.com/uxmanan-cloud/Arogya/internal/parse"

func strptr(s string) *string { return &s }

func flagptr(f parse.Flag) *parse.Flag { return &f }

// MockResponse is the canned payload returned for mode "mock": demos
// and tests get a realistic result without any network access.
func MockResponse() Response {
	findings := []parse.Finding{
		{
			Term:     "Total Cholesterol",
			Value:    249.0,
			Units:    strptr("mg/dl"),
			RefRange: strptr("Desirable <200 / 200-239 Borderline / >=240 High"),
			Flag:     flagptr(parse.FlagConcern),
			RawLine:  "Cholesterol-Total, Serum 249 mg/dl   Concern",
		},
		{
			Term:    "Triglycerides",
			Value:   273.0,
			Units:   strptr("mg/dl"),
			Flag:    flagptr(parse.FlagHigh),
			RawLine: "Triglycerides 273 mg/dl High",
		},
		{
			Term:     "Vitamin D 25-OH",
			Value:    11.94,
			Units:    strptr("ng/ml"),
			RefRange: strptr("30 - 100"),
			Flag:     flagptr(parse.FlagConcern),
			RawLine:  "Vitamin D 11.94 ng/ml  Concern",
		},
		{
			Term:    "Hemoglobin",
			Value:   14.6,
			Units:   strptr("g/dL"),
			Flag:    flagptr(parse.FlagGood),
			RawLine: "Hemoglobin Hb 14.6 g/dL  Everything looks good",
		},
	}

	return Response{
		OK: true,
		Meta: &Meta{
			ContentType: "application/pdf",
			Size:        1024000,
			Status:      200,
			Used:        "native",
			ParsedCount: len(findings),
		},
		Patient: &parse.PatientInfo{
			Name:       "Manan",
			BookingID:  "9302606388",
			SampleDate: "04/Nov/2023",
		},
		Data: &Data{
			Findings: findings,
			ECGFlags: []string{},
			PreviewText: "Lab Report - Patient: Manan, Booking ID: 9302606388, Sample Date: 04/Nov/2023. " +
				"Multiple lab values extracted including cholesterol, triglycerides, vitamin levels, and blood parameters.",
		},
	}
}
