package models

import "time"

// FieldCheck is one row of the match report: a single registration field
// compared against its document counterpart. Registered and Extracted
// hold the post-normalization values that were actually compared.
type FieldCheck struct {
	Label      string `json:"label"`
	Registered string `json:"registered"`
	Extracted  string `json:"extracted"`
	Match      bool   `json:"match"`
	Message    string `json:"message"`
}

// MatchReport is the outcome of reconciling a RegistrationRecord against
// an ExtractionPayload. Passed is derived from the checks and is never
// set independently.
type MatchReport struct {
	ScanReference string       `json:"scan_reference,omitempty"`
	Checks        []FieldCheck `json:"checks"`
	Passed        bool         `json:"passed"`
	CheckedAt     time.Time    `json:"checked_at"`
}

// Check returns the check with the given label, or nil if the report
// does not contain it.
func (r *MatchReport) Check(label string) *FieldCheck {
	for i := range r.Checks {
		if r.Checks[i].Label == label {
			return &r.Checks[i]
		}
	}
	return nil
}
