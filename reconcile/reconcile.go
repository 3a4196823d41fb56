// Package reconcile compares user-entered registration details against
// the identity fields a verification provider extracted from a scanned
// document, and renders a per-field match report with an aggregate
// pass/fail verdict.
package reconcile

import (
	"fmt"
	"strings"
	"time"

	"github.com/wbishoptz/jumio-verification/models"
)

// Check labels, in report order.
const (
	LabelDateOfBirth   = "Date of Birth"
	LabelPostcode      = "Postcode"
	LabelLastName      = "Last Name"
	LabelFirstName     = "First Name"
	LabelAddress       = "Address"
	LabelCity          = "City"
	LabelDocumentRules = "Document Rules"
)

// Similarity thresholds per fuzzy check.
const (
	ThresholdLastName  = 85.0
	ThresholdFirstName = 85.0
	ThresholdAddress   = 70.0
	ThresholdCity      = 80.0
)

const (
	MsgMatch    = "Match"
	MsgMismatch = "Mismatch"
)

// Policy designates which single document type and issuing country
// count as proof of address on their own.
type Policy struct {
	AcceptedDocumentType string
	HomeCountry          string
}

// DefaultPolicy accepts a UK driving licence.
func DefaultPolicy() Policy {
	return Policy{
		AcceptedDocumentType: "DRIVING_LICENSE",
		HomeCountry:          "GBR",
	}
}

// Engine runs reconciliations under a fixed policy.
type Engine struct {
	policy Policy
	now    func() time.Time
}

func NewEngine(policy Policy) *Engine {
	return &Engine{policy: policy, now: time.Now}
}

// Reconcile compares a registration record against a provider
// extraction payload using the default policy.
func Reconcile(reg models.RegistrationRecord, payload models.ExtractionPayload) models.MatchReport {
	return NewEngine(DefaultPolicy()).Reconcile(reg, payload)
}

// Reconcile renders the full match report. It is pure and synchronous:
// missing document fields compare as empty strings and show up as
// explicit mismatches, never as errors.
//
// Passed aggregates the date of birth, postcode, last name, first name,
// address and document-rules checks. The city check is computed and
// reported but does not participate in the aggregate.
func (e *Engine) Reconcile(reg models.RegistrationRecord, payload models.ExtractionPayload) models.MatchReport {
	doc := payload.Document

	dob := exactCheck(LabelDateOfBirth, reg.DateOfBirth, doc.DateOfBirth)
	postcode := exactCheck(LabelPostcode,
		NormalizePostcode(reg.Postcode), NormalizePostcode(doc.Address.PostalCode))
	lastName := similarityCheck(LabelLastName, reg.LastName, doc.LastName, ThresholdLastName)
	firstName := similarityCheck(LabelFirstName, reg.FirstName, doc.FirstName, ThresholdFirstName)
	address := similarityCheck(LabelAddress,
		reg.HouseNumber+" "+reg.Street, doc.Address.Line1, ThresholdAddress)
	city := similarityCheck(LabelCity, reg.City, doc.Address.City, ThresholdCity)
	docRules := e.documentRulesCheck(doc)

	return models.MatchReport{
		ScanReference: payload.ScanReference,
		Checks:        []models.FieldCheck{dob, postcode, lastName, firstName, address, city, docRules},
		Passed: dob.Match && postcode.Match && lastName.Match &&
			firstName.Match && address.Match && docRules.Match,
		CheckedAt: e.now().UTC(),
	}
}

func exactCheck(label, registered, extracted string) models.FieldCheck {
	match := registered == extracted
	message := MsgMismatch
	if match {
		message = MsgMatch
	}
	return models.FieldCheck{
		Label:      label,
		Registered: registered,
		Extracted:  extracted,
		Match:      match,
		Message:    message,
	}
}

func similarityCheck(label, registered, extracted string, threshold float64) models.FieldCheck {
	score := Similarity(registered, extracted)
	return models.FieldCheck{
		Label:      label,
		Registered: normalizeLoose(registered),
		Extracted:  normalizeLoose(extracted),
		Match:      score >= threshold,
		Message:    fmt.Sprintf("%.0f%% similarity", score),
	}
}

// documentRulesCheck accepts only the designated document type from the
// home jurisdiction; anything else means the document alone does not
// prove the address.
func (e *Engine) documentRulesCheck(doc models.DocumentRecord) models.FieldCheck {
	docType := strings.ToUpper(strings.TrimSpace(doc.Type))
	country := strings.ToUpper(strings.TrimSpace(doc.IssuingCountry))
	match := docType == e.policy.AcceptedDocumentType && country == e.policy.HomeCountry

	message := "Separate proof of address is required: document is not a " +
		e.policy.HomeCountry + " " + e.policy.AcceptedDocumentType
	if match {
		message = "Address verified via " + e.policy.HomeCountry + " " + e.policy.AcceptedDocumentType
	}

	return models.FieldCheck{
		Label:      LabelDocumentRules,
		Registered: e.policy.AcceptedDocumentType + "/" + e.policy.HomeCountry,
		Extracted:  docType + "/" + country,
		Match:      match,
		Message:    message,
	}
}
