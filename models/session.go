package models

import "encoding/json"

// StartSessionRequest is the relay's session-initiation body. The user
// reference is optional; the relay generates one when it is absent.
type StartSessionRequest struct {
	UserReference string `json:"user_reference,omitempty"`
}

// SessionResponse mirrors the provider's session-initiation payload.
// The transaction reference is the only correlation key between a
// capture attempt and its extracted result.
type SessionResponse struct {
	Timestamp            string `json:"timestamp,omitempty"`
	TransactionReference string `json:"transactionReference"`
	RedirectURL          string `json:"redirectUrl,omitempty"`
	AuthorizationToken   string `json:"authorizationToken,omitempty"`
}

// SessionResult couples the decoded initiation payload with the raw
// provider body so the relay can pass it through untouched.
type SessionResult struct {
	Session SessionResponse
	Raw     json.RawMessage
}

// ExtractionResult couples the decoded extraction payload with the raw
// provider body.
type ExtractionResult struct {
	Payload ExtractionPayload
	Raw     json.RawMessage
}

// ReconcileRequest asks the relay to fetch the extraction for a
// completed session and reconcile it against the given registration.
type ReconcileRequest struct {
	Reference    string             `json:"reference"`
	Registration RegistrationRecord `json:"registration"`
}

// ReconcileResponse carries the rendered report plus a signed
// attestation when the relay is configured with a signing key.
type ReconcileResponse struct {
	Report      MatchReport `json:"report"`
	Attestation string      `json:"attestation,omitempty"`
}
