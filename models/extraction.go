package models

// ExtractionPayload is the provider's retrieval response for a completed
// verification session. Every field may be missing from the upstream
// payload; absent fields decode as their zero value and are reconciled
// as empty strings rather than rejected.
type ExtractionPayload struct {
	ScanReference string          `json:"scanReference"`
	Timestamp     string          `json:"timestamp,omitempty"`
	Document      DocumentRecord  `json:"document"`
	Transaction   TransactionInfo `json:"transaction"`
}

// DocumentRecord holds the fields the provider extracted from the
// scanned identity document.
type DocumentRecord struct {
	Type           string          `json:"type"`           // e.g. DRIVING_LICENSE, PASSPORT
	IssuingCountry string          `json:"issuingCountry"` // ISO 3166-1 alpha-3
	FirstName      string          `json:"firstName"`
	LastName       string          `json:"lastName"`
	DateOfBirth    string          `json:"dob"` // YYYY-MM-DD
	Status         string          `json:"status,omitempty"`
	Address        DocumentAddress `json:"address"`
}

type DocumentAddress struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country,omitempty"`
}

type TransactionInfo struct {
	Status string `json:"status,omitempty"`
	Source string `json:"source,omitempty"`
	Date   string `json:"date,omitempty"`
}
