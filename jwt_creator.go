package main

import (
	"crypto/rsa"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/wbishoptz/jumio-verification/models"
)

// ReportSigner turns a completed match report into a signed attestation
// the UI can hand to downstream consumers.
type ReportSigner interface {
	SignReport(report models.MatchReport) (jwt string, err error)
}

const attestationValidity = 24 * time.Hour

func NewRsaReportSigner(privateKeyPath string, issuerId string) (*RsaReportSigner, error) {
	keyBytes, err := os.ReadFile(privateKeyPath)

	if err != nil {
		return nil, err
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(keyBytes)

	if err != nil {
		return nil, err
	}

	return &RsaReportSigner{
		issuerId:   issuerId,
		privateKey: privateKey,
	}, nil
}

type RsaReportSigner struct {
	privateKey *rsa.PrivateKey
	issuerId   string
}

// SignReport signs the verdict and the per-check outcomes with RS256.
// The compared values themselves are deliberately left out of the
// token; it attests the outcome, not the personal data.
func (s *RsaReportSigner) SignReport(report models.MatchReport) (string, error) {
	checks := make(map[string]bool, len(report.Checks))
	for _, check := range report.Checks {
		checks[check.Label] = check.Match
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":       s.issuerId,
		"iat":       now.Unix(),
		"exp":       now.Add(attestationValidity).Unix(),
		"reference": report.ScanReference,
		"passed":    report.Passed,
		"checks":    checks,
		"checkedAt": report.CheckedAt.Format(time.RFC3339),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(s.privateKey)
}
