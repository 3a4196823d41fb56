package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/wbishoptz/jumio-verification/models"
)

const clientUserAgent = "jumio-verification/1.0"

// IdentityVerificationClient defines the two provider operations the
// relay forwards: initiate a verification session and retrieve the
// extracted document data for a completed one. Each call is a single
// attempt; there are no retries and no session state on this side
// beyond the provider's transaction reference.
type IdentityVerificationClient interface {
	StartSession(ctx context.Context, userReference string) (*models.SessionResult, error)
	FetchResult(ctx context.Context, reference string) (*models.ExtractionResult, error)
}

// JumioConfig holds the provider endpoint and credentials. Credentials
// are resolved once at startup; they are never read per request.
type JumioConfig struct {
	BaseURL     string `json:"base_url"`
	APIToken    string `json:"api_token,omitempty"`
	APISecret   string `json:"api_secret,omitempty"`
	CallbackURL string `json:"callback_url,omitempty"`
}

// JumioClient implements IdentityVerificationClient against the Jumio
// Netverify HTTP API using Basic token:secret authentication.
type JumioClient struct {
	config     JumioConfig
	httpClient *http.Client
}

func NewJumioClient(config JumioConfig) *JumioClient {
	return &JumioClient{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Configured reports whether both credential halves are present.
func (c *JumioClient) Configured() bool {
	return c.config.APIToken != "" && c.config.APISecret != ""
}

// StartSession initiates a provider-side verification workflow for the
// given user reference and returns the provider's initiation payload,
// raw body included for passthrough.
func (c *JumioClient) StartSession(ctx context.Context, userReference string) (*models.SessionResult, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	requestBody := map[string]string{
		"customerInternalReference": userReference,
		"userReference":             userReference,
	}
	if c.config.CallbackURL != "" {
		requestBody["callbackUrl"] = c.config.CallbackURL
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal initiate request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/v4/initiate", c.config.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create initiate request: %w", err)
	}
	c.prepareRequest(req)
	req.Header.Set("Content-Type", "application/json")

	raw, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var session models.SessionResponse
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, &UpstreamError{Status: http.StatusOK, Body: "malformed initiation payload"}
	}

	slog.Info("Verification session started", "transaction_reference", session.TransactionReference)
	return &models.SessionResult{Session: session, Raw: raw}, nil
}

// FetchResult retrieves the extracted document data for a completed
// session. The provider's transaction reference is the only correlation
// key.
func (c *JumioClient) FetchResult(ctx context.Context, reference string) (*models.ExtractionResult, error) {
	if reference == "" {
		return nil, fmt.Errorf("%w: reference", ErrBadRequest)
	}
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	endpoint := fmt.Sprintf("%s/api/netverify/v2/scans/%s/data", c.config.BaseURL, url.PathEscape(reference))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create retrieval request: %w", err)
	}
	c.prepareRequest(req)

	raw, err := c.do(req)
	if err != nil {
		var upstream *UpstreamError
		if errors.As(err, &upstream) && upstream.Status == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, reference)
		}
		return nil, err
	}

	var payload models.ExtractionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &UpstreamError{Status: http.StatusOK, Body: "malformed extraction payload"}
	}

	slog.Info("Verification result fetched", "transaction_reference", reference, "document_type", payload.Document.Type)
	return &models.ExtractionResult{Payload: payload, Raw: raw}, nil
}

func (c *JumioClient) prepareRequest(req *http.Request) {
	req.SetBasicAuth(c.config.APIToken, c.config.APISecret)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", clientUserAgent)
}

func (c *JumioClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach verification provider: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read provider response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.Warn("Provider call failed", "status", resp.StatusCode, "path", req.URL.Path)
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
