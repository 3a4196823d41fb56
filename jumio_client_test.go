package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func testClientConfig(baseURL string) JumioConfig {
	return JumioConfig{
		BaseURL:   baseURL,
		APIToken:  "test-token",
		APISecret: "test-secret",
	}
}

func TestJumioClient_StartSession_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v4/initiate", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok, "expected Basic credentials on the initiate call")
		require.Equal(t, "test-token", user)
		require.Equal(t, "test-secret", pass)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "user-1", body["userReference"])
		require.Equal(t, "user-1", body["customerInternalReference"])

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"timestamp":            "2024-05-01T10:00:00.000Z",
			"transactionReference": "tx-123",
			"redirectUrl":          "https://capture.example/tx-123",
		})
	}))
	defer server.Close()

	client := NewJumioClient(testClientConfig(server.URL))
	result, err := client.StartSession(context.Background(), "user-1")

	require.NoError(t, err)
	require.Equal(t, "tx-123", result.Session.TransactionReference)
	require.Equal(t, "https://capture.example/tx-123", result.Session.RedirectURL)
	require.Contains(t, string(result.Raw), "tx-123", "raw provider body must be preserved for passthrough")
}

func TestJumioClient_StartSession_MissingCredentials(t *testing.T) {
	client := NewJumioClient(JumioConfig{BaseURL: "https://provider.example"})
	result, err := client.StartSession(context.Background(), "user-1")

	require.Nil(t, result)
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestJumioClient_StartSession_UpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"bad credentials"}`))
	}))
	defer server.Close()

	client := NewJumioClient(testClientConfig(server.URL))
	result, err := client.StartSession(context.Background(), "user-1")

	require.Nil(t, result)
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	require.Equal(t, http.StatusForbidden, upstream.Status)
	require.Contains(t, upstream.Body, "bad credentials")
}

func TestJumioClient_FetchResult_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/netverify/v2/scans/tx-123/data", r.URL.Path)
		require.Equal(t, http.MethodGet, r.Method)

		_, _, ok := r.BasicAuth()
		require.True(t, ok)

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"scanReference": "tx-123",
			"document": map[string]any{
				"type":           "DRIVING_LICENSE",
				"issuingCountry": "GBR",
				"firstName":      "Alice",
				"lastName":       "Johnson",
				"dob":            "1990-01-01",
				"address": map[string]string{
					"line1":      "12 High Street",
					"city":       "London",
					"postalCode": "SW1A 2AA",
				},
			},
		})
	}))
	defer server.Close()

	client := NewJumioClient(testClientConfig(server.URL))
	result, err := client.FetchResult(context.Background(), "tx-123")

	require.NoError(t, err)
	require.Equal(t, "tx-123", result.Payload.ScanReference)
	require.Equal(t, "DRIVING_LICENSE", result.Payload.Document.Type)
	require.Equal(t, "Johnson", result.Payload.Document.LastName)
	require.Equal(t, "SW1A 2AA", result.Payload.Document.Address.PostalCode)
}

func TestJumioClient_FetchResult_MissingReference(t *testing.T) {
	client := NewJumioClient(testClientConfig("https://provider.example"))
	result, err := client.FetchResult(context.Background(), "")

	require.Nil(t, result)
	require.ErrorIs(t, err, ErrBadRequest)
}

func TestJumioClient_FetchResult_UnknownReference(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewJumioClient(testClientConfig(server.URL))
	result, err := client.FetchResult(context.Background(), "tx-missing")

	require.Nil(t, result)
	require.ErrorIs(t, err, ErrNotFound)
	require.False(t, errors.Is(err, ErrBadRequest))
}

func TestJumioClient_FetchResult_MalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewJumioClient(testClientConfig(server.URL))
	result, err := client.FetchResult(context.Background(), "tx-123")

	require.Nil(t, result)
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	require.Contains(t, upstream.Body, "malformed")
}

func TestJumioClient_MissingFieldsDecodeAsEmpty(t *testing.T) {
	// A sparse provider payload must decode, not fail; the engine turns
	// the gaps into explicit mismatches.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"scanReference":"tx-9"}`))
	}))
	defer server.Close()

	client := NewJumioClient(testClientConfig(server.URL))
	result, err := client.FetchResult(context.Background(), "tx-9")

	require.NoError(t, err)
	require.Equal(t, "tx-9", result.Payload.ScanReference)
	require.Empty(t, result.Payload.Document.FirstName)
	require.Empty(t, result.Payload.Document.Address.PostalCode)
}
