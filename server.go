package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wbishoptz/jumio-verification/metrics"
	"github.com/wbishoptz/jumio-verification/models"
	"github.com/wbishoptz/jumio-verification/reconcile"
)

const ErrorInternal = "internal error"
const ERR_MARSHAL = "failed to marshal response message"
const ERR_MISSING_REFERENCE = "missing reference parameter"
const ERR_SESSION_START = "failed to start verification session"
const ERR_RESULT_FETCH = "failed to retrieve verification result"
const ERR_ATTESTATION = "failed to sign match report"

type ServerConfig struct {
	Host           string `json:"host"`
	Port           int    `json:"port"`
	UseTls         bool   `json:"use_tls,omitempty"`
	TlsPrivKeyPath string `json:"tls_priv_key_path,omitempty"`
	TlsCertPath    string `json:"tls_cert_path,omitempty"`
	StaticPath     string `json:"static_path,omitempty"`
}

type ServerState struct {
	verificationClient IdentityVerificationClient
	sessionStorage     SessionStorage
	reportSigner       ReportSigner // nil means reports are returned unsigned
	engine             *reconcile.Engine
	metrics            *metrics.Metrics
}

type SpaHandler struct {
	staticPath string
	indexPath  string
}

type Server struct {
	server *http.Server
	config ServerConfig
}

func (s *Server) ListenAndServe() error {
	if s.config.UseTls {
		slog.Info("Starting server with TLS", "host", s.config.Host, "port", s.config.Port, "cert", s.config.TlsCertPath, "key", s.config.TlsPrivKeyPath)
		return s.server.ListenAndServeTLS(s.config.TlsCertPath, s.config.TlsPrivKeyPath)
	} else {
		slog.Info("Starting server without TLS", "host", s.config.Host, "port", s.config.Port)
		return s.server.ListenAndServe()
	}
}

func (s *Server) Stop() error {
	slog.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := s.server.Shutdown(ctx)
	if err != nil {
		slog.Error("Error during server shutdown", "error", err)
	} else {
		slog.Info("Server shut down successfully")
	}
	return err
}

// ServeHTTP inspects the URL path to locate a file within the static dir
// on the SPA handler. If a file is found, it will be served. If not, the
// file located at the index path on the SPA handler will be served,
// which is suitable behavior for the registration wizard build.
func (h SpaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	slog.Debug("SPA handler serving request", "path", r.URL.Path)
	// Join internally calls path.Clean to prevent directory traversal
	path := filepath.Join(h.staticPath, r.URL.Path)
	fi, err := os.Stat(path)
	if os.IsNotExist(err) || (err == nil && fi.IsDir()) {
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}

	if err != nil {
		slog.Error("Error stating file", "path", path, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
}

func NewServer(state *ServerState, config ServerConfig) (*Server, error) {
	slog.Info("Creating new server", "host", config.Host, "port", config.Port, "tls", config.UseTls)
	router := mux.NewRouter()

	router.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("Health check request received")
		err := json.NewEncoder(w).Encode(map[string]bool{"ok": true})
		if err != nil {
			slog.Error("failed to write body to http response", "error", err)
		}
	})

	router.HandleFunc("/verify/session", func(w http.ResponseWriter, r *http.Request) {
		handleVerifySession(state, w, r)
	})
	router.HandleFunc("/verify/reconcile", func(w http.ResponseWriter, r *http.Request) {
		handleReconcile(state, w, r)
	})
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	slog.Debug("Registered all API routes")

	if config.StaticPath != "" {
		spa := SpaHandler{staticPath: config.StaticPath, indexPath: "index.html"}
		router.PathPrefix("/").Handler(spa)
	}

	addr := fmt.Sprintf("%v:%v", config.Host, config.Port)
	srv := &http.Server{
		Handler: router,
		Addr:    addr,
		// Good practice: enforce timeouts for servers you create!
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	slog.Info("Server created successfully", "address", addr)
	return &Server{
		server: srv,
		config: config,
	}, nil
}

// handleVerifySession is the relay surface for provider sessions: POST
// starts one, GET retrieves a completed one's extraction payload. The
// provider body is passed through untouched in both directions.
func handleVerifySession(state *ServerState, w http.ResponseWriter, r *http.Request) {
	defer closeRequestBody(r)

	switch r.Method {
	case http.MethodPost:
		handleStartSession(state, w, r)
	case http.MethodGet:
		handleFetchResult(state, w, r)
	default:
		slog.Debug("Request with unsupported method rejected", "method", r.Method, "path", r.URL.Path)
		respondWithErr(w, http.StatusMethodNotAllowed, "method not allowed", "invalid method", nil)
	}
}

func handleStartSession(state *ServerState, w http.ResponseWriter, r *http.Request) {
	slog.Info("Received request to start verification session")

	request, err := decodeStartSessionRequest(r)
	if err != nil {
		respondWithErr(w, http.StatusBadRequest, "invalid request body", "failed to decode session request", err)
		return
	}

	userReference := request.UserReference
	if userReference == "" {
		userReference = uuid.NewString()
		slog.Debug("No user reference supplied, generated one", "user_reference", userReference)
	}

	result, err := state.verificationClient.StartSession(r.Context(), userReference)
	if err != nil {
		// Initiation failures are always the relay's 500, whatever the
		// provider said; only result retrieval echoes upstream statuses.
		msg := "could not connect to verification provider"
		if errors.Is(err, ErrNotConfigured) {
			msg = err.Error()
		}
		var upstream *UpstreamError
		if errors.As(err, &upstream) {
			msg = "verification provider request failed"
		}
		respondWithErr(w, http.StatusInternalServerError, msg, ERR_SESSION_START, err)
		return
	}

	// Correlation only; losing it degrades the report, not the flow.
	if err := state.sessionStorage.StoreReference(result.Session.TransactionReference, userReference); err != nil {
		slog.Warn("Failed to store session reference", "transaction_reference", result.Session.TransactionReference, "error", err)
	}

	state.metrics.IncrementSessionsStarted()
	writeRawJSON(w, http.StatusOK, result.Raw)
	slog.Info("Verification session started", "transaction_reference", result.Session.TransactionReference, "user_reference", userReference)
}

func handleFetchResult(state *ServerState, w http.ResponseWriter, r *http.Request) {
	reference := r.URL.Query().Get("reference")
	if reference == "" {
		respondWithErr(w, http.StatusBadRequest, ERR_MISSING_REFERENCE, ERR_MISSING_REFERENCE, ErrBadRequest)
		return
	}

	slog.Info("Received request to fetch verification result", "transaction_reference", reference)

	result, err := state.verificationClient.FetchResult(r.Context(), reference)
	if err != nil {
		respondWithUpstreamErr(w, http.StatusInternalServerError, ERR_RESULT_FETCH, err)
		return
	}

	state.metrics.IncrementResultsFetched()
	writeRawJSON(w, http.StatusOK, result.Raw)
	slog.Info("Verification result fetched", "transaction_reference", reference)
}

// handleReconcile closes the loop: fetch the extraction for a completed
// session and reconcile it against the submitted registration record.
func handleReconcile(state *ServerState, w http.ResponseWriter, r *http.Request) {
	defer closeRequestBody(r)

	if !requirePOST(w, r) {
		return
	}

	var request models.ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondWithErr(w, http.StatusBadRequest, "invalid request body", "failed to decode reconcile request", err)
		return
	}
	if request.Reference == "" {
		respondWithErr(w, http.StatusBadRequest, ERR_MISSING_REFERENCE, ERR_MISSING_REFERENCE, ErrBadRequest)
		return
	}

	slog.Info("Received request to reconcile registration", "transaction_reference", request.Reference)

	result, err := state.verificationClient.FetchResult(r.Context(), request.Reference)
	if err != nil {
		respondWithUpstreamErr(w, http.StatusInternalServerError, ERR_RESULT_FETCH, err)
		return
	}

	report := state.engine.Reconcile(request.Registration, result.Payload)
	state.metrics.ObserveReconciliation(report.Passed)

	if userRef, err := state.sessionStorage.RetrieveReference(request.Reference); err == nil {
		slog.Info("Reconciliation rendered", "transaction_reference", request.Reference, "user_reference", userRef, "passed", report.Passed)
		if err := state.sessionStorage.RemoveReference(request.Reference); err != nil {
			slog.Warn("Failed to remove session reference", "transaction_reference", request.Reference, "error", err)
		}
	} else {
		slog.Info("Reconciliation rendered for unknown session", "transaction_reference", request.Reference, "passed", report.Passed)
	}

	response := models.ReconcileResponse{Report: report}
	if state.reportSigner != nil {
		attestation, err := state.reportSigner.SignReport(report)
		if err != nil {
			respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_ATTESTATION, err)
			return
		}
		response.Attestation = attestation
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_MARSHAL, err)
	}
}

// decodeStartSessionRequest tolerates an empty body; the user reference
// is optional.
func decodeStartSessionRequest(r *http.Request) (models.StartSessionRequest, error) {
	var request models.StartSessionRequest
	err := json.NewDecoder(r.Body).Decode(&request)
	if err != nil && !errors.Is(err, io.EOF) {
		slog.Warn("Failed to decode session request", "error", err)
		return request, fmt.Errorf("decode request body: %w", err)
	}
	return request, nil
}

// respondWithUpstreamErr maps client errors onto the relay contract:
// missing parameters are the caller's fault, an unknown reference is
// 404, a provider failure keeps its original status where one exists,
// and everything else collapses to the fallback status.
func respondWithUpstreamErr(w http.ResponseWriter, fallback int, logMsg string, e error) {
	var upstream *UpstreamError
	switch {
	case errors.Is(e, ErrBadRequest):
		respondWithErr(w, http.StatusBadRequest, e.Error(), logMsg, e)
	case errors.Is(e, ErrNotFound):
		respondWithErr(w, http.StatusNotFound, e.Error(), logMsg, e)
	case errors.Is(e, ErrNotConfigured):
		respondWithErr(w, http.StatusInternalServerError, e.Error(), logMsg, e)
	case errors.As(e, &upstream):
		status := upstream.Status
		if status < http.StatusBadRequest {
			status = fallback
		}
		respondWithErr(w, status, "verification provider request failed", logMsg, e)
	default:
		respondWithErr(w, fallback, "could not connect to verification provider", logMsg, e)
	}
}

func respondWithErr(w http.ResponseWriter, code int, responseMsg string, logMsg string, e error) {
	slog.Error(logMsg, "error", e, "status_code", code, "response_message", responseMsg)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": responseMsg}); err != nil {
		slog.Error("failed to write body to http response", "error", err)
	}
}

// helpers ------------

func closeRequestBody(r *http.Request) {
	if err := r.Body.Close(); err != nil {
		slog.Error("failed to close request body", "error", err)
	}
}

func requirePOST(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		slog.Debug("Non-POST request rejected", "method", r.Method, "path", r.URL.Path)
		respondWithErr(w, http.StatusMethodNotAllowed, "method not allowed", "invalid method", nil)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	slog.Debug("Writing JSON response", "status_code", status)
	payload, err := json.Marshal(v)
	if err != nil {
		slog.Error("Failed to marshal JSON payload", "error", err)
		return err
	}
	writeRawJSON(w, status, payload)
	return nil
}

func writeRawJSON(w http.ResponseWriter, status int, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(payload); err != nil {
		slog.Error("failed to write body to http response", "error", err)
	} else {
		slog.Debug("JSON response written successfully", "status_code", status, "payload_size", len(payload))
	}
}
