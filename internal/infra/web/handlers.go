package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"snap-partner-gateway/internal/domain"
	"snap-partner-gateway/internal/domain/model"
	"snap-partner-gateway/internal/infra/adapters/snap"
	"snap-partner-gateway/internal/usecase"
)

// webhookAck is the partner-facing response envelope.
type webhookAck struct {
	ResponseCode    string `json:"responseCode"`
	ResponseMessage string `json:"responseMessage"`
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	// The body must reach the verifier exactly as received; read it raw
	// and never re-decode before verification.
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, webhookAck{"4000000", "Bad Request. [Body]"})
		return
	}

	hdr := usecase.WebhookHeaders{
		Timestamp:  r.Header.Get(snap.HeaderTimestamp),
		Signature:  r.Header.Get(snap.HeaderSignature),
		ExternalID: r.Header.Get(snap.HeaderExternalID),
	}

	err = s.uc.Handle(r.Context(), r.Method, r.URL.Path, hdr, raw)
	switch {
	case errors.Is(err, domain.ErrInvalidSignature):
		writeJSON(w, http.StatusUnauthorized, webhookAck{"4010000", "Unauthorized. [Signature]"})
	case errors.Is(err, domain.ErrDuplicateEvent):
		// Ack duplicates so the partner stops retrying.
		writeJSON(w, http.StatusOK, webhookAck{"2000000", "Successful"})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, webhookAck{"5000000", "Internal Server Error"})
	default:
		writeJSON(w, http.StatusOK, webhookAck{"2000000", "Successful"})
	}
}

// ===== ops handlers =====

type opsLoginRequest struct {
	Secret string `json:"secret"`
}

func (s *Server) handleOpsLogin(w http.ResponseWriter, r *http.Request) {
	var req opsLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !s.auth.CheckSecret(req.Secret) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	tok, err := s.auth.Mint()
	if err != nil {
		http.Error(w, "Failed to mint session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": tok})
}

type sessionStateResponse struct {
	State     model.SessionState `json:"state"`
	ExpiresAt *time.Time         `json:"expires_at,omitempty"`
}

// tokenExpiry is implemented by session managers that can report the
// cached token's expiry without exposing the token itself.
type tokenExpiry interface {
	ExpiresAt() time.Time
}

func (s *Server) handleSessionState(w http.ResponseWriter, r *http.Request) {
	resp := sessionStateResponse{State: s.tokens.State()}
	if te, ok := s.tokens.(tokenExpiry); ok {
		if exp := te.ExpiresAt(); !exp.IsZero() {
			resp.ExpiresAt = &exp
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSessionRefresh(w http.ResponseWriter, r *http.Request) {
	s.tokens.Invalidate()
	if _, err := s.tokens.EnsureToken(r.Context()); err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	s.handleSessionState(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
