//go:build !integration

package web

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"snap-partner-gateway/internal/domain/model"
	"snap-partner-gateway/internal/infra/adapters/snap"
	"snap-partner-gateway/internal/usecase"
)

// memReplay is an in-memory stand-in for the Redis replay store.
type memReplay struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (m *memReplay) FirstSeen(_ context.Context, id string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen == nil {
		m.seen = map[string]bool{}
	}
	if m.seen[id] {
		return false, nil
	}
	m.seen[id] = true
	return true, nil
}

type recordingRouter struct {
	mu     sync.Mutex
	events []model.WebhookEvent
}

func (r *recordingRouter) Route(_ context.Context, event model.WebhookEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingRouter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// TestWebhookEndToEnd runs a partner-signed delivery through the full
// stack: raw body -> handler -> verifier -> dedup -> router.
func TestWebhookEndToEnd(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	privDER, _ := x509.MarshalPKCS8PrivateKey(key)
	pubDER, _ := x509.MarshalPKIXPublicKey(&key.PublicKey)

	// The "partner" signs with its private key; we verify with its
	// public key.
	partnerSigner, err := snap.NewSigner(base64.StdEncoding.EncodeToString(privDER))
	if err != nil {
		t.Fatal(err)
	}
	verifier, err := snap.NewVerifier(base64.StdEncoding.EncodeToString(pubDER))
	if err != nil {
		t.Fatal(err)
	}

	logger := zerolog.Nop()
	events := &recordingRouter{}
	uc := usecase.NewWebhookUseCase(verifier, &memReplay{}, events, time.Hour, &logger)
	srv := newTestServer(uc, &mockTokens{})
	handler := srv.Router()

	const path = "/webhook/partner"
	body := []byte("{ \"originalPartnerReferenceNo\": \"pr-1\",\n  \"latestTransactionStatus\": \"00\" }")
	ts := snap.FormatTimestamp(time.Now())
	sig, err := partnerSigner.Sign(snap.CallCanonical("POST", path, body, ts))
	if err != nil {
		t.Fatal(err)
	}

	deliver := func(payload []byte, externalID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
		req.Header.Set(snap.HeaderTimestamp, ts)
		req.Header.Set(snap.HeaderSignature, sig)
		req.Header.Set(snap.HeaderExternalID, externalID)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("signed delivery is verified and routed", func(t *testing.T) {
		rec := deliver(body, "evt-100")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		if events.count() != 1 {
			t.Fatalf("routed %d events, want 1", events.count())
		}
	})

	t.Run("replayed delivery is acked but not routed twice", func(t *testing.T) {
		rec := deliver(body, "evt-100")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if events.count() != 1 {
			t.Errorf("duplicate was routed: %d events", events.count())
		}
	})

	t.Run("tampered body is rejected", func(t *testing.T) {
		tampered := bytes.Replace(body, []byte(`"00"`), []byte(`"01"`), 1)
		rec := deliver(tampered, "evt-101")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
		if events.count() != 1 {
			t.Errorf("tampered event was routed")
		}
	})

	t.Run("re-serialized body with reordered keys is rejected", func(t *testing.T) {
		reordered := []byte(`{"latestTransactionStatus":"00","originalPartnerReferenceNo":"pr-1"}`)
		rec := deliver(reordered, "evt-102")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}
