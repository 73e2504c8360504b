//go:build !integration

package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"snap-partner-gateway/internal/domain"
	"snap-partner-gateway/internal/domain/model"
	"snap-partner-gateway/internal/usecase"
)

// --- Mocks (Ports) ---

type mockVerifier struct {
	ok       bool
	lastRaw  []byte
	lastPath string
	lastTS   string
	lastSig  string
}

func (m *mockVerifier) VerifyCall(method, path string, raw []byte, timestamp, signature string) bool {
	m.lastRaw = raw
	m.lastPath = path
	m.lastTS = timestamp
	m.lastSig = signature
	return m.ok
}

type mockReplayStore struct {
	FirstSeenFunc func(ctx context.Context, id string, ttl time.Duration) (bool, error)
	calls         int
}

func (m *mockReplayStore) FirstSeen(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	m.calls++
	if m.FirstSeenFunc != nil {
		return m.FirstSeenFunc(ctx, id, ttl)
	}
	return true, nil
}

type mockRouter struct {
	RouteFunc func(ctx context.Context, event model.WebhookEvent) error
	events    []model.WebhookEvent
}

func (m *mockRouter) Route(ctx context.Context, event model.WebhookEvent) error {
	m.events = append(m.events, event)
	if m.RouteFunc != nil {
		return m.RouteFunc(ctx, event)
	}
	return nil
}

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func TestWebhookUseCase_Handle(t *testing.T) {
	ctx := context.Background()
	raw := []byte(`{"b": 2, "a": 1}`)
	hdr := usecase.WebhookHeaders{
		Timestamp:  "2024-01-01T10:00:00+07:00",
		Signature:  "sig==",
		ExternalID: "evt-1",
	}

	t.Run("verified event is deduped and routed with the literal bytes", func(t *testing.T) {
		// --- Arrange ---
		verifier := &mockVerifier{ok: true}
		replay := &mockReplayStore{}
		router := &mockRouter{}
		uc := usecase.NewWebhookUseCase(verifier, replay, router, time.Hour, newTestLogger())

		// --- Act ---
		err := uc.Handle(ctx, "POST", "/webhook/partner", hdr, raw)

		// --- Assert ---
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if replay.calls != 1 {
			t.Errorf("replay store consulted %d times, want 1", replay.calls)
		}
		if len(router.events) != 1 {
			t.Fatalf("routed %d events, want 1", len(router.events))
		}
		ev := router.events[0]
		if ev.ExternalID != "evt-1" || ev.Path != "/webhook/partner" || ev.Timestamp != hdr.Timestamp {
			t.Errorf("event fields wrong: %+v", ev)
		}
		// The verifier and the router must both see the bytes exactly
		// as received, never a re-serialization.
		if !bytes.Equal(verifier.lastRaw, raw) {
			t.Errorf("verifier saw altered bytes: %q", verifier.lastRaw)
		}
		if !bytes.Equal(ev.Raw, raw) {
			t.Errorf("router saw altered bytes: %q", ev.Raw)
		}
	})

	t.Run("invalid signature stops everything", func(t *testing.T) {
		verifier := &mockVerifier{ok: false}
		replay := &mockReplayStore{}
		router := &mockRouter{}
		uc := usecase.NewWebhookUseCase(verifier, replay, router, time.Hour, newTestLogger())

		err := uc.Handle(ctx, "POST", "/webhook/partner", hdr, raw)
		if !errors.Is(err, domain.ErrInvalidSignature) {
			t.Fatalf("want ErrInvalidSignature, got %v", err)
		}
		if replay.calls != 0 {
			t.Error("replay store consulted for an unverified event")
		}
		if len(router.events) != 0 {
			t.Error("unverified event was routed")
		}
	})

	t.Run("duplicate delivery is dropped", func(t *testing.T) {
		verifier := &mockVerifier{ok: true}
		replay := &mockReplayStore{
			FirstSeenFunc: func(ctx context.Context, id string, ttl time.Duration) (bool, error) {
				return false, nil
			},
		}
		router := &mockRouter{}
		uc := usecase.NewWebhookUseCase(verifier, replay, router, time.Hour, newTestLogger())

		err := uc.Handle(ctx, "POST", "/webhook/partner", hdr, raw)
		if !errors.Is(err, domain.ErrDuplicateEvent) {
			t.Fatalf("want ErrDuplicateEvent, got %v", err)
		}
		if len(router.events) != 0 {
			t.Error("duplicate event was routed")
		}
	})

	t.Run("replay store outage does not drop verified events", func(t *testing.T) {
		verifier := &mockVerifier{ok: true}
		replay := &mockReplayStore{
			FirstSeenFunc: func(ctx context.Context, id string, ttl time.Duration) (bool, error) {
				return false, errors.New("redis down")
			},
		}
		router := &mockRouter{}
		uc := usecase.NewWebhookUseCase(verifier, replay, router, time.Hour, newTestLogger())

		if err := uc.Handle(ctx, "POST", "/webhook/partner", hdr, raw); err != nil {
			t.Fatalf("expected routing despite replay outage, got: %v", err)
		}
		if len(router.events) != 1 {
			t.Errorf("routed %d events, want 1", len(router.events))
		}
	})

	t.Run("missing external id skips dedup but still routes", func(t *testing.T) {
		verifier := &mockVerifier{ok: true}
		replay := &mockReplayStore{}
		router := &mockRouter{}
		uc := usecase.NewWebhookUseCase(verifier, replay, router, time.Hour, newTestLogger())

		noID := usecase.WebhookHeaders{Timestamp: hdr.Timestamp, Signature: hdr.Signature}
		if err := uc.Handle(ctx, "POST", "/webhook/partner", noID, raw); err != nil {
			t.Fatal(err)
		}
		if replay.calls != 0 {
			t.Error("dedup attempted without an external id")
		}
		if len(router.events) != 1 {
			t.Error("event not routed")
		}
	})

	t.Run("router failure is wrapped and surfaced", func(t *testing.T) {
		routeErr := errors.New("downstream queue full")
		verifier := &mockVerifier{ok: true}
		router := &mockRouter{
			RouteFunc: func(ctx context.Context, event model.WebhookEvent) error { return routeErr },
		}
		uc := usecase.NewWebhookUseCase(verifier, &mockReplayStore{}, router, time.Hour, newTestLogger())

		err := uc.Handle(ctx, "POST", "/webhook/partner", hdr, raw)
		if !errors.Is(err, routeErr) {
			t.Fatalf("want wrapped route error, got %v", err)
		}
	})
}
