// File: internal/usecase/webhook_uc.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"snap-partner-gateway/internal/domain"
	"snap-partner-gateway/internal/domain/model"
	"snap-partner-gateway/internal/domain/ports/adapter"
	"snap-partner-gateway/internal/domain/ports/repository"
	"snap-partner-gateway/internal/infra/metrics"
)

// Compile-time check
var _ WebhookUseCase = (*webhookUC)(nil)

// WebhookHeaders are the signing headers lifted off the inbound request.
type WebhookHeaders struct {
	Timestamp  string // X-TIMESTAMP, exactly as received
	Signature  string // X-SIGNATURE, base64
	ExternalID string // X-EXTERNAL-ID, partner's delivery id
}

type WebhookUseCase interface {
	// Handle verifies the partner signature over the raw body bytes,
	// drops replayed deliveries, and hands the verified event to the
	// router. Returns domain.ErrInvalidSignature or
	// domain.ErrDuplicateEvent for the boundary to map to a response.
	Handle(ctx context.Context, method, path string, hdr WebhookHeaders, raw []byte) error
}

type webhookUC struct {
	verifier  adapter.WebhookVerifier
	replay    repository.ReplayStore
	router    adapter.WebhookRouter
	replayTTL time.Duration
	log       *zerolog.Logger
	now       func() time.Time
}

func NewWebhookUseCase(verifier adapter.WebhookVerifier, replay repository.ReplayStore, router adapter.WebhookRouter, replayTTL time.Duration, logger *zerolog.Logger) *webhookUC {
	return &webhookUC{
		verifier:  verifier,
		replay:    replay,
		router:    router,
		replayTTL: replayTTL,
		log:       logger,
		now:       time.Now,
	}
}

func (u *webhookUC) Handle(ctx context.Context, method, path string, hdr WebhookHeaders, raw []byte) error {
	// Verification runs over the literal received bytes; raw must never
	// be re-serialized before this point.
	if !u.verifier.VerifyCall(method, path, raw, hdr.Timestamp, hdr.Signature) {
		metrics.IncWebhook("invalid_signature")
		u.log.Warn().
			Str("path", path).
			Str("external_id", hdr.ExternalID).
			Msg("webhook signature rejected")
		return domain.ErrInvalidSignature
	}

	if hdr.ExternalID != "" {
		first, err := u.replay.FirstSeen(ctx, hdr.ExternalID, u.replayTTL)
		switch {
		case err != nil:
			// A replay-store outage must not drop verified events;
			// the router is expected to be idempotent anyway.
			u.log.Error().Err(err).Str("external_id", hdr.ExternalID).Msg("replay store unavailable, routing anyway")
		case !first:
			metrics.IncWebhook("duplicate")
			u.log.Info().Str("external_id", hdr.ExternalID).Msg("duplicate webhook delivery dropped")
			return domain.ErrDuplicateEvent
		}
	}

	event := model.WebhookEvent{
		ExternalID: hdr.ExternalID,
		Path:       path,
		Timestamp:  hdr.Timestamp,
		Raw:        raw,
		ReceivedAt: u.now(),
	}
	if err := u.router.Route(ctx, event); err != nil {
		metrics.IncWebhook("route_error")
		return fmt.Errorf("route webhook: %w", err)
	}

	metrics.IncWebhook("accepted")
	u.log.Info().
		Str("path", path).
		Str("external_id", hdr.ExternalID).
		Int("bytes", len(raw)).
		Msg("webhook accepted")
	return nil
}
