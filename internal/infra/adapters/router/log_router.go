// File: internal/infra/adapters/router/log_router.go
package router

import (
	"context"

	"github.com/rs/zerolog"

	"snap-partner-gateway/internal/domain/model"
	"snap-partner-gateway/internal/domain/ports/adapter"
)

var _ adapter.WebhookRouter = (*LogRouter)(nil)

// LogRouter is the default WebhookRouter collaborator: it logs verified
// events and does nothing else. Deployments that consume events plug their
// own router in at wiring time.
type LogRouter struct {
	log *zerolog.Logger
}

func NewLogRouter(logger *zerolog.Logger) *LogRouter {
	return &LogRouter{log: logger}
}

func (r *LogRouter) Route(_ context.Context, event model.WebhookEvent) error {
	r.log.Info().
		Str("path", event.Path).
		Str("external_id", event.ExternalID).
		Str("timestamp", event.Timestamp).
		Int("bytes", len(event.Raw)).
		Msg("webhook event")
	return nil
}
