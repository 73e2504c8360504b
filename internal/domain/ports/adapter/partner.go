package adapter

import (
	"context"

	"snap-partner-gateway/internal/domain/model"
)

// PartnerCall describes one outbound signed call to the partner API.
type PartnerCall struct {
	Method string
	Path   string // relative path, e.g. /v1.0/balance-inquiry.htm
	Body   []byte // JSON as authored by the caller; hashed byte-for-byte
	// Bearer marks customer-context endpoints that must carry the
	// Authorization header in addition to the signing headers.
	Bearer bool
}

// PartnerResponse is the classified outcome of a call that reached the
// partner. ResponseCode/ResponseMessage are lifted from the body when the
// partner follows the responseCode/responseMessage envelope.
type PartnerResponse struct {
	StatusCode      int
	ResponseCode    string
	ResponseMessage string
	Body            []byte
}

// PartnerClient is the hex port for the authenticated dispatcher.
type PartnerClient interface {
	Name() string
	// Do performs the full signed-call sequence: resolve token if needed,
	// build canonical string, sign, compose headers, invoke transport,
	// classify. Partner rejections come back as *domain.PartnerError,
	// network failures as *domain.TransportError.
	Do(ctx context.Context, call PartnerCall) (*PartnerResponse, error)
}

// TokenSource owns the cached bearer token and its state machine.
type TokenSource interface {
	// EnsureToken returns a currently-valid token, authenticating only if
	// the cached one is absent or expired. Concurrent callers coalesce
	// into a single in-flight authentication.
	EnsureToken(ctx context.Context) (model.AccessToken, error)
	// State returns the current session state snapshot.
	State() model.SessionState
	// Invalidate drops the cached token so the next EnsureToken
	// re-authenticates.
	Invalidate()
}

// WebhookVerifier checks a partner signature over the literal received
// bytes. Fail-closed: any internal error is reported as false.
type WebhookVerifier interface {
	VerifyCall(method, path string, raw []byte, timestamp, signature string) bool
}

// WebhookRouter is the external collaborator that consumes verified
// events. Event-type routing lives outside this service.
type WebhookRouter interface {
	Route(ctx context.Context, event model.WebhookEvent) error
}
