// File: internal/infra/adapters/snap/headers.go
package snap

import (
	"net/http"

	"github.com/oklog/ulid/v2"

	"snap-partner-gateway/internal/domain/model"
)

// Canonical signing header names, bit-exact per the partner contract.
const (
	HeaderTimestamp  = "X-TIMESTAMP"
	HeaderSignature  = "X-SIGNATURE"
	HeaderClientKey  = "X-CLIENT-KEY"
	HeaderPartnerID  = "X-PARTNER-ID"
	HeaderExternalID = "X-EXTERNAL-ID"
	HeaderChannelID  = "CHANNEL-ID"
)

// HeaderComposer assembles outbound header sets per endpoint family. It is
// a pure function of its inputs plus a fresh external id per call; it never
// mutates cached state. Header sets are built fresh for every request and
// must not be reused (timestamp and external id are unique per call).
type HeaderComposer struct {
	clientKey string
	partnerID string
	channelID string
}

func NewHeaderComposer(clientKey, partnerID, channelID string) *HeaderComposer {
	return &HeaderComposer{clientKey: clientKey, partnerID: partnerID, channelID: channelID}
}

// Client builds the app-level family used by the token endpoint.
func (c *HeaderComposer) Client(timestamp, signature string) http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set(HeaderClientKey, c.clientKey)
	h.Set(HeaderTimestamp, timestamp)
	h.Set(HeaderSignature, signature)
	return h
}

// Signed builds the business-call family. token is nil for endpoints that
// do not require a customer context; otherwise the current token snapshot
// is attached as a bearer Authorization header.
func (c *HeaderComposer) Signed(timestamp, signature string, token *model.AccessToken) http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set(HeaderPartnerID, c.partnerID)
	h.Set(HeaderChannelID, c.channelID)
	h.Set(HeaderTimestamp, timestamp)
	h.Set(HeaderExternalID, NewExternalID())
	h.Set(HeaderSignature, signature)
	if token != nil && !token.IsZero() {
		h.Set("Authorization", "Bearer "+token.Value)
	}
	return h
}

// NewExternalID returns a fresh per-call request id. ULIDs are 26
// header-safe characters and sort by issue time, which keeps partner-side
// request logs reconcilable.
func NewExternalID() string {
	return ulid.Make().String()
}
