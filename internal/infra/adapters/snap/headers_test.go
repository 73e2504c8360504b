//go:build !integration

package snap

import (
	"testing"
	"time"

	"snap-partner-gateway/internal/domain/model"
)

func TestHeaderComposer(t *testing.T) {
	c := NewHeaderComposer("client-key", "partner-id", "77001")

	t.Run("client family carries the token-endpoint headers", func(t *testing.T) {
		h := c.Client("2024-01-01T10:00:00+07:00", "sig==")
		if h.Get("Content-Type") != "application/json" {
			t.Errorf("content type = %q", h.Get("Content-Type"))
		}
		if h.Get(HeaderClientKey) != "client-key" {
			t.Errorf("client key = %q", h.Get(HeaderClientKey))
		}
		if h.Get(HeaderTimestamp) != "2024-01-01T10:00:00+07:00" {
			t.Errorf("timestamp = %q", h.Get(HeaderTimestamp))
		}
		if h.Get(HeaderSignature) != "sig==" {
			t.Errorf("signature = %q", h.Get(HeaderSignature))
		}
		if h.Get("Authorization") != "" {
			t.Error("client family must not carry a bearer header")
		}
	})

	t.Run("signed family without token omits Authorization", func(t *testing.T) {
		h := c.Signed("ts", "sig==", nil)
		if h.Get("Authorization") != "" {
			t.Errorf("unexpected Authorization: %q", h.Get("Authorization"))
		}
		if h.Get(HeaderPartnerID) != "partner-id" || h.Get(HeaderChannelID) != "77001" {
			t.Errorf("partner/channel headers wrong: %q %q", h.Get(HeaderPartnerID), h.Get(HeaderChannelID))
		}
	})

	t.Run("signed family with token carries the bearer snapshot", func(t *testing.T) {
		tok := model.AccessToken{Value: "tok-1", TokenType: "Bearer", ExpiresAt: time.Now().Add(time.Hour)}
		h := c.Signed("ts", "sig==", &tok)
		if h.Get("Authorization") != "Bearer tok-1" {
			t.Errorf("Authorization = %q", h.Get("Authorization"))
		}
		// Composition must not mutate the snapshot.
		if tok.Value != "tok-1" || tok.TokenType != "Bearer" {
			t.Errorf("token mutated: %+v", tok)
		}
	})

	t.Run("external id is fresh per call", func(t *testing.T) {
		seen := map[string]bool{}
		for i := 0; i < 100; i++ {
			id := c.Signed("ts", "sig==", nil).Get(HeaderExternalID)
			if id == "" {
				t.Fatal("empty external id")
			}
			if seen[id] {
				t.Fatalf("external id %q repeated", id)
			}
			seen[id] = true
		}
	})
}
