//go:build !integration

package snap

import (
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// roundTripperFunc lets tests stand in for the partner API without a
// network listener.
type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}
