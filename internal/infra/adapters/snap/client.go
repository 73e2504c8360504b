// File: internal/infra/adapters/snap/client.go
package snap

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"snap-partner-gateway/internal/domain"
	"snap-partner-gateway/internal/domain/model"
	"snap-partner-gateway/internal/domain/ports/adapter"
	"snap-partner-gateway/internal/infra/metrics"
)

var _ adapter.PartnerClient = (*Client)(nil)

const (
	// DefaultTimeout bounds every partner round-trip.
	DefaultTimeout = 30 * time.Second

	maxResponseBytes = 1 << 20
)

// Client is the authenticated dispatcher for outbound partner calls. For
// every call the sequence is strict: resolve token (if required), build the
// canonical string with the timestamp that will be sent, sign, compose
// headers, invoke transport with a bounded timeout, classify the response.
// No call goes out with a stale or unsigned header set.
type Client struct {
	baseURL  string
	signer   *Signer
	composer *HeaderComposer
	tokens   adapter.TokenSource
	hc       *http.Client
	log      *zerolog.Logger

	now func() time.Time // injected for tests
}

func NewClient(baseURL string, timeout time.Duration, signer *Signer, composer *HeaderComposer, tokens adapter.TokenSource, logger *zerolog.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid partner base url %q", domain.ErrInvalidArgument, baseURL)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		signer:   signer,
		composer: composer,
		tokens:   tokens,
		hc:       &http.Client{Timeout: timeout},
		log:      logger,
		now:      time.Now,
	}, nil
}

func (c *Client) Name() string { return "snap" }

func (c *Client) Do(ctx context.Context, call adapter.PartnerCall) (*adapter.PartnerResponse, error) {
	start := c.now()

	var token *model.AccessToken
	if call.Bearer {
		tok, err := c.tokens.EnsureToken(ctx)
		if err != nil {
			metrics.ObserveDispatch(call.Path, "auth_error", time.Since(start))
			return nil, err
		}
		token = &tok
	}

	// The timestamp signed here is the one that ships in X-TIMESTAMP; a
	// regenerated instant would desynchronize signature and header.
	ts := FormatTimestamp(c.now())
	sig, err := c.signer.Sign(CallCanonical(call.Method, call.Path, call.Body, ts))
	if err != nil {
		metrics.ObserveDispatch(call.Path, "signing_error", time.Since(start))
		return nil, err
	}

	method := strings.ToUpper(call.Method)
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+call.Path, bytes.NewReader(call.Body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header = c.composer.Signed(ts, sig, token)

	resp, err := c.hc.Do(req)
	if err != nil {
		metrics.ObserveDispatch(call.Path, "transport_error", time.Since(start))
		return nil, &domain.TransportError{Op: call.Path, Timeout: isTimeout(err), Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		metrics.ObserveDispatch(call.Path, "transport_error", time.Since(start))
		return nil, &domain.TransportError{Op: call.Path, Timeout: isTimeout(err), Err: err}
	}

	out := &adapter.PartnerResponse{StatusCode: resp.StatusCode, Body: body}
	var envelope struct {
		ResponseCode    string `json:"responseCode"`
		ResponseMessage string `json:"responseMessage"`
	}
	_ = json.Unmarshal(body, &envelope)
	out.ResponseCode = envelope.ResponseCode
	out.ResponseMessage = envelope.ResponseMessage

	if !classifiedSuccess(resp.StatusCode, out.ResponseCode) {
		metrics.ObserveDispatch(call.Path, "rejected", time.Since(start))
		c.log.Warn().
			Str("method", method).
			Str("path", call.Path).
			Int("status", resp.StatusCode).
			Str("code", out.ResponseCode).
			Msg("partner rejected call")
		return out, &domain.PartnerError{HTTPStatus: resp.StatusCode, ResponseCode: out.ResponseCode, ResponseMessage: out.ResponseMessage}
	}

	metrics.ObserveDispatch(call.Path, "success", time.Since(start))
	c.log.Debug().
		Str("method", method).
		Str("path", call.Path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("partner call ok")
	return out, nil
}

// classifiedSuccess: HTTP 2xx and, when the body carries the partner
// envelope, a responseCode in the 2xx service family.
func classifiedSuccess(status int, responseCode string) bool {
	if status < 200 || status >= 300 {
		return false
	}
	if responseCode == "" {
		return true
	}
	return strings.HasPrefix(responseCode, "2")
}

// IsTimeout reports whether err is the distinct timeout failure kind.
// Callers use it to treat "partner is slow/down" differently from
// "credentials invalid".
func IsTimeout(err error) bool {
	var te *domain.TransportError
	return errors.As(err, &te) && te.Timeout
}
