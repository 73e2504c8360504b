// File: internal/infra/adapters/snap/session.go
package snap

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"snap-partner-gateway/internal/domain"
	"snap-partner-gateway/internal/domain/model"
	"snap-partner-gateway/internal/domain/ports/adapter"
	"snap-partner-gateway/internal/infra/logging"
	"snap-partner-gateway/internal/infra/metrics"
)

var _ adapter.TokenSource = (*SessionManager)(nil)

const tokenGrantBody = `{"grantType":"client_credentials"}`

// SessionManager owns the single cached bearer token and the session state
// machine. It is the sole writer of both. Concurrent EnsureToken callers
// that find the token absent or expired coalesce into one in-flight
// authentication; every waiter receives the same token or the same error.
type SessionManager struct {
	baseURL   string
	tokenPath string
	clientKey string
	signer    *Signer
	composer  *HeaderComposer
	hc        *http.Client
	log       *zerolog.Logger

	mu    sync.Mutex
	sf    singleflight.Group
	token model.AccessToken
	state model.SessionState

	now func() time.Time // injected for tests
}

func NewSessionManager(baseURL, tokenPath, clientKey string, signer *Signer, composer *HeaderComposer, hc *http.Client, logger *zerolog.Logger) *SessionManager {
	if tokenPath == "" {
		tokenPath = "/v1.0/access-token/b2b"
	}
	return &SessionManager{
		baseURL:   baseURL,
		tokenPath: tokenPath,
		clientKey: clientKey,
		signer:    signer,
		composer:  composer,
		hc:        hc,
		log:       logger,
		state:     model.SessionUnauthenticated,
		now:       time.Now,
	}
}

// EnsureToken returns a currently-valid token, authenticating only when the
// cached one is absent or expired (now >= expiresAt, strictly).
func (m *SessionManager) EnsureToken(ctx context.Context) (model.AccessToken, error) {
	m.mu.Lock()
	if m.state == model.SessionValid {
		if !m.token.ExpiredAt(m.now()) {
			tok := m.token
			m.mu.Unlock()
			metrics.IncTokenCache("hit")
			return tok, nil
		}
		m.state = model.SessionExpired
	}
	m.mu.Unlock()

	metrics.IncTokenCache("miss")
	v, err, _ := m.sf.Do("b2b-token", func() (any, error) {
		return m.authenticate(ctx)
	})
	if err != nil {
		return model.AccessToken{}, err
	}
	return v.(model.AccessToken), nil
}

// State reports the current session state, rolling Valid over to Expired
// when the cached token's expiry has passed.
func (m *SessionManager) State() model.SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == model.SessionValid && m.token.ExpiredAt(m.now()) {
		m.state = model.SessionExpired
	}
	return m.state
}

// Invalidate drops the cached token so the next EnsureToken re-authenticates.
func (m *SessionManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = model.AccessToken{}
	m.state = model.SessionUnauthenticated
}

// ExpiresAt exposes the cached token's expiry for the ops surface. Zero
// when no token is installed.
func (m *SessionManager) ExpiresAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token.ExpiresAt
}

func (m *SessionManager) authenticate(ctx context.Context) (model.AccessToken, error) {
	// A waiter that lost the singleflight race re-checks here: the winner
	// may have installed a fresh token between our unlock and this call.
	m.mu.Lock()
	if m.state == model.SessionValid && !m.token.ExpiredAt(m.now()) {
		tok := m.token
		m.mu.Unlock()
		return tok, nil
	}
	prev := m.state
	m.state = model.SessionAuthenticating
	m.mu.Unlock()

	ts := FormatTimestamp(m.now())
	sig, err := m.signer.Sign(TokenCanonical(m.clientKey, ts))
	if err != nil {
		m.rollback(prev)
		metrics.IncAuth("signing_error")
		return model.AccessToken{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+m.tokenPath, bytes.NewReader([]byte(tokenGrantBody)))
	if err != nil {
		m.rollback(prev)
		return model.AccessToken{}, fmt.Errorf("token request: %w", err)
	}
	req.Header = m.composer.Client(ts, sig)

	resp, err := m.hc.Do(req)
	if err != nil {
		// Transport failure: the prior state stays untouched so a
		// timed-out attempt cannot corrupt the session.
		m.rollback(prev)
		metrics.IncAuth("transport_error")
		return model.AccessToken{}, &domain.TransportError{Op: "token", Timeout: isTimeout(err), Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		m.rollback(prev)
		metrics.IncAuth("transport_error")
		return model.AccessToken{}, &domain.TransportError{Op: "token", Timeout: isTimeout(err), Err: err}
	}

	var out struct {
		ResponseCode    string      `json:"responseCode"`
		ResponseMessage string      `json:"responseMessage"`
		AccessToken     string      `json:"accessToken"`
		TokenType       string      `json:"tokenType"`
		ExpiresIn       json.Number `json:"expiresIn"`
	}
	_ = json.Unmarshal(body, &out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		m.fail()
		metrics.IncAuth("rejected")
		m.log.Warn().Int("status", resp.StatusCode).Str("code", out.ResponseCode).Str("message", out.ResponseMessage).Msg("token request rejected")
		return model.AccessToken{}, &domain.AuthenticationError{ResponseCode: out.ResponseCode, ResponseMessage: out.ResponseMessage}
	}

	expiresIn, convErr := out.ExpiresIn.Int64()
	if out.AccessToken == "" || convErr != nil || expiresIn <= 0 {
		m.fail()
		metrics.IncAuth("malformed")
		return model.AccessToken{}, fmt.Errorf("%w: status=%d", domain.ErrMalformedTokenResponse, resp.StatusCode)
	}

	tok := model.AccessToken{
		Value:     out.AccessToken,
		TokenType: out.TokenType,
		ExpiresAt: m.now().Add(time.Duration(expiresIn) * time.Second),
	}
	m.mu.Lock()
	m.token = tok
	m.state = model.SessionValid
	m.mu.Unlock()

	metrics.IncAuth("success")
	m.log.Info().
		Str("token", logging.Redact(tok.Value, false)).
		Time("expires_at", tok.ExpiresAt).
		Msg("partner session established")
	return tok, nil
}

// rollback restores the state observed before the attempt. Used for
// transport-level failures, which must leave the session untouched.
func (m *SessionManager) rollback(prev model.SessionState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == model.SessionAuthenticating {
		m.state = prev
	}
}

// fail handles an explicit partner rejection or malformed response:
// Authenticating -> Unauthenticated, no token stored.
func (m *SessionManager) fail() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = model.AccessToken{}
	m.state = model.SessionUnauthenticated
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
