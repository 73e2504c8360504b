package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrKeyFormat              = errors.New("malformed key material")
	ErrSigning                = errors.New("signing failed")
	ErrMalformedTokenResponse = errors.New("token response missing accessToken or expiresIn")
	ErrInvalidSignature       = errors.New("webhook signature invalid")
	ErrDuplicateEvent         = errors.New("webhook event already processed")
	ErrInvalidArgument        = errors.New("invalid argument")
)

// AuthenticationError means the partner rejected our credentials or the
// token request itself. It carries the partner-supplied code/message when
// the response body had them. Never retried automatically.
type AuthenticationError struct {
	ResponseCode    string
	ResponseMessage string
}

func (e *AuthenticationError) Error() string {
	if e.ResponseCode == "" {
		return "partner authentication failed"
	}
	return fmt.Sprintf("partner authentication failed: %s %s", e.ResponseCode, e.ResponseMessage)
}

// PartnerError is a business endpoint rejection: the call reached the
// partner and was answered with a non-success response code.
type PartnerError struct {
	HTTPStatus      int
	ResponseCode    string
	ResponseMessage string
}

func (e *PartnerError) Error() string {
	return fmt.Sprintf("partner rejected call: http=%d code=%s message=%s", e.HTTPStatus, e.ResponseCode, e.ResponseMessage)
}

// TransportError wraps network-level failures so callers can tell
// "partner is down" apart from "credentials invalid". Timeout is set for
// deadline/timeout failures, which are a distinct failure kind.
type TransportError struct {
	Op      string
	Timeout bool
	Err     error
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("transport timeout during %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("transport failure during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
