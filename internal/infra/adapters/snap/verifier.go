// File: internal/infra/adapters/snap/verifier.go
package snap

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"

	"snap-partner-gateway/internal/domain/ports/adapter"
)

var _ adapter.WebhookVerifier = (*Verifier)(nil)

// Verifier checks partner signatures with the partner's public key.
// Fail-closed: malformed keys, malformed signatures and digest mismatches
// all collapse to false; nothing is thrown past this boundary. Stateless
// and safe for concurrent use.
type Verifier struct {
	key *rsa.PublicKey
}

func NewVerifier(rawBase64Key string) (*Verifier, error) {
	key, err := ParsePublicKey(rawBase64Key)
	if err != nil {
		return nil, err
	}
	return &Verifier{key: key}, nil
}

// Verify checks signature over data. data must be the exact bytes the
// remote party signed; callers must not re-serialize inbound payloads
// before verification.
func (v *Verifier) Verify(data []byte, signature string) bool {
	if v == nil || v.key == nil || signature == "" {
		return false
	}
	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	digest := sha256.Sum256(data)
	return rsa.VerifyPKCS1v15(v.key, crypto.SHA256, digest[:], sig) == nil
}

// VerifyCall checks an inbound webhook: the partner signs the signed-call
// canonical string built from the raw body bytes exactly as received plus
// the X-TIMESTAMP header value.
func (v *Verifier) VerifyCall(method, path string, raw []byte, timestamp, signature string) bool {
	if timestamp == "" {
		return false
	}
	return v.Verify(CallCanonical(method, path, raw, timestamp), signature)
}
