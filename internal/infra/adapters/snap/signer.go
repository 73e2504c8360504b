// File: internal/infra/adapters/snap/signer.go
package snap

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"snap-partner-gateway/internal/domain"
)

// Signer produces base64 RSA signatures (SHA-256 digest, PKCS#1 v1.5
// padding) over canonical strings. PKCS#1 v1.5 is deterministic: identical
// inputs always yield identical signatures. Stateless and safe for
// concurrent use.
type Signer struct {
	key *rsa.PrivateKey
}

// NewSigner parses the raw base64 private key up front so a bad key fails
// at startup, not on the first outbound call.
func NewSigner(rawBase64Key string) (*Signer, error) {
	key, err := ParsePrivateKey(rawBase64Key)
	if err != nil {
		return nil, err
	}
	return &Signer{key: key}, nil
}

func (s *Signer) Sign(data []byte) (string, error) {
	digest := sha256.Sum256(data)
	sig, err := rsa.SignPKCS1v15(nil, s.key, crypto.SHA256, digest[:])
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSigning, err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}
