// File: internal/infra/adapters/snap/keyblock.go
package snap

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"strings"

	"snap-partner-gateway/internal/domain"
)

// KeyRole selects the PEM markers for FormatKeyBlock.
type KeyRole string

const (
	KeyRolePrivate KeyRole = "PRIVATE"
	KeyRolePublic  KeyRole = "PUBLIC"
)

const pemLineWidth = 64

// FormatKeyBlock converts a raw base64 key string (the form partner portals
// hand out and the form we keep in config) into a PEM key block: begin
// marker, base64 payload split into 64-char lines, end marker. The input is
// validated here so a bad key fails as domain.ErrKeyFormat instead of a
// cryptic x509 error at first signing.
func FormatKeyBlock(raw string, role KeyRole) (string, error) {
	raw = stripSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty key", domain.ErrKeyFormat)
	}
	if _, err := base64.StdEncoding.DecodeString(raw); err != nil {
		return "", fmt.Errorf("%w: not valid base64: %v", domain.ErrKeyFormat, err)
	}
	if role != KeyRolePrivate && role != KeyRolePublic {
		return "", fmt.Errorf("%w: unknown key role %q", domain.ErrKeyFormat, role)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "-----BEGIN %s KEY-----\n", role)
	for i := 0; i < len(raw); i += pemLineWidth {
		end := i + pemLineWidth
		if end > len(raw) {
			end = len(raw)
		}
		sb.WriteString(raw[i:end])
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "-----END %s KEY-----\n", role)
	return sb.String(), nil
}

// ParsePrivateKey loads an RSA private key from its raw base64 form.
// Accepts PKCS#8 and PKCS#1 encodings.
func ParsePrivateKey(raw string) (*rsa.PrivateKey, error) {
	der, err := keyDER(raw, KeyRolePrivate)
	if err != nil {
		return nil, err
	}
	if k, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		rsaKey, ok := k.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("%w: private key is not RSA", domain.ErrKeyFormat)
		}
		return rsaKey, nil
	}
	if k, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return k, nil
	}
	return nil, fmt.Errorf("%w: not a PKCS#8 or PKCS#1 RSA private key", domain.ErrKeyFormat)
}

// ParsePublicKey loads an RSA public key from its raw base64 form.
// Accepts PKIX and PKCS#1 encodings.
func ParsePublicKey(raw string) (*rsa.PublicKey, error) {
	der, err := keyDER(raw, KeyRolePublic)
	if err != nil {
		return nil, err
	}
	if k, err := x509.ParsePKIXPublicKey(der); err == nil {
		rsaKey, ok := k.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("%w: public key is not RSA", domain.ErrKeyFormat)
		}
		return rsaKey, nil
	}
	if k, err := x509.ParsePKCS1PublicKey(der); err == nil {
		return k, nil
	}
	return nil, fmt.Errorf("%w: not a PKIX or PKCS#1 RSA public key", domain.ErrKeyFormat)
}

// keyDER routes through FormatKeyBlock so the same validation and block
// shape back both config loading and any key export tooling.
func keyDER(raw string, role KeyRole) ([]byte, error) {
	block, err := FormatKeyBlock(raw, role)
	if err != nil {
		return nil, err
	}
	p, _ := pem.Decode([]byte(block))
	if p == nil {
		return nil, fmt.Errorf("%w: unparseable key block", domain.ErrKeyFormat)
	}
	return p.Bytes, nil
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, s)
}
