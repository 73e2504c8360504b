// File: internal/infra/adapters/snap/canonical.go
package snap

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// TimestampLayout renders local time with an explicit UTC offset at second
// precision, e.g. 2024-01-01T10:00:00+07:00. The partner hashes this exact
// string, so the instant used to build a canonical string must be reused
// verbatim in the X-TIMESTAMP header.
const TimestampLayout = "2006-01-02T15:04:05-07:00"

func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// TokenCanonical is the token-acquisition scheme: {clientKey}|{timestamp}.
func TokenCanonical(clientKey, timestamp string) []byte {
	return []byte(clientKey + "|" + timestamp)
}

// CallCanonical is the signed-call scheme:
// {METHOD}:{path}:{lowercase_hex(sha256(minified_body))}:{timestamp}.
func CallCanonical(method, path string, body []byte, timestamp string) []byte {
	sum := sha256.Sum256(MinifyJSON(body))
	var sb strings.Builder
	sb.WriteString(strings.ToUpper(method))
	sb.WriteByte(':')
	sb.WriteString(path)
	sb.WriteByte(':')
	sb.WriteString(hex.EncodeToString(sum[:]))
	sb.WriteByte(':')
	sb.WriteString(timestamp)
	return []byte(sb.String())
}

// MinifyJSON strips insignificant whitespace from a JSON document at the
// byte level. Key order, numeric literals and string contents pass through
// untouched, so the digest matches what the partner computes over its own
// serialization. Re-encoding through a map would reorder keys and reformat
// numbers, which intermittently breaks signatures.
func MinifyJSON(b []byte) []byte {
	out := make([]byte, 0, len(b))
	inString := false
	escaped := false
	for i := 0; i < len(b); i++ {
		c := b[i]
		if inString {
			out = append(out, c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		case '"':
			inString = true
		}
		out = append(out, c)
	}
	return out
}
