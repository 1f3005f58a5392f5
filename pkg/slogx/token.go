package slogx

import (
	"crypto/sha256"
	"encoding/base64"
	"log/slog"
)

// fingerprintLen is how many characters of the base64url SHA-256 digest are
// logged. Enough to correlate occurrences of the same credential, useless
// for recovering it.
const fingerprintLen = 12

// Token returns a logging attribute that records a stable fingerprint of a
// credential instead of its value. Use it whenever a session token, refresh
// token or access key needs to appear in logs.
func Token(key, value string) slog.Attr {
	return slog.String(key, Fingerprint(value))
}

// Fingerprint returns the truncated SHA-256 fingerprint of a credential, or
// "" for an empty value.
func Fingerprint(value string) string {
	if value == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(value))
	return base64.RawURLEncoding.EncodeToString(sum[:])[:fingerprintLen]
}
