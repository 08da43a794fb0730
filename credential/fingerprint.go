package credential

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

const fingerprintBytes = 8

// Fingerprint returns a short, stable digest of a token so it can be logged without
// revealing the token itself. An empty token has an empty fingerprint.
func Fingerprint(token string) string {
	if token == "" {
		return ""
	}
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:fingerprintBytes])
}
