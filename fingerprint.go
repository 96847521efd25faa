package mdlive

import (
	"crypto/md5" // #nosec G501 -- change detection only
	"encoding/hex"
)

// fingerprintKeyPrefix prefixes the per-URL fingerprint setting key.
const fingerprintKeyPrefix = "md5"

// Fingerprint returns the hex MD5 digest of body. Only equality matters.
func Fingerprint(body string) string {
	sum := md5.Sum([]byte(body)) // #nosec G401 -- change detection only
	return hex.EncodeToString(sum[:])
}

// FingerprintKey returns the setting key holding the fingerprint for url.
func FingerprintKey(url string) string {
	return fingerprintKeyPrefix + url
}
