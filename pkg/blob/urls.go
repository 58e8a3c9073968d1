// Package blob is the storage collaborator boundary: it turns opaque image
// references into display URLs. File bytes live elsewhere; this package
// only signs pointers at them.
package blob

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Config controls display-URL resolution.
type Config struct {
	// BaseURL is the public CDN or storage gateway prefix.
	BaseURL string
	// Secret signs the URL. Empty means unsigned URLs.
	Secret string
	// TTL bounds how long a signed URL stays valid. Zero means no expiry.
	TTL time.Duration
}

var (
	mu  sync.RWMutex
	cfg Config
)

// Configure installs the resolver configuration.
func Configure(c Config) {
	mu.Lock()
	defer mu.Unlock()
	cfg = c
}

// ResolveDisplayURL returns a client-fetchable URL for an image reference,
// or the empty string when the ref is empty or no resolver is configured.
// Absence is not an error: a message without an image simply has no URL.
func ResolveDisplayURL(ref string) string {
	if ref == "" {
		return ""
	}
	mu.RLock()
	c := cfg
	mu.RUnlock()
	if c.BaseURL == "" {
		return ""
	}
	u := strings.TrimRight(c.BaseURL, "/") + "/" + ref
	if c.Secret == "" {
		return u
	}
	exp := int64(0)
	if c.TTL > 0 {
		exp = time.Now().UTC().Add(c.TTL).Unix()
	}
	return fmt.Sprintf("%s?exp=%d&sig=%s", u, exp, sign(c.Secret, ref, exp))
}

func sign(secret, ref string, exp int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%s|%d", ref, exp)
	return hex.EncodeToString(mac.Sum(nil))
}
