package client

import (
	"crypto/sha256"
	"net/http"
	"path/filepath"

	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
	"github.com/mr-tron/base58"
)

// NewCachingTransport wraps next with an HTTP cache honouring Cache-Control headers.
// Only GET responses are cached, which covers the cycles listing.
func NewCachingTransport(cacheDir string, next http.RoundTripper) http.RoundTripper {
	var cache httpcache.Cache
	if cacheDir == "" {
		// Use in-memory cache if no cache directory specified
		cache = httpcache.NewMemoryCache()
	} else {
		// Use disk-based cache for persistence across restarts
		cache = diskcache.New(cacheDir)
	}

	transport := httpcache.NewTransport(cache)
	transport.Transport = next
	transport.MarkCachedResponses = true

	return transport
}

// CacheDir returns the cache directory for one user of one server under stateDir.
//
// Cached responses are fetched with a user's credentials, so every user gets a
// separate directory. The name is the Base58-encoded SHA256 of server and user.
func CacheDir(stateDir, serverURL, userID string) string {
	hash := sha256.Sum256([]byte(serverURL + "\x00" + userID))
	return filepath.Join(stateDir, "cache", base58.Encode(hash[:]))
}

// IsCachedResponse returns true if resp was served from the cache.
func IsCachedResponse(resp *http.Response) bool {
	return resp.Header.Get(httpcache.XFromCache) == "1"
}
