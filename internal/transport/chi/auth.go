package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// apiKeyHeader carries the key for storefront widgets that cannot set Authorization.
const apiKeyHeader = "X-API-Key"

// publicPaths stay reachable for health checks and scrapers when auth is on.
var publicPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

type keySet [][]byte

func newKeySet(apiKeys []string) keySet {
	keys := make(keySet, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, []byte(k))
		}
	}
	return keys
}

// contains compares against every key in constant time.
func (ks keySet) contains(token string) bool {
	found := 0
	for _, k := range ks {
		found |= subtle.ConstantTimeCompare(k, []byte(token))
	}
	return found == 1
}

// BearerAuthMiddleware checks the API key sent as "Authorization: Bearer <key>" or in
// X-API-Key. With no configured keys it passes every request through.
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	keys := newKeySet(apiKeys)

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := publicPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			token, msg := requestToken(r)
			if msg == "" && !keys.contains(token) {
				msg = "invalid api key"
			}
			if msg != "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="storeqa"`)
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, msg)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// requestToken extracts the key, or returns a message describing why it is missing.
func requestToken(r *http.Request) (token, msg string) {
	if key := r.Header.Get(apiKeyHeader); key != "" {
		return key, ""
	}

	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", "missing authorization header"
	}
	scheme, token, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", "authorization header must use Bearer scheme"
	}
	return strings.TrimSpace(token), ""
}
