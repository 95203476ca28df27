package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Fingerprint derives the cache key for a request. The digest covers
// the API name, the endpoint, and the request parameters in sorted
// order, so identical requests always resolve to the same key
// regardless of parameter iteration order.
func Fingerprint(api, endpoint string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(api)
	b.WriteByte(0)
	b.WriteString(endpoint)
	for _, k := range keys {
		b.WriteByte(0)
		fmt.Fprintf(&b, "%s=%s", k, params[k])
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
