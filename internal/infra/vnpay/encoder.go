package vnpay

import (
	"net/url"
	"sort"
	"strings"
)

// Params is a flat string-keyed parameter set. A key that should be absent
// must not be added at all; a present key with an empty value is still
// serialized as `key=`.
type Params map[string]string

// EncodeParams produces the canonical serialization used for both request
// signing and callback verification: keys sorted ascending byte-wise, keys and
// values percent-encoded with space as %20, joined as k1=v1&k2=v2.
//
// The same logical parameter set always yields a byte-identical string, no
// matter how the caller built the map. The signing input and the redirect URL
// share this one encoding so a self-generated request can never fail its own
// verification.
func EncodeParams(p Params) string {
	if len(p) == 0 {
		return ""
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(escape(k))
		b.WriteByte('=')
		b.WriteString(escape(p[k]))
	}
	return b.String()
}

// escape percent-encodes like a URL query component but with space as %20,
// matching what the gateway signs on its side.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
