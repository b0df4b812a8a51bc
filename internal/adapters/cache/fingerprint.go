package cache

import (
	"crypto/md5" //nolint:gosec // key derivation, not security
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// coordPrecision is the number of decimal places kept on floating-point
// parameters. Three decimals is roughly 111 m of latitude, so nearby but
// not identical requests collapse to the same key.
const coordPrecision = 3

// Fingerprint derives the cache key for a canonicalized parameter mapping:
// keys sorted, floats rounded, strings lowercased and trimmed, the whole
// thing hashed to a fixed-length digest under a namespace prefix.
// Identical canonical parameters always yield the identical key.
func Fingerprint(namespace string, params map[string]any) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(canonicalValue(params[k]))
	}

	sum := md5.Sum([]byte(b.String())) //nolint:gosec // key derivation, not security
	return namespace + ":" + hex.EncodeToString(sum[:])
}

func canonicalValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return strings.ToLower(strings.TrimSpace(val))
	case float64:
		return strconv.FormatFloat(roundTo(val, coordPrecision), 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(roundTo(float64(val), coordPrecision), 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow10(places)
	return math.Round(v*scale) / scale
}
