package util

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Key returns the storage key for a memoized value: <kind>:<ns>:<xxhash64(input) as 16 hex chars>.
func Key(kind, ns string, input []byte) string {
	return fmt.Sprintf("%s:%s:%016x", kind, ns, xxhash.Sum64(input))
}

// Fingerprint hashes parts into a single value. Parts are separated by a NUL
// byte so ("ab","c") and ("a","bc") differ.
func Fingerprint(parts ...string) uint64 {
	d := xxhash.New()
	for _, p := range parts {
		_, _ = d.WriteString(p)
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}
