package shared

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// RowVersionSize is the length in bytes of a generated row-version token.
const RowVersionSize = 16

// RowVersion is an opaque, server-generated token attached to every mutable
// row. A successful write always produces a new token; clients echo the last
// token they observed so conflicting writes can be detected. The value has
// no meaning beyond byte equality.
type RowVersion []byte

// NewRowVersion generates a fresh random token
func NewRowVersion() RowVersion {
	v := make(RowVersion, RowVersionSize)
	if _, err := rand.Read(v); err != nil {
		// crypto/rand never fails on supported platforms
		panic(fmt.Sprintf("rowversion: %v", err))
	}
	return v
}

// Equal reports whether two tokens are byte-for-byte identical
func (v RowVersion) Equal(other RowVersion) bool {
	return bytes.Equal(v, other)
}

// IsZero reports whether the token is absent
func (v RowVersion) IsZero() bool {
	return len(v) == 0
}

// Encode renders the token in a transport-safe text encoding
func (v RowVersion) Encode() string {
	return base64.StdEncoding.EncodeToString(v)
}

// String implements fmt.Stringer using the transport encoding
func (v RowVersion) String() string {
	return v.Encode()
}

// DecodeRowVersion parses a token from its transport encoding. A malformed
// value is a client error distinct from a token mismatch.
func DecodeRowVersion(s string) (RowVersion, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("malformed row version %q: %w", s, err)
	}
	return RowVersion(b), nil
}
