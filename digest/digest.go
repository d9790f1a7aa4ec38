// Package digest turns canonical values into fixed 256-bit fingerprints.
//
// The hash input is the canonical serialization produced by package canon.
// Algorithm and Version name the binding between registered digests and this
// engine; neither may change without a new Version.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ipfs/go-cid"

	"github.com/adaverc/adaforms-demo-api/canon"
	"github.com/adaverc/adaforms-demo-api/cidutil"
)

const (
	Algorithm = "sha256"
	Version   = 1

	// Size is the digest length in bytes.
	Size = sha256.Size
	// HexLen is the length of the external hex form.
	HexLen = 2 * Size
)

var (
	ErrEmpty     = errors.New("digest: empty")
	ErrMalformed = errors.New("digest: malformed")
)

// Digest is a SHA-256 fingerprint. Values come from Sum, FromValue, Parse or
// ParseCID; the zero Digest is never a valid result.
type Digest [Size]byte

// Sum hashes canonical bytes.
func Sum(canonical []byte) Digest {
	return Digest(sha256.Sum256(canonical))
}

// FromValue canonicalizes v, serializes it and hashes the result. The
// canonical bytes are returned alongside the digest.
//
// The only possible error is a *canon.Error of KindEncoding.
func FromValue(v canon.Value) (Digest, []byte, error) {
	b, err := canon.MarshalCanonical(v)
	if err != nil {
		return Digest{}, nil, err
	}
	return Sum(b), b, nil
}

// Parse validates a caller-supplied digest. The input is used verbatim: it
// must be exactly 64 lowercase hex characters, without surrounding space.
func Parse(s string) (Digest, error) {
	var d Digest
	if s == "" {
		return d, ErrEmpty
	}
	if len(s) != HexLen {
		return d, fmt.Errorf("%w: want %d hex characters, got %d", ErrMalformed, HexLen, len(s))
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return d, fmt.Errorf("%w: invalid character %q at offset %d", ErrMalformed, c, i)
		}
	}
	if _, err := hex.Decode(d[:], []byte(s)); err != nil {
		return Digest{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return d, nil
}

// Valid reports whether s is a well-formed digest string.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// String returns the 64-character lowercase hex form.
func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// IsZero reports whether d is the zero value.
func (d Digest) IsZero() bool { return d == Digest{} }

func (d Digest) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Digest) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// CID projects d as a CIDv1 with the raw codec and a sha2-256 multihash. It
// equals the CID of the canonical bytes d was computed from.
func (d Digest) CID() cid.Cid {
	id, err := cidutil.FromSHA256(d)
	if err != nil {
		// multihash.Encode only fails for unknown codes.
		return cid.Undef
	}
	return id
}

// ParseCID accepts a CIDv1 (raw, sha2-256) and returns the digest it carries.
func ParseCID(s string) (Digest, error) {
	if s == "" {
		return Digest{}, ErrEmpty
	}
	sum, err := cidutil.ParseSHA256(s)
	if err != nil {
		return Digest{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return Digest(sum), nil
}
