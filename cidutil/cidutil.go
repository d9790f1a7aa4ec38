package cidutil

import (
	"errors"
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// SHA256Size is the digest length carried by a sha2-256 multihash.
const SHA256Size = 32

var ErrUnsupportedCID = errors.New("cidutil: unsupported cid")

// CIDv1RawSHA256CID returns a CIDv1 (raw + sha2-256) derived from data.
func CIDv1RawSHA256CID(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// FromSHA256 wraps an already computed sha2-256 digest as a CIDv1 with the
// "raw" multicodec. The result equals CIDv1RawSHA256CID of the hashed bytes.
func FromSHA256(sum [SHA256Size]byte) (cid.Cid, error) {
	mh, err := multihash.Encode(sum[:], multihash.SHA2_256)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, mh), nil
}

// ToSHA256 extracts the sha2-256 digest from a CIDv1 raw CID.
//
// Other versions, codecs and hash functions are rejected: the digest they
// carry is not comparable with one computed over canonical bytes.
func ToSHA256(id cid.Cid) ([SHA256Size]byte, error) {
	var out [SHA256Size]byte
	if !id.Defined() {
		return out, fmt.Errorf("%w: undefined", ErrUnsupportedCID)
	}
	prefix := id.Prefix()
	if prefix.Version != 1 {
		return out, fmt.Errorf("%w: version %d", ErrUnsupportedCID, prefix.Version)
	}
	if prefix.Codec != cid.Raw {
		return out, fmt.Errorf("%w: codec 0x%x is not raw", ErrUnsupportedCID, prefix.Codec)
	}
	decoded, err := multihash.Decode(id.Hash())
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrUnsupportedCID, err)
	}
	if decoded.Code != multihash.SHA2_256 || len(decoded.Digest) != SHA256Size {
		return out, fmt.Errorf("%w: multihash %s is not sha2-256", ErrUnsupportedCID, decoded.Name)
	}
	copy(out[:], decoded.Digest)
	return out, nil
}

// ParseSHA256 decodes a CID string and extracts its sha2-256 digest.
func ParseSHA256(s string) ([SHA256Size]byte, error) {
	id, err := cid.Decode(s)
	if err != nil {
		return [SHA256Size]byte{}, fmt.Errorf("%w: %v", ErrUnsupportedCID, err)
	}
	return ToSHA256(id)
}
