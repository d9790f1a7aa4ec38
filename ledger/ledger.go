// Package ledger defines the read-only store an authority consults to decide
// whether a digest was registered.
//
// Registration is out of scope: no Ledger in this repository writes.
package ledger

import (
	"context"

	"github.com/adaverc/adaforms-demo-api/digest"
	"github.com/adaverc/adaforms-demo-api/model"
)

// Ledger looks up registered digests.
//
// Contract:
// - Lookup MUST return ErrNotFound when the digest is absent.
// - A returned record's Digest MUST equal the requested digest (otherwise
//   ErrDigestMismatch).
// - Records are immutable once registered.
// - Implementations MUST be safe for concurrent use.
type Ledger interface {
	Lookup(ctx context.Context, d digest.Digest) (model.Record, error)
}

// CheckRecord enforces the record/digest binding on a value read from a
// backend.
func CheckRecord(d digest.Digest, rec model.Record) error {
	if rec.Digest != d.String() {
		return ErrDigestMismatch
	}
	return nil
}
