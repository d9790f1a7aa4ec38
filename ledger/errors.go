package ledger

import "errors"

var (
	ErrNotFound       = errors.New("ledger: not found")
	ErrInvalidDigest  = errors.New("ledger: invalid digest")
	ErrDigestMismatch = errors.New("ledger: digest mismatch")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
