package model

import "time"

// VerifyRequest is the sole payload sent to a verification authority.
//
// Hash is the field name older clients used; servers accept either and
// clients send Digest only.
type VerifyRequest struct {
	Digest string `json:"digest,omitempty"`
	Hash   string `json:"hash,omitempty"`
}

// DigestValue returns Digest, falling back to Hash.
func (r VerifyRequest) DigestValue() string {
	if r.Digest != "" {
		return r.Digest
	}
	return r.Hash
}

// Metadata describes the submission a digest was registered for.
// Timestamp is kept as sent (ISO-8601); use Time to interpret it.
type Metadata struct {
	FormID     string `json:"formId"`
	ResponseID string `json:"responseId"`
	Timestamp  string `json:"timestamp"`
}

// Time parses Timestamp as RFC 3339.
func (m Metadata) Time() (time.Time, error) {
	return parseTime(m.Timestamp)
}

// Result is the authority's verdict for one digest.
type Result struct {
	Verified bool      `json:"verified"`
	Message  string    `json:"message"`
	Metadata *Metadata `json:"metadata,omitempty"`
	StoredAt string    `json:"storedAt,omitempty"`
}

// StoredTime parses StoredAt as RFC 3339. ok is false when StoredAt is absent.
func (r Result) StoredTime() (t time.Time, ok bool, err error) {
	if r.StoredAt == "" {
		return time.Time{}, false, nil
	}
	t, err = parseTime(r.StoredAt)
	return t, err == nil, err
}

// Record is one registered digest as a ledger stores it.
type Record struct {
	Digest   string   `json:"digest"`
	Metadata Metadata `json:"metadata"`
	StoredAt string   `json:"storedAt,omitempty"`
}

// Result projects a found record as a positive verdict.
func (r Record) Result(message string) Result {
	md := r.Metadata
	return Result{
		Verified: true,
		Message:  message,
		Metadata: &md,
		StoredAt: r.StoredAt,
	}
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}
