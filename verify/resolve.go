package verify

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/adaverc/adaforms-demo-api/canon"
	"github.com/adaverc/adaforms-demo-api/compliance"
	"github.com/adaverc/adaforms-demo-api/digest"
)

// Mode tells the dispatcher how to read a submission.
type Mode string

const (
	// ModeDigest takes the input verbatim as a 64-character lowercase hex digest.
	ModeDigest Mode = "digest"
	// ModeContent canonicalizes and hashes the input.
	ModeContent Mode = "content"
	// ModeCID takes a CIDv1 (raw codec, sha2-256) and extracts its digest.
	ModeCID Mode = "cid"
)

// ParseMode accepts "digest" (and its older name "hash"), "content" and "cid".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "digest", "hash":
		return ModeDigest, nil
	case "content":
		return ModeContent, nil
	case "cid":
		return ModeCID, nil
	default:
		return "", newError(KindValidation, RuleUnknownMode, fmt.Sprintf("unknown input mode %q", s))
	}
}

// Request is one submission. The caller picks the mode explicitly.
type Request struct {
	Mode  Mode
	Input string
}

// Resolution is what the dispatcher hands to an authority.
type Resolution struct {
	Mode   Mode
	Digest digest.Digest
	// Canonical holds the serialized canonical form in content mode.
	Canonical []byte
	// Structured is false when content mode fell back to plain text.
	Structured bool
}

// Options adjusts how content is accepted.
//
// Default behavior is Permissive when Options{} is used.
type Options struct {
	Compliance compliance.ComplianceMode
}

// Resolve turns a submission into a digest, or a KindValidation error that
// must not be sent anywhere. A KindEncoding error signals a bug.
func Resolve(req Request) (Resolution, error) {
	return ResolveWithOptions(req, Options{})
}

// ResolveWithOptions is Resolve with an explicit compliance mode.
func ResolveWithOptions(req Request, opts Options) (Resolution, error) {
	switch req.Mode {
	case ModeDigest:
		return resolveDigest(req.Input)
	case ModeCID:
		return resolveCID(req.Input)
	case ModeContent:
		return resolveContent(req.Input, opts)
	default:
		return Resolution{}, newError(KindValidation, RuleUnknownMode, fmt.Sprintf("unknown input mode %q", req.Mode))
	}
}

func resolveDigest(input string) (Resolution, error) {
	d, err := digest.Parse(input)
	if errors.Is(err, digest.ErrEmpty) {
		return Resolution{}, wrapError(KindValidation, RuleEmptyDigest, "please enter a digest to verify", err)
	}
	if err != nil {
		return Resolution{}, wrapError(KindValidation, RuleMalformedDigest,
			"digest must be exactly 64 lowercase hexadecimal characters", err)
	}
	return Resolution{Mode: ModeDigest, Digest: d}, nil
}

func resolveCID(input string) (Resolution, error) {
	d, err := digest.ParseCID(input)
	if errors.Is(err, digest.ErrEmpty) {
		return Resolution{}, wrapError(KindValidation, RuleEmptyDigest, "please enter a CID to verify", err)
	}
	if err != nil {
		return Resolution{}, wrapError(KindValidation, RuleMalformedCID,
			"CID must be a CIDv1 with the raw codec and a sha2-256 multihash", err)
	}
	return Resolution{Mode: ModeCID, Digest: d}, nil
}

func resolveContent(input string, opts Options) (Resolution, error) {
	if !utf8.ValidString(input) {
		return Resolution{}, newError(KindValidation, RuleContentEncoding, "content is not valid UTF-8")
	}
	if canon.TrimContent(input) == "" {
		return Resolution{}, newError(KindValidation, RuleEmptyContent, "please enter content to hash and verify")
	}
	v, structured, err := canon.ParseContent(input)
	if err != nil {
		return Resolution{}, wrapError(KindValidation, RuleContentTooDeep,
			fmt.Sprintf("content nests deeper than %d levels", canon.MaxDepth), err)
	}
	if !structured && opts.Compliance == compliance.Strict {
		return Resolution{}, newError(KindValidation, RuleUnstructured, "strict mode: content is not JSON")
	}
	d, b, err := digest.FromValue(v)
	if err != nil {
		return Resolution{}, wrapError(KindEncoding, RuleEncoding, "failed to generate digest from content", err)
	}
	return Resolution{Mode: ModeContent, Digest: d, Canonical: b, Structured: structured}, nil
}

// State is the dispatcher state of one Submission.
type State string

const (
	StateAwaitingInput State = "AwaitingInput"
	StateResolved      State = "Resolved"
)

// Submission tracks a single submission through the dispatcher. It moves
// from StateAwaitingInput to StateResolved exactly once, whether the outcome
// is a Resolution or a validation error. It is not safe for concurrent use.
type Submission struct {
	opts  Options
	state State
	res   Resolution
	err   error
}

// NewSubmission returns a submission awaiting input.
func NewSubmission(opts Options) *Submission {
	return &Submission{opts: opts, state: StateAwaitingInput}
}

func (s *Submission) State() State { return s.state }

// Submit resolves req. A second call fails without touching the outcome.
func (s *Submission) Submit(req Request) (Resolution, error) {
	if s.state == StateResolved {
		return Resolution{}, newError(KindValidation, RuleAlreadyResolved, "submission already resolved")
	}
	s.res, s.err = ResolveWithOptions(req, s.opts)
	s.state = StateResolved
	return s.res, s.err
}

// Outcome returns the result of the one transition.
func (s *Submission) Outcome() (Resolution, error) { return s.res, s.err }
