package verify

import "errors"

// Kind is a stable category for programmatic error handling.
//
// Callers should branch on Kind/RuleID rather than matching error strings.
type Kind string

const (
	// KindValidation rejects a submission before any digest reaches an
	// authority. Never retried.
	KindValidation Kind = "Validation"
	// KindEncoding means a value could not be serialized. It indicates a bug,
	// not bad input.
	KindEncoding Kind = "Encoding"
	// KindLookup means the authority could not answer.
	KindLookup Kind = "Lookup"
)

// Stable rule identifiers.
const (
	RuleEmptyDigest     = "VERIFY-VAL-001"
	RuleMalformedDigest = "VERIFY-VAL-002"
	RuleEmptyContent    = "VERIFY-VAL-003"
	RuleContentEncoding = "VERIFY-VAL-004"
	RuleContentTooDeep  = "VERIFY-VAL-005"
	RuleMalformedCID    = "VERIFY-VAL-006"
	RuleUnknownMode     = "VERIFY-VAL-007"
	RuleUnstructured    = "VERIFY-VAL-008"
	RuleAlreadyResolved = "VERIFY-VAL-009"
	RuleEncoding        = "VERIFY-ENC-001"
	RuleLookup          = "VERIFY-LOOKUP-001"
	RuleNoAuthority     = "VERIFY-LOOKUP-002"
)

// Error is the package's structured error type.
//
// Message is intended for humans; do not match on it.
type Error struct {
	Kind    Kind
	RuleID  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func newError(kind Kind, ruleID, msg string) error {
	return &Error{Kind: kind, RuleID: ruleID, Message: msg}
}

func wrapError(kind Kind, ruleID, msg string, cause error) error {
	if cause == nil {
		return newError(kind, ruleID, msg)
	}
	return &Error{Kind: kind, RuleID: ruleID, Message: msg, Cause: cause}
}

// IsKind reports whether err is (or wraps) a *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// RuleID returns the stable RuleID for a structured error, or "" if unknown.
func RuleID(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.RuleID
}

// LookupError builds a KindLookup error. Authority implementations use it to
// pass the remote's own message through to callers.
func LookupError(msg string, cause error) error {
	return wrapError(KindLookup, RuleLookup, msg, cause)
}
