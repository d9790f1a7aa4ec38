package compliance

import "fmt"

// ComplianceMode selects how aggressively verification rejects ambiguity.
//
// Strict mode prefers explicit failure over silent acceptance: content that
// is not structured data is refused instead of being hashed as plain text.
// Permissive mode follows the registered-digest engine and always produces a
// digest for non-empty content.
type ComplianceMode int

const (
	Permissive ComplianceMode = iota
	Strict
)

func (m ComplianceMode) String() string {
	switch m {
	case Permissive:
		return "permissive"
	case Strict:
		return "strict"
	default:
		return fmt.Sprintf("ComplianceMode(%d)", int(m))
	}
}

// Parse maps "permissive" (or "") and "strict" to a mode.
func Parse(s string) (ComplianceMode, error) {
	switch s {
	case "", "permissive":
		return Permissive, nil
	case "strict":
		return Strict, nil
	default:
		return Permissive, fmt.Errorf("compliance: unknown mode %q", s)
	}
}
