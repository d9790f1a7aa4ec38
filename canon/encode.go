package canon

import (
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/gowebpki/jcs"
)

// Marshal serializes v as compact JSON text.
//
// The grammar is fixed and must never drift: no insignificant whitespace,
// members in the Value's order, numbers as ECMAScript Number::toString
// (non-finite numbers as null, -0 as 0), and strings escaped exactly as
// JSON.stringify escapes them. Marshal does not reorder anything; call
// Canonicalize first.
//
// A string or key that is not valid UTF-8, or nesting beyond MaxDepth, is a
// KindEncoding error.
func Marshal(v Value) ([]byte, error) {
	e := encoder{strict: true}
	if err := e.value(v, 0); err != nil {
		return nil, err
	}
	return e.buf, nil
}

// MarshalCanonical canonicalizes v and serializes the result.
func MarshalCanonical(v Value) ([]byte, error) {
	return Marshal(Canonicalize(v))
}

type encoder struct {
	buf []byte
	// strict reports unrepresentable values instead of degrading them. The
	// lenient mode backs sort keys and String, which must never fail.
	strict bool
}

func (e *encoder) value(v Value, depth int) error {
	switch v.kind {
	case Null:
		e.buf = append(e.buf, "null"...)
	case Bool:
		e.buf = strconv.AppendBool(e.buf, v.boolean)
	case Number:
		return e.number(v.number)
	case String:
		return e.string(v.str, "CANON-ENC-001")
	case Array:
		if e.strict && depth+1 > MaxDepth {
			return newError(KindEncoding, "CANON-ENC-003", "nesting exceeds "+strconv.Itoa(MaxDepth)+" levels")
		}
		e.buf = append(e.buf, '[')
		for i, elem := range v.elems {
			if i > 0 {
				e.buf = append(e.buf, ',')
			}
			if err := e.value(elem, depth+1); err != nil {
				return err
			}
		}
		e.buf = append(e.buf, ']')
	case Object:
		if e.strict && depth+1 > MaxDepth {
			return newError(KindEncoding, "CANON-ENC-003", "nesting exceeds "+strconv.Itoa(MaxDepth)+" levels")
		}
		e.buf = append(e.buf, '{')
		for i, m := range v.members {
			if i > 0 {
				e.buf = append(e.buf, ',')
			}
			if err := e.string(m.Key, "CANON-ENC-002"); err != nil {
				return err
			}
			e.buf = append(e.buf, ':')
			if err := e.value(m.Value, depth+1); err != nil {
				return err
			}
		}
		e.buf = append(e.buf, '}')
	default:
		if e.strict {
			return newError(KindEncoding, "CANON-ENC-004", "unknown value kind "+v.kind.String())
		}
		e.buf = append(e.buf, "null"...)
	}
	return nil
}

func (e *encoder) number(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		e.buf = append(e.buf, "null"...)
		return nil
	}
	s, err := jcs.NumberToJSON(f)
	if err != nil {
		if e.strict {
			return wrapError(KindEncoding, "CANON-ENC-005", "unrepresentable number", err)
		}
		s = "null"
	}
	e.buf = append(e.buf, s...)
	return nil
}

const hexDigits = "0123456789abcdef"

func (e *encoder) string(s string, ruleID string) error {
	if e.strict && !utf8.ValidString(s) {
		return newError(KindEncoding, ruleID, "string is not valid UTF-8")
	}
	e.buf = append(e.buf, '"')
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			switch c {
			case '"':
				e.buf = append(e.buf, '\\', '"')
			case '\\':
				e.buf = append(e.buf, '\\', '\\')
			case '\b':
				e.buf = append(e.buf, '\\', 'b')
			case '\f':
				e.buf = append(e.buf, '\\', 'f')
			case '\n':
				e.buf = append(e.buf, '\\', 'n')
			case '\r':
				e.buf = append(e.buf, '\\', 'r')
			case '\t':
				e.buf = append(e.buf, '\\', 't')
			default:
				if c < 0x20 {
					e.buf = append(e.buf, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xF])
				} else {
					e.buf = append(e.buf, c)
				}
			}
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			e.buf = append(e.buf, "\uFFFD"...)
		} else {
			e.buf = append(e.buf, s[i:i+size]...)
		}
		i += size
	}
	e.buf = append(e.buf, '"')
	return nil
}
