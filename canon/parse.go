package canon

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Parse decodes one JSON text into a Value, keeping object member order.
//
// Numbers become IEEE-754 doubles; magnitudes beyond the double range become
// ±Inf (serialized as null), matching JSON.parse. Duplicate keys keep the
// first position and the last value. Nesting beyond MaxDepth is a KindLimit
// error; any other malformed input is a KindParse error.
func Parse(data []byte) (Value, error) {
	if !utf8.Valid(data) {
		return Value{}, newError(KindParse, "CANON-PARSE-005", "input is not valid UTF-8")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	p := parser{dec: dec}
	v, err := p.value(0)
	if err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return Value{}, newError(KindParse, "CANON-PARSE-002", "unexpected data after JSON value")
	}
	return v, nil
}

// ParseContent interprets user-supplied content.
//
// The text is trimmed of surrounding whitespace (the ECMAScript white space
// and line terminator set, which includes U+FEFF). If the remainder is JSON
// the parsed value is returned with structured=true. Otherwise the whole
// trimmed text becomes a single String value; that fallback is not an error.
//
// Only a KindLimit error is returned, and only for text that is otherwise
// well-formed JSON: deeply nested JSON is rejected rather than silently
// hashed as text. Text that merely opens many brackets is still text.
func ParseContent(text string) (v Value, structured bool, err error) {
	trimmed := TrimContent(text)
	v, err = Parse([]byte(trimmed))
	if err == nil {
		return v, true, nil
	}
	if IsKind(err, KindLimit) && json.Valid([]byte(trimmed)) {
		return Value{}, false, err
	}
	return StringValue(trimmed), false, nil
}

// TrimContent removes leading and trailing ECMAScript white space.
func TrimContent(text string) string {
	return strings.TrimFunc(text, isECMAWhiteSpace)
}

func isECMAWhiteSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', 0x00A0, 0xFEFF, 0x2028, 0x2029:
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

type parser struct {
	dec *json.Decoder
}

func (p *parser) value(depth int) (Value, error) {
	tok, err := p.dec.Token()
	if err != nil {
		return Value{}, syntaxError(err)
	}
	switch t := tok.(type) {
	case json.Delim:
		if depth+1 > MaxDepth {
			return Value{}, errTooDeep()
		}
		switch t {
		case '[':
			return p.array(depth + 1)
		case '{':
			return p.object(depth + 1)
		default:
			return Value{}, newError(KindParse, "CANON-PARSE-001", "unexpected delimiter "+t.String())
		}
	case string:
		return StringValue(t), nil
	case json.Number:
		f, err := parseNumber(t.String())
		if err != nil {
			return Value{}, wrapError(KindParse, "CANON-PARSE-003", "invalid number", err)
		}
		return NumberValue(f), nil
	case bool:
		return BoolValue(t), nil
	case nil:
		return NullValue(), nil
	default:
		return Value{}, newError(KindParse, "CANON-PARSE-001", "unexpected token")
	}
}

func (p *parser) array(depth int) (Value, error) {
	elems := make([]Value, 0)
	for p.dec.More() {
		v, err := p.value(depth)
		if err != nil {
			return Value{}, err
		}
		elems = append(elems, v)
	}
	if err := p.closing(']'); err != nil {
		return Value{}, err
	}
	return Value{kind: Array, elems: elems}, nil
}

func (p *parser) object(depth int) (Value, error) {
	members := make([]Member, 0)
	index := make(map[string]int)
	for p.dec.More() {
		tok, err := p.dec.Token()
		if err != nil {
			return Value{}, syntaxError(err)
		}
		key, ok := tok.(string)
		if !ok {
			return Value{}, newError(KindParse, "CANON-PARSE-001", "object key must be a string")
		}
		v, err := p.value(depth)
		if err != nil {
			return Value{}, err
		}
		if i, dup := index[key]; dup {
			members[i].Value = v
			continue
		}
		index[key] = len(members)
		members = append(members, Member{Key: key, Value: v})
	}
	if err := p.closing('}'); err != nil {
		return Value{}, err
	}
	return Value{kind: Object, members: members}, nil
}

func (p *parser) closing(want json.Delim) error {
	tok, err := p.dec.Token()
	if err != nil {
		return syntaxError(err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return newError(KindParse, "CANON-PARSE-001", "expected "+want.String())
	}
	return nil
}

func parseNumber(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, err
	}
	return f, nil
}

func syntaxError(err error) error {
	if err == io.EOF {
		return newError(KindParse, "CANON-PARSE-001", "unexpected end of JSON input")
	}
	return wrapError(KindParse, "CANON-PARSE-001", "invalid JSON", err)
}

func errTooDeep() error {
	return newError(KindLimit, "CANON-LIMIT-001", "nesting exceeds "+strconv.Itoa(MaxDepth)+" levels")
}
