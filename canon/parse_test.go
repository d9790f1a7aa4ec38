package canon

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_KeepsMemberOrder(t *testing.T) {
	v := mustParse(t, `{"b":1,"10":2,"a":{"y":true,"x":null}}`)
	assert.Equal(t, []string{"b", "10", "a"}, v.Keys())
	inner, ok := v.Get("a")
	require.True(t, ok)
	assert.Equal(t, []string{"y", "x"}, inner.Keys())
}

func TestParse_DuplicateKeysKeepFirstPositionLastValue(t *testing.T) {
	v := mustParse(t, `{"a":1,"b":2,"a":3}`)
	assert.Equal(t, []string{"a", "b"}, v.Keys())
	a, _ := v.Get("a")
	assert.Equal(t, 3.0, a.Float())
}

func TestParse_Numbers(t *testing.T) {
	v := mustParse(t, `[1.0,-0,1e400,-1e400,1e-400,12345678901234567890]`)
	elems := v.Elems()
	require.Len(t, elems, 6)
	assert.Equal(t, 1.0, elems[0].Float())
	assert.True(t, math.Signbit(elems[1].Float()))
	assert.True(t, math.IsInf(elems[2].Float(), 1))
	assert.True(t, math.IsInf(elems[3].Float(), -1))
	assert.Equal(t, 0.0, elems[4].Float())
	assert.Equal(t, 12345678901234567890.0, elems[5].Float())
}

func TestParse_Scalars(t *testing.T) {
	assert.Equal(t, Null, mustParse(t, `null`).Kind())
	assert.True(t, mustParse(t, ` true `).Bool())
	assert.Equal(t, "hi", mustParse(t, `"hi"`).Str())
	assert.Equal(t, 42.0, mustParse(t, `42`).Float())
}

func TestParse_ErrorTaxonomy(t *testing.T) {
	bad := []string{``, `{`, `[1,]`, `{"a" 1}`, `{not json}`, `1 2`, `{"a":1}x`, `01`, `'single'`, `hello world`}
	for _, in := range bad {
		_, err := Parse([]byte(in))
		require.Error(t, err, "Parse(%q)", in)
		var e *Error
		require.True(t, errors.As(err, &e), "expected *canon.Error for %q, got %T", in, err)
		assert.Equal(t, KindParse, e.Kind, "input %q", in)
		assert.NotEmpty(t, e.RuleID)
	}
}

func TestParse_RejectsInvalidUTF8(t *testing.T) {
	_, err := Parse([]byte{'"', 0xff, '"'})
	require.Error(t, err)
	assert.Equal(t, "CANON-PARSE-005", RuleID(err))
}

func TestParse_DepthLimit(t *testing.T) {
	ok := strings.Repeat("[", MaxDepth) + strings.Repeat("]", MaxDepth)
	_, err := Parse([]byte(ok))
	require.NoError(t, err)

	tooDeep := strings.Repeat("[", MaxDepth+1) + strings.Repeat("]", MaxDepth+1)
	_, err = Parse([]byte(tooDeep))
	require.Error(t, err)
	assert.True(t, IsKind(err, KindLimit))
	assert.Equal(t, "CANON-LIMIT-001", RuleID(err))

	tooDeepObj := strings.Repeat(`{"a":`, MaxDepth+1) + "1" + strings.Repeat("}", MaxDepth+1)
	_, err = Parse([]byte(tooDeepObj))
	assert.True(t, IsKind(err, KindLimit))
}

func TestParseContent_StructuredAndFallback(t *testing.T) {
	v, structured, err := ParseContent("  {\"a\":1}\n")
	require.NoError(t, err)
	assert.True(t, structured)
	assert.Equal(t, Object, v.Kind())

	v, structured, err = ParseContent("  hello world \n")
	require.NoError(t, err)
	assert.False(t, structured)
	assert.Equal(t, String, v.Kind())
	assert.Equal(t, "hello world", v.Str())

	v, structured, err = ParseContent("{not json}")
	require.NoError(t, err)
	assert.False(t, structured)
	assert.Equal(t, "{not json}", v.Str())
}

func TestParseContent_TrimsECMAWhiteSpace(t *testing.T) {
	v, structured, err := ParseContent("\uFEFF\u00A0\u2028 [2,1] \u3000\t")
	require.NoError(t, err)
	assert.True(t, structured)
	assert.Equal(t, 2, v.Len())

	// U+0085 is not ECMAScript white space and survives trimming.
	assert.Equal(t, "\u0085x", TrimContent(" \u0085x "))
}

func TestParseContent_DepthLimitIsNotTextFallback(t *testing.T) {
	tooDeep := strings.Repeat("[", MaxDepth+1) + strings.Repeat("]", MaxDepth+1)
	_, _, err := ParseContent(tooDeep)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindLimit))
}

func TestParseContent_DeepUnbalancedTextFallsBack(t *testing.T) {
	text := strings.Repeat("[", 300) + " not json"
	v, structured, err := ParseContent(text)
	require.NoError(t, err)
	assert.False(t, structured)
	assert.Equal(t, String, v.Kind())
	assert.Equal(t, text, v.Str())

	// Too deep and truncated: not JSON, so hashed as text.
	truncated := strings.Repeat("[", MaxDepth+1) + strings.Repeat("]", MaxDepth)
	v, structured, err = ParseContent(truncated)
	require.NoError(t, err)
	assert.False(t, structured)
	assert.Equal(t, truncated, v.Str())
}

func TestFromAny(t *testing.T) {
	v, err := FromAny(map[string]any{
		"b": []any{3, int64(1), uint8(2)},
		"a": nil,
		"c": map[string]any{"y": "s", "x": true},
		"d": float32(0.5),
	})
	require.NoError(t, err)
	b, err := MarshalCanonical(v)
	require.NoError(t, err)
	assert.Equal(t, `{"a":null,"b":[1,2,3],"c":{"x":true,"y":"s"},"d":0.5}`, string(b))

	_, err = FromAny(struct{}{})
	assert.True(t, IsKind(err, KindParse))
}
