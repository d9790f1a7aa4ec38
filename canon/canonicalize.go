package canon

import "sort"

// Canonicalize returns v restructured so that authoring order no longer
// matters. It never fails and never mutates v.
//
// Children are canonicalized before their container is ordered:
//   - object members are ordered by key in code-point order;
//   - an array of nulls, booleans, numbers and strings is ordered by each
//     element's string form ("null", "true", "10", the string itself);
//   - any other array (one holding an object or an array) is ordered by each
//     element's serialized form, and every element is then read back
//     from that serialized form. An element that cannot be read back stays in
//     the array as the serialized string itself.
//
// Sorting is stable, so equal sort keys keep their relative order.
func Canonicalize(v Value) Value {
	switch v.kind {
	case Object:
		return canonicalObject(v.members)
	case Array:
		return canonicalArray(v.elems)
	default:
		return v
	}
}

func canonicalObject(members []Member) Value {
	out := make([]Member, len(members))
	for i, m := range members {
		out[i] = Member{Key: m.Key, Value: Canonicalize(m.Value)}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return Value{kind: Object, members: out}
}

func canonicalArray(elems []Value) Value {
	out := make([]Value, len(elems))
	for i, e := range elems {
		out[i] = Canonicalize(e)
	}
	if len(out) < 2 {
		return Value{kind: Array, elems: out}
	}
	if allPlainScalars(out) {
		keys := make([]string, len(out))
		for i, e := range out {
			keys[i] = scalarText(e)
		}
		sortByKeys(out, keys)
		return Value{kind: Array, elems: out}
	}
	return Value{kind: Array, elems: reorderBySerializedForm(out)}
}

// allPlainScalars reports whether the array takes the scalar ordering.
func allPlainScalars(elems []Value) bool {
	for _, e := range elems {
		switch e.kind {
		case Null, Bool, Number, String:
		default:
			return false
		}
	}
	return true
}

func reorderBySerializedForm(elems []Value) []Value {
	forms := make([]string, len(elems))
	for i, e := range elems {
		enc := encoder{strict: false}
		_ = enc.value(e, 0)
		forms[i] = string(enc.buf)
	}
	idx := make([]int, len(forms))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return forms[idx[i]] < forms[idx[j]] })

	out := make([]Value, len(idx))
	for i, k := range idx {
		out[i] = reinterpret(forms[k])
	}
	return out
}

// reinterpret reads a serialized element back into a typed value, keeping the
// serialized text as a String when it cannot be read.
func reinterpret(form string) Value {
	v, err := Parse([]byte(form))
	if err != nil {
		return StringValue(form)
	}
	return v
}

func sortByKeys(elems []Value, keys []string) {
	idx := make([]int, len(elems))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return keys[idx[i]] < keys[idx[j]] })
	sorted := make([]Value, len(elems))
	for i, k := range idx {
		sorted[i] = elems[k]
	}
	copy(elems, sorted)
}
