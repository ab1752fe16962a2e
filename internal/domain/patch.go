package domain

import "strconv"

// A patch frame is a JSON array of path segments followed by a value:
// ["groups", "", "config", "paused", false] sets
// doc.groups[""].config.paused = false.
//
// ApplyPatch navigates doc along the segments and sets the value at the
// final one, copying every object or array it descends through so the
// previous document stays valid for anyone still holding it. Intermediate
// object fields that are absent or null are created as empty objects.
// Array segments must name an existing index.
//
// The whole patch either applies or it does not: on any type mismatch or
// out-of-range index the original document is returned with ok=false and
// nothing is mutated.
func ApplyPatch(doc Value, frame Value) (Value, bool) {
	if frame.Kind() != Array || frame.Len() < 2 {
		return doc, false
	}
	segs := frame.Items()[:frame.Len()-1]
	val := frame.Index(frame.Len() - 1)

	root := doc
	if root.IsUndefined() || root.Kind() == Null {
		root = NewObject(nil)
	}
	applied, ok := setPath(root, segs, val)
	if !ok {
		return doc, false
	}
	return applied, true
}

// setPath returns a copy of node with the value set at the path.
func setPath(node Value, segs []Value, val Value) (Value, bool) {
	seg := segs[0]
	last := len(segs) == 1

	switch node.Kind() {
	case Object, Null, Undefined:
		key, ok := objectKey(seg)
		if !ok {
			return Value{}, false
		}
		fields := make(map[string]Value, node.Len()+1)
		for _, k := range node.Keys() {
			fields[k] = node.Field(k)
		}
		if last {
			fields[key] = val
			return NewObject(fields), true
		}
		updated, ok := setPath(fields[key], segs[1:], val)
		if !ok {
			return Value{}, false
		}
		fields[key] = updated
		return NewObject(fields), true

	case Array:
		idx, ok := arrayIndex(seg)
		if !ok || idx < 0 || idx >= node.Len() {
			return Value{}, false
		}
		items := make([]Value, node.Len())
		copy(items, node.Items())
		if last {
			items[idx] = val
			return NewArray(items), true
		}
		updated, ok := setPath(items[idx], segs[1:], val)
		if !ok {
			return Value{}, false
		}
		items[idx] = updated
		return NewArray(items), true

	default:
		// Scalar in the middle of the path.
		return Value{}, false
	}
}

func objectKey(seg Value) (string, bool) {
	switch seg.Kind() {
	case String:
		return seg.StringOr(""), true
	case Number:
		n := seg.FloatOr(0)
		if n == float64(int64(n)) {
			return strconv.FormatInt(int64(n), 10), true
		}
		return strconv.FormatFloat(n, 'g', -1, 64), true
	default:
		return "", false
	}
}

func arrayIndex(seg Value) (int, bool) {
	switch seg.Kind() {
	case Number:
		n := seg.FloatOr(0)
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case String:
		i, err := strconv.Atoi(seg.StringOr(""))
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}
