package docschema

// Serialize renders the tree as the plain nested mapping persisted to schema
// files: field name → category tag → serialized child. Scalars render as a
// bare tag string when exactly one type was observed, otherwise as a list in
// first-seen order. Array variants render in the order they were created,
// each wrapped in its category tag; without the wrapper a multi-type scalar
// variant and a nested array variant would be indistinguishable in JSON.
func (t *Tree) Serialize() map[string]any {
	return serializeChildren(t.root.Children)
}

// SerializeNode renders a single node; the tree serialization is this applied
// to every field's nodes recursively.
func SerializeNode(n Node) any {
	return serializeNode(n)
}

func serializeChildren(children map[string]CategoryMap) map[string]any {
	out := make(map[string]any, len(children))
	for key, cm := range children {
		m := make(map[string]any, len(cm))
		for cat, n := range cm {
			m[cat.String()] = serializeNode(n)
		}
		out[key] = m
	}
	return out
}

func serializeNode(n Node) any {
	switch n.Kind() {
	case CategoryRecord:
		return serializeChildren(n.AsRecord().Children)
	case CategoryArray:
		vs := n.AsArray().Variants
		out := make([]any, len(vs))
		for i, v := range vs {
			out[i] = map[string]any{v.Kind().String(): serializeNode(v)}
		}
		return out
	case CategoryScalar:
		ts := n.AsScalar().Types
		if len(ts) == 1 {
			return string(ts[0])
		}
		out := make([]string, len(ts))
		for i, tag := range ts {
			out[i] = string(tag)
		}
		return out
	}
	panic("unknown node kind")
}
