package docschema

// NewNode seeds a node of the given category from the first value observed
// for a (field, category) pair: a one-tag scalar, a record with the value's
// own keys, or an array with one variant per element category present.
func NewNode(cat Category, v any) Node {
	switch cat {
	case CategoryRecord:
		n := &RecordNode{Children: make(map[string]CategoryMap)}
		mergeRecord(n, v)
		return n
	case CategoryArray:
		n := &ArrayNode{}
		mergeArray(n, v)
		return n
	case CategoryScalar:
		return &ScalarNode{Types: []TypeTag{TypeOf(v)}}
	}
	panic("unknown category")
}

// Merge folds one more observed value into n, in place. The value must
// classify to n's own category; Absorb is the dispatcher that guarantees it.
// Merging never removes anything already recorded.
func Merge(n Node, v any) {
	switch n.Kind() {
	case CategoryRecord:
		mergeRecord(n.AsRecord(), v)
	case CategoryArray:
		mergeArray(n.AsArray(), v)
	case CategoryScalar:
		n.AsScalar().addType(TypeOf(v))
	}
}

// Absorb classifies v and folds it into the map: the node already held under
// v's category is updated, or a freshly seeded one is installed. A field seen
// as a scalar in one document and a record in another ends up with both
// categories reported side by side.
func (cm CategoryMap) Absorb(v any) {
	cat := Classify(v)
	if n, ok := cm[cat]; ok {
		Merge(n, v)
		return
	}
	cm[cat] = NewNode(cat, v)
}

func mergeRecord(n *RecordNode, v any) {
	visitFields(v, func(key string, val any) {
		cm, ok := n.Children[key]
		if !ok {
			cm = make(CategoryMap)
			n.Children[key] = cm
		}
		cm.Absorb(val)
	})
}

func mergeArray(n *ArrayNode, v any) {
	visitElems(v, func(val any) {
		cat := Classify(val)
		if existing := n.variant(cat); existing != nil {
			Merge(existing, val)
			return
		}
		n.Variants = append(n.Variants, NewNode(cat, val))
	})
}
