package docschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func mergeAll(docs ...map[string]any) *Tree {
	t := NewTree()
	for _, d := range docs {
		t.Merge(d)
	}
	return t
}

func TestMergeScalarTypesAccumulate(t *testing.T) {
	tr := mergeAll(
		map[string]any{"a": 1},
		map[string]any{"a": "x"},
	)

	assert.Equal(t, tr.Serialize(), map[string]any{
		"a": map[string]any{"single_type": []string{"int", "str"}},
	})
}

func TestMergeScalarTypeOrderFollowsArrival(t *testing.T) {
	fwd := mergeAll(map[string]any{"a": 1}, map[string]any{"a": "x"})
	rev := mergeAll(map[string]any{"a": "x"}, map[string]any{"a": 1})

	assert.Equal(t, fwd.Serialize()["a"], map[string]any{"single_type": []string{"int", "str"}})
	assert.Equal(t, rev.Serialize()["a"], map[string]any{"single_type": []string{"str", "int"}})
}

func TestMergeRecordsUnionFields(t *testing.T) {
	tr := mergeAll(
		map[string]any{"a": map[string]any{"b": 1}},
		map[string]any{"a": map[string]any{"c": 2}},
	)

	assert.Equal(t, tr.Serialize(), map[string]any{
		"a": map[string]any{"object": map[string]any{
			"b": map[string]any{"single_type": "int"},
			"c": map[string]any{"single_type": "int"},
		}},
	})
}

func TestMergeArrayScalarsCollapseIntoOneVariant(t *testing.T) {
	tr := mergeAll(map[string]any{"a": []any{1, 2, "x"}})

	assert.Equal(t, tr.Serialize(), map[string]any{
		"a": map[string]any{"list": []any{
			map[string]any{"single_type": []string{"int", "str"}},
		}},
	})
}

func TestMergeArrayRecordsCollapseIntoOneVariant(t *testing.T) {
	tr := mergeAll(
		map[string]any{"a": []any{map[string]any{"x": 1}}},
		map[string]any{"a": []any{map[string]any{"x": 2}, map[string]any{"y": 3}}},
	)

	assert.Equal(t, tr.Serialize(), map[string]any{
		"a": map[string]any{"list": []any{
			map[string]any{"object": map[string]any{
				"x": map[string]any{"single_type": "int"},
				"y": map[string]any{"single_type": "int"},
			}},
		}},
	})
}

func TestMergeNullIsADistinctScalarType(t *testing.T) {
	tr := mergeAll(
		map[string]any{"a": nil},
		map[string]any{"a": 5},
	)

	assert.Equal(t, tr.Serialize(), map[string]any{
		"a": map[string]any{"single_type": []string{"NoneType", "int"}},
	})
}

func TestMergeIdempotentUnderDuplicateDocuments(t *testing.T) {
	doc := map[string]any{
		"id":   7,
		"meta": map[string]any{"active": true, "name": "n"},
		"tags": []any{"x", 1, map[string]any{"k": "v"}},
	}

	once := mergeAll(doc)
	twice := mergeAll(doc, doc)

	assert.Equal(t, twice.Serialize(), once.Serialize())
}

func TestMergeRecategorizationKeepsBothCategories(t *testing.T) {
	tr := mergeAll(
		map[string]any{"a": 1},
		map[string]any{"a": map[string]any{"b": 2}},
	)

	assert.Equal(t, tr.Serialize(), map[string]any{
		"a": map[string]any{
			"single_type": "int",
			"object":      map[string]any{"b": map[string]any{"single_type": "int"}},
		},
	})
}

func TestMergeTextFieldStaysScalar(t *testing.T) {
	tr := mergeAll(map[string]any{"s": "hello"})

	assert.Equal(t, tr.Serialize(), map[string]any{
		"s": map[string]any{"single_type": "str"},
	})
}

func TestMergeArrayOfArrays(t *testing.T) {
	tr := mergeAll(map[string]any{"m": []any{[]any{1, 2}, []any{"x"}, 3}})

	assert.Equal(t, tr.Serialize(), map[string]any{
		"m": map[string]any{"list": []any{
			map[string]any{"list": []any{
				map[string]any{"single_type": []string{"int", "str"}},
			}},
			map[string]any{"single_type": "int"},
		}},
	})
}

func TestMergeEmptyArrayKeepsEmptyVariantList(t *testing.T) {
	tr := mergeAll(map[string]any{"a": []any{}})

	assert.Equal(t, tr.Serialize(), map[string]any{
		"a": map[string]any{"list": []any{}},
	})
}

func TestMergeEmptyDocumentIsANoop(t *testing.T) {
	tr := mergeAll(map[string]any{"a": 1}, map[string]any{})

	assert.Equal(t, tr.Len(), 1)
	assert.Equal(t, tr.Serialize(), map[string]any{
		"a": map[string]any{"single_type": "int"},
	})
}

func TestMergeNeverDropsEarlierFields(t *testing.T) {
	tr := mergeAll(
		map[string]any{"a": 1, "b": "x"},
		map[string]any{"c": true},
	)

	got := tr.Serialize()
	assert.Equal(t, len(got), 3)
	assert.Contains(t, got, "a")
	assert.Contains(t, got, "b")
	assert.Contains(t, got, "c")
}

func TestMergeDeepNesting(t *testing.T) {
	tr := mergeAll(map[string]any{
		"a": map[string]any{
			"b": []any{
				map[string]any{"c": []any{nil, 1.5}},
			},
		},
	})

	assert.Equal(t, tr.Serialize(), map[string]any{
		"a": map[string]any{"object": map[string]any{
			"b": map[string]any{"list": []any{
				map[string]any{"object": map[string]any{
					"c": map[string]any{"list": []any{
						map[string]any{"single_type": []string{"NoneType", "float"}},
					}},
				}},
			}},
		}},
	})
}

func TestAbsorbCreatesThenUpdates(t *testing.T) {
	cm := make(CategoryMap)

	cm.Absorb(1)
	n, ok := cm[CategoryScalar]
	assert.True(t, ok)
	assert.Equal(t, n.Kind(), CategoryScalar)
	assert.Equal(t, n.AsScalar().Types, []TypeTag{TypeInt})

	cm.Absorb("x")
	assert.Equal(t, len(cm), 1)
	assert.Equal(t, n.AsScalar().Types, []TypeTag{TypeInt, TypeString})
}

func TestArrayVariantOrderIsCreationOrder(t *testing.T) {
	tr := mergeAll(
		map[string]any{"a": []any{map[string]any{"x": 1}}},
		map[string]any{"a": []any{"s", []any{2}}},
	)

	got := tr.Serialize()["a"].(map[string]any)["list"].([]any)
	assert.Equal(t, len(got), 3)
	assert.Equal(t, got[0], map[string]any{"object": map[string]any{
		"x": map[string]any{"single_type": "int"},
	}})
	assert.Equal(t, got[1], map[string]any{"single_type": "str"})
	assert.Equal(t, got[2], map[string]any{"list": []any{
		map[string]any{"single_type": "int"},
	}})
}
