// Package docschema infers structural schemas from samples of semi-structured
// documents. Documents are folded one at a time into a Tree; every field path
// accumulates the categories (record / array / scalar) and concrete scalar
// types observed for it, and the result serializes to a plain nested mapping.
package docschema

// Category is the structural kind of a single observed value.
type Category int

const (
	CategoryRecord Category = 1
	CategoryArray  Category = 2
	CategoryScalar Category = 3
)

// String returns the tag this category serializes as.
func (c Category) String() string {
	switch c {
	case CategoryRecord:
		return "object"
	case CategoryArray:
		return "list"
	case CategoryScalar:
		return "single_type"
	}
	panic("unknown category")
}

// TypeTag identifies a scalar's concrete runtime type in serialized schemas.
type TypeTag string

const (
	TypeInt        TypeTag = "int"
	TypeFloat      TypeTag = "float"
	TypeString     TypeTag = "str"
	TypeBool       TypeTag = "bool"
	TypeNull       TypeTag = "NoneType"
	TypeDateTime   TypeTag = "datetime"
	TypeObjectID   TypeTag = "ObjectId"
	TypeBinary     TypeTag = "binary"
	TypeDecimal    TypeTag = "decimal"
	TypeTimestamp  TypeTag = "timestamp"
	TypeRegex      TypeTag = "regex"
	TypeJavaScript TypeTag = "javascript"
)

// Node accumulates everything observed so far for one field path under one
// category. Exactly one of RecordNode, ArrayNode or ScalarNode backs any Node;
// dispatch switches on Kind, so the mismatched accessors are unreachable.
type Node interface {
	Kind() Category
	AsRecord() *RecordNode
	AsArray() *ArrayNode
	AsScalar() *ScalarNode
}

// CategoryMap holds the nodes recorded for one field, at most one per
// category. A field observed with several shapes across documents keeps them
// all side by side; nothing is ever displaced.
type CategoryMap map[Category]Node

// RecordNode represents an object shape. Children maps every field name ever
// seen to that field's category map; keys are retained permanently.
type RecordNode struct {
	Children map[string]CategoryMap
}

func (n *RecordNode) Kind() Category { return CategoryRecord }

func (n *RecordNode) AsRecord() *RecordNode {
	return n
}

func (n *RecordNode) AsArray() *ArrayNode {
	panic("record is not an array")
}

func (n *RecordNode) AsScalar() *ScalarNode {
	panic("record is not a scalar")
}

// ArrayNode represents an array shape. Variants holds at most one node per
// element category, in the order each category was first encountered; all
// scalar elements collapse into the single scalar variant no matter how many
// distinct scalar types they carry.
type ArrayNode struct {
	Variants []Node
}

func (n *ArrayNode) Kind() Category { return CategoryArray }

func (n *ArrayNode) AsRecord() *RecordNode {
	panic("array is not a record")
}

func (n *ArrayNode) AsArray() *ArrayNode {
	return n
}

func (n *ArrayNode) AsScalar() *ScalarNode {
	panic("array is not a scalar")
}

// variant returns the node absorbing elements of the given category, or nil.
// Linear scan: the list never exceeds one entry per category.
func (n *ArrayNode) variant(cat Category) Node {
	for _, v := range n.Variants {
		if v.Kind() == cat {
			return v
		}
	}
	return nil
}

// ScalarNode records the scalar types observed for one field path. Types
// keeps first-seen order and is never re-sorted.
type ScalarNode struct {
	Types []TypeTag
}

func (n *ScalarNode) Kind() Category { return CategoryScalar }

func (n *ScalarNode) AsRecord() *RecordNode {
	panic("scalar is not a record")
}

func (n *ScalarNode) AsArray() *ArrayNode {
	panic("scalar is not an array")
}

func (n *ScalarNode) AsScalar() *ScalarNode {
	return n
}

// addType appends tag unless it is already present.
func (n *ScalarNode) addType(tag TypeTag) {
	for _, t := range n.Types {
		if t == tag {
			return
		}
	}
	n.Types = append(n.Types, tag)
}
