// Package export renders scanned schema trees as OpenAPI component schemas.
// The engine's category maps translate directly: records become object
// schemas, arrays become item schemas (oneOf across variants), scalar tag
// sets become type/format pairs, and a polymorphic field becomes a oneOf
// across its categories.
package export

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/docsift/docsift/docschema"
)

// Doc wraps every collection's schema into one OpenAPI document under
// components/schemas, keyed by collection name.
func Doc(title string, trees map[string]*docschema.Tree) *openapi3.T {
	schemas := make(openapi3.Schemas, len(trees))
	for name, tree := range trees {
		schemas[name] = Collection(tree).NewRef()
	}

	return &openapi3.T{
		OpenAPI: "3.0.0",
		Info: &openapi3.Info{
			Title:   title,
			Version: "0.0.1",
		},
		Paths:      openapi3.Paths{},
		Components: &openapi3.Components{Schemas: schemas},
	}
}

// Collection renders one collection's tree as an object schema.
func Collection(t *docschema.Tree) *openapi3.Schema {
	return recordSchema(t.Fields())
}

func recordSchema(children map[string]docschema.CategoryMap) *openapi3.Schema {
	ps := make(openapi3.Schemas, len(children))
	for key, cm := range children {
		ps[key] = fieldSchema(cm).NewRef()
	}
	return &openapi3.Schema{
		Type:       openapi3.TypeObject,
		Properties: ps,
	}
}

// fieldSchema renders one field's category map. Iteration runs in fixed
// category order so the document is stable across runs.
func fieldSchema(cm docschema.CategoryMap) *openapi3.Schema {
	var alts []*openapi3.Schema
	for _, cat := range []docschema.Category{docschema.CategoryRecord, docschema.CategoryArray, docschema.CategoryScalar} {
		if n, ok := cm[cat]; ok {
			alts = append(alts, nodeSchema(n))
		}
	}
	return oneOf(alts)
}

func nodeSchema(n docschema.Node) *openapi3.Schema {
	switch n.Kind() {
	case docschema.CategoryRecord:
		return recordSchema(n.AsRecord().Children)
	case docschema.CategoryArray:
		return arraySchema(n.AsArray())
	case docschema.CategoryScalar:
		return scalarSchema(n.AsScalar())
	}
	panic("unknown node kind")
}

func arraySchema(n *docschema.ArrayNode) *openapi3.Schema {
	alts := make([]*openapi3.Schema, len(n.Variants))
	for i, v := range n.Variants {
		alts[i] = nodeSchema(v)
	}

	item := oneOf(alts)
	sch := &openapi3.Schema{Type: openapi3.TypeArray}
	if item != nil {
		sch.Items = item.NewRef()
	}
	return sch
}

// scalarSchema folds the observed tags into type/format pairs. NoneType does
// not get its own alternative; it marks the schema nullable instead.
func scalarSchema(n *docschema.ScalarNode) *openapi3.Schema {
	nullable := false
	var alts []*openapi3.Schema
	for _, tag := range n.Types {
		if tag == docschema.TypeNull {
			nullable = true
			continue
		}
		alts = append(alts, tagSchema(tag))
	}

	sch := oneOf(alts)
	if sch == nil {
		// Only nulls were ever observed for this path.
		return &openapi3.Schema{Nullable: true}
	}
	sch.Nullable = nullable
	return sch
}

func tagSchema(tag docschema.TypeTag) *openapi3.Schema {
	switch tag {
	case docschema.TypeInt:
		return &openapi3.Schema{Type: openapi3.TypeInteger}
	case docschema.TypeFloat:
		return &openapi3.Schema{Type: openapi3.TypeNumber}
	case docschema.TypeBool:
		return &openapi3.Schema{Type: openapi3.TypeBoolean}
	case docschema.TypeString:
		return &openapi3.Schema{Type: openapi3.TypeString}
	case docschema.TypeDateTime:
		return &openapi3.Schema{Type: openapi3.TypeString, Format: "date-time"}
	case docschema.TypeObjectID:
		return &openapi3.Schema{Type: openapi3.TypeString, Format: "objectid"}
	case docschema.TypeBinary:
		return &openapi3.Schema{Type: openapi3.TypeString, Format: "byte"}
	case docschema.TypeDecimal:
		return &openapi3.Schema{Type: openapi3.TypeString, Format: "decimal"}
	case docschema.TypeTimestamp:
		return &openapi3.Schema{Type: openapi3.TypeString, Format: "mongodb-timestamp"}
	case docschema.TypeRegex:
		return &openapi3.Schema{Type: openapi3.TypeString, Format: "regex"}
	}
	return &openapi3.Schema{Type: openapi3.TypeString}
}

func oneOf(alts []*openapi3.Schema) *openapi3.Schema {
	switch len(alts) {
	case 0:
		return nil
	case 1:
		return alts[0]
	}

	refs := make(openapi3.SchemaRefs, len(alts))
	for i, a := range alts {
		refs[i] = a.NewRef()
	}
	return &openapi3.Schema{OneOf: refs}
}
