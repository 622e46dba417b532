package docschema

import (
	"fmt"
	"reflect"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Classify maps an observed value to its structural category. It is total:
// anything that is not record- or array-shaped is a scalar. Text is always a
// scalar even though it is an iterable character sequence.
func Classify(v any) Category {
	switch v.(type) {
	case bson.M, bson.D, map[string]any:
		return CategoryRecord
	case bson.A, []any:
		return CategoryArray
	case string, []byte, primitive.Binary:
		return CategoryScalar
	case nil:
		return CategoryScalar
	}

	// Hand-built documents occasionally carry concrete map or slice types the
	// switch above does not name; fall back to the reflect kind so those still
	// land in the right category.
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Map:
		return CategoryRecord
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return CategoryScalar
		}
		return CategoryArray
	}
	return CategoryScalar
}

// TypeOf returns the stable tag for a scalar value's concrete runtime type.
// Unknown types fall back to the Go type name so the function stays total.
func TypeOf(v any) TypeTag {
	switch v.(type) {
	case nil, primitive.Null, primitive.Undefined:
		return TypeNull
	case bool:
		return TypeBool
	case string, primitive.Symbol:
		return TypeString
	case int, int32, int64:
		return TypeInt
	case float32, float64:
		return TypeFloat
	case primitive.DateTime, time.Time:
		return TypeDateTime
	case primitive.ObjectID:
		return TypeObjectID
	case primitive.Binary, []byte:
		return TypeBinary
	case primitive.Decimal128:
		return TypeDecimal
	case primitive.Timestamp:
		return TypeTimestamp
	case primitive.Regex:
		return TypeRegex
	case primitive.JavaScript:
		return TypeJavaScript
	}
	return TypeTag(fmt.Sprintf("%T", v))
}

// visitFields yields the key/value pairs of a record-classified value.
func visitFields(v any, visit func(key string, val any)) {
	switch m := v.(type) {
	case bson.M:
		for k, val := range m {
			visit(k, val)
		}
	case map[string]any:
		for k, val := range m {
			visit(k, val)
		}
	case bson.D:
		for _, e := range m {
			visit(e.Key, e.Value)
		}
	default:
		rv := reflect.ValueOf(v)
		for _, k := range rv.MapKeys() {
			visit(fmt.Sprint(k.Interface()), rv.MapIndex(k).Interface())
		}
	}
}

// visitElems yields the elements of an array-classified value in order.
func visitElems(v any, visit func(val any)) {
	switch a := v.(type) {
	case bson.A:
		for _, val := range a {
			visit(val)
		}
	case []any:
		for _, val := range a {
			visit(val)
		}
	default:
		rv := reflect.ValueOf(v)
		for i := 0; i < rv.Len(); i++ {
			visit(rv.Index(i).Interface())
		}
	}
}
