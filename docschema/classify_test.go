package docschema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want Category
	}{
		{"map", map[string]any{"a": 1}, CategoryRecord},
		{"bson M", bson.M{"a": 1}, CategoryRecord},
		{"bson D", bson.D{{Key: "a", Value: 1}}, CategoryRecord},
		{"typed map", map[string]int{"a": 1}, CategoryRecord},
		{"slice", []any{1, 2}, CategoryArray},
		{"bson A", bson.A{1, 2}, CategoryArray},
		{"typed slice", []int{1, 2}, CategoryArray},
		{"string is not an array", "hello", CategoryScalar},
		{"empty string", "", CategoryScalar},
		{"bytes are not an array", []byte("hello"), CategoryScalar},
		{"bson binary", primitive.Binary{Data: []byte{1}}, CategoryScalar},
		{"int", 1, CategoryScalar},
		{"float", 1.5, CategoryScalar},
		{"bool", true, CategoryScalar},
		{"nil", nil, CategoryScalar},
		{"object id", primitive.NewObjectID(), CategoryScalar},
		{"datetime", primitive.NewDateTimeFromTime(time.Now()), CategoryScalar},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, Classify(tt.v), tt.want)
		})
	}
}

func TestTypeOf(t *testing.T) {
	oid, _ := primitive.ObjectIDFromHex("65f2a0d94d2ea93b1c000001")
	dec, _ := primitive.ParseDecimal128("1.5")

	tests := []struct {
		name string
		v    any
		want TypeTag
	}{
		{"nil", nil, TypeNull},
		{"bson null", primitive.Null{}, TypeNull},
		{"bson undefined", primitive.Undefined{}, TypeNull},
		{"bool", true, TypeBool},
		{"string", "x", TypeString},
		{"symbol", primitive.Symbol("x"), TypeString},
		{"int", 1, TypeInt},
		{"int32", int32(1), TypeInt},
		{"int64", int64(1), TypeInt},
		{"float64", 1.5, TypeFloat},
		{"datetime", primitive.DateTime(0), TypeDateTime},
		{"time", time.Now(), TypeDateTime},
		{"object id", oid, TypeObjectID},
		{"binary", primitive.Binary{Data: []byte{1}}, TypeBinary},
		{"bytes", []byte{1}, TypeBinary},
		{"decimal", dec, TypeDecimal},
		{"timestamp", primitive.Timestamp{T: 1}, TypeTimestamp},
		{"regex", primitive.Regex{Pattern: "a"}, TypeRegex},
		{"javascript", primitive.JavaScript("1"), TypeJavaScript},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, TypeOf(tt.v), tt.want)
		})
	}
}

func TestTypeOfUnknownTypeFallsBackToGoName(t *testing.T) {
	type odd struct{}
	assert.Equal(t, TypeOf(odd{}), TypeTag("docschema.odd"))
}
