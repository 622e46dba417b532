package jsonsource

import (
	"encoding/base64"
	"strconv"
	"time"

	"github.com/valyala/fastjson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// decodeValue converts a parsed fastjson value into the plain Go shape the
// merge engine consumes: map[string]any for objects, []any for arrays,
// scalars otherwise. Integral numbers come back as int64 so they carry the
// "int" type tag like driver-decoded documents do.
func decodeValue(v *fastjson.Value) any {
	switch v.Type() {
	case fastjson.TypeObject:
		return decodeObject(v)
	case fastjson.TypeArray:
		return decodeArray(v)
	case fastjson.TypeString:
		return string(v.GetStringBytes())
	case fastjson.TypeNumber:
		if i, err := v.Int64(); err == nil {
			return i
		}
		return v.GetFloat64()
	case fastjson.TypeTrue:
		return true
	case fastjson.TypeFalse:
		return false
	case fastjson.TypeNull:
		return nil
	}
	panic("should be unreachable")
}

func decodeObject(v *fastjson.Value) any {
	o, err := v.Object()
	if err != nil {
		return map[string]any{}
	}

	if ext, ok := decodeExtended(o); ok {
		return ext
	}

	m := make(map[string]any, o.Len())
	o.Visit(func(key []byte, val *fastjson.Value) {
		m[string(key)] = decodeValue(val)
	})
	return m
}

func decodeArray(v *fastjson.Value) []any {
	vs := v.GetArray()
	out := make([]any, len(vs))
	for i, e := range vs {
		out[i] = decodeValue(e)
	}
	return out
}

// decodeExtended recognizes the mongoexport extended JSON wrappers so dump
// scans report the same scalar tags as live scans. Anything unrecognized
// falls through and decodes as an ordinary object.
func decodeExtended(o *fastjson.Object) (any, bool) {
	if o.Len() != 1 {
		return nil, false
	}

	var out any
	var ok bool
	o.Visit(func(key []byte, v *fastjson.Value) {
		switch string(key) {
		case "$oid":
			if id, err := primitive.ObjectIDFromHex(string(v.GetStringBytes())); err == nil {
				out, ok = id, true
			}
		case "$date":
			if t, found := decodeDate(v); found {
				out, ok = t, true
			}
		case "$numberInt", "$numberLong":
			if n, err := strconv.ParseInt(string(v.GetStringBytes()), 10, 64); err == nil {
				out, ok = n, true
			}
		case "$numberDouble":
			if f, err := strconv.ParseFloat(string(v.GetStringBytes()), 64); err == nil {
				out, ok = f, true
			}
		case "$numberDecimal":
			if d, err := primitive.ParseDecimal128(string(v.GetStringBytes())); err == nil {
				out, ok = d, true
			}
		case "$binary":
			if bin := v.Get("base64"); bin != nil {
				if bs, err := base64.StdEncoding.DecodeString(string(bin.GetStringBytes())); err == nil {
					out, ok = primitive.Binary{Data: bs}, true
				}
			}
		}
	})
	return out, ok
}

func decodeDate(v *fastjson.Value) (time.Time, bool) {
	switch v.Type() {
	case fastjson.TypeString:
		t, err := time.Parse(time.RFC3339, string(v.GetStringBytes()))
		return t, err == nil
	case fastjson.TypeObject:
		// Canonical form: {"$date": {"$numberLong": "<millis>"}}
		inner := v.Get("$numberLong")
		if inner == nil {
			return time.Time{}, false
		}
		ms, err := strconv.ParseInt(string(inner.GetStringBytes()), 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		return time.UnixMilli(ms).UTC(), true
	}
	return time.Time{}, false
}
