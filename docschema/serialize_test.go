package docschema

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// One end-to-end reduction over driver-shaped documents, diffed in full.
func TestSerializeDriverDocuments(t *testing.T) {
	tr := NewTree()
	tr.Merge(bson.M{
		"_id":     primitive.NewObjectID(),
		"name":    "ada",
		"age":     int32(36),
		"joined":  primitive.NewDateTimeFromTime(time.Now()),
		"avatar":  primitive.Binary{Data: []byte{0xde, 0xad}},
		"address": bson.M{"city": "london"},
		"tags":    bson.A{"pioneer", "math"},
	})
	tr.Merge(bson.M{
		"_id":     primitive.NewObjectID(),
		"name":    nil,
		"age":     "unknown",
		"address": bson.M{"city": "london", "zip": int64(12345)},
		"tags":    bson.A{bson.M{"label": "legacy"}},
	})

	want := map[string]any{
		"_id":    map[string]any{"single_type": "ObjectId"},
		"name":   map[string]any{"single_type": []string{"str", "NoneType"}},
		"age":    map[string]any{"single_type": []string{"int", "str"}},
		"joined": map[string]any{"single_type": "datetime"},
		"avatar": map[string]any{"single_type": "binary"},
		"address": map[string]any{"object": map[string]any{
			"city": map[string]any{"single_type": "str"},
			"zip":  map[string]any{"single_type": "int"},
		}},
		"tags": map[string]any{"list": []any{
			map[string]any{"single_type": "str"},
			map[string]any{"object": map[string]any{
				"label": map[string]any{"single_type": "str"},
			}},
		}},
	}

	if diff := cmp.Diff(want, tr.Serialize()); diff != "" {
		t.Errorf("serialized schema mismatch (-want +got):\n%s", diff)
	}
}
