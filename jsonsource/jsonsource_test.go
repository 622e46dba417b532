package jsonsource

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/docsift/docsift/scanner"
)

func writeDump(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func collect(t *testing.T, d *Dir, collection string, s scanner.Sampling) []map[string]any {
	t.Helper()
	var docs []map[string]any
	err := d.Documents(context.Background(), collection, s, func(doc map[string]any) error {
		docs = append(docs, doc)
		return nil
	})
	require.NoError(t, err)
	return docs
}

func TestCollections(t *testing.T) {
	dir := t.TempDir()
	writeDump(t, dir, "users.json", `{"a": 1}`)
	writeDump(t, dir, "orders.ndjson", `{"b": 2}`)
	writeDump(t, dir, "notes.txt", "not a dump")

	d, err := Open(dir)
	require.NoError(t, err)

	names, err := d.Collections(context.Background())
	require.NoError(t, err)
	assert.Equal(t, names, []string{"orders", "users"})
}

func TestOpenRejectsFiles(t *testing.T) {
	dir := t.TempDir()
	writeDump(t, dir, "users.json", `{}`)

	_, err := Open(filepath.Join(dir, "users.json"))
	assert.Error(t, err)
}

func TestDocumentsLineDelimited(t *testing.T) {
	dir := t.TempDir()
	writeDump(t, dir, "users.json", `{"name": "ada", "age": 36}

{"name": "grace", "scores": [1, 2.5]}
`)

	d, err := Open(dir)
	require.NoError(t, err)

	docs := collect(t, d, "users", scanner.Sampling{Stride: 1})
	require.Len(t, docs, 2)
	assert.Equal(t, docs[0], map[string]any{"name": "ada", "age": int64(36)})
	assert.Equal(t, docs[1], map[string]any{"name": "grace", "scores": []any{int64(1), 2.5}})
}

func TestDocumentsJSONArray(t *testing.T) {
	dir := t.TempDir()
	writeDump(t, dir, "users.json", `[
  {"a": 1},
  {"a": 2},
  {"a": 3}
]`)

	d, err := Open(dir)
	require.NoError(t, err)

	docs := collect(t, d, "users", scanner.Sampling{Stride: 1})
	assert.Len(t, docs, 3)
}

func TestDocumentsSampling(t *testing.T) {
	dir := t.TempDir()
	writeDump(t, dir, "n.ndjson", `{"i": 0}
{"i": 1}
{"i": 2}
{"i": 3}
{"i": 4}
{"i": 5}
`)

	d, err := Open(dir)
	require.NoError(t, err)

	docs := collect(t, d, "n", scanner.Sampling{Limit: 4, Stride: 1})
	require.Len(t, docs, 4)
	assert.Equal(t, docs[3], map[string]any{"i": int64(3)})

	docs = collect(t, d, "n", scanner.Sampling{Stride: 3})
	require.Len(t, docs, 2)
	assert.Equal(t, docs[0], map[string]any{"i": int64(0)})
	assert.Equal(t, docs[1], map[string]any{"i": int64(3)})
}

func TestDocumentsExtendedJSON(t *testing.T) {
	dir := t.TempDir()
	writeDump(t, dir, "e.json", `{"_id": {"$oid": "65f2a0d94d2ea93b1c000001"}, "at": {"$date": "2024-03-14T01:59:26Z"}, "n": {"$numberLong": "9007199254740993"}, "meta": {"$oid": "nope", "extra": 1}}`)

	d, err := Open(dir)
	require.NoError(t, err)

	docs := collect(t, d, "e", scanner.Sampling{Stride: 1})
	require.Len(t, docs, 1)

	oid, _ := primitive.ObjectIDFromHex("65f2a0d94d2ea93b1c000001")
	assert.Equal(t, docs[0]["_id"], oid)
	assert.Equal(t, docs[0]["at"], time.Date(2024, 3, 14, 1, 59, 26, 0, time.UTC))
	assert.Equal(t, docs[0]["n"], int64(9007199254740993))

	// Two keys: not an extended JSON wrapper, decodes as a plain object.
	assert.Equal(t, docs[0]["meta"], map[string]any{"$oid": "nope", "extra": int64(1)})
}

func TestDocumentsMissingCollection(t *testing.T) {
	d, err := Open(t.TempDir())
	require.NoError(t, err)

	err = d.Documents(context.Background(), "ghost", scanner.Sampling{Stride: 1}, func(map[string]any) error {
		return nil
	})
	assert.Error(t, err)
}
