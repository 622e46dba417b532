package schemaserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	schemas map[string]map[string]any
}

func (p stubProvider) Collections() []string {
	names := make([]string, 0, len(p.schemas))
	for name := range p.schemas {
		names = append(names, name)
	}
	return names
}

func (p stubProvider) Schema(name string) (map[string]any, bool) {
	s, ok := p.schemas[name]
	return s, ok
}

func (p stubProvider) OpenAPI(name string) (*openapi3.Schema, bool) {
	if _, ok := p.schemas[name]; !ok {
		return nil, false
	}
	return &openapi3.Schema{Type: openapi3.TypeObject}, true
}

func newTestServer() *Server {
	p := stubProvider{schemas: map[string]map[string]any{
		"users": {"name": map[string]any{"single_type": "str"}},
	}}
	return New(p, prometheus.NewRegistry())
}

func get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	newTestServer().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := get(t, "/healthz")
	assert.Equal(t, rec.Code, http.StatusOK)
}

func TestGetCollections(t *testing.T) {
	rec := get(t, "/collections")
	require.Equal(t, rec.Code, http.StatusOK)

	var names []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &names))
	assert.Equal(t, names, []string{"users"})
}

func TestGetSchema(t *testing.T) {
	rec := get(t, "/collections/users/schema")
	require.Equal(t, rec.Code, http.StatusOK)
	assert.Equal(t, rec.Header().Get("Content-Type"), "application/json")

	var schema map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &schema))
	assert.Equal(t, schema, map[string]any{
		"name": map[string]any{"single_type": "str"},
	})
}

func TestGetSchemaUnknownCollection(t *testing.T) {
	rec := get(t, "/collections/ghost/schema")
	assert.Equal(t, rec.Code, http.StatusNotFound)
}

func TestGetOpenAPI(t *testing.T) {
	rec := get(t, "/collections/users/openapi")
	require.Equal(t, rec.Code, http.StatusOK)
	assert.Contains(t, rec.Body.String(), `"type":"object"`)

	rec = get(t, "/collections/ghost/openapi")
	assert.Equal(t, rec.Code, http.StatusNotFound)
}

func TestMetrics(t *testing.T) {
	rec := get(t, "/metrics")
	assert.Equal(t, rec.Code, http.StatusOK)
}
