// Package schemaserver exposes inferred schemas over HTTP while or after a
// scan runs.
package schemaserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

// Provider hands the server whatever schema state currently exists. The scan
// result implements it over immutable trees; the capture mode implements it
// with a lock because merging continues while the server runs.
type Provider interface {
	Collections() []string
	Schema(collection string) (map[string]any, bool)
	OpenAPI(collection string) (*openapi3.Schema, bool)
}

type Server struct {
	router   *mux.Router
	provider Provider
	gatherer prometheus.Gatherer
}

func New(p Provider, g prometheus.Gatherer) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		provider: p,
		gatherer: g,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe blocks until the context is canceled or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
