package schemaserver

import (
	"fmt"
	"log/slog"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/negroni"
)

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/healthz", s.handleHealthz()).Methods("GET")
	s.router.HandleFunc("/collections", s.handleGetCollections()).Methods("GET")
	s.router.HandleFunc("/collections/{name}/schema", s.handleGetSchema()).Methods("GET")
	s.router.HandleFunc("/collections/{name}/openapi", s.handleGetOpenAPI()).Methods("GET")
	s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods("GET")
	s.router.Use(logMiddleware)
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := negroni.NewResponseWriter(w)
		next.ServeHTTP(ww, r)
		slog.Info("request",
			"method", r.Method,
			"uri", r.RequestURI,
			"status", ww.Status())
	})
}

func (*Server) handleHealthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "ok")
	}
}

func (s *Server) handleGetCollections() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.provider.Collections())
	}
}

func (s *Server) handleGetSchema() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["name"]
		schema, ok := s.provider.Schema(name)
		if !ok {
			http.Error(w, fmt.Sprintf("no schema for collection %q", name), http.StatusNotFound)
			return
		}
		writeJSON(w, schema)
	}
}

func (s *Server) handleGetOpenAPI() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["name"]
		schema, ok := s.provider.OpenAPI(name)
		if !ok {
			http.Error(w, fmt.Sprintf("no schema for collection %q", name), http.StatusNotFound)
			return
		}
		writeJSON(w, schema)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("could not encode response", "err", err)
	}
}
