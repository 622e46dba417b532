package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/docsift/docsift/config"
	"github.com/docsift/docsift/docschema"
)

// Session identifies one scan run.
type Session struct {
	ID      uuid.UUID `json:"id"`
	Started time.Time `json:"started"`
}

type Scanner struct {
	src     Source
	cfg     config.Config
	metrics *Metrics
}

func New(src Source, cfg config.Config) *Scanner {
	if cfg.ScanWorkers < 1 {
		cfg.ScanWorkers = 1
	}
	return &Scanner{src: src, cfg: cfg, metrics: NewMetrics()}
}

func (s *Scanner) Metrics() *Metrics {
	return s.metrics
}

// Scan samples every admitted collection and reduces it into a schema tree.
// Collections run concurrently under the worker limit; each collection's tree
// stays confined to its own goroutine until the group is done. Any source
// failure aborts the whole scan and no partial result is returned: a schema
// derived from an arbitrarily truncated sample would be misleading.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	session := Session{ID: uuid.New(), Started: time.Now()}
	slog.Info("scan started", "session", session.ID)

	names, err := s.src.Collections(ctx)
	if err != nil {
		s.metrics.failures.Inc()
		return nil, fmt.Errorf("list collections: %w", err)
	}

	admitted := names[:0:0]
	for _, name := range names {
		if s.cfg.Collections.Allows(name) {
			admitted = append(admitted, name)
		}
	}

	trees := make([]*docschema.Tree, len(admitted))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.ScanWorkers)
	for i, name := range admitted {
		i, name := i, name
		g.Go(func() error {
			tree, err := s.scanCollection(gctx, name)
			if err != nil {
				return fmt.Errorf("scan %s: %w", name, err)
			}
			trees[i] = tree
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.metrics.failures.Inc()
		return nil, err
	}

	res := &Result{Session: session, Trees: make(map[string]*docschema.Tree)}
	for i, name := range admitted {
		if trees[i] == nil {
			continue
		}
		res.Trees[name] = trees[i]
	}

	slog.Info("scan finished",
		"session", session.ID,
		"collections", len(res.Trees),
		"elapsed", time.Since(session.Started))
	return res, nil
}

// scanCollection returns a nil tree for an empty collection; those are
// skipped with a warning rather than reported as empty objects.
func (s *Scanner) scanCollection(ctx context.Context, name string) (*docschema.Tree, error) {
	timer := prometheus.NewTimer(s.metrics.duration)
	defer timer.ObserveDuration()

	sampleSize, stride := s.cfg.SamplingFor(name)
	sampling := Sampling{Limit: sampleSize, Stride: stride}

	tree := docschema.NewTree()
	docs := 0
	err := s.src.Documents(ctx, name, sampling, func(doc map[string]any) error {
		tree.Merge(doc)
		docs++
		s.metrics.documents.WithLabelValues(name).Inc()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if docs == 0 {
		slog.Warn("skipping empty collection", "collection", name)
		return nil, nil
	}

	s.metrics.collections.Inc()
	slog.Debug("collection scanned", "collection", name, "documents", docs, "fields", tree.Len())
	return tree, nil
}

// Result is the outcome of one completed scan. The trees are immutable once
// the scan returns.
type Result struct {
	Session Session
	Trees   map[string]*docschema.Tree
}

// Collections returns the scanned collection names, sorted.
func (r *Result) Collections() []string {
	names := make([]string, 0, len(r.Trees))
	for name := range r.Trees {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Schema renders one collection's serialized schema.
func (r *Result) Schema(collection string) (map[string]any, bool) {
	tree, ok := r.Trees[collection]
	if !ok {
		return nil, false
	}
	return tree.Serialize(), true
}

// Serialize renders the whole result as collection name → serialized schema,
// the shape persisted to the schema file.
func (r *Result) Serialize() map[string]any {
	out := make(map[string]any, len(r.Trees))
	for name, tree := range r.Trees {
		out[name] = tree.Serialize()
	}
	return out
}
