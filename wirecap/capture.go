package wirecap

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/docsift/docsift/docschema"
	"github.com/docsift/docsift/export"
)

// Capture owns the run loop of a passive capture session and the per-
// namespace schema trees it grows. All merging happens on the run loop
// goroutine; the lock only exists so the HTTP surface can snapshot state
// while capture continues. Sampling knobs do not apply here: every document
// observed on the wire merges.
type Capture struct {
	source  PacketSource
	metrics *metrics

	mu    sync.Mutex
	trees map[string]*docschema.Tree
}

func New(source PacketSource) *Capture {
	return &Capture{
		source:  source,
		metrics: newMetrics(),
		trees:   make(map[string]*docschema.Tree),
	}
}

// Run blocks, draining the packet source until it closes or the context is
// canceled. Context cancellation is the normal way to stop a live capture
// and reports as a nil error.
func (c *Capture) Run(ctx context.Context) error {
	assembler := NewAssembler(&factory{c: c})

	packets := c.source.Packets()
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case p, ok := <-packets:
			if !ok {
				// Offline replay ran out of packets.
				return nil
			}
			assembler.Assemble(p)

		case <-ticker.C:
			assembler.FlushOlderThan(time.Now().Add(-2 * time.Minute))

		case <-ctx.Done():
			return nil
		}
	}
}

type factory struct {
	c *Capture
}

func (f *factory) New() Stream {
	return &stream{c: f.c}
}

type stream struct {
	c *Capture
}

func (s *stream) Frame(frame []byte) {
	s.c.metrics.frames.Inc()

	m, err := parseFrame(frame)
	if err != nil {
		s.c.metrics.parseErrors.Inc()
		slog.Debug("could not parse wire frame", "err", err)
		return
	}
	if m == nil {
		return
	}

	ns, docs := extractDocuments(m)
	if ns == "" || len(docs) == 0 {
		return
	}
	s.c.absorb(ns, docs)
}

func (c *Capture) absorb(ns string, docs []map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tree, ok := c.trees[ns]
	if !ok {
		tree = docschema.NewTree()
		c.trees[ns] = tree
		slog.Info("observing new namespace", "namespace", ns)
	}
	for _, doc := range docs {
		tree.Merge(doc)
	}
	c.metrics.documents.WithLabelValues(ns).Add(float64(len(docs)))
}

// Collections lists the namespaces observed so far, sorted.
func (c *Capture) Collections() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.trees))
	for ns := range c.trees {
		names = append(names, ns)
	}
	sort.Strings(names)
	return names
}

func (c *Capture) Schema(namespace string) (map[string]any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tree, ok := c.trees[namespace]
	if !ok {
		return nil, false
	}
	return tree.Serialize(), true
}

func (c *Capture) OpenAPI(namespace string) (*openapi3.Schema, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tree, ok := c.trees[namespace]
	if !ok {
		return nil, false
	}
	return export.Collection(tree), true
}

// Serialize snapshots every namespace's schema, the same shape the scan
// writes to the schema file.
func (c *Capture) Serialize() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]any, len(c.trees))
	for ns, tree := range c.trees {
		out[ns] = tree.Serialize()
	}
	return out
}

// Gatherer exposes the capture metrics for /metrics.
func (c *Capture) Gatherer() prometheus.Gatherer {
	return c.metrics.reg
}
