// Package scanner walks a document source collection by collection and
// reduces each collection's sample into a schema tree. Collections fan out
// across a bounded worker group; documents within one collection merge
// strictly sequentially in delivery order.
package scanner

import "context"

// Sampling is applied by the source before documents reach the merge engine.
// Limit caps how many documents are pulled (0 = unlimited); Stride delivers
// every Nth pulled document (1 = every document).
type Sampling struct {
	Limit  int
	Stride int
}

// Keep reports whether the i-th pulled document (0-based) is delivered.
func (s Sampling) Keep(i int) bool {
	if s.Stride <= 1 {
		return true
	}
	return i%s.Stride == 0
}

// Source is a store of document collections. docstore serves live MongoDB
// deployments, jsonsource serves mongoexport-style dump directories.
type Source interface {
	Collections(ctx context.Context) ([]string, error)

	// Documents streams the sampled documents of one collection in delivery
	// order, calling fn once per document. A non-nil error from fn stops the
	// stream and is returned as is.
	Documents(ctx context.Context, collection string, s Sampling, fn func(doc map[string]any) error) error
}
