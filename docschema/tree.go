package docschema

// Tree accumulates the schema of one collection over the course of a scan.
// Documents merge strictly one at a time in delivery order: each merge
// depends on the state left by the previous one (scalar type lists are
// insertion-ordered), so a Tree must stay confined to a single goroutine.
type Tree struct {
	root *RecordNode
}

// NewTree returns an empty tree ready to absorb documents.
func NewTree() *Tree {
	return &Tree{root: &RecordNode{Children: make(map[string]CategoryMap)}}
}

// Merge folds one document's top-level fields into the tree, exactly as if
// the document were the child of an implicit root record. Merging the first
// document into an empty tree is the seeding step.
func (t *Tree) Merge(doc map[string]any) {
	mergeRecord(t.root, doc)
}

// Fields returns the root field → category map index. The returned map is
// the tree's own state, not a copy.
func (t *Tree) Fields() map[string]CategoryMap {
	return t.root.Children
}

// Len returns the number of distinct top-level field names seen so far.
func (t *Tree) Len() int {
	return len(t.root.Children)
}
