package wirecap

import "go.mongodb.org/mongo-driver/bson"

// extractDocuments mines a parsed message for full documents together with
// the namespace they belong to. Two shapes carry them: insert commands
// (namespace from the command body, documents from the kind-1 sequence or
// inlined in the body) and cursor replies (namespace and batch inside the
// cursor document). Everything else yields nothing.
func extractDocuments(m *message) (ns string, docs []map[string]any) {
	if m == nil || m.body == nil {
		return "", nil
	}

	if coll, ok := m.body["insert"].(string); ok {
		db, _ := m.body["$db"].(string)
		if db == "" {
			return "", nil
		}
		ns = db + "." + coll

		for _, doc := range m.sequences["documents"] {
			docs = append(docs, map[string]any(doc))
		}
		if inline, ok := m.body["documents"].(bson.A); ok {
			docs = append(docs, collectDocs(inline)...)
		}
		return ns, docs
	}

	if cursor, ok := m.body["cursor"].(bson.M); ok {
		ns, _ = cursor["ns"].(string)
		if ns == "" {
			return "", nil
		}
		for _, key := range []string{"firstBatch", "nextBatch"} {
			if batch, ok := cursor[key].(bson.A); ok {
				docs = append(docs, collectDocs(batch)...)
			}
		}
		return ns, docs
	}

	return "", nil
}

func collectDocs(a bson.A) []map[string]any {
	var out []map[string]any
	for _, v := range a {
		if doc, ok := v.(bson.M); ok {
			out = append(out, map[string]any(doc))
		}
	}
	return out
}
