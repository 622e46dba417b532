// Package jsonsource serves documents from a directory of mongoexport-style
// dumps. Every <collection>.json or <collection>.ndjson file in the directory
// is one collection, holding either one JSON document per line or a single
// top-level JSON array.
package jsonsource

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/valyala/fastjson"

	"github.com/docsift/docsift/scanner"
)

type Dir struct {
	path string
}

var _ scanner.Source = (*Dir)(nil)

func Open(path string) (*Dir, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open dump directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open dump directory: %s is not a directory", path)
	}
	return &Dir{path: path}, nil
}

func (d *Dir) Collections(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".json" && ext != ".ndjson" {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ext))
	}
	sort.Strings(names)
	return names, nil
}

func (d *Dir) Documents(ctx context.Context, collection string, sampling scanner.Sampling, fn func(doc map[string]any) error) error {
	f, err := d.openCollection(collection)
	if err != nil {
		return err
	}
	defer f.Close()

	deliver := func(v *fastjson.Value) error {
		doc, ok := decodeValue(v).(map[string]any)
		if !ok {
			return fmt.Errorf("collection %s: document is not an object", collection)
		}
		return fn(doc)
	}

	br := bufio.NewReaderSize(f, 64*1024)

	// mongoexport --jsonArray dumps hold one top-level array; everything else
	// is newline-delimited documents.
	if leadsWithArray(br) {
		bs, err := io.ReadAll(br)
		if err != nil {
			return fmt.Errorf("collection %s: %w", collection, err)
		}
		v, err := fastjson.ParseBytes(bs)
		if err != nil {
			return fmt.Errorf("collection %s: %w", collection, err)
		}
		return deliverArray(v, sampling, deliver)
	}

	var p fastjson.Parser
	sc := bufio.NewScanner(br)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for i := 0; sc.Scan(); {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		v, err := p.Parse(line)
		if err != nil {
			return fmt.Errorf("collection %s: %w", collection, err)
		}

		if sampling.Keep(i) {
			if err := deliver(v); err != nil {
				return err
			}
		}
		i++
		if sampling.Limit > 0 && i >= sampling.Limit {
			return nil
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("collection %s: %w", collection, err)
	}
	return nil
}

// leadsWithArray peeks past leading whitespace for a '[' without consuming.
func leadsWithArray(br *bufio.Reader) bool {
	for peek := 1; peek <= 64; peek++ {
		bs, _ := br.Peek(peek)
		if len(bs) < peek {
			return false
		}
		switch bs[peek-1] {
		case ' ', '\t', '\r', '\n':
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}

func deliverArray(v *fastjson.Value, sampling scanner.Sampling, deliver func(*fastjson.Value) error) error {
	elems, err := v.Array()
	if err != nil {
		return err
	}
	for i, e := range elems {
		if sampling.Limit > 0 && i >= sampling.Limit {
			return nil
		}
		if !sampling.Keep(i) {
			continue
		}
		if err := deliver(e); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dir) openCollection(collection string) (*os.File, error) {
	for _, ext := range []string{".json", ".ndjson"} {
		f, err := os.Open(filepath.Join(d.path, collection+ext))
		if err == nil {
			return f, nil
		}
		if !os.IsNotExist(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("no dump file for collection %s in %s", collection, d.path)
}
