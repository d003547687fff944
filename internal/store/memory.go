package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store used for local development and tests.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Document
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]Document),
	}
}

func (s *MemoryStore) List(ctx context.Context, collection string, order OrderSpec, limit int) ([]Document, error) {
	return s.Find(ctx, collection, nil, order, limit)
}

func (s *MemoryStore) Find(_ context.Context, collection string, filter Filter, order OrderSpec, limit int) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]Document, 0)
	for _, doc := range s.collections[collection] {
		if matches(doc, filter) {
			docs = append(docs, cloneDoc(doc))
		}
	}

	sortDocs(docs, order)

	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

func (s *MemoryStore) Get(_ context.Context, collection, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneDoc(doc), nil
}

func (s *MemoryStore) Create(_ context.Context, collection string, data map[string]any) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(collection, data), nil
}

func (s *MemoryStore) Update(_ context.Context, collection, id string, patch map[string]any) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	for k, v := range patch {
		if k == "id" {
			continue
		}
		doc[k] = v
	}
	return cloneDoc(doc), nil
}

func (s *MemoryStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.collections[collection], id)
	return nil
}

func (s *MemoryStore) Upsert(_ context.Context, collection string, filter Filter, data map[string]any) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range s.collections[collection] {
		if matches(doc, filter) {
			for k, v := range data {
				if k == "id" {
					continue
				}
				doc[k] = v
			}
			return cloneDoc(doc), nil
		}
	}

	merged := make(map[string]any, len(filter)+len(data))
	for k, v := range filter {
		merged[k] = v
	}
	for k, v := range data {
		merged[k] = v
	}
	return s.createLocked(collection, merged), nil
}

func (s *MemoryStore) CreateExclusive(_ context.Context, collection, flagField string, data map[string]any) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range s.collections[collection] {
		if active, _ := doc[flagField].(bool); active {
			doc[flagField] = false
		}
	}

	withFlag := make(map[string]any, len(data)+1)
	for k, v := range data {
		withFlag[k] = v
	}
	withFlag[flagField] = true
	return s.createLocked(collection, withFlag), nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() {}

// createLocked assumes s.mu is held for writing.
func (s *MemoryStore) createLocked(collection string, data map[string]any) Document {
	doc := stamped(data)

	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]Document)
	}
	s.collections[collection][doc.ID()] = doc
	return cloneDoc(doc)
}

func matches(doc Document, filter Filter) bool {
	for k, want := range filter {
		if !valuesEqual(doc[k], want) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b any) bool {
	if a == b {
		return true
	}
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	return aok && bok && af == bf
}

func sortDocs(docs []Document, order OrderSpec) {
	field := order.Field
	if field == "" {
		field = CreatedDateField
	}
	sort.SliceStable(docs, func(i, j int) bool {
		less := compareValues(docs[i][field], docs[j][field]) < 0
		if order.Desc {
			return !less && compareValues(docs[i][field], docs[j][field]) != 0
		}
		return less
	})
}

// compareValues orders mixed-type field values: nil first, then numbers,
// then strings, then booleans (false < true).
func compareValues(a, b any) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}

	if af, ok := asFloat(a); ok {
		if bf, ok := asFloat(b); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
		return -1
	}
	if _, ok := asFloat(b); ok {
		return 1
	}

	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			switch {
			case as < bs:
				return -1
			case as > bs:
				return 1
			default:
				return 0
			}
		}
		return -1
	}
	if _, ok := b.(string); ok {
		return 1
	}

	ab, _ := a.(bool)
	bb, _ := b.(bool)
	switch {
	case !ab && bb:
		return -1
	case ab && !bb:
		return 1
	default:
		return 0
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func cloneDoc(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
