package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/tidwall/jsonc"
)

// Memory is an in-process Store. Collections keep insertion order.
type Memory struct {
	mu          sync.RWMutex
	names       []string
	collections map[string][]Document
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{collections: make(map[string][]Document)}
}

// CreateCollection registers an empty collection if it does not exist.
func (m *Memory) CreateCollection(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensure(name)
}

func (m *Memory) ensure(name string) {
	if _, ok := m.collections[name]; !ok {
		m.collections[name] = nil
		m.names = append(m.names, name)
	}
}

// Insert appends docs to collection, creating it when needed.
func (m *Memory) Insert(collection string, docs ...Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensure(collection)
	m.collections[collection] = append(m.collections[collection], docs...)
}

func (m *Memory) snapshot(collection string) []Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collections[collection]
}

// CollectionNames returns collections in creation order.
func (m *Memory) CollectionNames(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.names...), nil
}

// FindOne returns the first matching document.
func (m *Memory) FindOne(ctx context.Context, collection string, filter Filter) (Document, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	docs := Select(m.snapshot(collection), filter, FindOptions{Limit: 1})
	if len(docs) == 0 {
		return nil, false, nil
	}
	return docs[0], true, nil
}

// Find returns matching documents in insertion order.
func (m *Memory) Find(ctx context.Context, collection string, filter Filter, opts FindOptions) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Select(m.snapshot(collection), filter, opts), nil
}

// Count returns the number of matching documents.
func (m *Memory) Count(ctx context.Context, collection string, filter Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return CountMatches(m.snapshot(collection), filter), nil
}

// Distinct returns the distinct values of field across matching documents.
func (m *Memory) Distinct(ctx context.Context, collection, field string, filter Filter) ([]Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return DistinctValues(m.snapshot(collection), field, filter), nil
}

// Close is a no-op.
func (m *Memory) Close(ctx context.Context) error {
	return nil
}

// LoadSeed reads a seed file: a JSON object mapping collection names to
// arrays of canonical or relaxed Extended JSON documents. Comments and
// trailing commas are allowed.
func (m *Memory) LoadSeed(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read seed: %w", err)
	}
	var raw map[string][]json.RawMessage
	if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
		return fmt.Errorf("failed to decode seed: %w", err)
	}
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		m.CreateCollection(name)
		for i, data := range raw[name] {
			doc, err := UnmarshalExtJSON(data)
			if err != nil {
				return fmt.Errorf("seed %s[%d]: %w", name, i, err)
			}
			m.Insert(name, doc)
		}
	}
	return nil
}

// LoadSeedFile opens path and loads it with LoadSeed.
func (m *Memory) LoadSeedFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()
	return m.LoadSeed(f)
}
