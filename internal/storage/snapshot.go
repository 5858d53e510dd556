package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"sebot/internal/docstore"
)

// Snapshot is a read-only docstore.Store over a snapshot database.
// Filters are evaluated in process against the decoded documents. Each
// collection is decoded once, on first use, and kept for the life of the
// Snapshot; writes made to the database afterwards are not seen.
type Snapshot struct {
	db *DB

	mu      sync.Mutex
	decoded map[string][]docstore.Document
}

// NewSnapshot wraps an open snapshot database.
func NewSnapshot(db *DB) *Snapshot {
	return &Snapshot{db: db, decoded: make(map[string][]docstore.Document)}
}

// CollectionNames returns collections in the order they were written.
func (s *Snapshot) CollectionNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.conn.QueryContext(ctx, "SELECT name FROM collections ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *Snapshot) load(ctx context.Context, collection string) ([]docstore.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if docs, ok := s.decoded[collection]; ok {
		return docs, nil
	}
	docs, err := s.read(ctx, collection)
	if err != nil {
		return nil, err
	}
	s.decoded[collection] = docs
	return docs, nil
}

func (s *Snapshot) read(ctx context.Context, collection string) ([]docstore.Document, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		"SELECT body FROM documents WHERE collection = ? ORDER BY seq", collection)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []docstore.Document
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		doc, err := decodeDocument(body)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", collection, err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// FindOne returns the first matching document in stored order.
func (s *Snapshot) FindOne(ctx context.Context, collection string, filter docstore.Filter) (docstore.Document, bool, error) {
	docs, err := s.Find(ctx, collection, filter, docstore.FindOptions{Limit: 1})
	if err != nil || len(docs) == 0 {
		return nil, false, err
	}
	return docs[0], true, nil
}

// Find returns matching documents in stored order.
func (s *Snapshot) Find(ctx context.Context, collection string, filter docstore.Filter, opts docstore.FindOptions) ([]docstore.Document, error) {
	docs, err := s.load(ctx, collection)
	if err != nil {
		return nil, err
	}
	return docstore.Select(docs, filter, opts), nil
}

// Count returns the number of matching documents.
func (s *Snapshot) Count(ctx context.Context, collection string, filter docstore.Filter) (int64, error) {
	docs, err := s.load(ctx, collection)
	if err != nil {
		return 0, err
	}
	return docstore.CountMatches(docs, filter), nil
}

// Distinct returns the distinct values of field across matching documents.
func (s *Snapshot) Distinct(ctx context.Context, collection, field string, filter docstore.Filter) ([]docstore.Value, error) {
	docs, err := s.load(ctx, collection)
	if err != nil {
		return nil, err
	}
	return docstore.DistinctValues(docs, field, filter), nil
}

// Close closes the underlying database.
func (s *Snapshot) Close(ctx context.Context) error {
	return s.db.Close()
}

// WriteCollection replaces the contents of collection with docs.
func (db *DB) WriteCollection(ctx context.Context, collection string, docs []docstore.Document) error {
	return db.WithTx(func(tx *sql.Tx) error {
		var position int
		err := tx.QueryRowContext(ctx, "SELECT position FROM collections WHERE name = ?", collection).Scan(&position)
		if err == sql.ErrNoRows {
			if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM collections").Scan(&position); err != nil {
				return fmt.Errorf("failed to count collections: %w", err)
			}
			if _, err := tx.ExecContext(ctx, "INSERT INTO collections (name, position) VALUES (?, ?)", collection, position); err != nil {
				return fmt.Errorf("failed to register collection: %w", err)
			}
		} else if err != nil {
			return fmt.Errorf("failed to look up collection: %w", err)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE collection = ?", collection); err != nil {
			return fmt.Errorf("failed to clear collection: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, "INSERT INTO documents (collection, seq, body) VALUES (?, ?, ?)")
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for i, doc := range docs {
			body, err := encodeDocument(doc)
			if err != nil {
				return fmt.Errorf("%s[%d]: %w", collection, i, err)
			}
			if _, err := stmt.ExecContext(ctx, collection, i, body); err != nil {
				return fmt.Errorf("failed to insert document: %w", err)
			}
		}
		return nil
	})
}

// Copy writes every collection of src into db and saves the manifest next
// to the database file. source and database describe src in the manifest.
func Copy(ctx context.Context, src docstore.Store, db *DB, source, database string) (*Manifest, error) {
	names, err := src.CollectionNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list source collections: %w", err)
	}

	manifest := &Manifest{
		ID:        uuid.New().String(),
		Source:    source,
		Database:  database,
		CreatedAt: time.Now().UTC(),
	}

	for _, name := range names {
		start := time.Now()
		docs, err := src.Find(ctx, name, docstore.All{}, docstore.FindOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		if err := db.WriteCollection(ctx, name, docs); err != nil {
			return nil, err
		}
		digest, err := collectionDigest(docs)
		if err != nil {
			return nil, fmt.Errorf("failed to hash %s: %w", name, err)
		}
		manifest.Collections = append(manifest.Collections, CollectionEntry{
			Name:      name,
			Documents: len(docs),
			Digest:    digest,
		})
		db.logger.Info("Copied collection",
			"collection", name,
			"documents", len(docs),
			"duration", time.Since(start),
		)
	}

	if err := manifest.Save(ManifestPath(db.Path())); err != nil {
		return nil, err
	}
	return manifest, nil
}
