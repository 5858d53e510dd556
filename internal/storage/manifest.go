package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Manifest describes a snapshot and is stored as TOML beside the database.
type Manifest struct {
	// ID uniquely identifies the snapshot
	ID string `toml:"id"`

	// Source is the connection string the snapshot was copied from, with
	// credentials removed
	Source string `toml:"source"`

	// Database is the source database name
	Database string `toml:"database"`

	CreatedAt time.Time `toml:"created_at"`

	Collections []CollectionEntry `toml:"collections"`
}

// CollectionEntry records one copied collection.
type CollectionEntry struct {
	Name      string `toml:"name"`
	Documents int    `toml:"documents"`
	// Digest is the keyed BLAKE3 hash of the collection's documents.
	Digest string `toml:"digest"`
}

// ManifestPath returns the manifest location for a snapshot database path.
func ManifestPath(dbPath string) string {
	return strings.TrimSuffix(dbPath, filepath.Ext(dbPath)) + ".manifest.toml"
}

// LoadManifest reads a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	var m Manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return &m, nil
}

// Save writes the manifest to path.
func (m *Manifest) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create manifest: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(m); err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	return nil
}

// TotalDocuments returns the number of documents across collections.
func (m *Manifest) TotalDocuments() int {
	total := 0
	for _, c := range m.Collections {
		total += c.Documents
	}
	return total
}
