package storage

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"

	"sebot/internal/docstore"
)

// digestKey separates collection digests from any other BLAKE3 use.
var digestKey = [32]byte{
	's', 'e', 'b', 'o', 't', '.', 's', 'n', 'a', 'p', 's', 'h', 'o', 't', '.',
	'c', 'o', 'l', 'l', 'e', 'c', 't', 'i', 'o', 'n',
}

// collectionDigest hashes the canonical Extended JSON of docs in order.
func collectionDigest(docs []docstore.Document) (string, error) {
	h, err := blake3.NewKeyed(digestKey[:])
	if err != nil {
		return "", err
	}
	for i, doc := range docs {
		data, err := docstore.MarshalExtJSON(doc)
		if err != nil {
			return "", fmt.Errorf("document %d: %w", i, err)
		}
		_, _ = h.Write(data)
		_, _ = h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Verify recomputes the digest of every collection listed in m and
// reports the first mismatch.
func Verify(ctx context.Context, snap *Snapshot, m *Manifest) error {
	for _, entry := range m.Collections {
		docs, err := snap.load(ctx, entry.Name)
		if err != nil {
			return err
		}
		if len(docs) != entry.Documents {
			return fmt.Errorf("collection %s has %d documents, manifest records %d", entry.Name, len(docs), entry.Documents)
		}
		if entry.Digest == "" {
			continue
		}
		digest, err := collectionDigest(docs)
		if err != nil {
			return fmt.Errorf("collection %s: %w", entry.Name, err)
		}
		if digest != entry.Digest {
			return fmt.Errorf("collection %s digest mismatch", entry.Name)
		}
	}
	return nil
}
