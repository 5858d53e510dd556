package storage

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"sebot/internal/docstore"
)

// Encoders and decoders are safe for concurrent EncodeAll/DecodeAll use.
var (
	bodyEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	bodyDecoder, _ = zstd.NewReader(nil)
)

// encodeDocument serializes doc as canonical Extended JSON and compresses it.
func encodeDocument(doc docstore.Document) ([]byte, error) {
	data, err := docstore.MarshalExtJSON(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return bodyEncoder.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}

// decodeDocument reverses encodeDocument.
func decodeDocument(body []byte) (docstore.Document, error) {
	data, err := bodyDecoder.DecodeAll(body, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress document: %w", err)
	}
	doc, err := docstore.UnmarshalExtJSON(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return doc, nil
}
