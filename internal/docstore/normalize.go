package docstore

import (
	"fmt"
	"time"
)

// Normalize returns a structurally identical copy of v in which every
// ObjectID is replaced by its hex string and every DateTime by its ISO-8601
// form. Other scalars pass through. v is not modified, and normalizing an
// already normalized value returns an equal value.
func Normalize(v Value) Value {
	switch x := v.(type) {
	case nil:
		return Null{}
	case ObjectID:
		return String(x.Hex())
	case DateTime:
		return String(FormatDateTime(x.Time()))
	case Array:
		out := make(Array, len(x))
		for i, el := range x {
			out[i] = Normalize(el)
		}
		return out
	case Document:
		return NormalizeDocument(x)
	}
	return v
}

// NormalizeDocument normalizes every field of doc.
func NormalizeDocument(doc Document) Document {
	out := make(Document, len(doc))
	for i, f := range doc {
		out[i] = Field{Key: f.Key, Value: Normalize(f.Value)}
	}
	return out
}

// NormalizeDocuments normalizes each document. The result is never nil.
func NormalizeDocuments(docs []Document) []Document {
	out := make([]Document, len(docs))
	for i, d := range docs {
		out[i] = NormalizeDocument(d)
	}
	return out
}

// NormalizeValues normalizes each value. The result is never nil.
func NormalizeValues(values []Value) []Value {
	out := make([]Value, len(values))
	for i, v := range values {
		out[i] = Normalize(v)
	}
	return out
}

// FormatDateTime renders t as YYYY-MM-DDTHH:MM:SS, adding a six digit
// fraction only when t has sub-second precision. Stored datetimes carry no
// zone, so no offset is written.
func FormatDateTime(t time.Time) string {
	t = t.UTC()
	s := t.Format("2006-01-02T15:04:05")
	if us := t.Nanosecond() / 1000; us != 0 {
		s += fmt.Sprintf(".%06d", us)
	}
	return s
}

// IsPlain reports whether v contains no store-native values at any depth.
func IsPlain(v Value) bool {
	switch x := v.(type) {
	case ObjectID, DateTime:
		return false
	case Array:
		for _, el := range x {
			if !IsPlain(el) {
				return false
			}
		}
	case Document:
		for _, f := range x {
			if !IsPlain(f.Value) {
				return false
			}
		}
	}
	return true
}
