package docstore

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ID is an identifier argument as supplied by a caller: either raw text or
// a store-native identifier parsed from its hex form.
type ID struct {
	text   string
	oid    primitive.ObjectID
	native bool
}

// ParseID classifies s. Text that is a valid 24 character hex identifier
// becomes a store identifier; anything else stays raw text.
func ParseID(s string) ID {
	if primitive.IsValidObjectID(s) {
		oid, err := primitive.ObjectIDFromHex(s)
		if err == nil {
			return ID{text: s, oid: oid, native: true}
		}
	}
	return ID{text: s}
}

// IsStoreID reports whether the identifier parsed as a store identifier.
func (id ID) IsStoreID() bool { return id.native }

// String returns the identifier as the caller supplied it.
func (id ID) String() string { return id.text }

// Value returns the identifier in the store's representation.
func (id ID) Value() Value {
	if id.native {
		return ObjectID(id.oid)
	}
	return String(id.text)
}

// Candidates returns every representation a stored field may use for this
// identifier. A store identifier may have been written as its hex string.
func (id ID) Candidates() []Value {
	if id.native {
		return []Value{ObjectID(id.oid), String(id.oid.Hex())}
	}
	return []Value{String(id.text)}
}

// MatchID builds the filter that matches field against id in either
// representation.
func MatchID(field string, id ID) Filter {
	c := id.Candidates()
	if len(c) == 1 {
		return Eq{Field: field, Value: c[0]}
	}
	return In{Field: field, Values: c}
}
