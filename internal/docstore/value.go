// Package docstore models schemaless issue-tracking records and the
// read-only document store contract the query engine runs against.
package docstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindObjectID
	KindDateTime
	KindArray
	KindDocument
)

// Value is a record value: a scalar, an ordered sequence of values, or an
// ordered keyed mapping of values. ObjectID and DateTime are the only
// store-native variants.
type Value interface {
	Kind() Kind
}

type (
	Null     struct{}
	String   string
	Int      int64
	Float    float64
	Bool     bool
	ObjectID primitive.ObjectID
	DateTime time.Time
	Array    []Value
)

// Field is one key/value pair of a Document.
type Field struct {
	Key   string
	Value Value
}

// Document is an ordered keyed mapping. Field order is the stored order.
type Document []Field

func (Null) Kind() Kind     { return KindNull }
func (String) Kind() Kind   { return KindString }
func (Int) Kind() Kind      { return KindInt }
func (Float) Kind() Kind    { return KindFloat }
func (Bool) Kind() Kind     { return KindBool }
func (ObjectID) Kind() Kind { return KindObjectID }
func (DateTime) Kind() Kind { return KindDateTime }
func (Array) Kind() Kind    { return KindArray }
func (Document) Kind() Kind { return KindDocument }

// Hex returns the 24 character hex form of the identifier.
func (o ObjectID) Hex() string { return primitive.ObjectID(o).Hex() }

// Time returns the instant as UTC.
func (d DateTime) Time() time.Time { return time.Time(d).UTC() }

// Get returns the value stored under key.
func (d Document) Get(key string) (Value, bool) {
	for _, f := range d {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Keys returns the field names in stored order.
func (d Document) Keys() []string {
	keys := make([]string, len(d))
	for i, f := range d {
		keys[i] = f.Key
	}
	return keys
}

// ID returns the document's _id value, or Null when absent.
func (d Document) ID() Value {
	if v, ok := d.Get("_id"); ok {
		return v
	}
	return Null{}
}

// Project returns a copy of d restricted to _id and the named fields.
func (d Document) Project(fields []string) Document {
	if len(fields) == 0 {
		return d
	}
	keep := map[string]bool{"_id": true}
	for _, f := range fields {
		keep[f] = true
	}
	out := make(Document, 0, len(fields)+1)
	for _, f := range d {
		if keep[f.Key] {
			out = append(out, f)
		}
	}
	return out
}

// Lookup resolves a dotted path such as "fields.component" against d.
func (d Document) Lookup(path string) (Value, bool) {
	var cur Value = d
	start := 0
	for i := 0; i <= len(path); i++ {
		if i < len(path) && path[i] != '.' {
			continue
		}
		doc, ok := cur.(Document)
		if !ok {
			return nil, false
		}
		next, ok := doc.Get(path[start:i])
		if !ok {
			return nil, false
		}
		cur = next
		start = i + 1
	}
	return cur, true
}

// MarshalJSON encodes the document as a JSON object in field order.
func (d Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := marshalValue(f.Value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Key, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON encodes the array, writing null for nil elements.
func (a Array) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, v := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		val, err := marshalValue(v)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func (Null) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

func (o ObjectID) MarshalJSON() ([]byte, error) { return json.Marshal(o.Hex()) }

func (d DateTime) MarshalJSON() ([]byte, error) { return json.Marshal(FormatDateTime(d.Time())) }

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

func marshalValue(v Value) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

// Text returns the plain string form of v: the string itself for String,
// the hex form for ObjectID, ISO-8601 for DateTime and JSON otherwise.
func Text(v Value) string {
	switch x := v.(type) {
	case nil, Null:
		return "None"
	case String:
		return string(x)
	case ObjectID:
		return x.Hex()
	case DateTime:
		return FormatDateTime(x.Time())
	case Int:
		return strconv.FormatInt(int64(x), 10)
	case Bool:
		if x {
			return "True"
		}
		return "False"
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// TypeLabel returns a coarse type name for v, used to describe a
// collection's shape.
func TypeLabel(v Value) string {
	switch v.(type) {
	case nil, Null:
		return "NoneType"
	case String:
		return "str"
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case ObjectID:
		return "ObjectId"
	case DateTime:
		return "datetime"
	case Array:
		return "list"
	case Document:
		return "dict"
	}
	return "unknown"
}

// Equal reports whether a and b hold the same value. Int and Float compare
// numerically.
func Equal(a, b Value) bool {
	if a == nil {
		a = Null{}
	}
	if b == nil {
		b = Null{}
	}
	if an, ok := number(a); ok {
		bn, ok := number(b)
		return ok && an == bn
	}
	switch x := a.(type) {
	case Null:
		return b.Kind() == KindNull
	case String:
		y, ok := b.(String)
		return ok && x == y
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	case ObjectID:
		y, ok := b.(ObjectID)
		return ok && x == y
	case DateTime:
		y, ok := b.(DateTime)
		return ok && x.Time().Equal(y.Time())
	case Array:
		y, ok := b.(Array)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case Document:
		y, ok := b.(Document)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if x[i].Key != y[i].Key || !Equal(x[i].Value, y[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

func number(v Value) (float64, bool) {
	switch x := v.(type) {
	case Int:
		return float64(x), true
	case Float:
		return float64(x), true
	}
	return 0, false
}

// Key returns a string usable as a map key that is equal for Equal values
// of the same kind family.
func Key(v Value) string {
	if n, ok := number(v); ok {
		return "n:" + strconv.FormatFloat(n, 'g', -1, 64)
	}
	if v == nil {
		v = Null{}
	}
	data, _ := json.Marshal(v)
	return strconv.Itoa(int(v.Kind())) + ":" + string(data)
}
