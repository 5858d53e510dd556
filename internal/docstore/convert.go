package docstore

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FromBSON converts a value decoded by the BSON codec into a Value.
// Types without a Value counterpart become their string form.
func FromBSON(v interface{}) Value {
	switch x := v.(type) {
	case nil, primitive.Null, primitive.Undefined:
		return Null{}
	case string:
		return String(x)
	case int32:
		return Int(x)
	case int64:
		return Int(x)
	case int:
		return Int(x)
	case float64:
		return Float(x)
	case bool:
		return Bool(x)
	case primitive.ObjectID:
		return ObjectID(x)
	case primitive.DateTime:
		return DateTime(x.Time().UTC())
	case time.Time:
		return DateTime(x.UTC())
	case primitive.Decimal128:
		return String(x.String())
	case primitive.A:
		return arrayFromBSON(x)
	case []interface{}:
		return arrayFromBSON(x)
	case primitive.D:
		return DocumentFromBSON(x)
	case primitive.M:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		doc := make(Document, 0, len(keys))
		for _, k := range keys {
			doc = append(doc, Field{Key: k, Value: FromBSON(x[k])})
		}
		return doc
	}
	return String(fmt.Sprint(v))
}

func arrayFromBSON(in []interface{}) Array {
	out := make(Array, len(in))
	for i, el := range in {
		out[i] = FromBSON(el)
	}
	return out
}

// DocumentFromBSON converts an ordered BSON document.
func DocumentFromBSON(d primitive.D) Document {
	doc := make(Document, len(d))
	for i, e := range d {
		doc[i] = Field{Key: e.Key, Value: FromBSON(e.Value)}
	}
	return doc
}

// ToBSON converts v into the value the BSON codec expects.
func ToBSON(v Value) interface{} {
	switch x := v.(type) {
	case nil, Null:
		return nil
	case String:
		return string(x)
	case Int:
		return int64(x)
	case Float:
		return float64(x)
	case Bool:
		return bool(x)
	case ObjectID:
		return primitive.ObjectID(x)
	case DateTime:
		return primitive.NewDateTimeFromTime(x.Time())
	case Array:
		out := make(primitive.A, len(x))
		for i, el := range x {
			out[i] = ToBSON(el)
		}
		return out
	case Document:
		return DocumentToBSON(x)
	}
	return nil
}

// DocumentToBSON converts doc into an ordered BSON document.
func DocumentToBSON(doc Document) primitive.D {
	out := make(primitive.D, len(doc))
	for i, f := range doc {
		out[i] = primitive.E{Key: f.Key, Value: ToBSON(f.Value)}
	}
	return out
}

// MarshalExtJSON encodes doc as canonical Extended JSON, which keeps
// identifiers and datetimes typed.
func MarshalExtJSON(doc Document) ([]byte, error) {
	return bson.MarshalExtJSON(DocumentToBSON(doc), true, false)
}

// UnmarshalExtJSON decodes one canonical or relaxed Extended JSON document.
func UnmarshalExtJSON(data []byte) (Document, error) {
	var d primitive.D
	if err := bson.UnmarshalExtJSON(data, false, &d); err != nil {
		return nil, err
	}
	return DocumentFromBSON(d), nil
}

// FromJSON converts a value produced by encoding/json into a Value.
// {"$oid": hex} becomes an ObjectID and {"$date": RFC3339} a DateTime.
func FromJSON(v interface{}) Value {
	switch x := v.(type) {
	case nil:
		return Null{}
	case string:
		return String(x)
	case bool:
		return Bool(x)
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return Int(int64(x))
		}
		return Float(x)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return Int(i)
		}
		f, _ := x.Float64()
		return Float(f)
	case int:
		return Int(x)
	case int64:
		return Int(x)
	case []interface{}:
		out := make(Array, len(x))
		for i, el := range x {
			out[i] = FromJSON(el)
		}
		return out
	case map[string]interface{}:
		if len(x) == 1 {
			if s, ok := x["$oid"].(string); ok {
				if id := ParseID(s); id.IsStoreID() {
					return id.Value()
				}
			}
			if s, ok := x["$date"].(string); ok {
				if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
					return DateTime(t.UTC())
				}
			}
		}
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		doc := make(Document, 0, len(keys))
		for _, k := range keys {
			doc = append(doc, Field{Key: k, Value: FromJSON(x[k])})
		}
		return doc
	}
	return String(fmt.Sprint(v))
}
