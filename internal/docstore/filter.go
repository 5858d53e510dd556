package docstore

import (
	"fmt"
	"sort"
	"strings"
)

// Filter selects documents. Backends either evaluate it with Matches or
// translate it to their native query language.
type Filter interface {
	filter()
}

// All matches every document.
type All struct{}

// Eq matches documents whose field equals Value. An array field matches when
// any element is equal. Eq with Null matches a missing or null field.
type Eq struct {
	Field string
	Value Value
}

// In matches documents whose field equals any of Values.
type In struct {
	Field  string
	Values []Value
}

// Contains matches documents whose string field contains Text, ignoring case.
// Text is literal, not a pattern.
type Contains struct {
	Field string
	Text  string
}

// Exists matches documents that carry the field, null or not.
type Exists struct {
	Field string
}

// And matches when every clause matches. An empty And matches everything.
type And []Filter

// Or matches when any clause matches. An empty Or matches nothing.
type Or []Filter

// Not matches when Filter does not.
type Not struct {
	Filter Filter
}

func (All) filter()      {}
func (Eq) filter()       {}
func (In) filter()       {}
func (Contains) filter() {}
func (Exists) filter()   {}
func (And) filter()      {}
func (Or) filter()       {}
func (Not) filter()      {}

// Matches reports whether doc satisfies f. A nil filter matches everything.
func Matches(doc Document, f Filter) bool {
	switch x := f.(type) {
	case nil, All:
		return true
	case Eq:
		v, ok := doc.Lookup(x.Field)
		return equalsField(v, ok, x.Value)
	case In:
		v, ok := doc.Lookup(x.Field)
		for _, want := range x.Values {
			if equalsField(v, ok, want) {
				return true
			}
		}
		return false
	case Contains:
		v, ok := doc.Lookup(x.Field)
		if !ok {
			return false
		}
		return containsText(v, strings.ToLower(x.Text))
	case Exists:
		_, ok := doc.Lookup(x.Field)
		return ok
	case And:
		for _, c := range x {
			if !Matches(doc, c) {
				return false
			}
		}
		return true
	case Or:
		for _, c := range x {
			if Matches(doc, c) {
				return true
			}
		}
		return false
	case Not:
		return !Matches(doc, x.Filter)
	}
	return false
}

func equalsField(v Value, present bool, want Value) bool {
	if !present {
		return want == nil || want.Kind() == KindNull
	}
	if Equal(v, want) {
		return true
	}
	if arr, ok := v.(Array); ok {
		for _, el := range arr {
			if Equal(el, want) {
				return true
			}
		}
	}
	return false
}

func containsText(v Value, lowered string) bool {
	switch x := v.(type) {
	case String:
		return strings.Contains(strings.ToLower(string(x)), lowered)
	case Array:
		for _, el := range x {
			if s, ok := el.(String); ok && strings.Contains(strings.ToLower(string(s)), lowered) {
				return true
			}
		}
	}
	return false
}

// FilterFromMap turns a caller-supplied mapping into one clause per key, in
// key order. A plain value is an equality; text that parses as a store
// identifier matches either representation. An operator document may use
// $in, $ne and $exists; any other $ key is an error.
func FilterFromMap(m map[string]interface{}) (Filter, error) {
	if len(m) == 0 {
		return All{}, nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	clauses := make(And, 0, len(keys))
	for _, k := range keys {
		if strings.HasPrefix(k, "$") {
			return nil, fmt.Errorf("unsupported filter key %q", k)
		}
		c, err := fieldFilter(k, m[k])
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, c)
	}
	return clauses, nil
}

func fieldFilter(field string, raw interface{}) (Filter, error) {
	ops, ok := raw.(map[string]interface{})
	if !ok || !isOperatorDoc(ops) {
		return eqFilter(field, raw), nil
	}
	keys := make([]string, 0, len(ops))
	for k := range ops {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	clauses := make(And, 0, len(keys))
	for _, op := range keys {
		arg := ops[op]
		switch op {
		case "$ne":
			clauses = append(clauses, Not{Filter: eqFilter(field, arg)})
		case "$in":
			list, ok := arg.([]interface{})
			if !ok {
				return nil, fmt.Errorf("%s: $in takes an array", field)
			}
			var values []Value
			for _, el := range list {
				values = append(values, candidates(el)...)
			}
			clauses = append(clauses, In{Field: field, Values: values})
		case "$exists":
			want, ok := arg.(bool)
			if !ok {
				return nil, fmt.Errorf("%s: $exists takes a boolean", field)
			}
			if want {
				clauses = append(clauses, Exists{Field: field})
			} else {
				clauses = append(clauses, Not{Filter: Exists{Field: field}})
			}
		default:
			return nil, fmt.Errorf("%s: unsupported operator %q", field, op)
		}
	}
	if len(clauses) == 1 {
		return clauses[0], nil
	}
	return clauses, nil
}

// isOperatorDoc reports whether m is a query operator document rather than
// a literal or an extended JSON value such as {"$oid": ...}.
func isOperatorDoc(m map[string]interface{}) bool {
	if len(m) == 1 {
		if _, ok := m["$oid"]; ok {
			return false
		}
		if _, ok := m["$date"]; ok {
			return false
		}
	}
	for k := range m {
		if strings.HasPrefix(k, "$") {
			return true
		}
	}
	return false
}

func eqFilter(field string, raw interface{}) Filter {
	if s, ok := raw.(string); ok {
		return MatchID(field, ParseID(s))
	}
	return Eq{Field: field, Value: FromJSON(raw)}
}

func candidates(raw interface{}) []Value {
	if s, ok := raw.(string); ok {
		return ParseID(s).Candidates()
	}
	return []Value{FromJSON(raw)}
}
