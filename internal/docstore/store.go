package docstore

import (
	"context"
)

// Collection names read by the query engine.
const (
	ProjectCollection      = "project"
	IssueSystemCollection  = "issue_system"
	IssueCollection        = "issue"
	IssueCommentCollection = "issue_comment"
	EventCollection        = "event"
	CommitCollection       = "commit"
)

// FindOptions controls a multi-document lookup.
type FindOptions struct {
	Skip       int64
	Limit      int64    // 0 means no limit
	Projection []string // empty means all fields; _id is always kept
}

// Store is a read-only keyed-collection document store. Querying a
// collection that does not exist behaves like querying an empty one.
type Store interface {
	CollectionNames(ctx context.Context) ([]string, error)
	FindOne(ctx context.Context, collection string, filter Filter) (Document, bool, error)
	Find(ctx context.Context, collection string, filter Filter, opts FindOptions) ([]Document, error)
	Count(ctx context.Context, collection string, filter Filter) (int64, error)
	Distinct(ctx context.Context, collection, field string, filter Filter) ([]Value, error)
	Close(ctx context.Context) error
}

// Select applies filter and options to docs in order. Backends without a
// native query language evaluate lookups with it.
func Select(docs []Document, filter Filter, opts FindOptions) []Document {
	out := make([]Document, 0)
	var skipped int64
	for _, d := range docs {
		if !Matches(d, filter) {
			continue
		}
		if skipped < opts.Skip {
			skipped++
			continue
		}
		out = append(out, d.Project(opts.Projection))
		if opts.Limit > 0 && int64(len(out)) >= opts.Limit {
			break
		}
	}
	return out
}

// CountMatches counts the documents of docs that satisfy filter.
func CountMatches(docs []Document, filter Filter) int64 {
	var n int64
	for _, d := range docs {
		if Matches(d, filter) {
			n++
		}
	}
	return n
}

// DistinctValues collects the distinct values of field across matching
// documents in first-seen order. Array values contribute their elements.
func DistinctValues(docs []Document, field string, filter Filter) []Value {
	out := make([]Value, 0)
	seen := make(map[string]bool)
	add := func(v Value) {
		k := Key(v)
		if seen[k] {
			return
		}
		seen[k] = true
		out = append(out, v)
	}
	for _, d := range docs {
		if !Matches(d, filter) {
			continue
		}
		v, ok := d.Lookup(field)
		if !ok {
			continue
		}
		if arr, isArr := v.(Array); isArr {
			for _, el := range arr {
				add(el)
			}
			continue
		}
		add(v)
	}
	return out
}
