package query

import (
	"context"

	"sebot/internal/docstore"
	"sebot/internal/errors"
)

// buildIssueFilter scopes issues to the given issue systems and ANDs in
// every non-empty field of f. It is the single place issue filters are
// built so that fetches and counts always agree.
func buildIssueFilter(systemIDs []docstore.Value, f IssueFilter) docstore.Filter {
	clauses := docstore.And{
		docstore.In{Field: "issue_system_id", Values: systemIDs},
	}
	if f.Status != "" {
		clauses = append(clauses, docstore.Eq{Field: "status", Value: docstore.String(f.Status)})
	}
	if f.Priority != "" {
		clauses = append(clauses, docstore.Eq{Field: "priority", Value: docstore.String(f.Priority)})
	}
	if f.IssueType != "" {
		clauses = append(clauses, docstore.Eq{Field: "issue_type", Value: docstore.String(f.IssueType)})
	}
	if f.AssigneeID != "" {
		clauses = append(clauses, docstore.MatchID("assignee_id", docstore.ParseID(f.AssigneeID)))
	}
	if f.ReporterID != "" {
		clauses = append(clauses, docstore.MatchID("reporter_id", docstore.ParseID(f.ReporterID)))
	}
	return clauses
}

// pageBounds clamps page and pageSize to usable values.
func (e *Engine) pageBounds(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = e.opts.DefaultPageSize
	}
	if pageSize > e.opts.MaxPageSize {
		pageSize = e.opts.MaxPageSize
	}
	return page, pageSize
}

// FetchProjectIssues returns one page of the project's issues matching f,
// in store order, together with the unpaginated total.
func (e *Engine) FetchProjectIssues(ctx context.Context, projectName string, f IssueFilter, page, pageSize int) (*IssuePage, error) {
	ids, err := e.ResolveIssueSystemIDs(ctx, projectName)
	if err != nil {
		return nil, err
	}
	page, pageSize = e.pageBounds(page, pageSize)
	filter := buildIssueFilter(ids, f)

	issues, err := e.store.Find(ctx, docstore.IssueCollection, filter, docstore.FindOptions{
		Skip:  int64(page-1) * int64(pageSize),
		Limit: int64(pageSize),
	})
	if err != nil {
		return nil, storageErr("find issues", err)
	}
	total, err := e.store.Count(ctx, docstore.IssueCollection, filter)
	if err != nil {
		return nil, storageErr("count issues", err)
	}

	return &IssuePage{
		Issues:     docstore.NormalizeDocuments(issues),
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
	}, nil
}

// CountIssues counts the project's issues matching f.
func (e *Engine) CountIssues(ctx context.Context, projectName string, f IssueFilter) (*IssueCount, error) {
	ids, err := e.ResolveIssueSystemIDs(ctx, projectName)
	if err != nil {
		return nil, err
	}
	n, err := e.store.Count(ctx, docstore.IssueCollection, buildIssueFilter(ids, f))
	if err != nil {
		return nil, storageErr("count issues", err)
	}
	return &IssueCount{Count: n}, nil
}

// ListUniqueValues returns the distinct values of attribute across the
// documents of collection that match filters. filters may be nil; see
// docstore.FilterFromMap for the accepted shapes.
func (e *Engine) ListUniqueValues(ctx context.Context, collection, attribute string, filters map[string]interface{}) (*UniqueValues, error) {
	names, err := e.store.CollectionNames(ctx)
	if err != nil {
		return nil, storageErr("list collections", err)
	}
	if !contains(names, collection) {
		return nil, errors.NewCollectionNotFoundError(collection)
	}

	filter, err := docstore.FilterFromMap(filters)
	if err != nil {
		return nil, errors.NewInvalidArgumentsError("list_unique_values", err)
	}
	values, err := e.store.Distinct(ctx, collection, attribute, filter)
	if err != nil {
		return nil, storageErr("distinct "+attribute, err)
	}
	return &UniqueValues{UniqueValues: docstore.NormalizeValues(values)}, nil
}

// GetProjectAssignees lists the distinct assignees of the project's issues
// matching f, in the order they are first seen. f.AssigneeID is ignored.
// Issues without an assignee are skipped.
func (e *Engine) GetProjectAssignees(ctx context.Context, projectName string, f IssueFilter) (*Assignees, error) {
	ids, err := e.ResolveIssueSystemIDs(ctx, projectName)
	if err != nil {
		return nil, err
	}
	f.AssigneeID = ""
	assignees, err := e.assignees(ctx, buildIssueFilter(ids, f))
	if err != nil {
		return nil, err
	}
	return &Assignees{
		Assignees: docstore.NormalizeValues(assignees),
		Count:     len(assignees),
	}, nil
}

// assignees returns the raw assignee values of issues matching filter.
func (e *Engine) assignees(ctx context.Context, filter docstore.Filter) ([]docstore.Value, error) {
	issues, err := e.store.Find(ctx, docstore.IssueCollection, filter,
		docstore.FindOptions{Projection: []string{"assignee_id"}})
	if err != nil {
		return nil, storageErr("find assignees", err)
	}

	seen := make(map[string]bool)
	out := make([]docstore.Value, 0)
	for _, issue := range issues {
		v, ok := issue.Get("assignee_id")
		if !ok || v == nil || v.Kind() == docstore.KindNull {
			continue
		}
		key := docstore.Key(v)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out, nil
}

// GetIssueDetails looks up the issue whose external_id equals identifier
// and gathers its comments, events and linked commits.
func (e *Engine) GetIssueDetails(ctx context.Context, identifier string) (*IssueDetails, error) {
	issue, found, err := e.store.FindOne(ctx, docstore.IssueCollection,
		docstore.Eq{Field: "external_id", Value: docstore.String(identifier)})
	if err != nil {
		return nil, storageErr("find issue", err)
	}
	if !found {
		return nil, errors.NewIssueNotFoundError(identifier)
	}
	issueID := issue.ID()

	comments, err := e.store.Find(ctx, docstore.IssueCommentCollection,
		refersTo("issue_id", issueID), docstore.FindOptions{})
	if err != nil {
		return nil, storageErr("find comments", err)
	}
	events, err := e.store.Find(ctx, docstore.EventCollection,
		refersTo("issue_id", issueID), docstore.FindOptions{})
	if err != nil {
		return nil, storageErr("find events", err)
	}
	commits, err := e.store.Find(ctx, docstore.CommitCollection,
		refersTo("linked_issue_ids", issueID), docstore.FindOptions{})
	if err != nil {
		return nil, storageErr("find commits", err)
	}

	return &IssueDetails{
		Issue:         docstore.NormalizeDocument(issue),
		Comments:      docstore.NormalizeDocuments(comments),
		Events:        docstore.NormalizeDocuments(events),
		LinkedCommits: docstore.NormalizeDocuments(commits),
	}, nil
}

// GetIssueComments returns every comment whose issue_id refers to issueID,
// whether stored as a native identifier or as text.
func (e *Engine) GetIssueComments(ctx context.Context, issueID string) (*IssueComments, error) {
	comments, err := e.store.Find(ctx, docstore.IssueCommentCollection,
		docstore.MatchID("issue_id", docstore.ParseID(issueID)), docstore.FindOptions{})
	if err != nil {
		return nil, storageErr("find comments", err)
	}
	return &IssueComments{Comments: docstore.NormalizeDocuments(comments)}, nil
}

// refersTo matches field against a stored identifier. Native identifiers
// also match their hex text.
func refersTo(field string, id docstore.Value) docstore.Filter {
	if oid, ok := id.(docstore.ObjectID); ok {
		return docstore.In{Field: field, Values: []docstore.Value{oid, docstore.String(oid.Hex())}}
	}
	return docstore.Eq{Field: field, Value: id}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
