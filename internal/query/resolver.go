package query

import (
	"context"
	"sync"
	"time"

	"sebot/internal/docstore"
	"sebot/internal/errors"
)

// ResolveIssueSystemIDs returns the identifiers of every issue system that
// belongs to the project named projectName. A missing project is a
// PROJECT_NOT_FOUND error; a project without issue systems yields an empty
// slice.
func (e *Engine) ResolveIssueSystemIDs(ctx context.Context, projectName string) ([]docstore.Value, error) {
	if ids, ok := e.projects.get(projectName); ok {
		return ids, nil
	}

	project, found, err := e.store.FindOne(ctx, docstore.ProjectCollection,
		docstore.Eq{Field: "name", Value: docstore.String(projectName)})
	if err != nil {
		return nil, storageErr("find project", err)
	}
	if !found {
		return nil, errors.NewProjectNotFoundError(projectName)
	}

	systems, err := e.store.Find(ctx, docstore.IssueSystemCollection,
		docstore.Eq{Field: "project_id", Value: project.ID()},
		docstore.FindOptions{Projection: []string{"_id"}})
	if err != nil {
		return nil, storageErr("find issue systems", err)
	}

	ids := make([]docstore.Value, 0, len(systems))
	for _, s := range systems {
		ids = append(ids, s.ID())
	}

	e.logger.Debug("Resolved project",
		"project", projectName,
		"issue_systems", len(ids),
	)
	e.projects.put(projectName, ids)
	return ids, nil
}

// projectCache holds successful resolutions for a short time. Not-found
// results are never stored.
type projectCache struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.Mutex
	entries map[string]projectCacheEntry
}

type projectCacheEntry struct {
	ids     []docstore.Value
	expires time.Time
}

func newProjectCache(ttl time.Duration, now func() time.Time) *projectCache {
	return &projectCache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]projectCacheEntry),
	}
}

func (c *projectCache) get(name string) ([]docstore.Value, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[name]
	if !ok {
		return nil, false
	}
	if !c.now().Before(entry.expires) {
		delete(c.entries, name)
		return nil, false
	}
	return entry.ids, true
}

func (c *projectCache) put(name string, ids []docstore.Value) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = projectCacheEntry{ids: ids, expires: c.now().Add(c.ttl)}
}
