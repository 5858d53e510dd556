package query

import (
	"context"
	"testing"
	"time"

	"sebot/internal/docstore"
	"sebot/internal/errors"
)

func TestResolveIssueSystemIDs(t *testing.T) {
	e, x := newTestEngine(t)
	ctx := context.Background()

	ids, err := e.ResolveIssueSystemIDs(ctx, "zookeeper")
	if err != nil {
		t.Fatalf("ResolveIssueSystemIDs: %v", err)
	}
	if len(ids) != 2 || ids[0] != docstore.ObjectID(x.zkSystem) || ids[1] != docstore.String("zk-legacy") {
		t.Errorf("ids = %v", ids)
	}

	empty, err := e.ResolveIssueSystemIDs(ctx, "empty")
	if err != nil {
		t.Fatal(err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("ids = %#v, want empty slice", empty)
	}

	_, err = e.ResolveIssueSystemIDs(ctx, "Zookeeper")
	if errors.Code(err) != errors.ProjectNotFound {
		t.Errorf("name match must be exact, got %v", err)
	}
}

func TestResolverCache(t *testing.T) {
	m, _ := newFixture(t)
	store := &countingStore{Store: m}
	e := NewEngine(store, testLogger(), Options{ResolverTTL: time.Minute})

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	e.projects.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := e.ResolveIssueSystemIDs(ctx, "zookeeper"); err != nil {
			t.Fatal(err)
		}
	}
	if store.calls() != 1 {
		t.Errorf("project lookups = %d, want 1 while cached", store.calls())
	}

	now = now.Add(2 * time.Minute)
	if _, err := e.ResolveIssueSystemIDs(ctx, "zookeeper"); err != nil {
		t.Fatal(err)
	}
	if store.calls() != 2 {
		t.Errorf("project lookups = %d, want 2 after expiry", store.calls())
	}

	for i := 0; i < 2; i++ {
		if _, err := e.ResolveIssueSystemIDs(ctx, "cassandra"); errors.Code(err) != errors.ProjectNotFound {
			t.Fatalf("err = %v, want not found", err)
		}
	}
	if store.calls() != 4 {
		t.Errorf("project lookups = %d, want 4; misses must not be cached", store.calls())
	}
}

func TestResolverCacheDisabled(t *testing.T) {
	m, _ := newFixture(t)
	store := &countingStore{Store: m}
	e := NewEngine(store, testLogger(), DefaultOptions())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := e.ResolveIssueSystemIDs(ctx, "zookeeper"); err != nil {
			t.Fatal(err)
		}
	}
	if store.calls() != 2 {
		t.Errorf("project lookups = %d, want 2", store.calls())
	}
}
