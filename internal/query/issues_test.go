package query

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"sebot/internal/docstore"
	"sebot/internal/errors"
)

func externalIDs(t *testing.T, docs []docstore.Document) []string {
	t.Helper()
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		v, ok := d.Get("external_id")
		if !ok {
			t.Fatalf("issue without external_id: %v", d)
		}
		out = append(out, docstore.Text(v))
	}
	return out
}

func TestFetchProjectIssuesPagination(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	page, err := e.FetchProjectIssues(ctx, "zookeeper", IssueFilter{}, 2, 10)
	if err != nil {
		t.Fatalf("FetchProjectIssues: %v", err)
	}
	if page.Page != 2 || page.PageSize != 10 || page.TotalCount != 25 {
		t.Errorf("page = %d, size = %d, total = %d; want 2, 10, 25", page.Page, page.PageSize, page.TotalCount)
	}
	got := externalIDs(t, page.Issues)
	if len(got) != 10 {
		t.Fatalf("len(issues) = %d, want 10", len(got))
	}
	for i, id := range got {
		if want := fmt.Sprintf("ZOOKEEPER-%d", i+11); id != want {
			t.Errorf("issues[%d] = %s, want %s", i, id, want)
		}
	}

	past, err := e.FetchProjectIssues(ctx, "zookeeper", IssueFilter{}, 4, 10)
	if err != nil {
		t.Fatalf("FetchProjectIssues(page 4): %v", err)
	}
	if len(past.Issues) != 0 || past.TotalCount != 25 {
		t.Errorf("past end: %d issues, total %d; want 0, 25", len(past.Issues), past.TotalCount)
	}
	raw, _ := json.Marshal(past)
	if !strings.Contains(string(raw), `"issues":[]`) {
		t.Errorf("empty page JSON = %s, want issues []", raw)
	}
}

func TestFetchProjectIssuesPageDefaults(t *testing.T) {
	m, _ := newFixture(t)
	e := NewEngine(m, testLogger(), Options{DefaultPageSize: 50, MaxPageSize: 20})
	ctx := context.Background()

	tests := []struct {
		name         string
		page, size   int
		wantPage     int
		wantSize     int
		wantReturned int
	}{
		{"defaults", 0, 0, 1, 20, 20},
		{"negative page", -3, 5, 1, 5, 5},
		{"capped size", 1, 1000, 1, 20, 20},
		{"capped size offsets by the cap", 2, 1000, 2, 20, 5},
		{"last partial page", 3, 10, 3, 10, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := e.FetchProjectIssues(ctx, "zookeeper", IssueFilter{}, tt.page, tt.size)
			if err != nil {
				t.Fatal(err)
			}
			if page.Page != tt.wantPage || page.PageSize != tt.wantSize || len(page.Issues) != tt.wantReturned {
				t.Errorf("got page=%d size=%d returned=%d; want %d %d %d",
					page.Page, page.PageSize, len(page.Issues), tt.wantPage, tt.wantSize, tt.wantReturned)
			}
		})
	}
}

func TestFetchProjectIssuesNormalizes(t *testing.T) {
	e, x := newTestEngine(t)

	page, err := e.FetchProjectIssues(context.Background(), "zookeeper", IssueFilter{}, 1, 3)
	if err != nil {
		t.Fatal(err)
	}
	for _, issue := range page.Issues {
		if !docstore.IsPlain(issue) {
			t.Errorf("issue not normalized: %v", issue)
		}
	}
	third := page.Issues[2]
	if id, _ := third.Get("_id"); id != docstore.String(x.issue[3].Hex()) {
		t.Errorf("_id = %#v, want hex string", id)
	}
	if created, _ := third.Get("created_at"); created != docstore.String("2019-03-03T10:00:00") {
		t.Errorf("created_at = %#v", created)
	}
}

func TestCountMatchesFetchTotal(t *testing.T) {
	e, x := newTestEngine(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter IssueFilter
		want   int64
	}{
		{"none", IssueFilter{}, 25},
		{"open", IssueFilter{Status: "Open"}, 13},
		{"closed critical", IssueFilter{Status: "Closed", Priority: "Critical"}, 2},
		{"issue type", IssueFilter{IssueType: "Bug"}, 25},
		{"unknown type", IssueFilter{IssueType: "Epic"}, 0},
		{"text assignee", IssueFilter{AssigneeID: "dev-7"}, 9},
		{"native assignee", IssueFilter{AssigneeID: x.assigneeOID.Hex()}, 8},
		{"reporter stored both ways", IssueFilter{ReporterID: x.reporter.Hex()}, 25},
		{"open text assignee", IssueFilter{Status: "Open", AssigneeID: "dev-7"}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, err := e.CountIssues(ctx, "zookeeper", tt.filter)
			if err != nil {
				t.Fatalf("CountIssues: %v", err)
			}
			page, err := e.FetchProjectIssues(ctx, "zookeeper", tt.filter, 1, 500)
			if err != nil {
				t.Fatalf("FetchProjectIssues: %v", err)
			}
			if count.Count != tt.want {
				t.Errorf("count = %d, want %d", count.Count, tt.want)
			}
			if count.Count != page.TotalCount || int64(len(page.Issues)) != page.TotalCount {
				t.Errorf("count %d, total_count %d, returned %d disagree", count.Count, page.TotalCount, len(page.Issues))
			}
		})
	}
}

func TestProjectNotFound(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	calls := map[string]func() error{
		"fetch": func() error {
			_, err := e.FetchProjectIssues(ctx, "cassandra", IssueFilter{}, 1, 10)
			return err
		},
		"count": func() error {
			_, err := e.CountIssues(ctx, "cassandra", IssueFilter{})
			return err
		},
		"assignees": func() error {
			_, err := e.GetProjectAssignees(ctx, "cassandra", IssueFilter{})
			return err
		},
		"expertise": func() error {
			_, err := e.AnalyzeDeveloperExpertise(ctx, "cassandra", "ui", "crash")
			return err
		},
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			err := call()
			if err == nil {
				t.Fatal("expected error")
			}
			if errors.Code(err) != errors.ProjectNotFound {
				t.Errorf("code = %s, want %s", errors.Code(err), errors.ProjectNotFound)
			}
			if !strings.Contains(errors.Text(err), "cassandra") {
				t.Errorf("error %q does not name the project", errors.Text(err))
			}
		})
	}
}

func TestProjectWithoutIssueSystems(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	page, err := e.FetchProjectIssues(ctx, "empty", IssueFilter{}, 1, 10)
	if err != nil {
		t.Fatalf("FetchProjectIssues: %v", err)
	}
	if page.TotalCount != 0 || len(page.Issues) != 0 {
		t.Errorf("got %d issues, total %d; want none", len(page.Issues), page.TotalCount)
	}
	assignees, err := e.GetProjectAssignees(ctx, "empty", IssueFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if assignees.Count != 0 || assignees.Assignees == nil {
		t.Errorf("assignees = %+v, want empty non-nil", assignees)
	}
}

func TestListUniqueValues(t *testing.T) {
	e, x := newTestEngine(t)
	ctx := context.Background()

	got, err := e.ListUniqueValues(ctx, "issue", "priority", map[string]interface{}{"issue_type": "Bug"})
	if err != nil {
		t.Fatalf("ListUniqueValues: %v", err)
	}
	if len(got.UniqueValues) != 2 || got.UniqueValues[0] != str("Major") || got.UniqueValues[1] != str("Critical") {
		t.Errorf("unique_values = %v, want [Major Critical]", got.UniqueValues)
	}

	byProject, err := e.ListUniqueValues(ctx, "issue_system", "url",
		map[string]interface{}{"project_id": map[string]interface{}{"$oid": x.zookeeper.Hex()}})
	if err != nil {
		t.Fatal(err)
	}
	if len(byProject.UniqueValues) != 1 || byProject.UniqueValues[0] != str("https://issues.apache.org/jira") {
		t.Errorf("unique_values = %v", byProject.UniqueValues)
	}

	ids, err := e.ListUniqueValues(ctx, "issue_comment", "issue_id", nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range ids.UniqueValues {
		if _, ok := v.(docstore.String); !ok {
			t.Errorf("value %#v not normalized to text", v)
		}
	}

	empty, err := e.ListUniqueValues(ctx, "tag", "name", nil)
	if err != nil {
		t.Fatal(err)
	}
	if empty.UniqueValues == nil || len(empty.UniqueValues) != 0 {
		t.Errorf("unique_values = %#v, want empty", empty.UniqueValues)
	}
}

func TestListUniqueValuesFilters(t *testing.T) {
	e, x := newTestEngine(t)
	ctx := context.Background()

	// Results only ever carry identifiers as hex text.
	byHex, err := e.ListUniqueValues(ctx, "issue_system", "url",
		map[string]interface{}{"project_id": x.zookeeper.Hex()})
	if err != nil {
		t.Fatal(err)
	}
	if len(byHex.UniqueValues) != 1 || byHex.UniqueValues[0] != str("https://issues.apache.org/jira") {
		t.Errorf("unique_values = %v", byHex.UniqueValues)
	}

	notOpen, err := e.ListUniqueValues(ctx, "issue", "status",
		map[string]interface{}{"status": map[string]interface{}{"$ne": "Open"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(notOpen.UniqueValues) == 0 {
		t.Fatal("$ne filter matched nothing")
	}
	for _, v := range notOpen.UniqueValues {
		if v == str("Open") {
			t.Errorf("unique_values = %v, should exclude Open", notOpen.UniqueValues)
		}
	}

	_, err = e.ListUniqueValues(ctx, "issue", "status",
		map[string]interface{}{"status": map[string]interface{}{"$regex": "Op"}})
	if errors.Code(err) != errors.InvalidArguments {
		t.Fatalf("code = %s, want %s", errors.Code(err), errors.InvalidArguments)
	}
}

func TestListUniqueValuesUnknownCollection(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.ListUniqueValues(context.Background(), "pull_request", "state", nil)
	if errors.Code(err) != errors.CollectionNotFound {
		t.Fatalf("code = %s, want %s", errors.Code(err), errors.CollectionNotFound)
	}
	if errors.Text(err) != "Collection 'pull_request' does not exist." {
		t.Errorf("text = %q", errors.Text(err))
	}
}

func TestGetProjectAssignees(t *testing.T) {
	e, x := newTestEngine(t)
	ctx := context.Background()

	got, err := e.GetProjectAssignees(ctx, "zookeeper", IssueFilter{})
	if err != nil {
		t.Fatalf("GetProjectAssignees: %v", err)
	}
	if got.Count != 2 || len(got.Assignees) != 2 {
		t.Fatalf("assignees = %v, want 2", got.Assignees)
	}
	if got.Assignees[0] != str("dev-7") || got.Assignees[1] != str(x.assigneeOID.Hex()) {
		t.Errorf("assignees = %v, want [dev-7 %s]", got.Assignees, x.assigneeOID.Hex())
	}

	hadoop, err := e.GetProjectAssignees(ctx, "hadoop", IssueFilter{Status: "Resolved"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"dev-alpha1", x.hadoopDevB.Hex(), "dev-gamma3"}
	if hadoop.Count != len(want) {
		t.Fatalf("assignees = %v, want %v", hadoop.Assignees, want)
	}
	for i, w := range want {
		if hadoop.Assignees[i] != str(w) {
			t.Errorf("assignees[%d] = %v, want %s", i, hadoop.Assignees[i], w)
		}
	}

	ignored, err := e.GetProjectAssignees(ctx, "zookeeper", IssueFilter{AssigneeID: "dev-7"})
	if err != nil {
		t.Fatal(err)
	}
	if ignored.Count != 2 {
		t.Errorf("assignee filter should be ignored, got %v", ignored.Assignees)
	}
}

func TestGetIssueDetails(t *testing.T) {
	e, x := newTestEngine(t)
	ctx := context.Background()

	details, err := e.GetIssueDetails(ctx, "ZOOKEEPER-3")
	if err != nil {
		t.Fatalf("GetIssueDetails: %v", err)
	}
	if id, _ := details.Issue.Get("_id"); id != str(x.issue[3].Hex()) {
		t.Errorf("issue _id = %v", id)
	}
	if len(details.Comments) != 3 {
		t.Errorf("comments = %d, want 3", len(details.Comments))
	}
	if len(details.Events) != 1 {
		t.Errorf("events = %d, want 1", len(details.Events))
	}
	if len(details.LinkedCommits) != 1 {
		t.Errorf("linked_commits = %d, want 1", len(details.LinkedCommits))
	}
	for _, c := range details.Comments {
		if !docstore.IsPlain(c) {
			t.Errorf("comment not normalized: %v", c)
		}
	}
}

func TestGetIssueDetailsWithoutReferences(t *testing.T) {
	e, _ := newTestEngine(t)

	details, err := e.GetIssueDetails(context.Background(), "ZOOKEEPER-11")
	if err != nil {
		t.Fatalf("GetIssueDetails: %v", err)
	}
	raw, err := json.Marshal(details)
	if err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{`"comments":[]`, `"events":[]`, `"linked_commits":[]`} {
		if !strings.Contains(string(raw), field) {
			t.Errorf("JSON %s missing %s", raw, field)
		}
	}
}

func TestGetIssueDetailsExactMatch(t *testing.T) {
	e, _ := newTestEngine(t)

	for _, id := range []string{"zookeeper-3", "ZOOKEEPER-3 ", "ZOOKEEPER", "ZOOKEEPER-99"} {
		t.Run(id, func(t *testing.T) {
			_, err := e.GetIssueDetails(context.Background(), id)
			if errors.Code(err) != errors.IssueNotFound {
				t.Fatalf("code = %s, want %s", errors.Code(err), errors.IssueNotFound)
			}
			if want := fmt.Sprintf("Issue matching '%s' not found.", id); errors.Text(err) != want {
				t.Errorf("text = %q, want %q", errors.Text(err), want)
			}
		})
	}
}

func TestGetIssueComments(t *testing.T) {
	e, x := newTestEngine(t)
	ctx := context.Background()

	tests := []struct {
		name string
		id   string
		want int
	}{
		{"native and text references", x.issue[3].Hex(), 3},
		{"text identifier", "legacy-7", 1},
		{"no comments", x.issue[4].Hex(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.GetIssueComments(ctx, tt.id)
			if err != nil {
				t.Fatalf("GetIssueComments: %v", err)
			}
			if len(got.Comments) != tt.want || got.Comments == nil {
				t.Errorf("comments = %v, want %d", got.Comments, tt.want)
			}
		})
	}
}

func TestStorageFailure(t *testing.T) {
	e := NewEngine(failingStore{err: fmt.Errorf("connection refused")}, testLogger(), DefaultOptions())

	_, err := e.CountIssues(context.Background(), "zookeeper", IssueFilter{})
	if errors.Code(err) != errors.StorageFailure {
		t.Fatalf("code = %s, want %s", errors.Code(err), errors.StorageFailure)
	}
	if !strings.Contains(errors.Text(err), "connection refused") {
		t.Errorf("text = %q, want cause included", errors.Text(err))
	}
}
