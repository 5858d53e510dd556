package query

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"sebot/internal/docstore"
)

func oid(t *testing.T, n int) primitive.ObjectID {
	t.Helper()
	id, err := primitive.ObjectIDFromHex(fmt.Sprintf("%024x", n))
	if err != nil {
		t.Fatalf("ObjectIDFromHex: %v", err)
	}
	return id
}

func doc(kv ...interface{}) docstore.Document {
	d := make(docstore.Document, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		d = append(d, docstore.Field{Key: kv[i].(string), Value: kv[i+1].(docstore.Value)})
	}
	return d
}

func str(s string) docstore.Value { return docstore.String(s) }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixture identifiers
type ids struct {
	zookeeper, hadoop, tied primitive.ObjectID
	zkSystem, hdSystem      primitive.ObjectID
	assigneeOID, reporter   primitive.ObjectID
	hadoopDevB              primitive.ObjectID
	issue                   map[int]primitive.ObjectID
}

// newFixture builds three projects:
//
//   - zookeeper: 25 issues spread over two issue systems, one stored with
//     a native identifier and one with a text identifier.
//   - hadoop: issues whose assignees score {7, 3, 4} for component
//     "security" and keywords "auth", plus one zero-score assignee.
//   - tied: four assignees with one resolved issue each.
//
// "empty" is a project without issue systems.
func newFixture(t *testing.T) (*docstore.Memory, ids) {
	t.Helper()
	m := docstore.NewMemory()
	x := ids{
		zookeeper:   oid(t, 0x100),
		hadoop:      oid(t, 0x101),
		tied:        oid(t, 0x102),
		zkSystem:    oid(t, 0x200),
		hdSystem:    oid(t, 0x201),
		assigneeOID: oid(t, 0x300),
		reporter:    oid(t, 0x301),
		hadoopDevB:  oid(t, 0x302),
		issue:       make(map[int]primitive.ObjectID),
	}

	m.Insert(docstore.ProjectCollection,
		doc("_id", docstore.ObjectID(x.zookeeper), "name", str("zookeeper")),
		doc("_id", docstore.ObjectID(x.hadoop), "name", str("hadoop")),
		doc("_id", docstore.ObjectID(x.tied), "name", str("tied")),
		doc("_id", docstore.Int(99), "name", str("empty")),
	)
	m.Insert(docstore.IssueSystemCollection,
		doc("_id", docstore.ObjectID(x.zkSystem), "project_id", docstore.ObjectID(x.zookeeper), "url", str("https://issues.apache.org/jira")),
		doc("_id", str("zk-legacy"), "project_id", docstore.ObjectID(x.zookeeper)),
		doc("_id", docstore.ObjectID(x.hdSystem), "project_id", docstore.ObjectID(x.hadoop)),
		doc("_id", str("tied-sys"), "project_id", docstore.ObjectID(x.tied)),
	)

	for i := 1; i <= 25; i++ {
		id := oid(t, 0x1000+i)
		x.issue[i] = id

		system := docstore.Value(docstore.ObjectID(x.zkSystem))
		if i%2 == 0 {
			system = str("zk-legacy")
		}
		status, priority := "Open", "Major"
		if i%2 == 0 {
			status = "Closed"
		}
		if i%5 == 0 {
			priority = "Critical"
		}
		reporter := docstore.Value(docstore.ObjectID(x.reporter))
		if i%2 == 1 {
			reporter = str(x.reporter.Hex())
		}

		d := doc(
			"_id", docstore.ObjectID(id),
			"issue_system_id", system,
			"external_id", str(fmt.Sprintf("ZOOKEEPER-%d", i)),
			"status", str(status),
			"priority", str(priority),
			"issue_type", str("Bug"),
			"reporter_id", reporter,
			"created_at", docstore.DateTime(time.Date(2019, 3, i, 10, 0, 0, 0, time.UTC)),
		)
		switch i % 3 {
		case 0:
			d = append(d, docstore.Field{Key: "assignee_id", Value: docstore.ObjectID(x.assigneeOID)})
		case 1:
			d = append(d, docstore.Field{Key: "assignee_id", Value: str("dev-7")})
		}
		m.Insert(docstore.IssueCollection, d)
	}

	// Comments, events and commits for ZOOKEEPER-3.
	m.Insert(docstore.IssueCommentCollection,
		doc("_id", docstore.Int(1), "issue_id", docstore.ObjectID(x.issue[3]), "comment", str("first")),
		doc("_id", docstore.Int(2), "issue_id", docstore.ObjectID(x.issue[3]), "comment", str("second")),
		doc("_id", docstore.Int(3), "issue_id", str(x.issue[3].Hex()), "comment", str("imported")),
		doc("_id", docstore.Int(4), "issue_id", docstore.ObjectID(x.issue[5]), "comment", str("elsewhere")),
		doc("_id", docstore.Int(5), "issue_id", str("legacy-7"), "comment", str("text reference")),
	)
	m.Insert(docstore.EventCollection,
		doc("_id", docstore.Int(1), "issue_id", docstore.ObjectID(x.issue[3]), "status", str("resolved")),
	)
	m.Insert(docstore.CommitCollection,
		doc("_id", docstore.Int(1), "linked_issue_ids", docstore.Array{docstore.ObjectID(x.issue[3]), docstore.ObjectID(x.issue[4])}),
		doc("_id", docstore.Int(2), "linked_issue_ids", docstore.Array{docstore.ObjectID(x.issue[9])}),
	)

	hd := docstore.ObjectID(x.hdSystem)
	devB := docstore.ObjectID(x.hadoopDevB)
	m.Insert(docstore.IssueCollection,
		// dev-alpha1: component 3, keyword 0, resolved 1.
		doc("issue_system_id", hd, "assignee_id", str("dev-alpha1"), "component", str("Security"), "title", str("Fix login"), "status", str("Resolved")),
		doc("issue_system_id", hd, "assignee_id", str("dev-alpha1"), "component", str("core"), "title", str("security hole"), "status", str("Open")),
		doc("issue_system_id", hd, "assignee_id", str("dev-alpha1"), "component", str("security-ui"), "title", str("x"), "desc", str("y"), "status", str("resolved")),
		// devB: component 0, keyword 2, resolved 1.
		doc("issue_system_id", hd, "assignee_id", devB, "component", str("network"), "title", str("OAuth refresh"), "status", str("Resolved")),
		doc("issue_system_id", hd, "assignee_id", devB, "title", str("timeout"), "desc", str("Authentication timeout"), "status", str("Open")),
		// dev-gamma3: component 1, keyword 1, resolved 1.
		doc("issue_system_id", hd, "assignee_id", str("dev-gamma3"), "component", str("Security"), "title", str("authorization check"), "status", str("Resolved")),
		// zero score
		doc("issue_system_id", hd, "assignee_id", str("dev-delta4"), "title", str("docs"), "status", str("Open")),
		// no assignee
		doc("issue_system_id", hd, "component", str("security"), "status", str("Resolved")),
		doc("issue_system_id", hd, "assignee_id", docstore.Null{}, "component", str("security"), "status", str("Resolved")),
	)
	// Outside hadoop's issue systems.
	m.Insert(docstore.IssueCollection,
		doc("issue_system_id", str("orphan-sys"), "assignee_id", str("dev-gamma3"), "component", str("security"), "status", str("Resolved")),
	)

	for _, dev := range []string{"tie-w", "tie-x", "tie-y", "tie-z"} {
		m.Insert(docstore.IssueCollection,
			doc("issue_system_id", str("tied-sys"), "assignee_id", str(dev), "status", str("Resolved")),
		)
	}

	m.CreateCollection("tag")
	return m, x
}

func newTestEngine(t *testing.T) (*Engine, ids) {
	t.Helper()
	m, x := newFixture(t)
	return NewEngine(m, testLogger(), DefaultOptions()), x
}

// countingStore counts project lookups.
type countingStore struct {
	docstore.Store
	mu       sync.Mutex
	findOnes int
}

func (c *countingStore) FindOne(ctx context.Context, collection string, filter docstore.Filter) (docstore.Document, bool, error) {
	c.mu.Lock()
	c.findOnes++
	c.mu.Unlock()
	return c.Store.FindOne(ctx, collection, filter)
}

func (c *countingStore) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.findOnes
}

// failingStore fails every operation.
type failingStore struct {
	err error
}

func (f failingStore) CollectionNames(context.Context) ([]string, error) { return nil, f.err }
func (f failingStore) FindOne(context.Context, string, docstore.Filter) (docstore.Document, bool, error) {
	return nil, false, f.err
}
func (f failingStore) Find(context.Context, string, docstore.Filter, docstore.FindOptions) ([]docstore.Document, error) {
	return nil, f.err
}
func (f failingStore) Count(context.Context, string, docstore.Filter) (int64, error) { return 0, f.err }
func (f failingStore) Distinct(context.Context, string, string, docstore.Filter) ([]docstore.Value, error) {
	return nil, f.err
}
func (f failingStore) Close(context.Context) error { return nil }
