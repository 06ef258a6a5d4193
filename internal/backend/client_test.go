package backend

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/davidcforbes/beads-kanban/internal/types"
)

const listFixture = `[
  {
    "id": "bd-1",
    "title": "Fix flaky watcher test",
    "status": "in_progress",
    "priority": 1,
    "issue_type": "bug",
    "assignee": "alice",
    "labels": ["backend", "flaky"],
    "created_at": "2025-06-01T10:00:00Z",
    "updated_at": "2025-06-02T09:30:00Z",
    "dependency_count": 2,
    "dependent_count": 0,
    "comment_count": 3
  },
  {
    "id": "bd-2",
    "title": "Document the cache layer",
    "status": "in_progress",
    "priority": 3,
    "issue_type": "task",
    "created_at": "2025-06-01T11:00:00Z",
    "updated_at": "2025-06-01T11:00:00Z",
    "dependency_count": 0,
    "dependent_count": 1,
    "comment_count": 0
  }
]`

func TestClientList(t *testing.T) {
	fake := NewFakeRunner()
	fake.Stub("list", listFixture)
	c := NewClient(fake, 0, 0)

	rows, err := c.List(context.Background(), ListRequest{Status: types.StatusInProgress, Limit: 51})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].ID != "bd-1" || rows[0].Status != types.StatusInProgress {
		t.Errorf("row 0 = %+v", rows[0].Issue)
	}
	if len(rows[0].Labels) != 2 || rows[0].Labels[0] != "backend" {
		t.Errorf("labels not decoded: %v", rows[0].Labels)
	}
	if rows[0].DependencyCount != 2 || rows[0].CommentCount != 3 {
		t.Errorf("counts not decoded: %+v", rows[0])
	}

	calls := fake.Calls()
	if len(calls) != 1 {
		t.Fatalf("got %d backend calls, want 1", len(calls))
	}
	wantArgs := []string{"list", "--status", "in_progress", "--limit", "51", "--json"}
	if strings.Join(calls[0].Args, " ") != strings.Join(wantArgs, " ") {
		t.Errorf("argv = %v, want %v", calls[0].Args, wantArgs)
	}
	if calls[0].Timeout != DefaultReadTimeout {
		t.Errorf("read timeout = %v, want %v", calls[0].Timeout, DefaultReadTimeout)
	}
}

func TestClientShow(t *testing.T) {
	fake := NewFakeRunner()
	fake.Stub("show", `[
  {
    "id": "bd-5",
    "title": "Ship the exporter",
    "status": "open",
    "priority": 2,
    "issue_type": "feature",
    "created_at": "2025-06-01T10:00:00Z",
    "updated_at": "2025-06-01T10:00:00Z",
    "labels": ["export"],
    "dependencies": [
      {
        "id": "bd-3",
        "title": "Define the wire format",
        "status": "closed",
        "priority": 2,
        "issue_type": "task",
        "created_at": "2025-05-20T10:00:00Z",
        "updated_at": "2025-05-25T10:00:00Z",
        "dependency_type": "blocks"
      }
    ],
    "comments": [
      {"id": 1, "issue_id": "bd-5", "author": "bob", "text": "started on this", "created_at": "2025-06-01T12:00:00Z"}
    ],
    "parent": "bd-2"
  }
]`)
	c := NewClient(fake, 0, 0)

	d, err := c.Show(context.Background(), "bd-5")
	if err != nil {
		t.Fatalf("Show: %v", err)
	}
	if d.ID != "bd-5" {
		t.Errorf("id = %q", d.ID)
	}
	if len(d.Dependencies) != 1 || d.Dependencies[0].DependencyType != types.DepBlocks {
		t.Errorf("dependencies = %+v", d.Dependencies)
	}
	if d.Parent == nil || *d.Parent != "bd-2" {
		t.Errorf("parent = %v", d.Parent)
	}
	if len(d.Comments) != 1 || d.Comments[0].Author != "bob" {
		t.Errorf("comments = %+v", d.Comments)
	}
}

func TestClientShowEmpty(t *testing.T) {
	fake := NewFakeRunner()
	fake.Stub("show", `[]`)
	c := NewClient(fake, 0, 0)

	_, err := c.Show(context.Background(), "bd-404")
	if KindOf(err) != KindMalformedResponse {
		t.Errorf("kind = %v, want %v (err: %v)", KindOf(err), KindMalformedResponse, err)
	}
}

func TestClientStats(t *testing.T) {
	fake := NewFakeRunner()
	fake.Stub("stats", `{
  "total_issues": 500,
  "open_issues": 60,
  "in_progress_issues": 12,
  "closed_issues": 424,
  "blocked_issues": 4,
  "deferred_issues": 0,
  "ready_issues": 56,
  "tombstone_issues": 0,
  "pinned_issues": 2,
  "average_lead_time_hours": 37.5
}`)
	c := NewClient(fake, 0, 0)

	stats, err := c.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.ClosedIssues != 424 || stats.ReadyIssues != 56 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.AverageLeadTime != 37.5 {
		t.Errorf("lead time = %v", stats.AverageLeadTime)
	}
	if fake.CallCount() != 1 {
		t.Errorf("stats took %d calls, want 1", fake.CallCount())
	}
}

func TestClientCount(t *testing.T) {
	fake := NewFakeRunner()
	fake.Stub("count", `{"count": 17}`)
	c := NewClient(fake, 0, 0)

	n, err := c.Count(context.Background(), types.StatusClosed)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 17 {
		t.Errorf("count = %d, want 17", n)
	}
	calls := fake.Calls()
	want := "count --status closed --json"
	if got := strings.Join(calls[0].Args, " "); got != want {
		t.Errorf("argv = %q, want %q", got, want)
	}
}

func TestClientCreate(t *testing.T) {
	fake := NewFakeRunner()
	fake.Stub("create", `{
  "id": "bd-42",
  "title": "New issue",
  "status": "open",
  "priority": 2,
  "issue_type": "task",
  "created_at": "2025-06-03T08:00:00Z",
  "updated_at": "2025-06-03T08:00:00Z"
}`)
	c := NewClient(fake, 0, 0)

	issue, err := c.Create(context.Background(), CreateRequest{Title: "New issue"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if issue.ID != "bd-42" {
		t.Errorf("id = %q", issue.ID)
	}
	if fake.Calls()[0].Timeout != DefaultWriteTimeout {
		t.Errorf("create should use the write timeout")
	}
}

func TestClientUpdate(t *testing.T) {
	fake := NewFakeRunner()
	fake.Stub("update", `[
  {
    "id": "bd-7",
    "title": "Renamed",
    "status": "in_progress",
    "priority": 2,
    "issue_type": "task",
    "created_at": "2025-06-01T10:00:00Z",
    "updated_at": "2025-06-04T10:00:00Z"
  }
]`)
	c := NewClient(fake, 0, 0)

	title := "Renamed"
	issue, err := c.Update(context.Background(), UpdateRequest{ID: "bd-7", Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if issue == nil || issue.Title != "Renamed" {
		t.Errorf("issue = %+v", issue)
	}
}

func TestClientUpdateEmptyOutput(t *testing.T) {
	fake := NewFakeRunner()
	fake.Stub("update", "")
	c := NewClient(fake, 0, 0)

	s := types.StatusClosed
	issue, err := c.Update(context.Background(), UpdateRequest{ID: "bd-7", Status: &s})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if issue != nil {
		t.Errorf("expected nil issue for empty backend output, got %+v", issue)
	}
}

func TestClientClose(t *testing.T) {
	fake := NewFakeRunner()
	fake.Stub("close", `[
  {
    "id": "bd-9",
    "title": "Done thing",
    "status": "closed",
    "priority": 2,
    "issue_type": "task",
    "close_reason": "fixed upstream",
    "created_at": "2025-06-01T10:00:00Z",
    "updated_at": "2025-06-05T10:00:00Z",
    "closed_at": "2025-06-05T10:00:00Z"
  }
]`)
	c := NewClient(fake, 0, 0)

	issue, err := c.Close(context.Background(), "bd-9", "fixed upstream")
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if issue.Status != types.StatusClosed || issue.ClosedAt == nil {
		t.Errorf("issue = %+v", issue)
	}
	want := "close bd-9 --reason fixed upstream --json"
	if got := strings.Join(fake.Calls()[0].Args, " "); got != want {
		t.Errorf("argv = %q, want %q", got, want)
	}
}

func TestClientDependencies(t *testing.T) {
	fake := NewFakeRunner()
	fake.Stub("dep add", `{"status": "ok"}`)
	fake.Stub("dep remove", `{"status": "ok"}`)
	c := NewClient(fake, 0, 0)

	if err := c.AddDependency(context.Background(), "bd-1", "bd-2", types.DepParentChild); err != nil {
		t.Fatalf("AddDependency: %v", err)
	}
	if err := c.AddDependency(context.Background(), "bd-3", "bd-4", ""); err != nil {
		t.Fatalf("AddDependency default type: %v", err)
	}
	if err := c.RemoveDependency(context.Background(), "bd-1", "bd-2"); err != nil {
		t.Fatalf("RemoveDependency: %v", err)
	}

	calls := fake.Calls()
	if got := strings.Join(calls[0].Args, " "); got != "dep add bd-1 bd-2 --type parent-child --json" {
		t.Errorf("argv = %q", got)
	}
	if got := strings.Join(calls[1].Args, " "); got != "dep add bd-3 bd-4 --json" {
		t.Errorf("argv = %q", got)
	}
	if got := strings.Join(calls[2].Args, " "); got != "dep remove bd-1 bd-2 --json" {
		t.Errorf("argv = %q", got)
	}
}

func TestClientAddComment(t *testing.T) {
	fake := NewFakeRunner()
	fake.Stub("comments add", `{"id": 12, "issue_id": "bd-1", "author": "alice", "text": "looks good", "created_at": "2025-06-05T10:00:00Z"}`)
	c := NewClient(fake, 0, 0)

	comment, err := c.AddComment(context.Background(), "bd-1", "looks good")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if comment.ID != 12 || comment.Author != "alice" {
		t.Errorf("comment = %+v", comment)
	}
	want := "comments add bd-1 looks good --json"
	if got := strings.Join(fake.Calls()[0].Args, " "); got != want {
		t.Errorf("argv = %q, want %q", got, want)
	}
}

func TestClientMalformedResponse(t *testing.T) {
	fake := NewFakeRunner()
	fake.Stub("list", `bd: database is locked`)
	c := NewClient(fake, 0, 0)

	_, err := c.List(context.Background(), ListRequest{})
	var be *Error
	if !errors.As(err, &be) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if be.Kind != KindMalformedResponse {
		t.Errorf("kind = %v", be.Kind)
	}
	if !strings.Contains(be.Detail, "database is locked") {
		t.Errorf("raw output not preserved: %q", be.Detail)
	}
}

func TestClientBackendErrorPassthrough(t *testing.T) {
	fake := NewFakeRunner()
	fake.StubExit("list", 1, "Error: no beads database found\n")
	c := NewClient(fake, 0, 0)

	_, err := c.List(context.Background(), ListRequest{})
	if KindOf(err) != KindBackend {
		t.Fatalf("kind = %v, want %v", KindOf(err), KindBackend)
	}
	if !strings.Contains(RawText(err), "no beads database") {
		t.Errorf("stderr not surfaced: %q", RawText(err))
	}
}
