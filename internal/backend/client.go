package backend

import (
	"bytes"
	"context"
	"time"

	json "github.com/goccy/go-json"

	"github.com/davidcforbes/beads-kanban/internal/types"
)

// maxRawDetail caps how much backend output an error carries around.
const maxRawDetail = 512

// Client wraps a Runner with one typed method per backend operation,
// decoding bd's JSON output into domain types. Reads and writes carry
// separate deadlines since mutations can trigger backend sync work.
//
// The client builds argv and decodes payloads; it does not validate
// identifiers or free text. Callers are expected to have run inputs
// through the validate and sanitize layers first.
type Client struct {
	runner       Runner
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewClient wires a client over the given runner. Zero timeouts keep
// the defaults (10s reads, 30s writes).
func NewClient(r Runner, readTimeout, writeTimeout time.Duration) *Client {
	if readTimeout <= 0 {
		readTimeout = DefaultReadTimeout
	}
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	return &Client{runner: r, readTimeout: readTimeout, writeTimeout: writeTimeout}
}

func (c *Client) read(ctx context.Context, args []string) (Result, error) {
	return c.runner.Run(ctx, Request{Args: args, Timeout: c.readTimeout})
}

func (c *Client) write(ctx context.Context, args []string) (Result, error) {
	return c.runner.Run(ctx, Request{Args: args, Timeout: c.writeTimeout})
}

// decode unmarshals backend stdout into v, preserving a bounded slice
// of the raw payload when it does not parse.
func decode(op string, res Result, v any) error {
	if err := json.Unmarshal(res.Stdout, v); err != nil {
		return &Error{
			Kind:   KindMalformedResponse,
			Op:     op,
			Detail: rawDetail(res.Stdout),
			Err:    err,
		}
	}
	return nil
}

func rawDetail(b []byte) string {
	s := string(bytes.TrimSpace(b))
	if len(s) > maxRawDetail {
		s = s[:maxRawDetail] + "..."
	}
	return s
}

func emptyOutput(res Result) bool {
	return len(bytes.TrimSpace(res.Stdout)) == 0
}

// List returns issues matching the request. Rows arrive with labels,
// dependency records and relationship counts populated.
func (c *Client) List(ctx context.Context, req ListRequest) ([]*types.IssueWithCounts, error) {
	res, err := c.read(ctx, req.args())
	if err != nil {
		return nil, err
	}
	var rows []*types.IssueWithCounts
	if err := decode("list", res, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Ready returns open issues with no open blockers, oldest first.
func (c *Client) Ready(ctx context.Context, req ReadyRequest) ([]*types.Issue, error) {
	res, err := c.read(ctx, req.args())
	if err != nil {
		return nil, err
	}
	var rows []*types.Issue
	if err := decode("ready", res, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Blocked returns every issue held by at least one open dependency.
// The backend accepts no filters or caps here; callers slice locally.
func (c *Client) Blocked(ctx context.Context) ([]*types.BlockedIssue, error) {
	res, err := c.read(ctx, []string{"blocked", "--json"})
	if err != nil {
		return nil, err
	}
	var rows []*types.BlockedIssue
	if err := decode("blocked", res, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Show fetches one issue with labels, both dependency directions and
// comments.
func (c *Client) Show(ctx context.Context, id string) (*types.IssueDetails, error) {
	res, err := c.read(ctx, []string{"show", id, "--json"})
	if err != nil {
		return nil, err
	}
	var rows []*types.IssueDetails
	if err := decode("show", res, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &Error{
			Kind:   KindMalformedResponse,
			Op:     "show",
			Detail: "backend returned no detail rows for " + id,
		}
	}
	return rows[0], nil
}

// Stats returns the aggregate issue counts in a single backend call.
func (c *Client) Stats(ctx context.Context) (*types.Statistics, error) {
	res, err := c.read(ctx, []string{"stats", "--json"})
	if err != nil {
		return nil, err
	}
	var stats types.Statistics
	if err := decode("stats", res, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Count returns the number of issues in one status. Cheaper than stats
// when only a single column needs refreshing.
func (c *Client) Count(ctx context.Context, status types.Status) (int, error) {
	args := []string{"count"}
	if status != "" {
		args = append(args, "--status", string(status))
	}
	args = append(args, "--json")
	res, err := c.read(ctx, args)
	if err != nil {
		return 0, err
	}
	var result struct {
		Count int `json:"count"`
	}
	if err := decode("count", res, &result); err != nil {
		return 0, err
	}
	return result.Count, nil
}

// Version reports the backend's version string.
func (c *Client) Version(ctx context.Context) (string, error) {
	res, err := c.read(ctx, []string{"version", "--json"})
	if err != nil {
		return "", err
	}
	var result struct {
		Version string `json:"version"`
	}
	if err := decode("version", res, &result); err != nil {
		return "", err
	}
	return result.Version, nil
}

// Create makes a new issue and returns it as the backend recorded it,
// ID assigned.
func (c *Client) Create(ctx context.Context, req CreateRequest) (*types.Issue, error) {
	res, err := c.write(ctx, req.args())
	if err != nil {
		return nil, err
	}
	var issue types.Issue
	if err := decode("create", res, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// Update applies the non-nil fields of req to one issue and returns
// the updated record, or nil when the backend reported nothing back.
func (c *Client) Update(ctx context.Context, req UpdateRequest) (*types.Issue, error) {
	res, err := c.write(ctx, req.args())
	if err != nil {
		return nil, err
	}
	// bd prints nothing when the update touched zero issues.
	if emptyOutput(res) {
		return nil, nil
	}
	var rows []*types.Issue
	if err := decode("update", res, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Close marks an issue closed, with an optional reason.
func (c *Client) Close(ctx context.Context, id, reason string) (*types.Issue, error) {
	args := []string{"close", id}
	if reason != "" {
		args = append(args, "--reason", reason)
	}
	args = append(args, "--json")
	res, err := c.write(ctx, args)
	if err != nil {
		return nil, err
	}
	if emptyOutput(res) {
		return nil, nil
	}
	var rows []*types.Issue
	if err := decode("close", res, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// AddDependency records that from depends on to. An empty depType
// keeps the backend default (blocks).
func (c *Client) AddDependency(ctx context.Context, from, to string, depType types.DependencyType) error {
	args := []string{"dep", "add", from, to}
	if depType != "" {
		args = append(args, "--type", string(depType))
	}
	args = append(args, "--json")
	_, err := c.write(ctx, args)
	return err
}

// RemoveDependency deletes the edge between from and to.
func (c *Client) RemoveDependency(ctx context.Context, from, to string) error {
	_, err := c.write(ctx, []string{"dep", "remove", from, to, "--json"})
	return err
}

// AddComment appends a comment and returns it as recorded.
func (c *Client) AddComment(ctx context.Context, id, text string) (*types.Comment, error) {
	res, err := c.write(ctx, []string{"comments", "add", id, text, "--json"})
	if err != nil {
		return nil, err
	}
	var comment types.Comment
	if err := decode("comments add", res, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}
