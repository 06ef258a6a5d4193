// Package summarize produces short AI summaries of board cards via the
// Anthropic Messages API. Strictly opt-in: nothing in the board calls
// it on its own, only the explicit show --summarize path, and it is
// unavailable without ANTHROPIC_API_KEY.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"os"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/davidcforbes/beads-kanban/internal/telemetry"
	"github.com/davidcforbes/beads-kanban/internal/types"
)

const (
	defaultModel     = "claude-3-5-haiku-latest"
	maxRetries       = 3
	initialBackoff   = 1 * time.Second
	maxSummaryTokens = 512
)

// ErrNoAPIKey is returned by New when no Anthropic API key is set.
// Callers should treat it as "feature off", not as a failure.
var ErrNoAPIKey = errors.New("anthropic API key required")

// Summarizer renders a card into a prompt and asks a haiku-class model
// for a few sentences of prose.
type Summarizer struct {
	client         anthropic.Client
	model          anthropic.Model
	tmpl           *template.Template
	maxRetries     int
	initialBackoff time.Duration
}

// New creates a Summarizer using ANTHROPIC_API_KEY from the
// environment. The model name comes from configuration; empty falls
// back to the default haiku-class model. Extra options are passed to
// the SDK client (tests point it at a local server).
func New(model string, opts ...option.RequestOption) (*Summarizer, error) {
	key := os.Getenv("ANTHROPIC_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("%w: set ANTHROPIC_API_KEY to enable card summaries", ErrNoAPIKey)
	}
	if model == "" {
		model = defaultModel
	}

	tmpl, err := template.New("card").Parse(cardPromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse summary template: %w", err)
	}

	clientOpts := append([]option.RequestOption{option.WithAPIKey(key)}, opts...)

	aiMetricsOnce.Do(initAIMetrics)

	return &Summarizer{
		client:         anthropic.NewClient(clientOpts...),
		model:          anthropic.Model(model),
		tmpl:           tmpl,
		maxRetries:     maxRetries,
		initialBackoff: initialBackoff,
	}, nil
}

// Summarize asks the model for a short prose summary of the card.
// Rate limits, server errors, and network timeouts are retried with
// exponential backoff; anything else fails on the first attempt.
func (s *Summarizer) Summarize(ctx context.Context, card *types.CardDetails) (string, error) {
	prompt, err := s.renderPrompt(card)
	if err != nil {
		return "", fmt.Errorf("render summary prompt: %w", err)
	}
	return s.callWithRetry(ctx, prompt)
}

// aiMetrics holds lazily-initialized OTel instruments for Anthropic
// API calls.
var aiMetrics struct {
	inputTokens  metric.Int64Counter
	outputTokens metric.Int64Counter
	duration     metric.Float64Histogram
}

var aiMetricsOnce sync.Once

func initAIMetrics() {
	m := telemetry.Meter("github.com/davidcforbes/beads-kanban/ai")
	aiMetrics.inputTokens, _ = m.Int64Counter("bdk.ai.input_tokens",
		metric.WithDescription("Anthropic API input tokens consumed"),
		metric.WithUnit("{token}"),
	)
	aiMetrics.outputTokens, _ = m.Int64Counter("bdk.ai.output_tokens",
		metric.WithDescription("Anthropic API output tokens generated"),
		metric.WithUnit("{token}"),
	)
	aiMetrics.duration, _ = m.Float64Histogram("bdk.ai.request.duration",
		metric.WithDescription("Anthropic API request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
}

func (s *Summarizer) callWithRetry(ctx context.Context, prompt string) (string, error) {
	tracer := telemetry.Tracer("github.com/davidcforbes/beads-kanban/ai")
	ctx, span := tracer.Start(ctx, "anthropic.messages.new")
	defer span.End()
	span.SetAttributes(
		attribute.String("bdk.ai.model", string(s.model)),
		attribute.String("bdk.ai.operation", "summarize"),
	)

	params := anthropic.MessageNewParams{
		Model:     s.model,
		MaxTokens: maxSummaryTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := s.initialBackoff * time.Duration(math.Pow(2, float64(attempt-1)))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		t0 := time.Now()
		message, err := s.client.Messages.New(ctx, params)
		ms := float64(time.Since(t0).Milliseconds())

		if err == nil {
			modelAttr := attribute.String("bdk.ai.model", string(s.model))
			if aiMetrics.inputTokens != nil {
				aiMetrics.inputTokens.Add(ctx, message.Usage.InputTokens, metric.WithAttributes(modelAttr))
				aiMetrics.outputTokens.Add(ctx, message.Usage.OutputTokens, metric.WithAttributes(modelAttr))
				aiMetrics.duration.Record(ctx, ms, metric.WithAttributes(modelAttr))
			}
			span.SetAttributes(
				attribute.Int64("bdk.ai.input_tokens", message.Usage.InputTokens),
				attribute.Int64("bdk.ai.output_tokens", message.Usage.OutputTokens),
				attribute.Int("bdk.ai.attempts", attempt+1),
			)

			if len(message.Content) == 0 {
				return "", fmt.Errorf("unexpected response format: no content blocks")
			}
			content := message.Content[0]
			if content.Type != "text" {
				return "", fmt.Errorf("unexpected response format: not a text block (type=%s)", content.Type)
			}
			return strings.TrimSpace(content.Text), nil
		}

		lastErr = err

		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		if !isRetryable(err) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return "", fmt.Errorf("summary request failed: %w", err)
		}
	}

	if lastErr != nil {
		span.RecordError(lastErr)
		span.SetStatus(codes.Error, lastErr.Error())
	}
	return "", fmt.Errorf("summary failed after %d attempts: %w", s.maxRetries+1, lastErr)
}

// isRetryable reports whether the call is worth repeating: rate limits
// and server-side errors are, API rejections and cancellation are not.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}

	return false
}

type cardPromptData struct {
	ID                 string
	Title              string
	Type               string
	Status             string
	Priority           int
	Assignee           string
	Labels             string
	Description        string
	Design             string
	AcceptanceCriteria string
	Notes              string
	Blockers           []string
	Blocks             []string
	CommentCount       int
}

func (s *Summarizer) renderPrompt(card *types.CardDetails) (string, error) {
	data := cardPromptData{
		ID:                 card.Issue.ID,
		Title:              card.Issue.Title,
		Type:               string(card.Issue.IssueType),
		Status:             string(card.Issue.Status),
		Priority:           card.Issue.Priority,
		Assignee:           card.Issue.Assignee,
		Labels:             strings.Join(card.Labels, ", "),
		Description:        card.Issue.Description,
		Design:             card.Issue.Design,
		AcceptanceCriteria: card.Issue.AcceptanceCriteria,
		Notes:              card.Issue.Notes,
		CommentCount:       len(card.Comments),
	}
	for _, n := range card.Blockers {
		data.Blockers = append(data.Blockers, fmt.Sprintf("%s (%s)", n.ID, n.Title))
	}
	for _, n := range card.Blocks {
		data.Blocks = append(data.Blocks, fmt.Sprintf("%s (%s)", n.ID, n.Title))
	}

	var buf strings.Builder
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const cardPromptTemplate = `You are helping a developer triage a kanban board. Summarize this issue card as plain prose.

**{{.ID}}: {{.Title}}** ({{.Type}}, {{.Status}}, P{{.Priority}}{{if .Assignee}}, assigned to {{.Assignee}}{{end}})
{{if .Labels}}Labels: {{.Labels}}
{{end}}
{{if .Description}}**Description:**
{{.Description}}
{{end}}
{{if .Design}}**Design:**
{{.Design}}
{{end}}
{{if .AcceptanceCriteria}}**Acceptance Criteria:**
{{.AcceptanceCriteria}}
{{end}}
{{if .Notes}}**Notes:**
{{.Notes}}
{{end}}
{{if .Blockers}}Waiting on: {{range .Blockers}}{{.}} {{end}}
{{end}}{{if .Blocks}}Holding up: {{range .Blocks}}{{.}} {{end}}
{{end}}{{if .CommentCount}}The card has {{.CommentCount}} comment(s).
{{end}}
Reply with 2-4 sentences: what this issue is about, where it stands, and what it is waiting on or holding up. No headings, no bullet lists, no preamble.`
