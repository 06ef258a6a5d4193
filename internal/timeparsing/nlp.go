package timeparsing

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// nlpParser is shared across calls; a when.Parser is read-only once its
// rules are registered.
var nlpParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// ParseNaturalLanguage resolves expressions like "tomorrow", "next monday
// at 2pm", or "in 3 days" against the given reference time.
func ParseNaturalLanguage(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time expression")
	}

	r, err := nlpParser.Parse(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %q: %w", s, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("not a recognized time expression: %q", s)
	}
	return r.Time, nil
}

// dateOnlyLayout accepts bare calendar dates, resolved at midnight in the
// reference time's location.
const dateOnlyLayout = "2006-01-02"

// ParseRelativeTime parses a schedule expression through the layered
// parsers: compact duration first, then natural language, then absolute
// timestamps.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time expression")
	}

	if IsCompactDuration(s) {
		return ParseCompactDuration(s, now)
	}

	if t, err := ParseNaturalLanguage(s, now); err == nil {
		return t, nil
	}

	if t, err := time.ParseInLocation(dateOnlyLayout, s, now.Location()); err == nil {
		return t, nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("unrecognized time expression: %q (try +2d, tomorrow, or 2006-01-02)", s)
}
