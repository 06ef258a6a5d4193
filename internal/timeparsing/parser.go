// Package timeparsing turns user-entered schedule expressions into
// timestamps. Due and defer inputs go through layered parsing:
//
//  1. Compact duration (+6h, -1d, +2w)
//  2. Natural language (tomorrow, next monday at 2pm)
//  3. Absolute timestamp (date-only, RFC3339)
//
// The first layer that recognizes the input wins.
package timeparsing

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// compactDurationRe is the offset grammar shared with the backend:
// optional sign, amount, then one of h/d/w/m/y. No sign means future.
var compactDurationRe = regexp.MustCompile(`^([+-]?)(\d+)([hdwmy])$`)

// ParseCompactDuration resolves a compact offset like "+6h", "-1d", or
// "2w" against now. Hours use wall-clock arithmetic; days and larger
// use calendar arithmetic, so "+1m" on Jan 31 normalizes the way
// time.AddDate does.
func ParseCompactDuration(s string, now time.Time) (time.Time, error) {
	m := compactDurationRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, fmt.Errorf("not a compact duration: %q", s)
	}

	amount, err := strconv.Atoi(m[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid duration amount: %q", m[2])
	}
	if m[1] == "-" {
		amount = -amount
	}

	switch m[3] {
	case "h":
		return now.Add(time.Duration(amount) * time.Hour), nil
	case "d":
		return now.AddDate(0, 0, amount), nil
	case "w":
		return now.AddDate(0, 0, amount*7), nil
	case "m":
		return now.AddDate(0, amount, 0), nil
	case "y":
		return now.AddDate(amount, 0, 0), nil
	}
	// Unreachable: the regexp admits only the units above.
	return time.Time{}, fmt.Errorf("unknown duration unit: %q", m[3])
}

// IsCompactDuration reports whether s matches the compact offset
// grammar without resolving it.
func IsCompactDuration(s string) bool {
	return compactDurationRe.MatchString(s)
}
