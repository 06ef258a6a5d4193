package validation

import (
	"regexp"
	"strings"
)

// scratchTitlePattern matches title prefixes that usually mean scratch
// data rather than real work: test fixtures, demo cards, throwaways.
var scratchTitlePattern = regexp.MustCompile(`^(test|benchmark|sample|tmp|temp|debug|dummy|demo|scratch)[-_\s]`)

// IsTestIssueTitle reports whether a title looks like test or demo
// data. The create path warns on these so scratch cards don't land in
// a real workspace unnoticed.
func IsTestIssueTitle(title string) bool {
	return scratchTitlePattern.MatchString(strings.ToLower(strings.TrimSpace(title)))
}
