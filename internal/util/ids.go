package util

import (
	"fmt"
	"strings"
)

// NormalizeID ensures an issue ID has an ID prefix, using the
// workspace prefix for bare inputs. The bd backend resolves partial
// hashes itself, so no lookup happens here.
//   - "bd-a3f8e9" stays "bd-a3f8e9"
//   - "a3f8e9" becomes "bd-a3f8e9"
//   - "web-45" stays "web-45" (already prefixed, different project)
//
// Works with hierarchical IDs too: "a3f8e9.1.2" -> "bd-a3f8e9.1.2"
func NormalizeID(input, prefix string) string {
	if prefix == "" {
		prefix = "bd"
	}
	prefixWithHyphen := prefix
	if !strings.HasSuffix(prefix, "-") {
		prefixWithHyphen = prefix + "-"
	}

	if strings.HasPrefix(input, prefixWithHyphen) {
		return input
	}
	if LooksLikePrefixedID(input) {
		// Has a different prefix (e.g. "web-45" when the workspace
		// prefix is "bd"). Pass through for cross-prefix lookup.
		return input
	}
	return prefixWithHyphen + input
}

// LooksLikePrefixedID checks if input appears to already have a prefix.
// A prefixed ID has the format "prefix-hash" where prefix is 1-8 lowercase
// letters/numbers and hash is alphanumeric (potentially with dots for
// hierarchical IDs). Examples: "bd-a3f8e9", "web-45", "myproject-abc.1"
func LooksLikePrefixedID(input string) bool {
	idx := strings.Index(input, "-")
	if idx <= 0 || idx > 8 {
		return false
	}

	prefix := input[:idx]
	suffix := input[idx+1:]

	for _, c := range prefix {
		if !((c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')) {
			return false
		}
	}

	if len(suffix) == 0 {
		return false
	}
	first := rune(suffix[0])
	if !((first >= 'a' && first <= 'z') || (first >= '0' && first <= '9')) {
		return false
	}

	return true
}

// ExtractIssueNumber extracts the number from an issue ID like "bd-123" -> 123.
// Returns 0 for hash-style or malformed IDs; callers treat those as unordered.
func ExtractIssueNumber(issueID string) int {
	idx := strings.LastIndex(issueID, "-")
	if idx < 0 || idx == len(issueID)-1 {
		return 0
	}
	var num int
	_, _ = fmt.Sscanf(issueID[idx+1:], "%d", &num)
	return num
}
