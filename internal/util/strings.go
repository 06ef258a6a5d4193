package util

import "strings"

// issueTypeAliases maps shorthand spellings to canonical issue types.
var issueTypeAliases = map[string]string{
	"feat":        "feature",
	"enhancement": "feature",
	"fix":         "bug",
	"bugfix":      "bug",
}

// NormalizeIssueType lowercases an issue type and expands shorthand
// aliases, so "-t Feat" and "-t feature" mean the same card type.
// Unknown values pass through lowercased for validation to reject.
func NormalizeIssueType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if canonical, ok := issueTypeAliases[t]; ok {
		return canonical
	}
	return t
}

// NormalizeLabels trims each label, drops empties, and deduplicates
// while keeping first-seen order. Deduplication is case-sensitive;
// labels are user data and "UI" and "ui" may be distinct on a board.
func NormalizeLabels(ss []string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
