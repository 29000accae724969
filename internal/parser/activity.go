package parser

import (
	"regexp"
	"strings"
)

// spaceClass also accepts the non-breaking space pasted text often carries.
const spaceClass = `[\s\x{00A0}]`

var (
	activityLineRe = regexp.MustCompile(`(?i)\bid` + spaceClass + `+активности` + spaceClass + `*[-–—:=]`)
	activityIDRe   = regexp.MustCompile(`(?i)\bid` + spaceClass + `+активности` + spaceClass + `*[-–—:=]` + spaceClass + `*([A-Za-z0-9][A-Za-z0-9_-]*)`)
	bareActivityRe = regexp.MustCompile(`^[A-Za-z0-9]{11,}$`)
)

// ExtractActivityID returns the token from the first "ID активности - <id>"
// line in text, or "" when there is none.
func ExtractActivityID(text string) string {
	m := activityIDRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// IsActivityID reports whether s, once trimmed, looks like a bare activity
// identifier: more than ten ASCII letters or digits.
func IsActivityID(s string) bool {
	return bareActivityRe.MatchString(strings.TrimSpace(s))
}
