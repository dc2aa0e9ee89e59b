package strings

import (
	"strings"
)

// DefaultNameMaxLen is the default maximum length for realm and tenant names
// in table output.
const DefaultNameMaxLen = 40

// MinTruncateLen is the minimum maxLen value for Truncate and TruncateMiddle.
// Values smaller than this would not leave room for content plus "...".
const MinTruncateLen = 4

const ellipsis = "..."

// Truncate collapses s onto a single line and shortens it to maxLen runes,
// ending in "..." when something was cut.
func Truncate(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-len(ellipsis)]) + ellipsis
	}
	return s
}

// TruncateMiddle shortens s to maxLen runes by replacing the middle with
// "...". It keeps 60% of the remaining room for the start and the rest for
// the end, so "<realmId>:<tenantId>" keeps both a realm and a tenant prefix.
func TruncateMiddle(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}

	available := maxLen - len(ellipsis)
	startLen := (available * 3) / 5
	endLen := available - startLen
	return string(runes[:startLen]) + ellipsis + string(runes[len(runes)-endLen:])
}
