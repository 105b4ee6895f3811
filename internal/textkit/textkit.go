package textkit

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

var whitespace = regexp.MustCompile(`\s+`)

// HashText returns the sha256 hex digest of the exact text. Deterministic; it
// is the identity of job-description and resume versions across the pipeline.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// ShortHash returns at most n leading characters of the provided hash.
func ShortHash(hash string, n int) string {
	if n <= 0 || len(hash) <= n {
		return hash
	}
	return hash[:n]
}

// CollapseWhitespace trims the string and collapses every whitespace run to a
// single space. Quotes and resume text are compared in this form so that
// line-wrap and extraction noise does not invalidate genuine evidence.
func CollapseWhitespace(s string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(s), " ")
}

// TruncateForLog shortens the provided string to the specified limit, appending an ellipsis when truncated.
func TruncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
