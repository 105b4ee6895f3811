package evidence

import (
	"strings"
	"unicode/utf8"

	"github.com/jbony2888/resume-jd-analyzer/internal/textkit"
)

// MinQuoteLength is the default minimum length in characters, after
// whitespace normalization, below which a quote cannot count as evidence.
const MinQuoteLength = 12

// ValidationMeta reports what quote validation did; the raw-vs-validated
// counts are the audit trail for downgraded claims.
type ValidationMeta struct {
	InvalidQuoteCount     int `json:"invalid_quote_count"`
	MatchedCountRaw       int `json:"matched_count_raw"`
	MatchedCountValidated int `json:"matched_count_validated"`
}

// ValidateQuotes checks every quote of every matched entry against the
// literal resume text. Both sides are whitespace-normalized before
// comparison. A single quote that is too short or not a verbatim substring
// downgrades the whole entry: matched forced to false, evidence cleared.
// Partial credit for a mix of valid and fabricated quotes is deliberately
// disallowed; one fabricated quote means the claim cannot be trusted at all.
//
// Entries with matched=false pass through untouched. A matched entry with no
// quotes at all also passes through: that is a caller contract violation
// surfaced later by the scoring engine, not silently downgraded here.
//
// The map is mutated in place and is authoritative after the call.
// Deterministic for a given (resumeText, map, minLen) triple.
func ValidateQuotes(resumeText string, m *Map, minLen int) ValidationMeta {
	if minLen <= 0 {
		minLen = MinQuoteLength
	}

	resumeNorm := textkit.CollapseWhitespace(resumeText)

	meta := ValidationMeta{}
	for i := range m.Matches {
		match := &m.Matches[i]
		if !match.Matched {
			match.InvalidQuote = false
			continue
		}

		meta.MatchedCountRaw++

		quotes := make([]string, 0, len(match.Evidence))
		for _, e := range match.Evidence {
			if e.Quote != "" {
				quotes = append(quotes, e.Quote)
			}
		}
		if len(quotes) == 0 {
			match.InvalidQuote = false
			meta.MatchedCountValidated++
			continue
		}

		if anyQuoteInvalid(quotes, resumeNorm, minLen) {
			match.Matched = false
			match.Evidence = []Quote{}
			match.InvalidQuote = true
			meta.InvalidQuoteCount++
			continue
		}

		match.InvalidQuote = false
		meta.MatchedCountValidated++
	}

	return meta
}

func anyQuoteInvalid(quotes []string, resumeNorm string, minLen int) bool {
	for _, q := range quotes {
		qn := textkit.CollapseWhitespace(q)
		// Length is counted in characters, not bytes; a short CJK quote must
		// not slip past the minimum just because it encodes wide.
		if utf8.RuneCountInString(qn) < minLen || !strings.Contains(resumeNorm, qn) {
			return true
		}
	}
	return false
}
