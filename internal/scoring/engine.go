package scoring

import (
	"fmt"
	"math"

	"github.com/jbony2888/resume-jd-analyzer/internal/evidence"
	"github.com/jbony2888/resume-jd-analyzer/internal/requirements"
)

// CategoryScore is the matched/total breakdown for one requirement category.
type CategoryScore struct {
	Matched int     `json:"matched"`
	Total   int     `json:"total"`
	Pct     float64 `json:"pct"`
}

// Result is a pure derived view over a requirements document and an evidence
// map. It has no identity of its own and is recomputable at any time from the
// pair that produced it.
type Result struct {
	MustHaveCoverage   float64                  `json:"must_have_coverage"`
	NiceToHaveCoverage float64                  `json:"nice_to_have_coverage"`
	MustHaveMatched    int                      `json:"must_have_matched"`
	MustHaveTotal      int                      `json:"must_have_total"`
	NiceToHaveMatched  int                      `json:"nice_to_have_matched"`
	NiceToHaveTotal    int                      `json:"nice_to_have_total"`
	PerCategoryScores  map[string]CategoryScore `json:"per_category_scores"`
	OverallScore       float64                  `json:"overall_score"`
	TotalMatched       int                      `json:"total_matched"`
	TotalRequirements  int                      `json:"total_requirements"`
}

// EvidenceRequiredError reports a map entry claiming matched=true without a
// single usable quote. Run the quote validator before scoring.
type EvidenceRequiredError struct {
	RequirementID string
}

func (e *EvidenceRequiredError) Error() string {
	return fmt.Sprintf("requirement %s has matched=true but no evidence quote", e.RequirementID)
}

// Compute derives coverage from a frozen requirements document and a
// validated evidence map. Pure arithmetic, no I/O.
//
// Matches are looked up by requirement ID only, never by position or key
// text; stable content-derived IDs are what make the two artifacts line up.
// Entries referencing IDs absent from the document are ignored. Weight is
// carried on requirements but deliberately excluded from this computation.
//
// Conventions: an empty partition yields 100.0 coverage, while zero total
// requirements yield an overall score of 0 — with nothing to evaluate the
// coverage claim is vacuously false, not vacuously true.
func Compute(doc *requirements.Document, evidenceMap *evidence.Map) (*Result, error) {
	if err := requireEvidence(evidenceMap); err != nil {
		return nil, err
	}

	matchedByID := make(map[string]bool, len(evidenceMap.Matches))
	for _, m := range evidenceMap.Matches {
		if m.Matched {
			matchedByID[m.RequirementID] = true
		}
	}

	result := &Result{
		PerCategoryScores: make(map[string]CategoryScore),
		TotalRequirements: len(doc.Requirements),
	}

	for _, r := range doc.Requirements {
		matched := matchedByID[r.ID]
		if matched {
			result.TotalMatched++
		}

		if r.MustHave {
			result.MustHaveTotal++
			if matched {
				result.MustHaveMatched++
			}
		} else {
			result.NiceToHaveTotal++
			if matched {
				result.NiceToHaveMatched++
			}
		}

		cat := result.PerCategoryScores[r.Category]
		cat.Total++
		if matched {
			cat.Matched++
		}
		result.PerCategoryScores[r.Category] = cat
	}

	for name, cat := range result.PerCategoryScores {
		cat.Pct = round1(float64(cat.Matched) / float64(cat.Total) * 100)
		result.PerCategoryScores[name] = cat
	}

	result.MustHaveCoverage = coverage(result.MustHaveMatched, result.MustHaveTotal)
	result.NiceToHaveCoverage = coverage(result.NiceToHaveMatched, result.NiceToHaveTotal)

	if result.TotalRequirements > 0 {
		result.OverallScore = round1(float64(result.TotalMatched) / float64(result.TotalRequirements) * 100)
	}

	return result, nil
}

// requireEvidence is the tightened matched-without-evidence check: the quote
// validator passes such entries through, the scoring boundary refuses them.
func requireEvidence(evidenceMap *evidence.Map) error {
	for _, m := range evidenceMap.Matches {
		if !m.Matched {
			continue
		}
		if !hasQuote(m.Evidence) {
			return &EvidenceRequiredError{RequirementID: m.RequirementID}
		}
	}
	return nil
}

func hasQuote(quotes []evidence.Quote) bool {
	for _, q := range quotes {
		if q.Quote != "" {
			return true
		}
	}
	return false
}

func coverage(matched, total int) float64 {
	if total == 0 {
		return 100.0
	}
	return round1(float64(matched) / float64(total) * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
