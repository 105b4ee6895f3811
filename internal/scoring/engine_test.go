package scoring

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/jbony2888/resume-jd-analyzer/internal/evidence"
	"github.com/jbony2888/resume-jd-analyzer/internal/requirements"
)

// buildDoc creates a frozen document with n requirements split into
// must-have and nice-to-have halves, keyed req_0..req_n-1.
func buildDoc(t *testing.T, mustHave, niceToHave int) *requirements.Document {
	t.Helper()

	proposals := make([]map[string]any, 0, mustHave+niceToHave)
	for i := 0; i < mustHave+niceToHave; i++ {
		proposals = append(proposals, map[string]any{
			"name":            fmt.Sprintf("Requirement %02d", i),
			"requirement_key": fmt.Sprintf("req_%02d", i),
			"category":        "Technical",
			"must_have":       i < mustHave,
		})
	}

	reqs, _ := requirements.Normalize(proposals)
	if len(reqs) != mustHave+niceToHave {
		t.Fatalf("fixture lost requirements: %d != %d", len(reqs), mustHave+niceToHave)
	}

	doc := requirements.NewDocument("backend-eng", "jdhash", "Backend Engineer", reqs, time.Unix(0, 0))
	return &doc
}

func evidenceFor(doc *requirements.Document, matchedKeys map[string]bool) *evidence.Map {
	matches := make([]evidence.Match, 0, len(doc.Requirements))
	for _, r := range doc.Requirements {
		m := evidence.Match{
			RequirementID:  r.ID,
			RequirementKey: r.RequirementKey,
			Matched:        matchedKeys[r.RequirementKey],
			Evidence:       []evidence.Quote{},
		}
		if m.Matched {
			m.Evidence = []evidence.Quote{{Quote: "a validated verbatim quote"}}
		}
		matches = append(matches, m)
	}

	return &evidence.Map{
		RoleID:              doc.RoleID,
		JDHash:              doc.JDHash,
		ResumeHash:          "resumehash",
		RequirementsVersion: doc.RequirementsVersion,
		RunID:               "run-1",
		Matches:             matches,
	}
}

func TestComputeRoundNumbersEndToEnd(t *testing.T) {
	doc := buildDoc(t, 5, 5)

	matched := map[string]bool{
		// 4 of 5 must-have.
		"req_00": true, "req_01": true, "req_02": true, "req_03": true,
		// 3 of 5 nice-to-have.
		"req_05": true, "req_06": true, "req_07": true,
	}

	result, err := Compute(doc, evidenceFor(doc, matched))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.MustHaveCoverage != 80.0 {
		t.Fatalf("expected must-have coverage 80.0, got %v", result.MustHaveCoverage)
	}
	if result.NiceToHaveCoverage != 60.0 {
		t.Fatalf("expected nice-to-have coverage 60.0, got %v", result.NiceToHaveCoverage)
	}
	if result.OverallScore != 70.0 {
		t.Fatalf("expected overall score 70.0, got %v", result.OverallScore)
	}
	if result.TotalMatched != 7 || result.TotalRequirements != 10 {
		t.Fatalf("unexpected totals: %d/%d", result.TotalMatched, result.TotalRequirements)
	}

	tech := result.PerCategoryScores["Technical"]
	if tech.Matched != 7 || tech.Total != 10 || tech.Pct != 70.0 {
		t.Fatalf("unexpected category breakdown: %+v", tech)
	}
}

func TestComputeEmptyPartitionConvention(t *testing.T) {
	doc := buildDoc(t, 2, 0)

	result, err := Compute(doc, evidenceFor(doc, map[string]bool{"req_00": true}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.NiceToHaveCoverage != 100.0 {
		t.Fatalf("empty nice-to-have partition must yield 100.0, got %v", result.NiceToHaveCoverage)
	}
	if result.MustHaveCoverage != 50.0 {
		t.Fatalf("expected must-have coverage 50.0, got %v", result.MustHaveCoverage)
	}
}

func TestComputeVacuousTotalConvention(t *testing.T) {
	doc := buildDoc(t, 0, 0)

	result, err := Compute(doc, evidenceFor(doc, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.OverallScore != 0 {
		t.Fatalf("zero requirements must yield overall score 0, got %v", result.OverallScore)
	}
	if result.MustHaveCoverage != 100.0 || result.NiceToHaveCoverage != 100.0 {
		t.Fatalf("empty partitions still yield 100.0: %+v", result)
	}
}

func TestComputeIgnoresUnknownRequirementIDs(t *testing.T) {
	doc := buildDoc(t, 1, 0)

	evidenceMap := evidenceFor(doc, map[string]bool{"req_00": true})
	evidenceMap.Matches = append(evidenceMap.Matches, evidence.Match{
		RequirementID: "REQ-ffffffffff",
		Matched:       true,
		Evidence:      []evidence.Quote{{Quote: "quote for a requirement that is not in the document"}},
	})

	result, err := Compute(doc, evidenceMap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TotalMatched != 1 || result.TotalRequirements != 1 {
		t.Fatalf("structural mismatch must be excluded from scoring: %+v", result)
	}
	if result.OverallScore != 100.0 {
		t.Fatalf("expected overall score 100.0, got %v", result.OverallScore)
	}
}

func TestComputeRejectsMatchedWithoutEvidence(t *testing.T) {
	doc := buildDoc(t, 1, 0)

	evidenceMap := evidenceFor(doc, map[string]bool{"req_00": true})
	evidenceMap.Matches[0].Evidence = []evidence.Quote{}

	_, err := Compute(doc, evidenceMap)
	if err == nil {
		t.Fatalf("expected evidence-required error")
	}

	var evErr *EvidenceRequiredError
	if !errors.As(err, &evErr) {
		t.Fatalf("expected EvidenceRequiredError, got %T", err)
	}

	if evErr.RequirementID != doc.Requirements[0].ID {
		t.Fatalf("unexpected requirement in error: %s", evErr.RequirementID)
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	doc := buildDoc(t, 3, 4)
	evidenceMap := evidenceFor(doc, map[string]bool{
		"req_00": true, "req_03": true, "req_05": true,
	})

	first, err := Compute(doc, evidenceMap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 100; i++ {
		again, err := Compute(doc, evidenceMap)
		if err != nil {
			t.Fatalf("unexpected error on iteration %d: %v", i, err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("score diverged on iteration %d: %+v != %+v", i, first, again)
		}
	}
}
