package scoring

import (
	"github.com/jbony2888/resume-jd-analyzer/internal/evidence"
	"github.com/jbony2888/resume-jd-analyzer/internal/requirements"
)

const (
	StatusMatch   = "MATCH"
	StatusMissing = "MISSING"
	StatusGap     = "GAP"
)

// GapEntry is the per-requirement view of an evaluation: matched, missing
// must-have, or nice-to-have gap, with the first validated quote as evidence.
type GapEntry struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Importance  string `json:"importance"`
	Status      string `json:"status"`
	Evidence    string `json:"evidence"`
}

// GapReport walks the document in its frozen order and reports the match
// status of every requirement.
func GapReport(doc *requirements.Document, evidenceMap *evidence.Map) []GapEntry {
	matchByID := make(map[string]evidence.Match, len(evidenceMap.Matches))
	for _, m := range evidenceMap.Matches {
		matchByID[m.RequirementID] = m
	}

	report := make([]GapEntry, 0, len(doc.Requirements))
	for _, r := range doc.Requirements {
		m := matchByID[r.ID]

		quote := "No evidence found."
		if len(m.Evidence) > 0 && m.Evidence[0].Quote != "" {
			quote = m.Evidence[0].Quote
		}

		status := StatusGap
		switch {
		case m.Matched:
			status = StatusMatch
		case r.MustHave:
			status = StatusMissing
		}

		importance := "Nice-to-have"
		if r.MustHave {
			importance = "Must-have"
		}

		report = append(report, GapEntry{
			ID:          r.ID,
			Category:    r.Category,
			Name:        r.Name,
			Description: r.Description,
			Importance:  importance,
			Status:      status,
			Evidence:    quote,
		})
	}

	return report
}
