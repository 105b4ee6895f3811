package artifacts

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/jbony2888/resume-jd-analyzer/internal/scoring"
)

// RunReport is the per-run audit record: hashes, versions, model id and the
// coverage numbers. No job-description or resume text beyond hashes.
type RunReport struct {
	RunID               string                           `json:"run_id"`
	Timestamp           string                           `json:"timestamp"`
	RoleID              string                           `json:"role_id"`
	JDHash              string                           `json:"jd_hash"`
	ResumeHash          string                           `json:"resume_hash"`
	RequirementsVersion string                           `json:"requirements_version"`
	ModelID             string                           `json:"model_id"`
	TotalRequirements   int                              `json:"total_requirements"`
	TotalMatched        int                              `json:"total_matched"`
	MustHaveCoverage    float64                          `json:"must_have_coverage"`
	NiceToHaveCoverage  float64                          `json:"nice_to_have_coverage"`
	OverallScore        float64                          `json:"overall_score"`
	PerCategoryScores   map[string]scoring.CategoryScore `json:"per_category_scores"`
	InvalidQuoteCount   int                              `json:"invalid_quote_count"`
	MatchedCountRaw     int                              `json:"matched_count_raw"`
	MatchedCountValid   int                              `json:"matched_count_validated"`
}

// SaveRunReport writes the run report as run_report_<run_id>.json in the
// store directory.
func (s *Store) SaveRunReport(report *RunReport) (string, error) {
	if report.Timestamp == "" {
		report.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	filename := fmt.Sprintf("run_report_%s.json", sanitizeKey(report.RunID))
	path := filepath.Join(s.dir, filename)

	if err := s.writeJSON(path, report); err != nil {
		return "", err
	}
	return path, nil
}
