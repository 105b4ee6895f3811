package evidence

import (
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/jbony2888/resume-jd-analyzer/internal/requirements"
)

// Quote is one piece of claimed evidence: a verbatim span of the resume.
type Quote struct {
	Quote string `json:"quote"`
}

// Match records whether a single requirement was found in the resume and on
// what textual evidence. matched=true is only trustworthy after the quote
// validator has run; the validator is authoritative over the upstream claim.
type Match struct {
	RequirementID  string  `json:"requirement_id"`
	RequirementKey string  `json:"requirement_key"`
	Matched        bool    `json:"matched"`
	Evidence       []Quote `json:"evidence"`
	Notes          string  `json:"notes"`
	InvalidQuote   bool    `json:"invalid_quote"`
}

// Map binds a set of matches to exact job-description and resume versions.
// RunID distinguishes repeated evaluations of the same pair; it never
// participates in scoring.
type Map struct {
	RoleID              string  `json:"role_id"`
	JDHash              string  `json:"jd_hash"`
	ResumeHash          string  `json:"resume_hash"`
	RequirementsVersion string  `json:"requirements_version"`
	ModelID             string  `json:"model_id"`
	RunID               string  `json:"run_id"`
	Matches             []Match `json:"matches"`
}

// rawMatch is the loosely-typed shape of one evidence proposal from the
// matching boundary. Confidence is deliberately ignored: matched is
// authoritative and confidence would reintroduce non-determinism.
type rawMatch struct {
	RequirementID  string  `mapstructure:"requirement_id"`
	RequirementKey string  `mapstructure:"requirement_key"`
	Matched        bool    `mapstructure:"matched"`
	Evidence       []Quote `mapstructure:"evidence"`
	Notes          string  `mapstructure:"notes"`
}

// Resolve normalizes raw evidence proposals against a frozen requirements
// document. Proposals are resolved by requirement id first, then by
// requirement_key; records that reference no known requirement are dropped
// silently, as are records too malformed to decode.
func Resolve(doc *requirements.Document, raw []map[string]any) []Match {
	byID := doc.ByID()
	byKey := doc.ByKey()

	matches := make([]Match, 0, len(raw))
	for _, record := range raw {
		var m rawMatch
		if err := decodeRawMatch(record, &m); err != nil {
			continue
		}

		req, ok := byID[m.RequirementID]
		if !ok {
			req, ok = byKey[m.RequirementKey]
		}
		if !ok {
			continue
		}

		evidence := make([]Quote, 0, len(m.Evidence))
		for _, q := range m.Evidence {
			if strings.TrimSpace(q.Quote) != "" {
				evidence = append(evidence, q)
			}
		}

		matches = append(matches, Match{
			RequirementID:  req.ID,
			RequirementKey: req.RequirementKey,
			Matched:        m.Matched,
			Evidence:       evidence,
			Notes:          m.Notes,
		})
	}

	return matches
}

func decodeRawMatch(record map[string]any, out *rawMatch) error {
	cfg := &mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}
	return decoder.Decode(record)
}
