package artifacts

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jbony2888/resume-jd-analyzer/internal/evidence"
	"github.com/jbony2888/resume-jd-analyzer/internal/requirements"
)

//go:embed schemas/job_requirements.schema.json
var requirementsSchema string

//go:embed schemas/evidence_map.schema.json
var evidenceSchema string

func validateRequirementsDoc(doc *requirements.Document) error {
	return validateAgainstSchema(requirementsSchema, doc)
}

func validateEvidenceMap(m *evidence.Map) error {
	return validateAgainstSchema(evidenceSchema, m)
}

func validateAgainstSchema(schema string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling document: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewBytesLoader(payload),
	)
	if err != nil {
		return fmt.Errorf("running schema validation: %w", err)
	}

	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, issue := range result.Errors() {
			issues = append(issues, issue.String())
		}
		return fmt.Errorf("%s", strings.Join(issues, "; "))
	}

	return nil
}
