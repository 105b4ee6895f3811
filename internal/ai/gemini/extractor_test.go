package gemini

import (
	"context"
	"strings"
	"testing"
)

func TestExtractRequirementsParsesProposals(t *testing.T) {
	stub := &stubGenerator{
		response: "```json\n{\"role_title\": \"Backend Engineer\", \"requirements\": [{\"name\": \"Go\", \"requirement_key\": \"go\", \"must_have\": true}]}\n```",
	}
	extractor := NewExtractor(stub, 0, nil)

	extraction, err := extractor.ExtractRequirements(context.Background(), "We need a Go backend engineer.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if extraction.RoleTitle != "Backend Engineer" {
		t.Fatalf("unexpected role title: %q", extraction.RoleTitle)
	}
	if len(extraction.Proposals) != 1 || extraction.Proposals[0]["name"] != "Go" {
		t.Fatalf("unexpected proposals: %+v", extraction.Proposals)
	}
	if !strings.Contains(stub.lastPrompt, "We need a Go backend engineer.") {
		t.Fatalf("job description missing from prompt")
	}
}

func TestExtractRequirementsRejectsEmptyInput(t *testing.T) {
	extractor := NewExtractor(&stubGenerator{response: `{"requirements": []}`}, 0, nil)

	if _, err := extractor.ExtractRequirements(context.Background(), "\n\t "); err == nil {
		t.Fatalf("expected error for blank job description")
	}
}

func TestExtractRequirementsRejectsMalformedResponse(t *testing.T) {
	extractor := NewExtractor(&stubGenerator{response: "I could not find any requirements."}, 0, nil)

	if _, err := extractor.ExtractRequirements(context.Background(), "some job description"); err == nil {
		t.Fatalf("expected parse error for non-JSON response")
	}
}
