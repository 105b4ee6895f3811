package ai

import (
	"context"

	"github.com/jbony2888/resume-jd-analyzer/internal/requirements"
)

// RequirementExtraction carries raw, loosely-typed requirement proposals from
// the generation boundary. Nothing here is trusted or deterministic; the
// normalizer owns turning Proposals into canonical requirements.
type RequirementExtraction struct {
	RoleTitle string
	Proposals []map[string]any
	Raw       string
}

// EvidenceProposals carries raw evidence-match proposals for a resume.
// The quote validator is authoritative over every matched claim in here.
type EvidenceProposals struct {
	Proposals []map[string]any
	Raw       string
}

// Extractor proposes job requirements from free-form job-description text.
type Extractor interface {
	ExtractRequirements(ctx context.Context, jdText string) (*RequirementExtraction, error)
	Model() string
}

// Matcher proposes resume evidence for a frozen set of requirements.
type Matcher interface {
	MatchEvidence(ctx context.Context, resumeText string, reqs []requirements.Requirement) (*EvidenceProposals, error)
	Model() string
}
