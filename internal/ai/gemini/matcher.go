package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/jbony2888/resume-jd-analyzer/internal/ai"
	"github.com/jbony2888/resume-jd-analyzer/internal/requirements"
	"github.com/jbony2888/resume-jd-analyzer/internal/textkit"
)

//go:embed match_evidence.md
var matchPromptTemplate string

const defaultMaxLogLength = 200

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Matcher asks Gemini which requirements a resume satisfies and on what
// quotes. Its output is raw proposals only; validation and scoring stay on
// the deterministic side of the boundary.
type Matcher struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewMatcher(generator contentGenerator, maxLogLength int, logger *zap.Logger) *Matcher {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Matcher{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (m *Matcher) Model() string {
	return m.generator.Model()
}

// MatchEvidence sends the frozen requirements and the resume text to the
// model. Requirement descriptions are deliberately withheld from the prompt:
// they are JD-derived, and including them lets the model echo the JD back as
// fake resume evidence.
func (m *Matcher) MatchEvidence(ctx context.Context, resumeText string, reqs []requirements.Requirement) (*ai.EvidenceProposals, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, fmt.Errorf("resume text is required")
	}

	type promptRequirement struct {
		ID             string   `json:"id"`
		RequirementKey string   `json:"requirement_key"`
		Name           string   `json:"name"`
		Aliases        []string `json:"aliases"`
	}

	forPrompt := make([]promptRequirement, 0, len(reqs))
	for _, r := range reqs {
		forPrompt = append(forPrompt, promptRequirement{
			ID:             r.ID,
			RequirementKey: r.RequirementKey,
			Name:           r.Name,
			Aliases:        r.Aliases,
		})
	}

	reqsJSON, err := json.Marshal(forPrompt)
	if err != nil {
		return nil, fmt.Errorf("marshal requirements payload: %w", err)
	}

	prompt := strings.ReplaceAll(matchPromptTemplate, "{{REQUIREMENTS_JSON}}", string(reqsJSON))
	prompt = strings.ReplaceAll(prompt, "{{RESUME_TEXT}}", resumeText)

	m.logger.Debug("gemini match evidence request",
		zap.Int("requirements", len(reqs)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", textkit.TruncateForLog(prompt, m.maxLogLen)),
	)

	raw, err := m.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("gemini match evidence response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", textkit.TruncateForLog(raw, m.maxLogLen)),
	)

	var payload struct {
		Matches []map[string]any `json:"matches"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &payload); err != nil {
		return nil, fmt.Errorf("parse gemini match response: %w", err)
	}

	return &ai.EvidenceProposals{
		Proposals: payload.Matches,
		Raw:       raw,
	}, nil
}
