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
	"github.com/jbony2888/resume-jd-analyzer/internal/textkit"
)

//go:embed extract_requirements.md
var extractPromptTemplate string

// Extractor asks Gemini to propose requirements for a job description. The
// proposals come back untyped; the normalizer is the authority on their
// final shape and identity.
type Extractor struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewExtractor(generator contentGenerator, maxLogLength int, logger *zap.Logger) *Extractor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Extractor{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (e *Extractor) Model() string {
	return e.generator.Model()
}

func (e *Extractor) ExtractRequirements(ctx context.Context, jdText string) (*ai.RequirementExtraction, error) {
	if strings.TrimSpace(jdText) == "" {
		return nil, fmt.Errorf("job description text is required")
	}

	prompt := strings.ReplaceAll(extractPromptTemplate, "{{JD_TEXT}}", jdText)

	e.logger.Debug("gemini extract requirements request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", textkit.TruncateForLog(prompt, e.maxLogLen)),
	)

	raw, err := e.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("gemini extract requirements response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", textkit.TruncateForLog(raw, e.maxLogLen)),
	)

	var payload struct {
		RoleTitle    string           `json:"role_title"`
		Requirements []map[string]any `json:"requirements"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &payload); err != nil {
		return nil, fmt.Errorf("parse gemini extract response: %w", err)
	}

	return &ai.RequirementExtraction{
		RoleTitle: strings.TrimSpace(payload.RoleTitle),
		Proposals: payload.Requirements,
		Raw:       raw,
	}, nil
}
