package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jbony2888/resume-jd-analyzer/internal/artifacts"
	"github.com/jbony2888/resume-jd-analyzer/internal/evidence"
	"github.com/jbony2888/resume-jd-analyzer/internal/logger"
	"github.com/jbony2888/resume-jd-analyzer/internal/pdftext"
	"github.com/jbony2888/resume-jd-analyzer/internal/requirements"
	"github.com/jbony2888/resume-jd-analyzer/internal/scoring"
	"github.com/jbony2888/resume-jd-analyzer/internal/textkit"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <resume-file>",
	Short: "Match a resume against frozen requirements and compute a deterministic score",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		evaluate(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().String("role-id", "", "role id from create-requirements (resolved from jd-hash when omitted)")
	evaluateCmd.Flags().String("jd-hash", "", "job description hash from create-requirements")
	evaluateCmd.Flags().Bool("json-output", false, "print the full result as JSON")

	if err := evaluateCmd.MarkFlagRequired("jd-hash"); err != nil {
		log.Fatalf("marking jd-hash flag required: %v", err)
	}
}

func evaluate(cmd *cobra.Command, resumeFile string) {
	ctx := context.Background()

	zlog, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zlog.Fatal("getting a config", zap.Error(err))
	}

	resumeText, err := readResume(resumeFile)
	if err != nil {
		zlog.Fatal("reading resume", zap.String("path", resumeFile), zap.Error(err))
	}

	roleID := cmd.Flag("role-id").Value.String()
	jdHash := cmd.Flag("jd-hash").Value.String()

	store := artifacts.New(config.ArtifactsDir)

	doc, err := loadFrozenRequirements(store, roleID, jdHash)
	if err != nil {
		if errors.Is(err, artifacts.ErrNotFound) {
			zlog.Fatal("frozen requirements missing",
				zap.Error(err),
				zap.String("hint", "run create-requirements with the same job description text first"),
			)
		}
		zlog.Fatal("loading requirements artifact", zap.Error(err))
	}
	roleID = doc.RoleID

	matcher, err := newMatcher(ctx, config, zlog)
	if err != nil {
		zlog.Fatal("building evidence matcher", zap.Error(err))
	}

	resumeHash := textkit.HashText(resumeText)
	runID := uuid.NewString()[:8]

	runLogger := logger.WithRunFields(zlog, roleID, jdHash, runID)

	runLogger.Info("matching resume against frozen requirements",
		zap.Int("requirements", len(doc.Requirements)),
		zap.String("resume_hash", resumeHash),
		zap.String("model", matcher.Model()),
	)

	proposals, err := matcher.MatchEvidence(ctx, resumeText, doc.Requirements)
	if err != nil {
		runLogger.Fatal("matching evidence", zap.Error(err))
	}

	evidenceMap := &evidence.Map{
		RoleID:              doc.RoleID,
		JDHash:              doc.JDHash,
		ResumeHash:          resumeHash,
		RequirementsVersion: doc.RequirementsVersion,
		ModelID:             matcher.Model(),
		RunID:               runID,
		Matches:             evidence.Resolve(doc, proposals.Proposals),
	}

	meta := evidence.ValidateQuotes(resumeText, evidenceMap, config.MinQuoteLength)

	runLogger.Info("validated evidence quotes",
		zap.Int("matched_raw", meta.MatchedCountRaw),
		zap.Int("matched_validated", meta.MatchedCountValidated),
		zap.Int("downgraded", meta.InvalidQuoteCount),
	)

	result, err := scoring.Compute(doc, evidenceMap)
	if err != nil {
		runLogger.Fatal("scoring failed", zap.Error(err))
	}

	evidencePath, err := store.SaveEvidence(evidenceMap)
	if err != nil {
		runLogger.Fatal("saving evidence artifact", zap.Error(err))
	}

	reports := artifacts.New(config.ReportsDir)
	reportPath, err := reports.SaveRunReport(&artifacts.RunReport{
		RunID:               runID,
		RoleID:              doc.RoleID,
		JDHash:              doc.JDHash,
		ResumeHash:          resumeHash,
		RequirementsVersion: doc.RequirementsVersion,
		ModelID:             matcher.Model(),
		TotalRequirements:   result.TotalRequirements,
		TotalMatched:        result.TotalMatched,
		MustHaveCoverage:    result.MustHaveCoverage,
		NiceToHaveCoverage:  result.NiceToHaveCoverage,
		OverallScore:        result.OverallScore,
		PerCategoryScores:   result.PerCategoryScores,
		InvalidQuoteCount:   meta.InvalidQuoteCount,
		MatchedCountRaw:     meta.MatchedCountRaw,
		MatchedCountValid:   meta.MatchedCountValidated,
	})
	if err != nil {
		runLogger.Fatal("writing run report", zap.Error(err))
	}

	runLogger.Info("evaluation complete",
		zap.String("evidence_artifact", evidencePath),
		zap.String("run_report", reportPath),
		zap.Float64("overall_score", result.OverallScore),
	)

	if cmd.Flag("json-output").Value.String() == "true" {
		printResultJSON(doc, evidenceMap, result)
		return
	}

	printResultConsole(doc, evidenceMap, result)
}

// loadFrozenRequirements loads by the (role_id, jd_hash) key, falling back to
// a jd_hash-only lookup when the role id was not provided.
func loadFrozenRequirements(store *artifacts.Store, roleID, jdHash string) (*requirements.Document, error) {
	if roleID != "" {
		return store.LoadRequirements(roleID, jdHash)
	}

	doc, _, err := store.FindRequirementsByJDHash(jdHash)
	return doc, err
}

func readResume(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return pdftext.Extract(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func printResultJSON(doc *requirements.Document, evidenceMap *evidence.Map, result *scoring.Result) {
	out := map[string]any{
		"score":      result,
		"gap_report": scoring.GapReport(doc, evidenceMap),
		"run_id":     evidenceMap.RunID,
		"jd_hash":    evidenceMap.JDHash,
	}
	pretty, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(pretty))
}

func printResultConsole(doc *requirements.Document, evidenceMap *evidence.Map, result *scoring.Result) {
	fmt.Println("=== Score ===")
	fmt.Printf("Overall: %.1f%%\n", result.OverallScore)
	fmt.Printf("Must-have coverage: %.1f%%\n", result.MustHaveCoverage)
	fmt.Printf("Nice-to-have coverage: %.1f%%\n", result.NiceToHaveCoverage)
	fmt.Printf("Matched: %d/%d\n", result.TotalMatched, result.TotalRequirements)

	fmt.Println("\nPer category:")
	for _, cat := range requirements.CategoryPrecedence {
		s, ok := result.PerCategoryScores[cat]
		if !ok {
			continue
		}
		fmt.Printf("  %s: %d/%d (%.1f%%)\n", cat, s.Matched, s.Total, s.Pct)
	}

	fmt.Println("\nGap report:")
	for _, entry := range scoring.GapReport(doc, evidenceMap) {
		fmt.Printf("  [%s] %s (%s): %s\n", entry.Status, entry.Name, entry.Importance, entry.Evidence)
	}
}
