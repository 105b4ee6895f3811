package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jbony2888/resume-jd-analyzer/internal/ai"
	"github.com/jbony2888/resume-jd-analyzer/internal/ai/gemini"
	"github.com/jbony2888/resume-jd-analyzer/internal/artifacts"
	"github.com/jbony2888/resume-jd-analyzer/internal/logger"
	"github.com/jbony2888/resume-jd-analyzer/internal/requirements"
	"github.com/jbony2888/resume-jd-analyzer/internal/secrets"
	"github.com/jbony2888/resume-jd-analyzer/internal/textkit"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var createCmd = &cobra.Command{
	Use:   "create-requirements <jd-file>",
	Short: "Extract requirements from a job description, normalize them and freeze the artifact",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		createRequirements(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().String("role-id", "", "role identifier (default: derived from the job description hash)")
	createCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation before overwriting an existing artifact")
}

func createRequirements(cmd *cobra.Command, jdFile string) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	jdText, err := os.ReadFile(jdFile)
	if err != nil {
		logger.Fatal("reading job description file", zap.String("path", jdFile), zap.Error(err))
	}

	jdHash := textkit.HashText(string(jdText))
	roleID := cmd.Flag("role-id").Value.String()
	if roleID == "" {
		roleID = "role_" + textkit.ShortHash(jdHash, 12)
	}

	extractor, err := newExtractor(ctx, config, logger)
	if err != nil {
		logger.Fatal("building requirement extractor", zap.Error(err))
	}

	logger.Info("extracting requirements from job description",
		zap.String("role_id", roleID),
		zap.String("jd_hash", jdHash),
		zap.String("model", extractor.Model()),
	)

	extraction, err := extractor.ExtractRequirements(ctx, string(jdText))
	if err != nil {
		logger.Fatal("extracting requirements", zap.Error(err))
	}

	reqs, stats := requirements.Normalize(extraction.Proposals)

	logger.Info("normalized requirement proposals",
		zap.Int("proposals", stats.Proposals),
		zap.Int("skipped", stats.Skipped),
		zap.Int("merged_duplicates", stats.Merged),
		zap.Int("requirements", stats.Left),
	)

	doc := requirements.NewDocument(roleID, jdHash, extraction.RoleTitle, reqs, time.Now())

	store := artifacts.New(config.ArtifactsDir)

	path := store.RequirementsPath(roleID, jdHash)
	if _, statErr := os.Stat(path); statErr == nil && cmd.Flag("yes").Value.String() == "false" {
		prompt := promptui.Select{
			Label: fmt.Sprintf("Artifact %s already exists. Overwrite?", path),
			Items: []string{PromptYes, PromptNo},
		}
		_, action, promptErr := prompt.Run()
		if promptErr != nil {
			logger.Fatal("exiting", zap.Error(promptErr))
		}
		if action == PromptNo {
			logger.Info("exiting", zap.String("reason", "existing artifact kept"))
			return
		}
	}

	saved, err := store.SaveRequirements(&doc)
	if err != nil {
		logger.Fatal("saving requirements artifact", zap.Error(err))
	}

	logger.Info("requirements artifact saved",
		zap.String("path", saved),
		zap.String("role_id", roleID),
		zap.String("jd_hash", jdHash),
		zap.Int("requirements_count", len(doc.Requirements)),
	)
}

func resolveGeminiAPIKey(config *GeminiConfig) (string, error) {
	return secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: config.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
}

func geminiConfig(config *Config) (*GeminiConfig, error) {
	if config == nil || config.AI == nil || config.AI.Gemini == nil {
		return nil, fmt.Errorf("ai.gemini configuration is required")
	}

	provider := strings.TrimSpace(strings.ToLower(config.AI.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", config.AI.Provider)
	}

	return config.AI.Gemini, nil
}

func newExtractor(ctx context.Context, config *Config, logger *zap.Logger) (ai.Extractor, error) {
	cfg, err := geminiConfig(config)
	if err != nil {
		return nil, err
	}

	apiKey, err := resolveGeminiAPIKey(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.ExtractModel, cfg.MaxRetries, logger)
	if err != nil {
		return nil, err
	}

	extractorLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("ai_model", generator.Model()),
	)

	return gemini.NewExtractor(generator, cfg.MaxLogLength, extractorLogger), nil
}

func newMatcher(ctx context.Context, config *Config, logger *zap.Logger) (ai.Matcher, error) {
	cfg, err := geminiConfig(config)
	if err != nil {
		return nil, err
	}

	apiKey, err := resolveGeminiAPIKey(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.MatchModel, cfg.MaxRetries, logger)
	if err != nil {
		return nil, err
	}

	matcherLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("ai_model", generator.Model()),
	)

	return gemini.NewMatcher(generator, cfg.MaxLogLength, matcherLogger), nil
}
