package cmd

import (
	"errors"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jbony2888/resume-jd-analyzer/internal/artifacts"
	"github.com/jbony2888/resume-jd-analyzer/internal/logger"
	"github.com/jbony2888/resume-jd-analyzer/internal/scoring"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Recompute the score from stored artifacts, no AI calls",
	Long: "Recompute the deterministic score from a frozen requirements artifact and a persisted " +
		"evidence map. Identical artifacts always produce identical output, so this command " +
		"doubles as an audit check on a previous evaluation run.",
	Run: func(cmd *cobra.Command, _ []string) {
		score(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().String("role-id", "", "role id from create-requirements (resolved from jd-hash when omitted)")
	scoreCmd.Flags().String("jd-hash", "", "job description hash from create-requirements")
	scoreCmd.Flags().String("evidence", "", "path to a persisted evidence map artifact")

	if err := scoreCmd.MarkFlagRequired("jd-hash"); err != nil {
		log.Fatalf("marking jd-hash flag required: %v", err)
	}
	if err := scoreCmd.MarkFlagRequired("evidence"); err != nil {
		log.Fatalf("marking evidence flag required: %v", err)
	}
}

func score(cmd *cobra.Command) {
	zlog, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zlog.Fatal("getting a config", zap.Error(err))
	}

	store := artifacts.New(config.ArtifactsDir)

	roleID := cmd.Flag("role-id").Value.String()
	jdHash := cmd.Flag("jd-hash").Value.String()

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

	evidenceMap, err := store.LoadEvidence(cmd.Flag("evidence").Value.String())
	if err != nil {
		zlog.Fatal("loading evidence artifact", zap.Error(err))
	}

	result, err := scoring.Compute(doc, evidenceMap)
	if err != nil {
		zlog.Fatal("scoring failed", zap.Error(err))
	}

	printResultConsole(doc, evidenceMap, result)
}
