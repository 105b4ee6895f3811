package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jbony2888/resume-jd-analyzer/internal/evidence"
)

const (
	app = "resume-jd-analyzer"
)

type Config struct {
	ArtifactsDir   string    `mapstructure:"artifacts-dir"`
	ReportsDir     string    `mapstructure:"reports-dir"`
	MinQuoteLength int       `mapstructure:"min-quote-length"`
	AI             *AIConfig `mapstructure:"ai"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	ExtractModel string `mapstructure:"extract-model"`
	MatchModel   string `mapstructure:"match-model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-jd-analyzer scores a resume against frozen job-description requirements with verifiable evidence",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is "+app+".yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	viper.SetDefault("artifacts-dir", "artifacts")
	viper.SetDefault("reports-dir", "artifacts")
	viper.SetDefault("min-quote-length", evidence.MinQuoteLength)
}

func initConfig() {
	// Only the pipeline commands need a config file.
	if createCmd.CalledAs() == "" && evaluateCmd.CalledAs() == "" && scoreCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// The offline score command runs fine on defaults; the AI-backed
	// commands cannot proceed without a parseable config.
	if err := viper.ReadInConfig(); err != nil {
		if cfgFile != "" || scoreCmd.CalledAs() == "" {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
