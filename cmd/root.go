package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/imishinist/perfdiff/internal/config"
	"github.com/imishinist/perfdiff/internal/logging"
)

var (
	cfgFile   string
	configErr error

	appConfig *config.Config
	logger    = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "perfdiff",
	Short: "Performance report comparison tool",
	Long: `Compare two performance test reports, classify each metric as improved,
worse or unchanged, and optionally explain the changes with generated insights.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (YAML)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug/info/warn/error)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format (console/json)")
	rootCmd.PersistentFlags().String("tracking-uri", "", "MLflow tracking URI (overrides MLFLOW_TRACKING_URI)")
	rootCmd.PersistentFlags().String("experiment-id", "", "MLflow experiment ID; enables recording comparisons to MLflow")
	rootCmd.PersistentFlags().String("history-file", "", "Append every comparison to this JSON lines file")
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("tracking_uri", rootCmd.PersistentFlags().Lookup("tracking-uri"))
	viper.BindPFlag("experiment_id", rootCmd.PersistentFlags().Lookup("experiment-id"))
	viper.BindPFlag("history_file", rootCmd.PersistentFlags().Lookup("history-file"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			configErr = fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables
	viper.SetEnvPrefix("PERFDIFF")
	viper.AutomaticEnv()

	// Also accept the standard MLflow and Databricks variables
	viper.BindEnv("tracking_uri", "PERFDIFF_TRACKING_URI", "MLFLOW_TRACKING_URI")
	viper.BindEnv("experiment_id", "PERFDIFF_EXPERIMENT_ID", "MLFLOW_EXPERIMENT_ID")
	viper.BindEnv("databricks_host", "DATABRICKS_HOST")
	viper.BindEnv("databricks_token", "DATABRICKS_TOKEN")

	config.SetDefaults(viper.GetViper())
}

func setup(cmd *cobra.Command, args []string) error {
	if configErr != nil {
		return configErr
	}

	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	l, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	appConfig = cfg
	logger = l
	return nil
}
