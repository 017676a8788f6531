package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/quizmind/internal/config"
	"github.com/abhisek/quizmind/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "quizmind",
	Short: "Learner modelling for quizzes",
	Long: "quizmind scores quiz attempts, adapts difficulty, tracks topic mastery, " +
		"selects hints and recommends content, keeping the learner model in a local SQLite file.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides QUIZMIND_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (overrides QUIZMIND_CONFIG env var)")
	rootCmd.PersistentFlags().Bool("json", false, "Print results as JSON")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(hintCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(trackCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the configured path (QUIZMIND_DB or db_path), then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}
