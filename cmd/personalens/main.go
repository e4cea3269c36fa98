package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mreed/personalens/internal/config"
	"github.com/mreed/personalens/internal/logger"
)

var (
	cfgPath string
	cfg     *config.Config
	appLog  *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:          "personalens",
	Short:        "Reddit user research: fetch comments, build personas, ask questions",
	SilenceUsage: true, // don't print usage on operational errors
	Long: `personalens fetches Reddit comment histories, synthesizes narrative
personas with a locally hosted LLM, embeds both into Qdrant, and answers
free-text questions over the embedded corpus. A sentiment command scores a
thread's top-level comments to shortlist engaged users.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		appLog = logger.NewFromEnv()
		logger.SetDefault(appLog)

		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
