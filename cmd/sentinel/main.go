// Command sentinel is the operator CLI: it runs gap analyses, compliance
// checks and hub crawls against the same engine the API server uses.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ai-risk-sentinel/backend/pkg/config"
	appLogger "github.com/ai-risk-sentinel/backend/pkg/logger"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "sentinel",
	Short: "AI Risk Sentinel command line tools",
	Long:  "Analyze documentation blind spots, check model compliance and crawl model cards from the terminal.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Keep structured logs out of the terminal output unless asked for.
		level := "error"
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			level = cfg.Logging.Level
		}
		return appLogger.Init(level, "console", "stderr")
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styles.errText.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().Bool("verbose", false, "enable structured log output")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(gapsCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(crawlCmd)
	rootCmd.AddCommand(initdbCmd)
}
