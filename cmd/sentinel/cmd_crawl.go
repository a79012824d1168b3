package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ai-risk-sentinel/backend/internal/catalog"
	"github.com/ai-risk-sentinel/backend/internal/hub"
	"github.com/ai-risk-sentinel/backend/internal/storage/sqlite"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl recent model cards and extract documented risks",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		pipelineTag, _ := cmd.Flags().GetString("pipeline")

		db, err := sqlite.NewClient(cfg.SQLite.Path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		if err := db.InitSchema(); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}

		client := hub.NewClient(
			cfg.Hub.BaseURL,
			cfg.Hub.Token,
			time.Duration(cfg.Hub.RequestTimeout)*time.Second,
		)
		crawler := hub.NewCrawler(
			client,
			catalog.New(),
			db,
			time.Duration(cfg.Hub.RateLimitMS)*time.Millisecond,
		)

		fmt.Println(styles.title.Render("Crawling model cards"))

		stats, err := crawler.Crawl(cmd.Context(), limit, pipelineTag, func(p hub.Progress) {
			fmt.Printf("\r%s %d/%d models, %d risks",
				styles.muted.Render("progress:"), p.Processed, p.Total, p.RisksFound)
		})
		fmt.Println()
		if err != nil && !isCanceled(err) {
			return err
		}

		fmt.Printf("%s processed %d models (%d skipped), extracted %d risks\n",
			styles.ok.Render("done:"),
			stats.ModelsProcessed, stats.ModelsSkipped, stats.RisksExtracted)
		return nil
	},
}

var initdbCmd = &cobra.Command{
	Use:   "initdb",
	Short: "Create the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := sqlite.NewClient(cfg.SQLite.Path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		if err := db.InitSchema(); err != nil {
			return err
		}

		fmt.Println(styles.ok.Render("Schema initialized at " + cfg.SQLite.Path))
		return nil
	},
}

func init() {
	crawlCmd.Flags().Int("limit", 100, "maximum number of models to process")
	crawlCmd.Flags().String("pipeline", "", "restrict the crawl to one pipeline tag")
}

func isCanceled(err error) bool {
	return err == context.Canceled || err == context.DeadlineExceeded
}
