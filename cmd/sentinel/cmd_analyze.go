package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ai-risk-sentinel/backend/internal/analysis"
	"github.com/ai-risk-sentinel/backend/internal/storage/sqlite"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compute the blind spot index across all risk categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		analyzer, err := buildAnalyzer()
		if err != nil {
			return err
		}

		report := analyzer.Analyze(analysis.Options{})
		renderReport(report)
		return nil
	},
}

var gapsCmd = &cobra.Command{
	Use:   "gaps",
	Short: "Show the worst documentation gaps, highest blind spot index first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		if limit < 1 {
			return fmt.Errorf("limit must be a positive integer")
		}

		analyzer, err := buildAnalyzer()
		if err != nil {
			return err
		}

		gaps := analyzer.PriorityGaps(limit)

		fmt.Println(styles.title.Render("Priority Documentation Gaps"))
		fmt.Println()
		for i, gap := range gaps {
			label := priorityStyle(gap.Priority).Render(gap.Priority)
			fmt.Printf("%d. %s  %s\n", i+1, styles.header.Render(gap.Category.Label()), label)
			fmt.Printf("   BSI %.3f, gap %.1f points\n", gap.BlindSpotIndex, gap.GapPoints)
			fmt.Printf("   %s\n\n", styles.muted.Render(gap.Recommendation))
		}
		return nil
	},
}

func init() {
	gapsCmd.Flags().Int("limit", 3, "number of gaps to show")
}

// buildAnalyzer seeds an analyzer from the reference distributions, then
// overlays whatever data the local database holds.
func buildAnalyzer() (*analysis.Analyzer, error) {
	baseline := analysis.Baseline{}
	if cfg.Analysis.UseReferenceData {
		baseline = analysis.DefaultBaseline()
	}
	analyzer := analysis.NewAnalyzer(cfg.Analysis.BSIThreshold, baseline)

	db, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		// No local database is fine when the reference baseline is in use.
		if cfg.Analysis.UseReferenceData {
			return analyzer, nil
		}
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	risks, err := db.ListRisks("", "", 0, 0)
	if err == nil && len(risks) > 0 {
		analyzer.LoadCatalogData(risks)
	}

	incidents, err := db.ListIncidents(0, 0)
	if err == nil && len(incidents) > 0 {
		analyzer.LoadIncidentData(incidents)
	}

	return analyzer, nil
}

func renderReport(report *analysis.Report) {
	fmt.Println(styles.title.Render("Blind Spot Analysis"))
	fmt.Println()

	var b strings.Builder
	fmt.Fprintf(&b, "%-38s %10s %10s %8s %6s\n",
		"Category", "Documented", "Incidents", "BSI", "Flag")
	fmt.Fprintf(&b, "%s\n", strings.Repeat("-", 76))

	flagged := make(map[string]bool, len(report.HighRiskCategories))
	for _, cat := range report.HighRiskCategories {
		flagged[cat.String()] = true
	}

	for _, m := range report.ByCategory {
		flag := ""
		if flagged[m.Category.String()] {
			flag = styles.flagged.Render("HIGH")
		}
		fmt.Fprintf(&b, "%-38s %9.1f%% %9.1f%% %8.3f %6s\n",
			m.Category.Label(), m.DocumentedPct, m.IncidentPct, m.BSI, flag)
	}
	fmt.Println(b.String())

	summary := fmt.Sprintf(
		"Global BSI        %.3f\nHigh-risk flags   %d of %d categories\nThreshold         %.2f\nDoc quality       %.1f%%\nCatalog size      %d risks, %d incidents",
		report.GlobalBSI,
		len(report.HighRiskCategories), len(report.ByCategory),
		report.Threshold,
		report.DocQualityScore,
		report.CatalogSize, report.IncidentCount,
	)
	fmt.Println(styles.panel.Render(summary))
}
