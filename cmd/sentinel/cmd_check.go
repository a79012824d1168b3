package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ai-risk-sentinel/backend/internal/compliance"
	"github.com/ai-risk-sentinel/backend/internal/storage/models"
	"github.com/ai-risk-sentinel/backend/internal/storage/sqlite"
)

var checkCmd = &cobra.Command{
	Use:   "check <model-id>",
	Short: "Check a model's documented risk coverage against regulatory frameworks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		modelID := args[0]
		frameworks, _ := cmd.Flags().GetStringSlice("frameworks")
		exportDir, _ := cmd.Flags().GetString("export")

		engine := compliance.NewEngine()
		engine.LoadModelRisks(modelID, loadModelRisks(modelID))

		report, err := engine.CheckModel(modelID, frameworks)
		if err != nil {
			return err
		}

		renderComplianceReport(report)

		if exportDir != "" {
			packDir, err := engine.ExportEvidencePack(report, exportDir)
			if err != nil {
				return fmt.Errorf("failed to export evidence pack: %w", err)
			}
			fmt.Println(styles.ok.Render("Evidence pack written to " + packDir))
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().StringSlice("frameworks", nil, "frameworks to check (default: all registered)")
	checkCmd.Flags().String("export", "", "write an evidence pack to this directory")
}

func loadModelRisks(modelID string) []models.Risk {
	db, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		return nil
	}
	defer db.Close()

	all, err := db.ListRisks("", "", 0, 0)
	if err != nil {
		return nil
	}

	var risks []models.Risk
	for _, r := range all {
		if r.SourceID == modelID {
			risks = append(risks, r)
		}
	}
	return risks
}

func renderComplianceReport(report *compliance.Report) {
	fmt.Println(styles.title.Render("Compliance Check: " + report.ModelID))
	fmt.Printf("%s %s\n\n", styles.muted.Render("Model type:"), report.ModelType)

	names := make([]string, 0, len(report.Frameworks))
	for name := range report.Frameworks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if report.Frameworks[name] {
			fmt.Printf("  %s %s\n", styles.ok.Render("✓"), name)
		} else {
			fmt.Printf("  %s %s\n", styles.danger.Render("✗"), name)
		}
	}

	fmt.Printf("\nCoverage: %.0f%% (%d of %d categories)\n",
		report.CoverageRatio*100,
		len(report.CategoriesCovered),
		len(report.CategoriesCovered)+len(report.CategoriesMissing),
	)

	if len(report.PriorityGaps) == 0 {
		fmt.Println(styles.ok.Render("No coverage gaps."))
		return
	}

	fmt.Println()
	fmt.Println(styles.header.Render("Coverage gaps"))
	for _, gap := range report.PriorityGaps {
		label := priorityStyle(gap.Priority).Render(gap.Priority)
		fmt.Printf("  %s  %s\n", label, gap.Category.Label())
		fmt.Printf("        %s\n", styles.muted.Render(gap.Reason))
	}
}
