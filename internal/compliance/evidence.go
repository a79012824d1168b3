package compliance

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ai-risk-sentinel/backend/internal/taxonomy"
	"github.com/ai-risk-sentinel/backend/pkg/logger"
)

var slugRe = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ExportEvidencePack writes an audit bundle for a compliance report into
// outputDir: a machine-readable compliance_report.json plus a human-readable
// summary.md. The pack directory name combines the sanitized model id with a
// UTC timestamp so repeated exports never collide. Returns the pack path.
func (e *Engine) ExportEvidencePack(report *Report, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	slug := slugRe.ReplaceAllString(report.ModelID, "_")
	if slug == "" {
		slug = "unknown"
	}
	timestamp := time.Now().UTC().Format("20060102_150405")

	packDir := filepath.Join(outputDir, fmt.Sprintf("evidence_pack_%s_%s", slug, timestamp))
	if err := os.MkdirAll(packDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create evidence pack directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(filepath.Join(packDir, "compliance_report.json"), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	summary := renderSummary(report)
	if err := os.WriteFile(filepath.Join(packDir, "summary.md"), []byte(summary), 0o644); err != nil {
		return "", fmt.Errorf("failed to write summary: %w", err)
	}

	logger.Info("Evidence pack exported",
		zap.String("path", packDir),
		zap.String("model_id", report.ModelID),
	)

	return packDir, nil
}

func renderSummary(report *Report) string {
	var b strings.Builder

	modelID := report.ModelID
	if modelID == "" {
		modelID = "Not specified"
	}

	fmt.Fprintf(&b, "# Compliance Report\n\n")
	fmt.Fprintf(&b, "## Model Information\n")
	fmt.Fprintf(&b, "- **Model ID**: %s\n", modelID)
	fmt.Fprintf(&b, "- **Model Type**: %s\n", report.ModelType)
	fmt.Fprintf(&b, "- **Analysis Date**: %s\n\n", report.AnalysisDate.Format(time.RFC3339))

	fmt.Fprintf(&b, "## Coverage Summary\n")
	fmt.Fprintf(&b, "- **Coverage Ratio**: %.0f%%\n", report.CoverageRatio*100)
	fmt.Fprintf(&b, "- **Categories Covered**: %s\n", joinCategories(report.CategoriesCovered))
	fmt.Fprintf(&b, "- **Categories Missing**: %s\n\n", joinCategories(report.CategoriesMissing))

	fmt.Fprintf(&b, "## Compliance Status\n")
	fmt.Fprintf(&b, "| Framework | Status |\n")
	fmt.Fprintf(&b, "|-----------|--------|\n")
	names := make([]string, 0, len(report.Frameworks))
	for name := range report.Frameworks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		status := "Non-Compliant"
		if report.Frameworks[name] {
			status = "Compliant"
		}
		fmt.Fprintf(&b, "| %s | %s |\n", name, status)
	}

	fmt.Fprintf(&b, "\n## Priority Gaps\n")
	for _, gap := range report.PriorityGaps {
		fmt.Fprintf(&b, "\n### %s (%s Priority)\n\n", gap.Category, gap.Priority)
		fmt.Fprintf(&b, "**Reason**: %s\n\n", gap.Reason)
		fmt.Fprintf(&b, "**Suggested Risks to Document**:\n")
		for _, s := range gap.SuggestedRisks {
			fmt.Fprintf(&b, "  - %s\n", s)
		}
		fmt.Fprintf(&b, "\n**Regulatory Impact**: %s\n", strings.Join(gap.RegulatoryImpact, ", "))
	}

	fmt.Fprintf(&b, "\n---\n*Generated by AI Risk Sentinel*\n")

	return b.String()
}

func joinCategories(cats []taxonomy.Category) string {
	if len(cats) == 0 {
		return "None"
	}
	parts := make([]string, len(cats))
	for i, c := range cats {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}
