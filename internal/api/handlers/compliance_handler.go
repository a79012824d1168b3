package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ai-risk-sentinel/backend/internal/catalog"
	"github.com/ai-risk-sentinel/backend/internal/compliance"
	"github.com/ai-risk-sentinel/backend/internal/metrics"
	"github.com/ai-risk-sentinel/backend/pkg/logger"
)

type ComplianceHandler struct {
	engine      *compliance.Engine
	catalog     *catalog.Catalog
	evidenceDir string
}

func NewComplianceHandler(engine *compliance.Engine, cat *catalog.Catalog, evidenceDir string) *ComplianceHandler {
	return &ComplianceHandler{
		engine:      engine,
		catalog:     cat,
		evidenceDir: evidenceDir,
	}
}

// CheckCompliance evaluates a model against the requested frameworks.
func (h *ComplianceHandler) CheckCompliance(c *fiber.Ctx) error {
	var req struct {
		ModelID    string   `json:"model_id"`
		Frameworks []string `json:"frameworks"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.ModelID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "model_id is required",
		})
	}

	report, err := h.check(req.ModelID, req.Frameworks)
	if err != nil {
		var unknown *compliance.UnknownFrameworkError
		if errors.As(err, &unknown) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": unknown.Error(),
			})
		}
		logger.Error("Compliance check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to check compliance",
		})
	}

	return c.JSON(report)
}

// GetModelGaps returns the coverage gaps for one model under the default
// framework set.
func (h *ComplianceHandler) GetModelGaps(c *fiber.Ctx) error {
	modelID, err := decodeModelID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid model id",
		})
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, convErr := strconv.Atoi(raw)
		if convErr != nil || parsed < 1 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "limit must be a positive integer",
			})
		}
		limit = parsed
	}

	report, err := h.check(modelID, nil)
	if err != nil {
		logger.Error("Gap analysis failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to analyze model gaps",
		})
	}

	gaps := report.PriorityGaps
	if limit > 0 && limit < len(gaps) {
		gaps = gaps[:limit]
	}

	return c.JSON(fiber.Map{
		"model_id":           report.ModelID,
		"model_type":         report.ModelType,
		"coverage_ratio":     report.CoverageRatio,
		"categories_covered": report.CategoriesCovered,
		"categories_missing": report.CategoriesMissing,
		"gaps":               gaps,
	})
}

// ExportEvidencePack runs a compliance check and writes the report plus a
// human-readable summary to disk.
func (h *ComplianceHandler) ExportEvidencePack(c *fiber.Ctx) error {
	var req struct {
		ModelID    string   `json:"model_id"`
		Frameworks []string `json:"frameworks"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.ModelID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "model_id is required",
		})
	}

	report, err := h.check(req.ModelID, req.Frameworks)
	if err != nil {
		var unknown *compliance.UnknownFrameworkError
		if errors.As(err, &unknown) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": unknown.Error(),
			})
		}
		logger.Error("Compliance check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to check compliance",
		})
	}

	packDir, err := h.engine.ExportEvidencePack(report, h.evidenceDir)
	if err != nil {
		logger.Error("Failed to export evidence pack", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to export evidence pack",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"model_id": report.ModelID,
		"path":     packDir,
	})
}

func (h *ComplianceHandler) check(modelID string, frameworks []string) (*compliance.Report, error) {
	h.engine.LoadModelRisks(modelID, h.catalog.ForModel(modelID))

	report, err := h.engine.CheckModel(modelID, frameworks)
	if err != nil {
		return nil, err
	}

	for framework, compliant := range report.Frameworks {
		metrics.ComplianceChecksTotal.WithLabelValues(framework, strconv.FormatBool(compliant)).Inc()
	}

	return report, nil
}
