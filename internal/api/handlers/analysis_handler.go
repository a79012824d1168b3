package handlers

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ai-risk-sentinel/backend/internal/analysis"
	"github.com/ai-risk-sentinel/backend/internal/cache/redis"
	"github.com/ai-risk-sentinel/backend/internal/metrics"
	"github.com/ai-risk-sentinel/backend/internal/storage/models"
	"github.com/ai-risk-sentinel/backend/internal/storage/sqlite"
	"github.com/ai-risk-sentinel/backend/internal/taxonomy"
	"github.com/ai-risk-sentinel/backend/pkg/logger"
)

type AnalysisHandler struct {
	analyzer *analysis.Analyzer
	cache    *redis.Client
	db       *sqlite.Client
}

// NewAnalysisHandler wires the gap analyzer into HTTP. cache may be nil, in
// which case every request recomputes the report; db may be nil, in which
// case no snapshots are recorded.
func NewAnalysisHandler(analyzer *analysis.Analyzer, cache *redis.Client, db *sqlite.Client) *AnalysisHandler {
	return &AnalysisHandler{
		analyzer: analyzer,
		cache:    cache,
		db:       db,
	}
}

// GetBlindSpotIndex computes the full gap report across all categories.
func (h *AnalysisHandler) GetBlindSpotIndex(c *fiber.Ctx) error {
	modelType := c.Query("model_type")
	cacheKey := "bsi:" + modelType

	if h.cache != nil {
		var cached analysis.Report
		found, err := h.cache.GetReport(c.Context(), cacheKey, &cached)
		if err != nil {
			logger.Warn("Cache lookup failed", zap.Error(err))
		}
		if found {
			metrics.CacheHits.WithLabelValues("analysis").Inc()
			return c.JSON(cached)
		}
		metrics.CacheMisses.WithLabelValues("analysis").Inc()
	}

	start := time.Now()
	report := h.analyzer.Analyze(analysis.Options{ModelType: modelType})
	metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	metrics.AnalysisTotal.WithLabelValues("success").Inc()
	metrics.GlobalBSI.Set(report.GlobalBSI)
	metrics.HighRiskCategories.Set(float64(len(report.HighRiskCategories)))

	if h.cache != nil {
		if err := h.cache.SetReport(c.Context(), cacheKey, report); err != nil {
			logger.Warn("Failed to cache report", zap.Error(err))
		}
	}

	h.recordSnapshot(report)

	return c.JSON(report)
}

// GetLatestSnapshot returns the headline numbers of the most recent analysis
// run, for trend dashboards.
func (h *AnalysisHandler) GetLatestSnapshot(c *fiber.Ctx) error {
	if h.db == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Snapshot storage is not configured",
		})
	}

	snapshot, err := h.db.LatestSnapshot()
	if err != nil {
		logger.Error("Failed to load latest snapshot", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load latest snapshot",
		})
	}
	if snapshot == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No snapshots recorded yet",
		})
	}

	return c.JSON(snapshot)
}

func (h *AnalysisHandler) recordSnapshot(report *analysis.Report) {
	if h.db == nil {
		return
	}

	categoryJSON, err := json.Marshal(report.ByCategory)
	if err != nil {
		logger.Warn("Failed to marshal category metrics", zap.Error(err))
		return
	}

	snapshot := &models.MetricsSnapshot{
		SnapshotDate:       report.AnalysisDate,
		GlobalBSI:          report.GlobalBSI,
		DocQualityScore:    report.DocQualityScore,
		TotalRisks:         report.CatalogSize,
		TotalIncidents:     report.IncidentCount,
		ModelCardsAnalyzed: report.ModelCardsAnalyzed,
		CategoryMetrics:    string(categoryJSON),
		CreatedAt:          time.Now().UTC(),
	}
	if err := h.db.InsertSnapshot(snapshot); err != nil {
		logger.Warn("Failed to record analysis snapshot", zap.Error(err))
	}
}

// GetPriorityGaps returns the worst documentation gaps, highest BSI first.
func (h *AnalysisHandler) GetPriorityGaps(c *fiber.Ctx) error {
	limit := 3
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "limit must be a positive integer",
			})
		}
		limit = parsed
	}

	gaps := h.analyzer.PriorityGaps(limit)

	return c.JSON(fiber.Map{
		"gaps":  gaps,
		"count": len(gaps),
	})
}

// GetCategories lists the risk taxonomy.
func (h *AnalysisHandler) GetCategories(c *fiber.Ctx) error {
	type categoryInfo struct {
		ID    string `json:"id"`
		Label string `json:"label"`
	}

	categories := make([]categoryInfo, 0, taxonomy.Count)
	for _, cat := range taxonomy.All() {
		categories = append(categories, categoryInfo{
			ID:    cat.String(),
			Label: cat.Label(),
		})
	}

	return c.JSON(fiber.Map{
		"categories": categories,
	})
}
