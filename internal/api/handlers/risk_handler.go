package handlers

import (
	"net/url"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ai-risk-sentinel/backend/internal/catalog"
	"github.com/ai-risk-sentinel/backend/internal/metrics"
	"github.com/ai-risk-sentinel/backend/internal/storage/models"
	"github.com/ai-risk-sentinel/backend/internal/storage/sqlite"
	"github.com/ai-risk-sentinel/backend/internal/taxonomy"
	"github.com/ai-risk-sentinel/backend/pkg/logger"
)

type RiskHandler struct {
	catalog *catalog.Catalog
	db      *sqlite.Client
}

func NewRiskHandler(cat *catalog.Catalog, db *sqlite.Client) *RiskHandler {
	return &RiskHandler{
		catalog: cat,
		db:      db,
	}
}

// ListRisks searches the catalog with optional query, category and source
// filters.
func (h *RiskHandler) ListRisks(c *fiber.Ctx) error {
	filter := catalog.Filter{
		Query:  c.Query("q"),
		Source: c.Query("source"),
		Limit:  50,
	}

	if raw := c.Query("category"); raw != "" {
		cat, err := taxonomy.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		filter.Category = &cat
	}

	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "limit must be a positive integer",
			})
		}
		filter.Limit = parsed
	}

	risks := h.catalog.Search(filter)

	return c.JSON(fiber.Map{
		"risks": risks,
		"count": len(risks),
		"total": h.catalog.Count(),
	})
}

// GetRisk returns a single catalog entry by id.
func (h *RiskHandler) GetRisk(c *fiber.Ctx) error {
	risk, ok := h.catalog.Get(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Risk not found",
		})
	}

	return c.JSON(risk)
}

// CreateRisk registers a manually curated risk.
func (h *RiskHandler) CreateRisk(c *fiber.Ctx) error {
	var req struct {
		Title        string  `json:"title"`
		Description  string  `json:"description"`
		Category     string  `json:"category"`
		SourceID     string  `json:"source_id"`
		ModelType    string  `json:"model_type"`
		SSTRelevance float64 `json:"sst_relevance_score"`
		Severity     int     `json:"severity_potential"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "title is required",
		})
	}

	category, err := taxonomy.Parse(req.Category)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if req.Severity < 1 || req.Severity > 5 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "severity_potential must be between 1 and 5",
		})
	}

	now := time.Now().UTC()
	risk := models.Risk{
		ID:               uuid.New().String(),
		Source:           models.SourceInternal,
		SourceID:         req.SourceID,
		Title:            req.Title,
		Description:      req.Description,
		ModelType:        req.ModelType,
		Category:         category,
		SSTRelevance:     req.SSTRelevance,
		Severity:         req.Severity,
		ValidationStatus: models.ValidationValidated,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	h.catalog.Add(risk)
	metrics.CatalogSize.Set(float64(h.catalog.Count()))

	if h.db != nil {
		if err := h.db.InsertRisk(&risk); err != nil {
			logger.Error("Failed to persist risk", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to persist risk",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(risk)
}

// decodeModelID reads the greedy model id segment. Hub model ids contain a
// slash, so routes capture them with a "+" parameter; escaped ids are
// accepted too.
func decodeModelID(c *fiber.Ctx) (string, error) {
	return url.PathUnescape(c.Params("+"))
}
