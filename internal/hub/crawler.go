package hub

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ai-risk-sentinel/backend/internal/catalog"
	"github.com/ai-risk-sentinel/backend/internal/classify"
	"github.com/ai-risk-sentinel/backend/internal/extraction"
	"github.com/ai-risk-sentinel/backend/internal/metrics"
	"github.com/ai-risk-sentinel/backend/internal/storage/models"
	"github.com/ai-risk-sentinel/backend/internal/storage/sqlite"
	"github.com/ai-risk-sentinel/backend/pkg/logger"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 2000
	severityModerate  = 3
)

// Progress carries per-model crawl state so callers can stream it.
type Progress struct {
	ModelID    string `json:"model_id"`
	Processed  int    `json:"processed"`
	Total      int    `json:"total"`
	RisksFound int    `json:"risks_found"`
}

type Stats struct {
	ModelsProcessed int `json:"models_processed"`
	ModelsSkipped   int `json:"models_skipped"`
	RisksExtracted  int `json:"risks_extracted"`
}

// Crawler walks recently modified models, extracts risk statements from
// their cards and persists them as pending catalog entries.
type Crawler struct {
	hub        *Client
	extractor  *extraction.Extractor
	classifier *classify.Classifier
	catalog    *catalog.Catalog
	db         *sqlite.Client
	interval   time.Duration
}

// NewCrawler wires the crawl pipeline. db may be nil, in which case risks
// only live in the in-memory catalog.
func NewCrawler(hub *Client, cat *catalog.Catalog, db *sqlite.Client, interval time.Duration) *Crawler {
	return &Crawler{
		hub:        hub,
		extractor:  extraction.NewExtractor(),
		classifier: classify.NewClassifier(),
		catalog:    cat,
		db:         db,
		interval:   interval,
	}
}

// Crawl processes up to limit models. Individual model failures are logged
// and skipped; only listing failures and context cancellation abort the run.
func (c *Crawler) Crawl(ctx context.Context, limit int, pipelineTag string, onProgress func(Progress)) (*Stats, error) {
	modelList, err := c.hub.ListModels(ctx, limit, pipelineTag)
	if err != nil {
		return nil, err
	}

	stats := &Stats{}
	for i, info := range modelList {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if i > 0 && c.interval > 0 {
			select {
			case <-ctx.Done():
				return stats, ctx.Err()
			case <-time.After(c.interval):
			}
		}

		found, err := c.processModel(ctx, info)
		if err != nil {
			stats.ModelsSkipped++
			logger.Warn("Skipping model",
				zap.String("model_id", info.ID),
				zap.Error(err),
			)
			continue
		}

		stats.ModelsProcessed++
		stats.RisksExtracted += found
		metrics.CrawlModelsProcessed.Inc()
		metrics.CrawlRisksExtracted.Add(float64(found))

		if onProgress != nil {
			onProgress(Progress{
				ModelID:    info.ID,
				Processed:  stats.ModelsProcessed,
				Total:      len(modelList),
				RisksFound: stats.RisksExtracted,
			})
		}
	}

	metrics.CatalogSize.Set(float64(c.catalog.Count()))

	logger.Info("Crawl finished",
		zap.Int("models_processed", stats.ModelsProcessed),
		zap.Int("models_skipped", stats.ModelsSkipped),
		zap.Int("risks_extracted", stats.RisksExtracted),
	)
	return stats, nil
}

func (c *Crawler) processModel(ctx context.Context, info ModelInfo) (int, error) {
	card, err := c.hub.FetchModelCard(ctx, info.ID)
	if err != nil {
		if errors.Is(err, ErrCardNotFound) {
			c.storeCard(info, false, "")
			return 0, nil
		}
		return 0, err
	}

	sections := c.extractor.Sections(card)
	c.storeCard(info, len(sections) > 0, strings.Join(sections, "\n\n"))

	statements := c.extractor.Statements(card)
	modelType := inferModelType(info.ID, info.PipelineTag)
	now := time.Now().UTC()

	found := 0
	for _, stmt := range statements {
		risk := models.Risk{
			ID:               uuid.New().String(),
			Source:           models.SourceHubCatalog,
			SourceID:         info.ID,
			Title:            truncate(stmt.Text, maxTitleLen),
			ModelType:        modelType,
			Category:         c.classifier.Classify(stmt.Text),
			SSTRelevance:     c.classifier.Relevance(stmt.Text),
			Severity:         severityModerate,
			ValidationStatus: models.ValidationPending,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if len(stmt.Section) > maxTitleLen {
			risk.Description = truncate(stmt.Section, maxDescriptionLen)
		}

		c.catalog.Add(risk)
		if c.db != nil {
			if err := c.db.InsertRisk(&risk); err != nil {
				logger.Warn("Failed to persist risk",
					zap.String("risk_id", risk.ID),
					zap.Error(err),
				)
			}
		}
		found++
	}

	return found, nil
}

func (c *Crawler) storeCard(info ModelInfo, hasRiskSection bool, riskText string) {
	if c.db == nil {
		return
	}

	now := time.Now().UTC()
	card := &models.ModelCard{
		ModelID:         info.ID,
		ModelName:       modelName(info.ID),
		Author:          modelAuthor(info.ID),
		ModelType:       inferModelType(info.ID, info.PipelineTag),
		HasRiskSection:  hasRiskSection,
		RiskSectionText: truncate(riskText, maxDescriptionLen),
		Downloads:       info.Downloads,
		Likes:           info.Likes,
		LastModified:    info.LastModified,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := c.db.UpsertModelCard(card); err != nil {
		logger.Warn("Failed to persist model card",
			zap.String("model_id", info.ID),
			zap.Error(err),
		)
	}
}

// modelTypePatterns maps architecture hints in a model id to a coarse type.
// Ordered so more specific families win over generic ones.
var modelTypePatterns = []struct {
	needle    string
	modelType string
}{
	{"llava", "Multimodal"},
	{"clip", "Multimodal"},
	{"blip", "Multimodal"},
	{"stable-diffusion", "Diffusion"},
	{"diffusion", "Diffusion"},
	{"flux", "Diffusion"},
	{"whisper", "Audio"},
	{"wav2vec", "Audio"},
	{"musicgen", "Audio"},
	{"vit", "Vision"},
	{"resnet", "Vision"},
	{"yolo", "Vision"},
	{"segformer", "Vision"},
	{"bert", "Encoder"},
	{"roberta", "Encoder"},
	{"deberta", "Encoder"},
	{"t5", "Encoder"},
	{"llama", "LLM"},
	{"gpt", "LLM"},
	{"mistral", "LLM"},
	{"mixtral", "LLM"},
	{"phi", "LLM"},
	{"qwen", "LLM"},
	{"gemma", "LLM"},
	{"falcon", "LLM"},
}

var pipelineTypes = map[string]string{
	"text-generation":              "LLM",
	"text2text-generation":         "LLM",
	"image-classification":         "Vision",
	"object-detection":             "Vision",
	"image-segmentation":           "Vision",
	"automatic-speech-recognition": "Audio",
	"audio-classification":         "Audio",
	"text-to-image":                "Diffusion",
	"image-to-text":                "Multimodal",
	"fill-mask":                    "Encoder",
	"feature-extraction":           "Encoder",
}

func inferModelType(modelID, pipelineTag string) string {
	lowered := strings.ToLower(modelID)
	for _, p := range modelTypePatterns {
		if strings.Contains(lowered, p.needle) {
			return p.modelType
		}
	}
	if t, ok := pipelineTypes[pipelineTag]; ok {
		return t
	}
	return "Unknown"
}

func modelName(modelID string) string {
	if idx := strings.LastIndex(modelID, "/"); idx >= 0 {
		return modelID[idx+1:]
	}
	return modelID
}

func modelAuthor(modelID string) string {
	if idx := strings.Index(modelID, "/"); idx > 0 {
		return modelID[:idx]
	}
	return ""
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
