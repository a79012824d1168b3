package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ai-risk-sentinel/backend/internal/cache/redis"
	"github.com/ai-risk-sentinel/backend/internal/hub"
	"github.com/ai-risk-sentinel/backend/pkg/logger"
)

const crawlTimeout = 30 * time.Minute

type crawlTask struct {
	ID         string     `json:"id"`
	Status     string     `json:"status"`
	Processed  int        `json:"processed"`
	Total      int        `json:"total"`
	RisksFound int        `json:"risks_found"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// CrawlHandler starts hub crawls in the background and tracks their state
// in memory so clients can poll for progress.
type CrawlHandler struct {
	crawler *hub.Crawler
	cache   *redis.Client

	mu      sync.Mutex
	tasks   map[string]*crawlTask
	running bool
}

// NewCrawlHandler builds a crawl handler. cache may be nil; when set, cached
// analysis reports are invalidated after a crawl so the next request sees the
// freshly extracted risks.
func NewCrawlHandler(crawler *hub.Crawler, cache *redis.Client) *CrawlHandler {
	return &CrawlHandler{
		crawler: crawler,
		cache:   cache,
		tasks:   make(map[string]*crawlTask),
	}
}

// StartCrawl kicks off a background crawl. Only one crawl runs at a time.
func (h *CrawlHandler) StartCrawl(c *fiber.Ctx) error {
	var req struct {
		Limit       int    `json:"limit"`
		PipelineTag string `json:"pipeline_tag"`
	}

	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Limit <= 0 {
		req.Limit = 100
	}
	if req.Limit > 1000 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "limit must not exceed 1000",
		})
	}

	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "A crawl is already running",
		})
	}

	task := &crawlTask{
		ID:        uuid.New().String(),
		Status:    "running",
		StartedAt: time.Now().UTC(),
	}
	h.tasks[task.ID] = task
	h.running = true
	h.mu.Unlock()

	go h.runCrawl(task.ID, req.Limit, req.PipelineTag)

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"task_id": task.ID,
		"status":  task.Status,
	})
}

// GetCrawlStatus returns the state of a crawl task.
func (h *CrawlHandler) GetCrawlStatus(c *fiber.Ctx) error {
	h.mu.Lock()
	task, ok := h.tasks[c.Params("task_id")]
	var snapshot crawlTask
	if ok {
		snapshot = *task
	}
	h.mu.Unlock()

	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Task not found",
		})
	}

	return c.JSON(snapshot)
}

func (h *CrawlHandler) runCrawl(taskID string, limit int, pipelineTag string) {
	ctx, cancel := context.WithTimeout(context.Background(), crawlTimeout)
	defer cancel()

	stats, err := h.crawler.Crawl(ctx, limit, pipelineTag, func(p hub.Progress) {
		h.mu.Lock()
		if task, ok := h.tasks[taskID]; ok {
			task.Processed = p.Processed
			task.Total = p.Total
			task.RisksFound = p.RisksFound
		}
		h.mu.Unlock()
	})

	now := time.Now().UTC()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.running = false

	task, ok := h.tasks[taskID]
	if !ok {
		return
	}
	task.FinishedAt = &now

	if err != nil {
		task.Status = "failed"
		task.Error = err.Error()
		logger.Error("Crawl failed", zap.String("task_id", taskID), zap.Error(err))
		return
	}

	task.Status = "completed"
	task.Processed = stats.ModelsProcessed
	task.RisksFound = stats.RisksExtracted

	if h.cache != nil {
		invalidateCtx, cancelInvalidate := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelInvalidate()
		if err := h.cache.InvalidateReports(invalidateCtx); err != nil {
			logger.Warn("Failed to invalidate cached reports", zap.Error(err))
		}
	}
}
