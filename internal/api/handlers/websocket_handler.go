package handlers

import (
	"context"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/ai-risk-sentinel/backend/internal/hub"
	"github.com/ai-risk-sentinel/backend/pkg/logger"
)

// WebSocketHandler streams crawl progress to connected clients as each
// model is processed.
type WebSocketHandler struct {
	crawler *hub.Crawler
}

func NewWebSocketHandler(crawler *hub.Crawler) *WebSocketHandler {
	return &WebSocketHandler{
		crawler: crawler,
	}
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg struct {
			Type        string `json:"type"`
			Limit       int    `json:"limit"`
			PipelineTag string `json:"pipeline_tag"`
		}

		err := c.ReadJSON(&msg)
		if err != nil {
			logger.Error("Failed to read WebSocket message", zap.Error(err))
			break
		}

		if msg.Type != "crawl" {
			continue
		}

		if msg.Limit <= 0 {
			msg.Limit = 100
		}

		logger.Info("Starting WebSocket crawl", zap.Int("limit", msg.Limit))

		err = h.streamCrawl(c, msg.Limit, msg.PipelineTag)
		if err != nil {
			logger.Error("Failed to stream crawl", zap.Error(err))
			h.sendError(c, "Crawl failed")
		}
	}
}

func (h *WebSocketHandler) streamCrawl(c *websocket.Conn, limit int, pipelineTag string) error {
	ctx, cancel := context.WithTimeout(context.Background(), crawlTimeout)
	defer cancel()

	h.sendStatus(c, "Crawl started")

	var writeErr error
	stats, err := h.crawler.Crawl(ctx, limit, pipelineTag, func(p hub.Progress) {
		if writeErr != nil {
			return
		}
		writeErr = c.WriteJSON(map[string]interface{}{
			"type":        "progress",
			"model_id":    p.ModelID,
			"processed":   p.Processed,
			"total":       p.Total,
			"risks_found": p.RisksFound,
		})
	})
	if err != nil {
		return err
	}
	if writeErr != nil {
		return writeErr
	}

	return c.WriteJSON(map[string]interface{}{
		"type":             "complete",
		"models_processed": stats.ModelsProcessed,
		"models_skipped":   stats.ModelsSkipped,
		"risks_extracted":  stats.RisksExtracted,
		"finished_at":      time.Now().UTC(),
	})
}

func (h *WebSocketHandler) sendStatus(c *websocket.Conn, content string) {
	c.WriteJSON(map[string]interface{}{
		"type":    "status",
		"content": content,
	})
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	c.WriteJSON(map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	})
}
