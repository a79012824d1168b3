// Package hub talks to a model hub: listing recently modified models and
// fetching their model cards for risk extraction.
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/ai-risk-sentinel/backend/pkg/circuitbreaker"
	"github.com/ai-risk-sentinel/backend/pkg/logger"
	"github.com/ai-risk-sentinel/backend/pkg/retry"
)

// ErrCardNotFound indicates a model has no readable model card.
var ErrCardNotFound = fmt.Errorf("model card not found")

type ModelInfo struct {
	ID           string    `json:"id"`
	PipelineTag  string    `json:"pipeline_tag"`
	Downloads    int       `json:"downloads"`
	Likes        int       `json:"likes"`
	LastModified time.Time `json:"lastModified"`
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	breaker    *circuitbreaker.Breaker
	retryOpts  retry.Options
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    circuitbreaker.New("hub", 5, 30*time.Second, logger.Log),
		retryOpts: retry.Options{
			Attempts:  3,
			BaseDelay: 500 * time.Millisecond,
			Logger:    logger.Log,
		},
	}
}

// ListModels returns up to limit models sorted by last modification,
// optionally filtered by pipeline tag.
func (c *Client) ListModels(ctx context.Context, limit int, pipelineTag string) ([]ModelInfo, error) {
	params := url.Values{}
	params.Set("limit", fmt.Sprintf("%d", limit))
	params.Set("sort", "lastModified")
	params.Set("direction", "-1")
	if pipelineTag != "" {
		params.Set("pipeline_tag", pipelineTag)
	}

	endpoint := fmt.Sprintf("%s/api/models?%s", c.baseURL, params.Encode())

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	var models []ModelInfo
	if err := json.Unmarshal(body, &models); err != nil {
		return nil, fmt.Errorf("failed to parse model list: %w", err)
	}

	logger.Info("Fetched model list", zap.Int("count", len(models)))
	return models, nil
}

// FetchModelCard returns the raw model card text for a model. Cards served
// as HTML are reduced to their visible text.
func (c *Client) FetchModelCard(ctx context.Context, modelID string) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/raw/main/README.md", c.baseURL, modelID)

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return "", fmt.Errorf("failed to fetch model card for %s: %w", modelID, err)
	}

	text := string(body)
	if looksLikeHTML(text) {
		text = stripHTML(text)
	}

	return text, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	return retry.DoWithResult(ctx, c.retryOpts, func() ([]byte, error) {
		var body []byte
		notFound := false

		err := c.breaker.Execute(func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return err
			}
			if c.token != "" {
				req.Header.Set("Authorization", "Bearer "+c.token)
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			// A missing card is an answer, not an upstream failure: it must
			// not trip the breaker or burn retry attempts.
			if resp.StatusCode == http.StatusNotFound {
				notFound = true
				return nil
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("hub returned status %d", resp.StatusCode)
			}

			body, err = io.ReadAll(resp.Body)
			return err
		})
		if err != nil {
			return nil, err
		}
		if notFound {
			return nil, retry.Permanent(ErrCardNotFound)
		}
		return body, nil
	})
}

func looksLikeHTML(text string) bool {
	head := strings.ToLower(strings.TrimSpace(text))
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}

func stripHTML(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}

	doc.Find("script, style, nav, footer, header").Remove()
	return strings.TrimSpace(doc.Find("body").Text())
}
