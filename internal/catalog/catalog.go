// Package catalog keeps an in-memory index of classified risks for serving
// and aggregation. The catalog is hydrated from storage at startup and
// appended to by the crawler.
package catalog

import (
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ai-risk-sentinel/backend/internal/storage/models"
	"github.com/ai-risk-sentinel/backend/internal/taxonomy"
	"github.com/ai-risk-sentinel/backend/pkg/logger"
)

// Filter narrows a Search. Zero values mean "no constraint".
type Filter struct {
	Query    string
	Category *taxonomy.Category
	Source   string
	Limit    int
}

type Catalog struct {
	mu    sync.RWMutex
	risks map[string]models.Risk
	order []string
}

func New() *Catalog {
	return &Catalog{
		risks: make(map[string]models.Risk),
	}
}

// Add inserts or replaces a risk by id.
func (c *Catalog) Add(risk models.Risk) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.risks[risk.ID]; !exists {
		c.order = append(c.order, risk.ID)
	}
	c.risks[risk.ID] = risk

	logger.Debug("Risk added to catalog",
		zap.String("risk_id", risk.ID),
		zap.String("category", risk.Category.String()),
	)
}

func (c *Catalog) Get(id string) (models.Risk, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	risk, ok := c.risks[id]
	return risk, ok
}

// Search returns risks matching the filter in insertion order. The text
// query matches title and description, case-insensitive.
func (c *Catalog) Search(f Filter) []models.Risk {
	c.mu.RLock()
	defer c.mu.RUnlock()

	query := strings.ToLower(f.Query)

	var results []models.Risk
	for _, id := range c.order {
		risk := c.risks[id]

		if f.Category != nil && risk.Category != *f.Category {
			continue
		}
		if f.Source != "" && risk.Source != f.Source {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(risk.Title), query) &&
			!strings.Contains(strings.ToLower(risk.Description), query) {
			continue
		}

		results = append(results, risk)
		if f.Limit > 0 && len(results) >= f.Limit {
			break
		}
	}

	return results
}

// All returns every risk in insertion order.
func (c *Catalog) All() []models.Risk {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Risk, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.risks[id])
	}
	return out
}

// ForModel returns the risks extracted from a given source model, sorted by
// descending SST relevance.
func (c *Catalog) ForModel(modelID string) []models.Risk {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []models.Risk
	for _, id := range c.order {
		if c.risks[id].SourceID == modelID {
			out = append(out, c.risks[id])
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SSTRelevance > out[j].SSTRelevance
	})
	return out
}

func (c *Catalog) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.risks)
}

// CountByCategory returns risk counts as a total function over the taxonomy.
func (c *Catalog) CountByCategory() map[taxonomy.Category]int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	counts := make(map[taxonomy.Category]int, taxonomy.Count)
	for _, cat := range taxonomy.All() {
		counts[cat] = 0
	}
	for _, risk := range c.risks {
		counts[risk.Category]++
	}
	return counts
}
