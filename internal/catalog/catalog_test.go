package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai-risk-sentinel/backend/internal/storage/models"
	"github.com/ai-risk-sentinel/backend/internal/taxonomy"
)

func seedCatalog() *Catalog {
	c := New()
	c.Add(models.Risk{
		ID:           "r1",
		Source:       models.SourceHubCatalog,
		SourceID:     "org/alpha",
		Title:        "May produce biased outputs",
		Category:     taxonomy.DiscriminationToxicity,
		SSTRelevance: 0.05,
	})
	c.Add(models.Risk{
		ID:           "r2",
		Source:       models.SourceHubCatalog,
		SourceID:     "org/alpha",
		Title:        "Hallucinates facts under pressure",
		Category:     taxonomy.Misinformation,
		SSTRelevance: 0.45,
	})
	c.Add(models.Risk{
		ID:       "r3",
		Source:   models.SourceInternal,
		SourceID: "org/beta",
		Title:    "Leaks personal data from training set",
		Category: taxonomy.PrivacySecurity,
	})
	return c
}

func TestAdd_ReplacesByID(t *testing.T) {
	c := New()
	c.Add(models.Risk{ID: "r1", Title: "first"})
	c.Add(models.Risk{ID: "r1", Title: "second"})

	assert.Equal(t, 1, c.Count())

	risk, ok := c.Get("r1")
	require.True(t, ok)
	assert.Equal(t, "second", risk.Title)
}

func TestGet_MissingID(t *testing.T) {
	c := New()

	_, ok := c.Get("nope")
	assert.False(t, ok)
}

func TestSearch_TextQueryIsCaseInsensitive(t *testing.T) {
	c := seedCatalog()

	results := c.Search(Filter{Query: "HALLUCINATES"})

	require.Len(t, results, 1)
	assert.Equal(t, "r2", results[0].ID)
}

func TestSearch_CategoryFilter(t *testing.T) {
	c := seedCatalog()
	cat := taxonomy.PrivacySecurity

	results := c.Search(Filter{Category: &cat})

	require.Len(t, results, 1)
	assert.Equal(t, "r3", results[0].ID)
}

func TestSearch_SourceFilterAndLimit(t *testing.T) {
	c := seedCatalog()

	results := c.Search(Filter{Source: models.SourceHubCatalog})
	assert.Len(t, results, 2)

	results = c.Search(Filter{Source: models.SourceHubCatalog, Limit: 1})
	require.Len(t, results, 1)
	assert.Equal(t, "r1", results[0].ID, "insertion order decides which result survives the limit")
}

func TestAll_PreservesInsertionOrder(t *testing.T) {
	c := seedCatalog()

	all := c.All()

	require.Len(t, all, 3)
	assert.Equal(t, "r1", all[0].ID)
	assert.Equal(t, "r2", all[1].ID)
	assert.Equal(t, "r3", all[2].ID)
}

func TestForModel_SortedByRelevance(t *testing.T) {
	c := seedCatalog()

	risks := c.ForModel("org/alpha")

	require.Len(t, risks, 2)
	assert.Equal(t, "r2", risks[0].ID)
	assert.Equal(t, "r1", risks[1].ID)
}

func TestForModel_UnknownModelIsEmpty(t *testing.T) {
	c := seedCatalog()

	assert.Empty(t, c.ForModel("org/gamma"))
}

func TestCountByCategory_TotalOverTaxonomy(t *testing.T) {
	c := seedCatalog()

	counts := c.CountByCategory()

	require.Len(t, counts, taxonomy.Count)
	assert.Equal(t, 1, counts[taxonomy.DiscriminationToxicity])
	assert.Equal(t, 1, counts[taxonomy.Misinformation])
	assert.Equal(t, 0, counts[taxonomy.MaliciousActors])
}
