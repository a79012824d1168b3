package hub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai-risk-sentinel/backend/internal/catalog"
	"github.com/ai-risk-sentinel/backend/internal/storage/models"
	"github.com/ai-risk-sentinel/backend/internal/taxonomy"
)

const crawlerTestCard = `# Test Model

## Limitations

- The model may produce biased outputs against minority dialects
- It can hallucinate incorrect facts in long generations
`

func newHubServer(t *testing.T) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/models":
			w.Write([]byte(`[
				{"id": "org/llama-test", "pipeline_tag": "text-generation", "downloads": 10, "likes": 1},
				{"id": "org/cardless", "pipeline_tag": "text-generation"}
			]`))
		case strings.HasPrefix(r.URL.Path, "/org/llama-test/"):
			w.Write([]byte(crawlerTestCard))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestCrawl_ExtractsAndCatalogsRisks(t *testing.T) {
	server := newHubServer(t)
	defer server.Close()

	cat := catalog.New()
	crawler := NewCrawler(NewClient(server.URL, "", 5*time.Second), cat, nil, 0)

	var progress []Progress
	stats, err := crawler.Crawl(context.Background(), 10, "", func(p Progress) {
		progress = append(progress, p)
	})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.ModelsProcessed, "a model without a card is processed, not skipped")
	assert.Equal(t, 0, stats.ModelsSkipped)
	assert.Equal(t, 2, stats.RisksExtracted)

	require.Len(t, progress, 2)
	assert.Equal(t, "org/llama-test", progress[0].ModelID)
	assert.Equal(t, 2, progress[len(progress)-1].Processed)

	risks := cat.ForModel("org/llama-test")
	require.Len(t, risks, 2)

	byCategory := make(map[taxonomy.Category]models.Risk)
	for _, r := range risks {
		byCategory[r.Category] = r

		assert.Equal(t, models.SourceHubCatalog, r.Source)
		assert.Equal(t, models.ValidationPending, r.ValidationStatus)
		assert.Equal(t, "LLM", r.ModelType)
		assert.Equal(t, severityModerate, r.Severity)
		assert.NotEmpty(t, r.ID)
	}

	require.Contains(t, byCategory, taxonomy.DiscriminationToxicity)
	require.Contains(t, byCategory, taxonomy.Misinformation)
	assert.Contains(t, byCategory[taxonomy.DiscriminationToxicity].Title, "biased outputs")
}

func TestCrawl_ListFailureAborts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 5*time.Second)
	client.retryOpts.BaseDelay = time.Millisecond
	crawler := NewCrawler(client, catalog.New(), nil, 0)

	_, err := crawler.Crawl(context.Background(), 10, "", nil)
	assert.Error(t, err)
}

func TestCrawl_ContextCancellationStopsRun(t *testing.T) {
	server := newHubServer(t)
	defer server.Close()

	crawler := NewCrawler(NewClient(server.URL, "", 5*time.Second), catalog.New(), nil, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	stats, err := crawler.Crawl(ctx, 10, "", func(p Progress) {
		// Cancel while the crawler waits out the request interval before
		// the second model.
		cancel()
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, stats.ModelsProcessed)
}

func TestInferModelType_PatternsAndPipelineFallback(t *testing.T) {
	assert.Equal(t, "LLM", inferModelType("org/Mistral-7B", ""))
	assert.Equal(t, "Diffusion", inferModelType("org/stable-diffusion-xl", ""))
	assert.Equal(t, "Multimodal", inferModelType("org/clip-large", ""))
	assert.Equal(t, "Audio", inferModelType("org/whisper-tiny", ""))
	assert.Equal(t, "Vision", inferModelType("org/unnamed", "image-classification"))
	assert.Equal(t, "Unknown", inferModelType("org/unnamed", "unheard-of-tag"))
}

func TestModelNameAndAuthor(t *testing.T) {
	assert.Equal(t, "alpha", modelName("org/alpha"))
	assert.Equal(t, "org", modelAuthor("org/alpha"))
	assert.Equal(t, "bare", modelName("bare"))
	assert.Equal(t, "", modelAuthor("bare"))
}
