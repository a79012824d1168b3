package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sentinel_analysis_duration_seconds",
			Help:    "Gap analysis duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	AnalysisTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_analysis_total",
			Help: "Total number of gap analyses performed",
		},
		[]string{"status"},
	)

	GlobalBSI = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sentinel_global_bsi",
			Help: "Global Blind Spot Index from the most recent analysis",
		},
	)

	HighRiskCategories = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sentinel_high_risk_categories",
			Help: "Number of high-risk categories in the most recent analysis",
		},
	)

	ComplianceChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_compliance_checks_total",
			Help: "Total compliance checks by framework and outcome",
		},
		[]string{"framework", "compliant"},
	)

	CrawlModelsProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_crawl_models_processed_total",
			Help: "Total model cards processed by the crawler",
		},
	)

	CrawlRisksExtracted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_crawl_risks_extracted_total",
			Help: "Total risk statements extracted by the crawler",
		},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	CatalogSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sentinel_catalog_risks_total",
			Help: "Number of risks currently in the catalog",
		},
	)
)

func Init() {
	prometheus.MustRegister(AnalysisDuration)
	prometheus.MustRegister(AnalysisTotal)
	prometheus.MustRegister(GlobalBSI)
	prometheus.MustRegister(HighRiskCategories)
	prometheus.MustRegister(ComplianceChecksTotal)
	prometheus.MustRegister(CrawlModelsProcessed)
	prometheus.MustRegister(CrawlRisksExtracted)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(CatalogSize)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
