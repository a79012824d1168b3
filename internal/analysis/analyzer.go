// Package analysis computes the Blind Spot Index: the mismatch between how
// often a risk category is documented in model cards and how often it shows
// up in real-world incidents.
package analysis

import (
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/ai-risk-sentinel/backend/internal/storage/models"
	"github.com/ai-risk-sentinel/backend/internal/taxonomy"
	"github.com/ai-risk-sentinel/backend/pkg/logger"
)

// DefaultThreshold is the BSI value above which an under-documented category
// is flagged as a high-risk blind spot.
const DefaultThreshold = 0.15

// Distribution maps each category to its percentage share (0-100). Entries
// need not sum to 100; missing categories count as 0.
type Distribution map[taxonomy.Category]float64

// Baseline is the published reference dataset used to seed an analyzer when
// no live data has been loaded. It is plain configuration: tests substitute
// their own without touching package state.
type Baseline struct {
	Documented         Distribution
	Incidents          Distribution
	DocQualityScore    float64
	CatalogSize        int
	IncidentCount      int
	ModelCardsAnalyzed int
}

// DefaultBaseline returns the figures from the AI Model Risk Catalog study
// (460k model cards, 869 incidents).
func DefaultBaseline() Baseline {
	return Baseline{
		Documented: Distribution{
			taxonomy.DiscriminationToxicity:     44.5,
			taxonomy.AISystemSafety:             37.3,
			taxonomy.Misinformation:             10.2,
			taxonomy.MaliciousActors:            4.0,
			taxonomy.PrivacySecurity:            2.9,
			taxonomy.HumanComputerInteraction:   0.6,
			taxonomy.SocioeconomicEnvironmental: 0.5,
		},
		Incidents: Distribution{
			taxonomy.DiscriminationToxicity:     27.5,
			taxonomy.AISystemSafety:             23.9,
			taxonomy.Misinformation:             12.9,
			taxonomy.MaliciousActors:            22.4,
			taxonomy.PrivacySecurity:            8.2,
			taxonomy.HumanComputerInteraction:   1.5,
			taxonomy.SocioeconomicEnvironmental: 3.6,
		},
		DocQualityScore:    15.2,
		CatalogSize:        2863,
		IncidentCount:      869,
		ModelCardsAnalyzed: 64116,
	}
}

type CategoryMetric struct {
	Category      taxonomy.Category `json:"category"`
	DocumentedPct float64           `json:"documented_percentage"`
	IncidentPct   float64           `json:"incident_percentage"`
	Gap           float64           `json:"gap"`
	BSI           float64           `json:"blind_spot_index"`
}

type Report struct {
	GlobalBSI          float64             `json:"global_bsi"`
	ByCategory         []CategoryMetric    `json:"by_category"`
	HighRiskCategories []taxonomy.Category `json:"high_risk_categories"`
	Threshold          float64             `json:"threshold"`
	DocQualityScore    float64             `json:"documentation_quality_score"`
	CatalogSize        int                 `json:"catalog_size"`
	IncidentCount      int                 `json:"incident_count"`
	ModelCardsAnalyzed int                 `json:"model_cards_analyzed"`
	ModelType          string              `json:"model_type,omitempty"`
	PeriodStart        *time.Time          `json:"period_start,omitempty"`
	PeriodEnd          *time.Time          `json:"period_end,omitempty"`
	AnalysisDate       time.Time           `json:"analysis_date"`
}

type PriorityGap struct {
	Category       taxonomy.Category `json:"category"`
	BlindSpotIndex float64           `json:"blind_spot_index"`
	GapPoints      float64           `json:"gap_points"`
	Priority       string            `json:"priority"`
	Recommendation string            `json:"recommendation"`
}

type Options struct {
	// ModelType is a filter hook for per-segment distributions. The current
	// distributions are not segmented, so it is only echoed in the report.
	ModelType   string
	PeriodStart *time.Time
	PeriodEnd   *time.Time
}

// Analyzer holds the two cached distributions. Load calls replace a
// distribution in place; concurrent loads and analyses against the same
// instance must be serialized by the caller.
type Analyzer struct {
	threshold  float64
	documented Distribution
	incidents  Distribution
	baseline   Baseline
}

// NewAnalyzer creates an analyzer seeded from the baseline. Pass a zero
// Baseline to start with empty distributions.
func NewAnalyzer(threshold float64, baseline Baseline) *Analyzer {
	a := &Analyzer{
		threshold:  threshold,
		documented: make(Distribution),
		incidents:  make(Distribution),
		baseline:   baseline,
	}
	for cat, pct := range baseline.Documented {
		a.documented[cat] = pct
	}
	for cat, pct := range baseline.Incidents {
		a.incidents[cat] = pct
	}
	return a
}

// Threshold returns the configured high-risk threshold.
func (a *Analyzer) Threshold() float64 {
	return a.threshold
}

// Documented returns the documented percentage for a category.
func (a *Analyzer) Documented(cat taxonomy.Category) float64 {
	return a.documented[cat]
}

// Incidents returns the incident percentage for a category.
func (a *Analyzer) Incidents(cat taxonomy.Category) float64 {
	return a.incidents[cat]
}

// LoadCatalogData replaces the documented distribution by counting classified
// risks per category. Empty input keeps the current distribution.
func (a *Analyzer) LoadCatalogData(risks []models.Risk) {
	if len(risks) == 0 {
		logger.Warn("No risks provided to LoadCatalogData, keeping current distribution")
		return
	}

	counts := make(map[taxonomy.Category]int, taxonomy.Count)
	for _, risk := range risks {
		counts[risk.Category]++
	}

	total := float64(len(risks))
	a.documented = make(Distribution, taxonomy.Count)
	for _, cat := range taxonomy.All() {
		a.documented[cat] = float64(counts[cat]) / total * 100
	}

	logger.Info("Loaded catalog distribution", zap.Int("total_risks", len(risks)))
}

// LoadIncidentData replaces the incident distribution from incident records.
// Records whose category fails taxonomy validation are skipped; the
// percentage denominator stays the full record count so skipped records
// dilute rather than inflate the remaining categories.
func (a *Analyzer) LoadIncidentData(incidents []models.Incident) {
	if len(incidents) == 0 {
		logger.Warn("No incidents provided to LoadIncidentData, keeping current distribution")
		return
	}

	counts := make(map[taxonomy.Category]int, taxonomy.Count)
	skipped := 0
	for _, incident := range incidents {
		cat, err := taxonomy.Parse(incident.Category)
		if err != nil {
			skipped++
			logger.Debug("Skipping incident with unknown category",
				zap.String("incident_id", incident.ID),
				zap.String("category", incident.Category),
			)
			continue
		}
		counts[cat]++
	}

	total := float64(len(incidents))
	a.incidents = make(Distribution, taxonomy.Count)
	for _, cat := range taxonomy.All() {
		a.incidents[cat] = float64(counts[cat]) / total * 100
	}

	logger.Info("Loaded incident distribution",
		zap.Int("total_incidents", len(incidents)),
		zap.Int("skipped", skipped),
	)
}

// CalculateBSI computes the Blind Spot Index for one category:
//
//	bsi = |documented - incidents| / max(documented, incidents)
//
// Both inputs are percentages >= 0; the result is in [0, 1]. Two zero inputs
// mean perfect (vacuous) alignment, not an error.
func (a *Analyzer) CalculateBSI(documented, incidents float64) float64 {
	if documented == 0 && incidents == 0 {
		return 0.0
	}

	gap := math.Abs(documented - incidents)
	maxValue := math.Max(documented, incidents)

	return gap / maxValue
}

// Analyze computes per-category metrics and the global BSI. A category is
// flagged high-risk only when it is under-documented: incidents exceeding
// documentation with bsi above the threshold. Over-documentation never
// triggers the flag.
func (a *Analyzer) Analyze(opts Options) *Report {
	logger.Info("Starting gap analysis", zap.String("model_type", opts.ModelType))

	metrics := make([]CategoryMetric, 0, taxonomy.Count)
	var highRisk []taxonomy.Category
	totalBSI := 0.0

	for _, cat := range taxonomy.All() {
		documented := a.documented[cat]
		incidents := a.incidents[cat]
		bsi := a.CalculateBSI(documented, incidents)

		metrics = append(metrics, CategoryMetric{
			Category:      cat,
			DocumentedPct: documented,
			IncidentPct:   incidents,
			Gap:           documented - incidents,
			BSI:           bsi,
		})
		totalBSI += bsi

		if bsi > a.threshold && incidents > documented {
			highRisk = append(highRisk, cat)
			logger.Warn("High-risk blind spot detected",
				zap.String("category", cat.String()),
				zap.Float64("bsi", round3(bsi)),
				zap.Float64("gap", round1(documented-incidents)),
			)
		}
	}

	sortMetricsByBSI(metrics)

	report := &Report{
		GlobalBSI:          round3(totalBSI / float64(taxonomy.Count)),
		ByCategory:         metrics,
		HighRiskCategories: highRisk,
		Threshold:          a.threshold,
		DocQualityScore:    a.baseline.DocQualityScore,
		CatalogSize:        a.baseline.CatalogSize,
		IncidentCount:      a.baseline.IncidentCount,
		ModelCardsAnalyzed: a.baseline.ModelCardsAnalyzed,
		ModelType:          opts.ModelType,
		PeriodStart:        opts.PeriodStart,
		PeriodEnd:          opts.PeriodEnd,
		AnalysisDate:       time.Now().UTC(),
	}

	logger.Info("Gap analysis complete",
		zap.Float64("global_bsi", report.GlobalBSI),
		zap.Int("high_risk_count", len(highRisk)),
	)

	return report
}

// PriorityGaps returns the under-documented, above-threshold categories with
// the largest blind spots, most severe first.
func (a *Analyzer) PriorityGaps(limit int) []PriorityGap {
	var gaps []PriorityGap

	for _, cat := range taxonomy.All() {
		documented := a.documented[cat]
		incidents := a.incidents[cat]
		bsi := a.CalculateBSI(documented, incidents)

		if incidents > documented && bsi > a.threshold {
			gaps = append(gaps, PriorityGap{
				Category:       cat,
				BlindSpotIndex: round3(bsi),
				GapPoints:      round1(incidents - documented),
				Priority:       priorityLabel(bsi),
				Recommendation: recommendationFor(cat, bsi),
			})
		}
	}

	sortGapsByBSI(gaps)

	if limit > 0 && len(gaps) > limit {
		gaps = gaps[:limit]
	}
	return gaps
}

func priorityLabel(bsi float64) string {
	switch {
	case bsi > 0.5:
		return "CRITICAL"
	case bsi > 0.3:
		return "HIGH"
	default:
		return "MEDIUM"
	}
}

var recommendations = map[taxonomy.Category]string{
	taxonomy.MaliciousActors: "Document risks related to deepfakes, fraud, social engineering, " +
		"and targeted manipulation. Include specific misuse scenarios.",
	taxonomy.Misinformation: "Add explicit warnings about hallucination, false information generation, " +
		"and impacts on decision-making in critical domains.",
	taxonomy.PrivacySecurity: "Document data leakage risks, training data memorization, " +
		"and potential for privacy violations.",
	taxonomy.SocioeconomicEnvironmental: "Include environmental impact (compute resources), " +
		"job displacement risks, and equity considerations.",
	taxonomy.HumanComputerInteraction: "Address overreliance risks, loss of human agency, " +
		"and unsafe use in high-stakes contexts.",
}

func recommendationFor(cat taxonomy.Category, bsi float64) string {
	if rec, ok := recommendations[cat]; ok {
		return rec
	}
	return fmt.Sprintf("Review and document risks in the %s category. "+
		"Current BSI of %.2f indicates significant blind spot.", cat, bsi)
}

func sortMetricsByBSI(metrics []CategoryMetric) {
	sort.SliceStable(metrics, func(i, j int) bool {
		return metrics[i].BSI > metrics[j].BSI
	})
}

func sortGapsByBSI(gaps []PriorityGap) {
	sort.SliceStable(gaps, func(i, j int) bool {
		return gaps[i].BlindSpotIndex > gaps[j].BlindSpotIndex
	})
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
