package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai-risk-sentinel/backend/internal/storage/models"
	"github.com/ai-risk-sentinel/backend/internal/taxonomy"
)

func newReferenceAnalyzer() *Analyzer {
	return NewAnalyzer(0.15, DefaultBaseline())
}

func TestCalculateBSI(t *testing.T) {
	a := newReferenceAnalyzer()

	tests := []struct {
		name       string
		documented float64
		incidents  float64
		want       float64
	}{
		{"equal values have no blind spot", 25.0, 25.0, 0.0},
		{"totally undocumented", 0.0, 100.0, 1.0},
		{"totally unobserved", 100.0, 0.0, 1.0},
		{"both zero is vacuous alignment", 0.0, 0.0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.CalculateBSI(tt.documented, tt.incidents))
		})
	}
}

// Malicious actors in the reference data: 4.0% documented vs 22.4% of
// incidents, so bsi = 18.4 / 22.4.
func TestCalculateBSI_ReferenceMaliciousActors(t *testing.T) {
	a := newReferenceAnalyzer()

	bsi := a.CalculateBSI(4.0, 22.4)
	assert.InDelta(t, 0.8214, bsi, 0.001)
}

func TestAnalyze_GlobalBSIIsMeanOverCategories(t *testing.T) {
	a := newReferenceAnalyzer()

	report := a.Analyze(Options{})

	require.Len(t, report.ByCategory, taxonomy.Count)

	sum := 0.0
	for _, m := range report.ByCategory {
		sum += m.BSI
	}
	assert.InDelta(t, sum/float64(taxonomy.Count), report.GlobalBSI, 0.001)
}

func TestAnalyze_ReportSortedByBSIDescending(t *testing.T) {
	a := newReferenceAnalyzer()

	report := a.Analyze(Options{})

	for i := 1; i < len(report.ByCategory); i++ {
		assert.GreaterOrEqual(t, report.ByCategory[i-1].BSI, report.ByCategory[i].BSI)
	}
}

// Over-documented categories must never be flagged, no matter how large the
// mismatch. Discrimination & toxicity is heavily over-documented in the
// reference data (44.5% vs 27.5%) and must stay unflagged.
func TestAnalyze_OnlyUnderDocumentedCategoriesFlagged(t *testing.T) {
	a := newReferenceAnalyzer()

	report := a.Analyze(Options{})

	flagged := make(map[taxonomy.Category]bool)
	for _, cat := range report.HighRiskCategories {
		flagged[cat] = true
	}

	assert.True(t, flagged[taxonomy.MaliciousActors],
		"malicious actors is the canonical blind spot in the reference data")
	assert.False(t, flagged[taxonomy.DiscriminationToxicity],
		"over-documentation must not raise the flag")

	for _, cat := range report.HighRiskCategories {
		assert.Greater(t, a.Incidents(cat), a.Documented(cat))
	}
}

func TestAnalyze_ThresholdBoundaryIsExclusive(t *testing.T) {
	a := NewAnalyzer(0.15, Baseline{
		Documented: Distribution{taxonomy.Misinformation: 85.0},
		// bsi = 15/100 = 0.15 exactly: not above the threshold.
		Incidents: Distribution{taxonomy.Misinformation: 100.0},
	})

	report := a.Analyze(Options{})
	assert.Empty(t, report.HighRiskCategories)
}

func TestAnalyze_EchoesBaselineCounts(t *testing.T) {
	a := newReferenceAnalyzer()

	report := a.Analyze(Options{ModelType: "LLM"})

	assert.Equal(t, 15.2, report.DocQualityScore)
	assert.Equal(t, 2863, report.CatalogSize)
	assert.Equal(t, 869, report.IncidentCount)
	assert.Equal(t, 64116, report.ModelCardsAnalyzed)
	assert.Equal(t, "LLM", report.ModelType)
	assert.Equal(t, 0.15, report.Threshold)
}

func TestLoadCatalogData_ReplacesDocumentedDistribution(t *testing.T) {
	a := newReferenceAnalyzer()

	a.LoadCatalogData([]models.Risk{
		{ID: "1", Category: taxonomy.DiscriminationToxicity},
		{ID: "2", Category: taxonomy.DiscriminationToxicity},
		{ID: "3", Category: taxonomy.MaliciousActors},
	})

	assert.InDelta(t, 66.67, a.Documented(taxonomy.DiscriminationToxicity), 0.01)
	assert.InDelta(t, 33.33, a.Documented(taxonomy.MaliciousActors), 0.01)
	assert.Equal(t, 0.0, a.Documented(taxonomy.Misinformation))
}

func TestLoadCatalogData_EmptyInputKeepsDistribution(t *testing.T) {
	a := newReferenceAnalyzer()

	a.LoadCatalogData(nil)

	assert.Equal(t, 44.5, a.Documented(taxonomy.DiscriminationToxicity))
}

// Invalid incident categories are skipped, but the denominator stays the
// full record count.
func TestLoadIncidentData_SkippedRecordsDiluteDistribution(t *testing.T) {
	a := newReferenceAnalyzer()

	a.LoadIncidentData([]models.Incident{
		{ID: "1", Category: "privacy_security"},
		{ID: "2", Category: "privacy_security"},
		{ID: "3", Category: "not_a_real_category"},
		{ID: "4", Category: "misinformation"},
	})

	assert.Equal(t, 50.0, a.Incidents(taxonomy.PrivacySecurity))
	assert.Equal(t, 25.0, a.Incidents(taxonomy.Misinformation))
	assert.Equal(t, 0.0, a.Incidents(taxonomy.MaliciousActors))
}

func TestPriorityGaps_SortedAndLimited(t *testing.T) {
	a := newReferenceAnalyzer()

	gaps := a.PriorityGaps(3)

	require.NotEmpty(t, gaps)
	require.LessOrEqual(t, len(gaps), 3)

	// socioeconomic_environmental has the largest relative blind spot in the
	// reference data (0.5% documented vs 3.6% of incidents), just ahead of
	// malicious actors.
	assert.Equal(t, taxonomy.SocioeconomicEnvironmental, gaps[0].Category)
	assert.Equal(t, taxonomy.MaliciousActors, gaps[1].Category)
	for i := 1; i < len(gaps); i++ {
		assert.GreaterOrEqual(t, gaps[i-1].BlindSpotIndex, gaps[i].BlindSpotIndex)
	}
	for _, gap := range gaps {
		assert.Greater(t, a.Incidents(gap.Category), a.Documented(gap.Category))
		assert.NotEmpty(t, gap.Recommendation)
	}
}

func TestPriorityGaps_PriorityLabels(t *testing.T) {
	assert.Equal(t, "CRITICAL", priorityLabel(0.51))
	assert.Equal(t, "HIGH", priorityLabel(0.31))
	assert.Equal(t, "HIGH", priorityLabel(0.5))
	assert.Equal(t, "MEDIUM", priorityLabel(0.3))
	assert.Equal(t, "MEDIUM", priorityLabel(0.0))
}
