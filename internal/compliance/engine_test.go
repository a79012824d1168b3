package compliance

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai-risk-sentinel/backend/internal/storage/models"
	"github.com/ai-risk-sentinel/backend/internal/taxonomy"
)

func risksFor(cats ...taxonomy.Category) []models.Risk {
	risks := make([]models.Risk, 0, len(cats))
	for i, cat := range cats {
		risks = append(risks, models.Risk{
			ID:       string(rune('a' + i)),
			Category: cat,
		})
	}
	return risks
}

func TestCheckModel_CoverageRatio(t *testing.T) {
	e := NewEngine()
	e.LoadModelRisks("org/model", risksFor(
		taxonomy.DiscriminationToxicity,
		taxonomy.AISystemSafety,
		taxonomy.PrivacySecurity,
	))

	report, err := e.CheckModel("org/model", nil)
	require.NoError(t, err)

	assert.Len(t, report.CategoriesCovered, 3)
	assert.Len(t, report.CategoriesMissing, 4)
	assert.InDelta(t, 0.43, report.CoverageRatio, 0.001)
}

func TestCheckModel_DuplicateCategoriesCountOnce(t *testing.T) {
	e := NewEngine()
	e.LoadModelRisks("org/model", risksFor(
		taxonomy.Misinformation,
		taxonomy.Misinformation,
		taxonomy.Misinformation,
	))

	report, err := e.CheckModel("org/model", nil)
	require.NoError(t, err)

	assert.Len(t, report.CategoriesCovered, 1)
	assert.InDelta(t, 0.14, report.CoverageRatio, 0.001)
}

func TestCheckModel_UnknownModelIsFullyUncovered(t *testing.T) {
	e := NewEngine()

	report, err := e.CheckModel("never/loaded", nil)
	require.NoError(t, err)

	assert.Empty(t, report.CategoriesCovered)
	assert.Len(t, report.CategoriesMissing, taxonomy.Count)
	assert.Equal(t, 0.0, report.CoverageRatio)
}

func TestCheckModel_UnknownFrameworkFails(t *testing.T) {
	e := NewEngine()

	_, err := e.CheckModel("org/model", []string{"ISO_42001"})
	require.Error(t, err)

	var unknown *UnknownFrameworkError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "ISO_42001", unknown.Name)
}

// Two of the four EU AI Act required categories is a 0.5 ratio, below the
// 0.75 threshold.
func TestCheckModel_EUAIActRequiresThreeOfFour(t *testing.T) {
	e := NewEngine()
	e.LoadModelRisks("org/model", risksFor(
		taxonomy.DiscriminationToxicity,
		taxonomy.AISystemSafety,
	))

	report, err := e.CheckModel("org/model", []string{FrameworkEUAIAct})
	require.NoError(t, err)
	assert.False(t, report.Frameworks[FrameworkEUAIAct])

	e.LoadModelRisks("org/model", risksFor(
		taxonomy.DiscriminationToxicity,
		taxonomy.AISystemSafety,
		taxonomy.PrivacySecurity,
	))

	report, err = e.CheckModel("org/model", []string{FrameworkEUAIAct})
	require.NoError(t, err)
	assert.True(t, report.Frameworks[FrameworkEUAIAct])
}

// One covered category per NIST function satisfies the whole function, so
// three categories spread across three functions reach the 0.60 threshold.
func TestCheckModel_NISTFunctionsSatisfiedByAnyCategory(t *testing.T) {
	e := NewEngine()
	// MAP, MEASURE and MANAGE each get one category; GOVERN stays unsatisfied.
	e.LoadModelRisks("org/model", risksFor(
		taxonomy.AISystemSafety,
		taxonomy.Misinformation,
		taxonomy.MaliciousActors,
	))

	report, err := e.CheckModel("org/model", []string{FrameworkNISTRMF})
	require.NoError(t, err)
	assert.True(t, report.Frameworks[FrameworkNISTRMF])
}

func TestCheckModel_NISTTwoFunctionsNotEnough(t *testing.T) {
	e := NewEngine()
	// Only MAP and MANAGE are satisfied: 0.5 is below the 0.60 threshold.
	e.LoadModelRisks("org/model", risksFor(
		taxonomy.AISystemSafety,
		taxonomy.PrivacySecurity,
	))

	report, err := e.CheckModel("org/model", []string{FrameworkNISTRMF})
	require.NoError(t, err)
	assert.False(t, report.Frameworks[FrameworkNISTRMF])
}

func TestCheckModel_DefaultFrameworksWhenNoneGiven(t *testing.T) {
	e := NewEngine()

	report, err := e.CheckModel("org/model", nil)
	require.NoError(t, err)

	assert.Contains(t, report.Frameworks, FrameworkEUAIAct)
	assert.Contains(t, report.Frameworks, FrameworkNISTRMF)
}

func TestCheckModel_GapsOrderedByPriority(t *testing.T) {
	e := NewEngine()

	// Nothing covered: all seven categories are gaps.
	report, err := e.CheckModel("org/model", nil)
	require.NoError(t, err)
	require.Len(t, report.PriorityGaps, taxonomy.Count)

	assert.Equal(t, "HIGH", report.PriorityGaps[0].Priority)
	assert.Equal(t, taxonomy.MaliciousActors, report.PriorityGaps[0].Category)
	assert.Equal(t, taxonomy.PrivacySecurity, report.PriorityGaps[1].Category)

	for i := 1; i < len(report.PriorityGaps); i++ {
		prev := priorityOrder[report.PriorityGaps[i-1].Priority]
		curr := priorityOrder[report.PriorityGaps[i].Priority]
		assert.LessOrEqual(t, prev, curr)
	}

	for _, gap := range report.PriorityGaps {
		assert.NotEmpty(t, gap.Reason)
		assert.NotEmpty(t, gap.SuggestedRisks)
		assert.NotEmpty(t, gap.RegulatoryImpact)
	}
}

func TestGapPriority_RankBuckets(t *testing.T) {
	assert.Equal(t, "HIGH", gapPriority(taxonomy.MaliciousActors))
	assert.Equal(t, "HIGH", gapPriority(taxonomy.PrivacySecurity))
	assert.Equal(t, "MEDIUM", gapPriority(taxonomy.Misinformation))
	assert.Equal(t, "MEDIUM", gapPriority(taxonomy.DiscriminationToxicity))
	assert.Equal(t, "LOW", gapPriority(taxonomy.AISystemSafety))
	assert.Equal(t, "LOW", gapPriority(taxonomy.HumanComputerInteraction))
	assert.Equal(t, "LOW", gapPriority(taxonomy.SocioeconomicEnvironmental))
}

func TestInferModelType(t *testing.T) {
	assert.Equal(t, "LLM", InferModelType("meta-llama/Llama-3-8B"))
	assert.Equal(t, "Vision", InferModelType("openai/clip-vit-base"))
	assert.Equal(t, "Audio", InferModelType("openai/whisper-large"))
	assert.Equal(t, "Encoder", InferModelType("google-bert/bert-base-uncased"))
	assert.Equal(t, "Unknown", InferModelType("acme/mystery-model"))
}
