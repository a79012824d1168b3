// Package compliance evaluates a model's documented risk coverage against
// regulatory frameworks and produces prioritized remediation reports.
package compliance

import (
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ai-risk-sentinel/backend/internal/storage/models"
	"github.com/ai-risk-sentinel/backend/internal/taxonomy"
	"github.com/ai-risk-sentinel/backend/pkg/logger"
)

type Gap struct {
	Category         taxonomy.Category `json:"category"`
	Priority         string            `json:"priority"`
	Reason           string            `json:"reason"`
	SuggestedRisks   []string          `json:"suggested_risks"`
	RegulatoryImpact []string          `json:"regulatory_impact"`
}

type Report struct {
	ModelID           string              `json:"model_id"`
	ModelType         string              `json:"model_type"`
	CategoriesCovered []taxonomy.Category `json:"categories_covered"`
	CategoriesMissing []taxonomy.Category `json:"categories_missing"`
	CoverageRatio     float64             `json:"coverage_ratio"`
	Frameworks        map[string]bool     `json:"frameworks"`
	PriorityGaps      []Gap               `json:"priority_gaps"`
	AnalysisDate      time.Time           `json:"analysis_date"`
}

// Engine owns an in-memory index from model id to its classified risks. The
// index is loaded explicitly by the caller and replaced wholesale per model;
// the engine never fetches data itself.
type Engine struct {
	frameworks map[string]Framework
	modelRisks map[string][]models.Risk
}

func NewEngine() *Engine {
	return &Engine{
		frameworks: builtinFrameworks(),
		modelRisks: make(map[string][]models.Risk),
	}
}

// LoadModelRisks replaces the risk list indexed for a model.
func (e *Engine) LoadModelRisks(modelID string, risks []models.Risk) {
	e.modelRisks[modelID] = risks
	logger.Info("Loaded risks for model",
		zap.String("model_id", modelID),
		zap.Int("risk_count", len(risks)),
	)
}

// CheckModel evaluates a model's documented risks against the named
// frameworks (default set when none given). A model with no loaded risks is
// simply fully uncovered, not an error; an unregistered framework name is.
func (e *Engine) CheckModel(modelID string, frameworks []string) (*Report, error) {
	if len(frameworks) == 0 {
		frameworks = DefaultFrameworks()
	}

	for _, name := range frameworks {
		if _, ok := e.frameworks[name]; !ok {
			return nil, &UnknownFrameworkError{Name: name}
		}
	}

	logger.Info("Checking compliance",
		zap.String("model_id", modelID),
		zap.Strings("frameworks", frameworks),
	)

	covered := make(map[taxonomy.Category]bool)
	for _, risk := range e.modelRisks[modelID] {
		covered[risk.Category] = true
	}

	var coveredList, missingList []taxonomy.Category
	for _, cat := range taxonomy.All() {
		if covered[cat] {
			coveredList = append(coveredList, cat)
		} else {
			missingList = append(missingList, cat)
		}
	}

	frameworkResults := make(map[string]bool, len(frameworks))
	for _, name := range frameworks {
		frameworkResults[name] = e.frameworks[name].Satisfied(covered)
	}

	modelType := InferModelType(modelID)
	coverageRatio := round2(float64(len(coveredList)) / float64(taxonomy.Count))

	report := &Report{
		ModelID:           modelID,
		ModelType:         modelType,
		CategoriesCovered: coveredList,
		CategoriesMissing: missingList,
		CoverageRatio:     coverageRatio,
		Frameworks:        frameworkResults,
		PriorityGaps:      buildPriorityGaps(missingList, modelType),
		AnalysisDate:      time.Now().UTC(),
	}

	logger.Info("Compliance check complete",
		zap.String("model_id", modelID),
		zap.Float64("coverage_ratio", coverageRatio),
	)

	return report, nil
}

// priorityRank orders missing categories by remediation urgency; lower rank
// is more urgent. The ranking follows the blind-spot severity observed in
// the reference incident data.
var priorityRank = map[taxonomy.Category]int{
	taxonomy.MaliciousActors:            1,
	taxonomy.PrivacySecurity:            2,
	taxonomy.Misinformation:             3,
	taxonomy.DiscriminationToxicity:     4,
	taxonomy.AISystemSafety:             5,
	taxonomy.HumanComputerInteraction:   6,
	taxonomy.SocioeconomicEnvironmental: 7,
}

func gapPriority(cat taxonomy.Category) string {
	rank := priorityRank[cat]
	switch {
	case rank <= 2:
		return "HIGH"
	case rank <= 4:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

var priorityOrder = map[string]int{"HIGH": 0, "MEDIUM": 1, "LOW": 2}

func buildPriorityGaps(missing []taxonomy.Category, modelType string) []Gap {
	gaps := make([]Gap, 0, len(missing))
	for _, cat := range missing {
		gaps = append(gaps, Gap{
			Category:         cat,
			Priority:         gapPriority(cat),
			Reason:           gapReason(cat, modelType),
			SuggestedRisks:   suggestedRisks(cat),
			RegulatoryImpact: regulatoryImpact(cat),
		})
	}

	sort.SliceStable(gaps, func(i, j int) bool {
		return priorityOrder[gaps[i].Priority] < priorityOrder[gaps[j].Priority]
	})

	return gaps
}

// InferModelType guesses the model family from its hub identifier.
func InferModelType(modelID string) string {
	lower := strings.ToLower(modelID)

	contains := func(needles ...string) bool {
		for _, n := range needles {
			if strings.Contains(lower, n) {
				return true
			}
		}
		return false
	}

	switch {
	case contains("llama", "gpt", "mistral", "phi", "qwen"):
		return "LLM"
	case contains("clip", "vit", "resnet", "yolo"):
		return "Vision"
	case contains("whisper", "wav2vec"):
		return "Audio"
	case contains("bert", "roberta", "t5"):
		return "Encoder"
	default:
		return "Unknown"
	}
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
