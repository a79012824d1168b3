package compliance

import (
	"fmt"

	"github.com/ai-risk-sentinel/backend/internal/taxonomy"
)

// Framework names accepted by the engine.
const (
	FrameworkEUAIAct = "EU_AI_ACT"
	FrameworkNISTRMF = "NIST_AI_RMF"
)

// Function is a named sub-grouping of categories (NIST-style). A function is
// satisfied when any of its categories is covered, regardless of how many.
type Function struct {
	Name       string
	Categories []taxonomy.Category
}

// Framework is a fixed compliance rule: either a required-category set with a
// minimum coverage fraction, or a list of functions with a minimum fraction
// of satisfied functions.
type Framework struct {
	Name      string
	Required  []taxonomy.Category
	Functions []Function
	Threshold float64
}

// Satisfied evaluates the framework against a covered-category set.
//
// The function-grouped rule is deliberately OR-based per function: covering a
// single category of a function counts the whole function as satisfied. That
// is materially more lenient than the required-category ratio rule and may
// understate real gaps; it matches the published framework mapping.
func (f Framework) Satisfied(covered map[taxonomy.Category]bool) bool {
	if len(f.Functions) > 0 {
		satisfied := 0
		for _, fn := range f.Functions {
			for _, cat := range fn.Categories {
				if covered[cat] {
					satisfied++
					break
				}
			}
		}
		return float64(satisfied)/float64(len(f.Functions)) >= f.Threshold
	}

	coveredRequired := 0
	for _, cat := range f.Required {
		if covered[cat] {
			coveredRequired++
		}
	}
	return float64(coveredRequired)/float64(len(f.Required)) >= f.Threshold
}

// builtinFrameworks returns the supported regulatory frameworks. Extending
// the set requires registering here; passing an unregistered name to the
// engine is a configuration error, never a silent skip.
func builtinFrameworks() map[string]Framework {
	return map[string]Framework{
		FrameworkEUAIAct: {
			Name: FrameworkEUAIAct,
			Required: []taxonomy.Category{
				taxonomy.DiscriminationToxicity,
				taxonomy.AISystemSafety,
				taxonomy.PrivacySecurity,
				taxonomy.HumanComputerInteraction,
			},
			Threshold: 0.75,
		},
		FrameworkNISTRMF: {
			Name: FrameworkNISTRMF,
			Functions: []Function{
				{Name: "GOVERN", Categories: []taxonomy.Category{taxonomy.SocioeconomicEnvironmental}},
				{Name: "MAP", Categories: []taxonomy.Category{taxonomy.AISystemSafety, taxonomy.HumanComputerInteraction}},
				{Name: "MEASURE", Categories: []taxonomy.Category{taxonomy.DiscriminationToxicity, taxonomy.Misinformation}},
				{Name: "MANAGE", Categories: []taxonomy.Category{taxonomy.MaliciousActors, taxonomy.PrivacySecurity}},
			},
			Threshold: 0.60,
		},
	}
}

// DefaultFrameworks is the framework set checked when a request names none.
func DefaultFrameworks() []string {
	return []string{FrameworkEUAIAct, FrameworkNISTRMF}
}

// UnknownFrameworkError reports a framework name outside the registered set.
type UnknownFrameworkError struct {
	Name string
}

func (e *UnknownFrameworkError) Error() string {
	return fmt.Sprintf("unknown compliance framework %q", e.Name)
}
