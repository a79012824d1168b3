// Package classify assigns free-text risk statements to taxonomy categories
// and scores their relevance to safety-critical contexts.
package classify

import (
	"strings"

	"github.com/ai-risk-sentinel/backend/internal/taxonomy"
)

// rule pairs a keyword set with the category it selects. Rules are evaluated
// in order; the first rule with any keyword present wins. Keeping the cascade
// as data makes the priority order testable on its own.
type rule struct {
	keywords []string
	category taxonomy.Category
}

var cascade = []rule{
	{[]string{"bias", "discriminat", "stereotyp", "unfair"}, taxonomy.DiscriminationToxicity},
	{[]string{"toxic", "offensive", "hate", "harmful content"}, taxonomy.DiscriminationToxicity},
	{[]string{"hallucin", "incorrect", "false", "misinform", "inaccura"}, taxonomy.Misinformation},
	{[]string{"malicious", "misuse", "fraud", "scam", "deepfake"}, taxonomy.MaliciousActors},
	{[]string{"privacy", "leak", "personal data", "security"}, taxonomy.PrivacySecurity},
	{[]string{"overrel", "automat", "human oversight", "judgment"}, taxonomy.HumanComputerInteraction},
	{[]string{"environment", "energy", "carbon", "job", "economic"}, taxonomy.SocioeconomicEnvironmental},
}

// relevanceTiers weights keyword hits for the SST relevance score. Hits are
// cumulative within a tier; only the final total is capped.
var relevanceTiers = []struct {
	weight   float64
	keywords []string
}{
	{0.30, []string{"safety", "injury", "accident", "hazard", "worker", "health",
		"occupational", "workplace", "equipment", "machine"}},
	{0.15, []string{"decision", "judgment", "oversight", "critical", "medical",
		"diagnosis", "automation", "control", "monitoring"}},
	{0.05, []string{"bias", "fairness", "privacy", "security", "misinformation"}},
}

type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify maps a statement to its taxonomy category. Statements that match
// no explicit keyword set are treated as system-safety risks rather than
// left unclassified.
func (c *Classifier) Classify(statement string) taxonomy.Category {
	lower := strings.ToLower(statement)
	for _, r := range cascade {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.category
			}
		}
	}
	return taxonomy.AISystemSafety
}

// Relevance estimates how relevant a statement is to safety/health-critical
// contexts, in [0, 1].
func (c *Classifier) Relevance(statement string) float64 {
	lower := strings.ToLower(statement)

	score := 0.0
	for _, tier := range relevanceTiers {
		for _, kw := range tier.keywords {
			if strings.Contains(lower, kw) {
				score += tier.weight
			}
		}
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}
