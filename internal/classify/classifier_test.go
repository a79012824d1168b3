package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ai-risk-sentinel/backend/internal/taxonomy"
)

func TestClassify_KeywordCascade(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name      string
		statement string
		want      taxonomy.Category
	}{
		{
			name:      "bias terms map to discrimination",
			statement: "The model may exhibit bias against underrepresented groups",
			want:      taxonomy.DiscriminationToxicity,
		},
		{
			name:      "toxicity terms map to discrimination",
			statement: "Outputs can contain toxic or offensive language",
			want:      taxonomy.DiscriminationToxicity,
		},
		{
			name:      "hallucination maps to misinformation",
			statement: "The model can hallucinate plausible-sounding answers",
			want:      taxonomy.Misinformation,
		},
		{
			name:      "false output maps to misinformation",
			statement: "Generated summaries may present false claims as fact",
			want:      taxonomy.Misinformation,
		},
		{
			name:      "misuse maps to malicious actors",
			statement: "Bad actors could misuse this system to generate scams",
			want:      taxonomy.MaliciousActors,
		},
		{
			name:      "privacy maps to privacy and security",
			statement: "Training data may leak personal data through completions",
			want:      taxonomy.PrivacySecurity,
		},
		{
			name:      "oversight maps to human-computer interaction",
			statement: "Deployments require human oversight for consequential decisions",
			want:      taxonomy.HumanComputerInteraction,
		},
		{
			name:      "energy maps to socioeconomic and environmental",
			statement: "Training consumed significant energy and carbon",
			want:      taxonomy.SocioeconomicEnvironmental,
		},
		{
			name:      "unmatched statements default to system safety",
			statement: "The model struggles with very long contexts",
			want:      taxonomy.AISystemSafety,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.statement))
		})
	}
}

// Earlier rules in the cascade must win when a statement matches several
// keyword sets.
func TestClassify_FirstMatchWins(t *testing.T) {
	c := NewClassifier()

	got := c.Classify("Biased outputs could be used by malicious actors")
	assert.Equal(t, taxonomy.DiscriminationToxicity, got)
}

func TestClassify_CaseInsensitive(t *testing.T) {
	c := NewClassifier()

	assert.Equal(t, taxonomy.Misinformation, c.Classify("HALLUCINATION remains a known issue"))
}

func TestRelevance_AccumulatesAcrossTiers(t *testing.T) {
	c := NewClassifier()

	// safety (0.30) + medical (0.15) + bias (0.05)
	score := c.Relevance("safety concerns in medical settings can amplify bias")
	assert.InDelta(t, 0.50, score, 1e-9)
}

func TestRelevance_CappedAtOne(t *testing.T) {
	c := NewClassifier()

	score := c.Relevance("safety injury accident hazard worker health equipment machine")
	assert.Equal(t, 1.0, score)
}

func TestRelevance_NoKeywordsScoresZero(t *testing.T) {
	c := NewClassifier()

	assert.Equal(t, 0.0, c.Relevance("the weather is pleasant today"))
}
