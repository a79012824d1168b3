package compliance

import (
	"fmt"

	"github.com/ai-risk-sentinel/backend/internal/taxonomy"
)

func gapReason(cat taxonomy.Category, modelType string) string {
	switch cat {
	case taxonomy.MaliciousActors:
		return fmt.Sprintf("High BSI (0.82) - %s models are increasingly used for fraud and manipulation", modelType)
	case taxonomy.PrivacySecurity:
		return "Required for EU AI Act compliance and data protection regulations"
	case taxonomy.Misinformation:
		return fmt.Sprintf("%s models can generate convincing false information", modelType)
	case taxonomy.DiscriminationToxicity:
		return "Core requirement for responsible AI deployment"
	case taxonomy.AISystemSafety:
		return "Fundamental for understanding model limitations"
	case taxonomy.HumanComputerInteraction:
		return "Critical for preventing overreliance in high-stakes contexts"
	case taxonomy.SocioeconomicEnvironmental:
		return "Increasingly required for sustainability reporting"
	default:
		return fmt.Sprintf("Missing documentation for %s", cat)
	}
}

func suggestedRisks(cat taxonomy.Category) []string {
	switch cat {
	case taxonomy.MaliciousActors:
		return []string{
			"Enables generation of deceptive content for fraud",
			"Facilitates social engineering attacks through realistic outputs",
			"May be used to impersonate individuals without consent",
		}
	case taxonomy.PrivacySecurity:
		return []string{
			"May memorize and leak training data",
			"Could expose sensitive information in outputs",
			"Vulnerable to prompt injection attacks",
		}
	case taxonomy.Misinformation:
		return []string{
			"Generates factually incorrect information",
			"Produces plausible-sounding but false statements",
			"May spread misleading information at scale",
		}
	case taxonomy.DiscriminationToxicity:
		return []string{
			"Perpetuates biases present in training data",
			"May generate toxic or offensive content",
			"Shows unequal performance across demographic groups",
		}
	case taxonomy.AISystemSafety:
		return []string{
			"Has known limitations on out-of-distribution inputs",
			"Performance degrades under adversarial conditions",
			"Lacks robustness to input perturbations",
		}
	case taxonomy.HumanComputerInteraction:
		return []string{
			"Increases risk of overreliance in decision-making",
			"Should not replace professional judgment in critical domains",
			"May reduce human agency if used without oversight",
		}
	case taxonomy.SocioeconomicEnvironmental:
		return []string{
			"Requires significant computational resources",
			"May contribute to job displacement in certain sectors",
			"Training has substantial environmental footprint",
		}
	default:
		return []string{fmt.Sprintf("Document risks related to %s", cat)}
	}
}

func regulatoryImpact(cat taxonomy.Category) []string {
	switch cat {
	case taxonomy.MaliciousActors:
		return []string{"NIST AI RMF - MANAGE"}
	case taxonomy.PrivacySecurity:
		return []string{"EU AI Act", "GDPR", "NIST AI RMF - MANAGE"}
	case taxonomy.Misinformation:
		return []string{"EU AI Act", "NIST AI RMF - MEASURE"}
	case taxonomy.DiscriminationToxicity:
		return []string{"EU AI Act", "NIST AI RMF - MEASURE"}
	case taxonomy.AISystemSafety:
		return []string{"EU AI Act", "NIST AI RMF - MAP"}
	case taxonomy.HumanComputerInteraction:
		return []string{"EU AI Act", "NIST AI RMF - MAP"}
	case taxonomy.SocioeconomicEnvironmental:
		return []string{"NIST AI RMF - GOVERN", "CSRD"}
	default:
		return nil
	}
}
