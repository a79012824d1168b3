// Package taxonomy defines the closed set of AI risk categories used as
// the grouping key across the whole system. The set is fixed at seven
// categories; there is no runtime extension.
package taxonomy

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Category int

const (
	DiscriminationToxicity Category = iota
	AISystemSafety
	Misinformation
	MaliciousActors
	PrivacySecurity
	HumanComputerInteraction
	SocioeconomicEnvironmental

	numCategories
)

// Count is the size of the closed category set.
const Count = int(numCategories)

var names = [numCategories]string{
	DiscriminationToxicity:     "discrimination_toxicity",
	AISystemSafety:             "ai_system_safety",
	Misinformation:             "misinformation",
	MaliciousActors:            "malicious_actors",
	PrivacySecurity:            "privacy_security",
	HumanComputerInteraction:   "human_computer_interaction",
	SocioeconomicEnvironmental: "socioeconomic_environmental",
}

var labels = [numCategories]string{
	DiscriminationToxicity:     "Discrimination & Toxicity",
	AISystemSafety:             "AI System Safety",
	Misinformation:             "Misinformation",
	MaliciousActors:            "Malicious Actors & Misuse",
	PrivacySecurity:            "Privacy & Security",
	HumanComputerInteraction:   "Human-Computer Interaction",
	SocioeconomicEnvironmental: "Socioeconomic & Environmental",
}

// All returns every category in its canonical order.
func All() []Category {
	out := make([]Category, Count)
	for i := range out {
		out[i] = Category(i)
	}
	return out
}

// String returns the canonical snake_case identifier for the category.
func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return names[c]
}

// Label returns the human-readable name of the category.
func (c Category) Label() string {
	if !c.Valid() {
		return c.String()
	}
	return labels[c]
}

func (c Category) Valid() bool {
	return c >= 0 && c < numCategories
}

// InvalidCategoryError reports a string that is not part of the closed
// category set.
type InvalidCategoryError struct {
	Value string
}

func (e *InvalidCategoryError) Error() string {
	return fmt.Sprintf("invalid risk category %q", e.Value)
}

// Parse maps a canonical identifier to its Category. Unknown strings fail
// with *InvalidCategoryError; callers loading external records are expected
// to skip such records rather than abort.
func Parse(s string) (Category, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for i, name := range names {
		if name == normalized {
			return Category(i), nil
		}
	}
	return 0, &InvalidCategoryError{Value: s}
}

func (c Category) MarshalJSON() ([]byte, error) {
	if !c.Valid() {
		return nil, &InvalidCategoryError{Value: c.String()}
	}
	return json.Marshal(c.String())
}

func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
