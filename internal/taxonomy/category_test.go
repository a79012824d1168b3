package taxonomy

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAll_ReturnsSevenCategoriesInOrder(t *testing.T) {
	all := All()

	require.Len(t, all, 7)
	assert.Equal(t, DiscriminationToxicity, all[0])
	assert.Equal(t, SocioeconomicEnvironmental, all[6])
}

func TestString_CanonicalIdentifiers(t *testing.T) {
	assert.Equal(t, "discrimination_toxicity", DiscriminationToxicity.String())
	assert.Equal(t, "ai_system_safety", AISystemSafety.String())
	assert.Equal(t, "misinformation", Misinformation.String())
	assert.Equal(t, "malicious_actors", MaliciousActors.String())
	assert.Equal(t, "privacy_security", PrivacySecurity.String())
	assert.Equal(t, "human_computer_interaction", HumanComputerInteraction.String())
	assert.Equal(t, "socioeconomic_environmental", SocioeconomicEnvironmental.String())
}

func TestLabel_HumanReadable(t *testing.T) {
	assert.Equal(t, "Discrimination & Toxicity", DiscriminationToxicity.Label())
	assert.Equal(t, "Malicious Actors & Misuse", MaliciousActors.Label())
}

func TestParse_RoundTripsEveryCategory(t *testing.T) {
	for _, cat := range All() {
		parsed, err := Parse(cat.String())
		require.NoError(t, err)
		assert.Equal(t, cat, parsed)
	}
}

func TestParse_NormalizesCaseAndWhitespace(t *testing.T) {
	parsed, err := Parse("  Privacy_Security ")
	require.NoError(t, err)
	assert.Equal(t, PrivacySecurity, parsed)
}

func TestParse_UnknownCategoryFails(t *testing.T) {
	_, err := Parse("quantum_rupture")
	require.Error(t, err)

	var invalidErr *InvalidCategoryError
	require.True(t, errors.As(err, &invalidErr))
	assert.Equal(t, "quantum_rupture", invalidErr.Value)
}

func TestValid_RejectsOutOfRangeValues(t *testing.T) {
	assert.False(t, Category(-1).Valid())
	assert.False(t, Category(7).Valid())
	assert.True(t, Misinformation.Valid())
}

func TestJSON_RoundTrip(t *testing.T) {
	data, err := json.Marshal(MaliciousActors)
	require.NoError(t, err)
	assert.Equal(t, `"malicious_actors"`, string(data))

	var cat Category
	require.NoError(t, json.Unmarshal(data, &cat))
	assert.Equal(t, MaliciousActors, cat)
}

func TestJSON_UnmarshalUnknownFails(t *testing.T) {
	var cat Category
	err := json.Unmarshal([]byte(`"not_a_category"`), &cat)
	assert.Error(t, err)
}
