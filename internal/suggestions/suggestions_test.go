package suggestions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate_TemplatesFollowMissingOrder(t *testing.T) {
	got := Generate([]string{"Flask", "Fastapi"}, 2)

	assert.Equal(t, []string{
		"Include Flask-based projects or API development experience.",
		ActionVerbs,
	}, got)
}

func TestGenerate_ThreeMissing(t *testing.T) {
	got := Generate([]string{"Vue", "Angular", "Bootstrap"}, 6)

	assert.Equal(t, []string{Projects, Measurable, ActionVerbs, Aligned}, got)
}

func TestGenerate_FiveMissing(t *testing.T) {
	got := Generate([]string{"Python", "Django", "Flask", "Sql", "Git"}, 0)

	assert.Len(t, got, 5+4)
	assert.Equal(t, Certifications, got[5])
	assert.Equal(t, Projects, got[6])
	assert.Equal(t, Measurable, got[7])
	assert.Equal(t, ActionVerbs, got[8])
}

func TestGenerate_NothingMissing(t *testing.T) {
	assert.Equal(t, []string{Aligned}, Generate(nil, 9))
	assert.Empty(t, Generate(nil, 4))
}

func TestGenerate_AlignedThreshold(t *testing.T) {
	assert.NotContains(t, Generate([]string{"x"}, 4), Aligned)
	assert.Contains(t, Generate([]string{"x"}, 5), Aligned)
}

func TestTemplate_CaseInsensitive(t *testing.T) {
	got, ok := Template("Machine Learning")
	assert.True(t, ok)
	assert.Equal(t, "Include machine learning projects or experience.", got)

	_, ok = Template("kotlin")
	assert.False(t, ok)
}
