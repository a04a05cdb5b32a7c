package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get("candidates.json", "generate-candidate")
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.JobPosition}}")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get("advisor.json", "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestFormat(t *testing.T) {
	template := "Generate a profile for a {{.JobPosition}} aged {{.Age}}."
	data := map[string]string{
		"JobPosition": "Data Scientist",
		"Age":         "31",
	}

	assert.Equal(t, "Generate a profile for a Data Scientist aged 31.", Format(template, data))
}

func TestFormat_UnknownPlaceholderRemains(t *testing.T) {
	assert.Equal(t, "Hello {{.Name}}", Format("Hello {{.Name}}", map[string]string{}))
}

func TestPair(t *testing.T) {
	ClearCache()

	system, prompt, err := Pair("advisor.json", "bias-flashcard", map[string]string{"BiasPattern": "younger candidates"})
	require.NoError(t, err)
	assert.Contains(t, system, "bias awareness coach")
	assert.Contains(t, prompt, "younger candidates")
	assert.NotContains(t, prompt, "{{.BiasPattern}}")
}

func TestPair_MissingSystem(t *testing.T) {
	ClearCache()

	_, _, err := Pair("candidates.json", "generate-candidate-system", nil)
	assert.Error(t, err)
}

// Every prompt used by the advisor has a matching system instruction.
func TestAdvisorPromptsArePaired(t *testing.T) {
	ClearCache()

	keys, err := List("advisor.json")
	require.NoError(t, err)

	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	for _, k := range []string{"candidate-interview", "candidate-detailed", "candidate-animated", "bias-analysis", "bias-reflection", "bias-flashcard"} {
		assert.True(t, set[k], k)
		assert.True(t, set[k+"-system"], k+"-system")
	}
}

func TestCaching(t *testing.T) {
	ClearCache()

	prompt1, err := Get("advisor.json", "bias-analysis")
	require.NoError(t, err)

	prompt2, err := Get("advisor.json", "bias-analysis")
	require.NoError(t, err)

	assert.Equal(t, prompt1, prompt2)
}
