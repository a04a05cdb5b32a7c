package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validCandidate = `{
  "name": "Aisha Khan",
  "gender": "Female",
  "age": 34,
  "experience": 9,
  "education": "Data Science",
  "educationDetails": [{"institution": "Carnegie Mellon", "degree": "Master of Data Science", "years": "2012 - 2014"}],
  "experienceDetails": [{"title": "Senior Data Scientist", "company": "Netflix", "years": "2019 - 2025", "details": ["Built churn model"]}],
  "skills": {"technical": ["Python", "SQL"], "soft": "Curiosity"},
  "keyStrength": "Experimentation"
}`

func TestValidateCandidateJSON_Valid(t *testing.T) {
	assert.NoError(t, ValidateCandidateJSON(validCandidate))
}

func TestValidateCandidateJSON_TechnicalSkillsOptional(t *testing.T) {
	doc := `{"name": "Sam", "gender": "Male", "age": 40, "experience": 12, "education": "MBA",
	  "educationDetails": [], "experienceDetails": [], "skills": {"soft": "Calm"}}`
	assert.NoError(t, ValidateCandidateJSON(doc))
}

func TestValidateCandidateJSON_MissingFields(t *testing.T) {
	err := ValidateCandidateJSON(`{"name": "Sam"}`)
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok, "error should be ValidationError type")
	assert.GreaterOrEqual(t, len(validationErr.Errors), 3)
	assert.Contains(t, validationErr.Error(), "validation failed")
}

func TestValidateCandidateJSON_WrongType(t *testing.T) {
	doc := `{"name": "Sam", "gender": "Male", "age": "forty", "experience": 12, "education": "MBA",
	  "educationDetails": [], "experienceDetails": [], "skills": {}}`
	err := ValidateCandidateJSON(doc)
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, "age", validationErr.Errors[0].Field)
}

func TestValidateCandidateJSON_Malformed(t *testing.T) {
	err := ValidateCandidateJSON(`{"name": `)
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestValidateBiasAnalysisJSON(t *testing.T) {
	valid := `{"biasInsights": [{"type": "age", "title": "Age", "description": "d", "percentage": 70}], "overallBiasScore": 55, "recommendations": ["a"]}`
	assert.NoError(t, ValidateBiasAnalysisJSON(valid))

	badType := `{"biasInsights": [{"type": "astrology", "title": "x", "percentage": 70}]}`
	assert.Error(t, ValidateBiasAnalysisJSON(badType))

	outOfRange := `{"biasInsights": [{"type": "age", "title": "x", "percentage": 170}]}`
	assert.Error(t, ValidateBiasAnalysisJSON(outOfRange))
}

func TestValidate_CandidateList(t *testing.T) {
	assert.NoError(t, Validate(CandidateListSchema, []byte(`[{"id": 1, "name": "A", "gender": "Male", "age": 30, "experience": 5, "education": "MBA"}]`)))
	assert.Error(t, Validate(CandidateListSchema, []byte(`[{"name": "A"}]`)))
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("missing.schema.json", []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema not embedded")
}

func TestValidateJSONString(t *testing.T) {
	schema := `{"type": "object", "required": ["level"], "properties": {"level": {"type": "string"}}}`
	assert.NoError(t, ValidateJSONString(schema, `{"level": "Novice Recruiter"}`))
	assert.Error(t, ValidateJSONString(schema, `{"level": 3}`))
}
