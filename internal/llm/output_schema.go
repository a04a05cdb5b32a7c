// Package llm - output_schema.go builds prompts that ask for a fixed JSON shape.
package llm

import (
	"fmt"
	"strings"
)

// OutputSchema describes the JSON object a prompt asks the model to return.
type OutputSchema struct {
	Name   string
	Fields []SchemaField
}

// SchemaField defines a single field in the requested output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint shown to the model, e.g. `"string"` or `["string"]`
	Description string // Guidance for the model
	Required    bool
}

// BuildJSONPrompt appends the output structure and formatting rules to instructions.
func BuildJSONPrompt(instructions string, schema OutputSchema) string {
	var sb strings.Builder

	sb.WriteString(strings.TrimSpace(instructions))
	sb.WriteString("\n\n")

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = `"string"`
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  %q: %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n")
	sb.WriteString("- Use the exact field names shown above.\n")

	return sb.String()
}

// CandidateProfileSchema is the output structure for a generated candidate.
func CandidateProfileSchema(jobPosition string) OutputSchema {
	return OutputSchema{
		Name: "CandidateProfile",
		Fields: []SchemaField{
			{Name: "name", Description: "Full name, diverse and realistic", Required: true},
			{Name: "gender", Description: "Male, Female, or Non-binary", Required: true},
			{Name: "age", Type: "number", Description: "Appropriate for career stage, between 21 and 65", Required: true},
			{Name: "experience", Type: "number", Description: "Years of experience, consistent with age", Required: true},
			{Name: "education", Description: "Highest degree level", Required: true},
			{
				Name:        "educationDetails",
				Type:        `[{"institution": "string", "degree": "string", "years": "YYYY - YYYY"}]`,
				Description: fmt.Sprintf("Degrees directly relevant to %s", jobPosition),
				Required:    true,
			},
			{
				Name:        "experienceDetails",
				Type:        `[{"title": "string", "company": "string", "years": "YYYY - YYYY", "details": ["string"]}]`,
				Description: fmt.Sprintf("Most recent first, at least two roles building toward %s", jobPosition),
				Required:    true,
			},
			{
				Name:        "skills",
				Type:        `{"technical": ["string"], "soft": "string"}`,
				Description: fmt.Sprintf("5-8 technical skills required for %s and the primary soft skill", jobPosition),
				Required:    true,
			},
			{Name: "softSkill", Description: "Key soft skill strength for this role", Required: true},
			{Name: "softSkillDetail", Description: "How they apply the soft skill in this position"},
			{
				Name:        "references",
				Type:        `[{"name": "string", "title": "string", "quote": "string"}]`,
				Description: "Professional references from the same industry",
			},
			{Name: "interviewQuote", Description: "Answer to a position-specific interview question"},
			{Name: "followupQuestion", Description: fmt.Sprintf("A challenging question about %s responsibilities", jobPosition)},
			{Name: "followupAnswer", Description: "The candidate's answer showing relevant expertise"},
			{Name: "goldStar", Description: "Top strength for this exact position"},
			{Name: "redFlag", Description: "Minor, realistic, non-disqualifying concern"},
			{Name: "keyStrength", Description: "Short phrase for the core professional strength", Required: true},
		},
	}
}

// BiasAnalysisSchema is the output structure for a bias analysis.
func BiasAnalysisSchema() OutputSchema {
	return OutputSchema{
		Name: "BiasAnalysis",
		Fields: []SchemaField{
			{
				Name:        "biasInsights",
				Type:        `[{"type": "gender|age|education|experience|communication", "title": "string", "description": "string", "percentage": number}]`,
				Description: "One entry per potential bias area, percentage 0-100",
				Required:    true,
			},
			{Name: "overallBiasScore", Type: "number", Description: "0-100", Required: true},
			{Name: "recommendations", Type: `["string"]`, Description: "Three practical tips", Required: true},
		},
	}
}
