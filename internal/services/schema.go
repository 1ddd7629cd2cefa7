package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/xeipuuv/gojsonschema"
)

type SchemaType string

const (
	TypeObject  SchemaType = "object"
	TypeArray   SchemaType = "array"
	TypeString  SchemaType = "string"
	TypeInteger SchemaType = "integer"
)

// Schema describes a structured response independently of any provider's vocabulary.
type Schema struct {
	Type        SchemaType
	Description string
	Properties  map[string]*Schema
	// PropertyOrder is the order fields are presented to the provider.
	PropertyOrder []string
	Required      []string
	Items         *Schema
	Minimum       *float64
	Maximum       *float64
}

func bounded(min, max float64) (*float64, *float64) {
	return &min, &max
}

var analysisSchema = newAnalysisSchema()

func newAnalysisSchema() *Schema {
	scoreMin, scoreMax := bounded(0, 100)

	return &Schema{
		Type: TypeObject,
		Properties: map[string]*Schema{
			"matchScore": {
				Type:        TypeInteger,
				Description: "A percentage score from 0 to 100 representing how well the CV matches the job description. 100 is a perfect match.",
				Minimum:     scoreMin,
				Maximum:     scoreMax,
			},
			"summary": {
				Type:        TypeString,
				Description: "A concise, 2-3 sentence summary of the candidate's suitability for the role.",
			},
			"strengths": {
				Type:        TypeArray,
				Items:       &Schema{Type: TypeString},
				Description: "A list of key strengths and qualifications from the CV that align with the job description.",
			},
			"improvements": {
				Type:        TypeArray,
				Items:       &Schema{Type: TypeString},
				Description: "A list of areas where the CV could be improved or where there are gaps relative to the job description.",
			},
			"skillAnalysis": {
				Type:        TypeArray,
				Description: "A detailed breakdown of how major skills from the job description are met by the CV.",
				Items: &Schema{
					Type: TypeObject,
					Properties: map[string]*Schema{
						"skill": {
							Type:        TypeString,
							Description: "The specific skill or requirement being analyzed.",
						},
						"score": {
							Type:        TypeInteger,
							Description: "A score from 0 to 100 for this specific skill.",
							Minimum:     scoreMin,
							Maximum:     scoreMax,
						},
						"reasoning": {
							Type:        TypeString,
							Description: "A brief justification for the skill score, citing evidence from the CV.",
						},
					},
					PropertyOrder: []string{"skill", "score", "reasoning"},
					Required:      []string{"skill", "score", "reasoning"},
				},
			},
		},
		PropertyOrder: []string{"matchScore", "summary", "strengths", "improvements", "skillAnalysis"},
		Required:      []string{"matchScore", "summary", "strengths", "improvements", "skillAnalysis"},
	}
}

// AnalysisSchema returns the fixed output contract of a match analysis.
func AnalysisSchema() *Schema {
	return analysisSchema
}

// Validate checks data against the schema. Malformed JSON is reported as a plain
// error and every mismatch as part of SchemaViolations.
func (s *Schema) Validate(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if _, err := decoder.Token(); err != io.EOF {
		return fmt.Errorf("invalid JSON: unexpected data after top-level value")
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(s.jsonSchema()),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("failed to validate response: %w", err)
	}
	if result.Valid() {
		return nil
	}

	violations := make(SchemaViolations, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		violations = append(violations, e.Field()+": "+e.Description())
	}
	return violations
}

// jsonSchema renders the schema as a JSON Schema document.
func (s *Schema) jsonSchema() map[string]any {
	out := map[string]any{"type": string(s.Type)}

	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Properties) > 0 {
		properties := make(map[string]any, len(s.Properties))
		for name, property := range s.Properties {
			properties[name] = property.jsonSchema()
		}
		out["properties"] = properties
	}
	if len(s.Required) > 0 {
		out["required"] = s.Required
	}
	if s.Items != nil {
		out["items"] = s.Items.jsonSchema()
	}
	if s.Minimum != nil {
		out["minimum"] = *s.Minimum
	}
	if s.Maximum != nil {
		out["maximum"] = *s.Maximum
	}

	return out
}
