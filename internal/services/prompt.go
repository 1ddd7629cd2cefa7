package services

import (
	"fmt"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildAnalysisRequest creates the instruction and the output contract for one CV match analysis.
// Inputs are embedded verbatim; callers make sure neither is empty.
func (pb *PromptBuilder) BuildAnalysisRequest(cvText, jobDescription string) (string, *Schema) {
	return pb.BuildAnalysisPrompt(cvText, jobDescription), AnalysisSchema()
}

func (pb *PromptBuilder) BuildAnalysisPrompt(cvText, jobDescription string) string {
	return fmt.Sprintf(`Analyze the following CV content against the provided job description.
Act as an expert career coach and hiring manager. Provide a detailed, constructive, and unbiased analysis.
The output must be a JSON object that strictly adheres to the provided schema.

**CV Content:**
---
%s
---

**Job Description:**
---
%s
---

Your analysis should highlight how the candidate's experience, skills, and qualifications align with the job requirements.
Calculate a match score, summarize the fit, list strengths and areas for improvement, and provide a scored breakdown of key skills.
Every score must be a whole number between 0 and 100.`,
		cvText, jobDescription)
}

// BuildSimilarityQuery is the text embedded to find past analyses for comparable roles.
func (pb *PromptBuilder) BuildSimilarityQuery(jobDescription string) string {
	return CleanText(jobDescription)
}
