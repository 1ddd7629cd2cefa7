package models

// SkillAssessment scores one requirement of the job description against the CV.
type SkillAssessment struct {
	Skill     string `json:"skill"`
	Score     int    `json:"score"`
	Reasoning string `json:"reasoning"`
}

// AnalysisResult is the structured match analysis produced by one provider call.
// It is always replaced as a whole, never patched.
type AnalysisResult struct {
	MatchScore    int               `json:"matchScore"`
	Summary       string            `json:"summary"`
	Strengths     []string          `json:"strengths"`
	Improvements  []string          `json:"improvements"`
	SkillAnalysis []SkillAssessment `json:"skillAnalysis"`
}
