package services

import (
	"fmt"
	"io"
	"strings"

	"alfredoptarigan/cv-match-analyzer/internal/models"
)

const reportBarWidth = 20

// RenderReport writes a plain-text version of the results panel.
func RenderReport(w io.Writer, result *models.AnalysisResult) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Match Score: %d%% %s\n\n", result.MatchScore, scoreLabel(result.MatchScore))
	fmt.Fprintf(&b, "Summary\n%s\n", result.Summary)

	writeList(&b, "Strengths", result.Strengths)
	writeList(&b, "Areas for Improvement", result.Improvements)

	if len(result.SkillAnalysis) > 0 {
		b.WriteString("\nSkill Breakdown\n")

		width := 0
		for _, skill := range result.SkillAnalysis {
			width = max(width, len(skill.Skill))
		}
		for _, skill := range result.SkillAnalysis {
			fmt.Fprintf(&b, "  %-*s %s %3d\n", width, skill.Skill, bar(skill.Score), skill.Score)
		}
		for _, skill := range result.SkillAnalysis {
			fmt.Fprintf(&b, "\n  %s (%d)\n    %s\n", skill.Skill, skill.Score, skill.Reasoning)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeList(b *strings.Builder, title string, items []string) {
	fmt.Fprintf(b, "\n%s\n", title)
	if len(items) == 0 {
		b.WriteString("  (none)\n")
		return
	}
	for _, item := range items {
		fmt.Fprintf(b, "  - %s\n", item)
	}
}

func bar(score int) string {
	score = min(max(score, 0), 100)
	filled := score * reportBarWidth / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", reportBarWidth-filled) + "]"
}

func scoreLabel(score int) string {
	switch {
	case score >= 80:
		return "(strong match)"
	case score >= 60:
		return "(good match)"
	case score >= 40:
		return "(partial match)"
	default:
		return "(weak match)"
	}
}
