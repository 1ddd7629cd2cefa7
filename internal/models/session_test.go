package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionState(t *testing.T) {
	tests := []struct {
		name    string
		session Session
		want    SessionState
	}{
		{"empty", Session{}, StateIdle},
		{"cv only", Session{CVText: "cv"}, StateIdle},
		{"both texts", Session{CVText: "cv", JobDescription: "jd"}, StateReadyToAnalyze},
		{"parsing wins over everything", Session{Parsing: true, Error: "x", Result: &AnalysisResult{}}, StateParsingFile},
		{"loading", Session{Loading: true, CVText: "cv", JobDescription: "jd"}, StateAnalyzing},
		{"failed", Session{Error: "boom", CVText: "cv", JobDescription: "jd"}, StateFailed},
		{"succeeded", Session{Result: &AnalysisResult{MatchScore: 10}, CVText: "cv", JobDescription: "jd"}, StateSucceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.session.State())
		})
	}
}
