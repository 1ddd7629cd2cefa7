package models

import (
	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	CVText         string `json:"cv_text"`
	JobDescription string `json:"job_description"`
}

type UpdateTextRequest struct {
	Text string `json:"text"`
}

type SessionResponse struct {
	Session
	State SessionState `json:"state"`
}

func NewSessionResponse(s *Session) SessionResponse {
	return SessionResponse{Session: *s, State: s.State()}
}

type UploadResponse struct {
	DocumentID   *uuid.UUID      `json:"document_id,omitempty"`
	OriginalName string          `json:"original_name"`
	MediaType    string          `json:"media_type"`
	Characters   int             `json:"characters"`
	Session      SessionResponse `json:"session"`
}

type AnalyzeResponse struct {
	ID     string       `json:"id"`
	Status SessionState `json:"status"`
}

type AnalysisSummary struct {
	ID         uuid.UUID `json:"id"`
	MatchScore int       `json:"match_score"`
	Summary    string    `json:"summary"`
	CreatedAt  string    `json:"created_at"`
}

type SimilarAnalysis struct {
	AnalysisSummary
	Similarity float32 `json:"similarity"`
}
