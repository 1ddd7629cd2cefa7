package models

import (
	"time"

	"github.com/google/uuid"
)

type SessionState string

const (
	StateIdle           SessionState = "idle"
	StateParsingFile    SessionState = "parsing_file"
	StateReadyToAnalyze SessionState = "ready_to_analyze"
	StateAnalyzing      SessionState = "analyzing"
	StateSucceeded      SessionState = "succeeded"
	StateFailed         SessionState = "failed"
)

type ErrorKind string

const (
	ErrorKindUnsupportedType ErrorKind = "unsupported_type"
	ErrorKindRead            ErrorKind = "read_error"
	ErrorKindValidation      ErrorKind = "validation"
	ErrorKindNetwork         ErrorKind = "network"
	ErrorKindUnauthorized    ErrorKind = "unauthorized"
	ErrorKindParse           ErrorKind = "parse"
	ErrorKindSchema          ErrorKind = "schema"
	ErrorKindTimeout         ErrorKind = "timeout"
	ErrorKindCancelled       ErrorKind = "cancelled"
)

// Session is a point-in-time copy of one user's analysis session.
type Session struct {
	ID             uuid.UUID       `json:"id"`
	CVText         string          `json:"cv_text"`
	JobDescription string          `json:"job_description"`
	Result         *AnalysisResult `json:"result,omitempty"`
	AnalysisID     *uuid.UUID      `json:"analysis_id,omitempty"`
	Loading        bool            `json:"loading"`
	Parsing        bool            `json:"parsing"`
	Error          string          `json:"error,omitempty"`
	ErrorKind      ErrorKind       `json:"error_kind,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// State derives the state machine position from the session flags.
func (s *Session) State() SessionState {
	switch {
	case s.Parsing:
		return StateParsingFile
	case s.Loading:
		return StateAnalyzing
	case s.Error != "":
		return StateFailed
	case s.Result != nil:
		return StateSucceeded
	case s.CVText != "" && s.JobDescription != "":
		return StateReadyToAnalyze
	default:
		return StateIdle
	}
}
