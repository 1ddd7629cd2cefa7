package models

import (
	"time"

	"github.com/google/uuid"
)

type AnalysisRecord struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SessionID      uuid.UUID      `gorm:"type:uuid;index" json:"session_id"`
	CVText         string         `gorm:"type:text" json:"cv_text"`
	JobDescription string         `gorm:"type:text" json:"job_description"`
	MatchScore     int            `gorm:"not null;index" json:"match_score"`
	Summary        string         `gorm:"type:text" json:"summary"`
	Result         AnalysisResult `gorm:"type:jsonb;serializer:json" json:"result"`
	Model          string         `gorm:"type:text" json:"model"`
	CreatedAt      time.Time      `gorm:"default:CURRENT_TIMESTAMP;index" json:"created_at"`
}

func (AnalysisRecord) TableName() string {
	return "analyses"
}
