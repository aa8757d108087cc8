package models

import (
	"time"

	"gorm.io/datatypes"
)

// ScoreRecord is one persisted scoring outcome, kept for learner history.
// Only fresh provider results are recorded; cache hits are not duplicated.
type ScoreRecord struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UserID           string         `gorm:"size:64;index" json:"user_id"`
	SessionID        string         `gorm:"size:64" json:"session_id"`
	TaskType         string         `gorm:"size:32;not null" json:"task_type"`
	Language         string         `gorm:"size:16" json:"language"`
	Provider         string         `gorm:"size:32" json:"provider"`
	Model            string         `gorm:"size:64" json:"model"`
	OverallBandScore float64        `gorm:"not null" json:"overall_band_score"`
	Confidence       float64        `json:"confidence"`
	CriteriaScores   datatypes.JSON `json:"criteria_scores"`
	WordCount        int            `json:"word_count"`
	CreatedAt        time.Time      `json:"created_at"`
}
