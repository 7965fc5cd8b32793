package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// swagger:model AttemptResult
// AttemptResult is written once per evaluation and never updated.
type AttemptResult struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	UserID      uint      `gorm:"index:idx_attempt_user_case;not null" json:"userId"`
	CaseID      uint      `gorm:"index:idx_attempt_user_case;not null" json:"caseId"`
	CaseVersion uint      `gorm:"not null" json:"caseVersion"`
	SubmittedAt time.Time `gorm:"not null" json:"submittedAt"`

	FindingsScore  float64 `json:"findingsScore"`
	LocationScore  float64 `json:"locationScore"`
	DiagnosisScore float64 `json:"diagnosisScore"`
	FinalScore     float64 `json:"finalScore"`
	LocationGrade  string  `gorm:"size:16;not null" json:"locationGrade"`
	IsCorrect      bool    `gorm:"default:false" json:"isCorrect"`
	Explanation    string  `gorm:"type:text" json:"explanation"`

	ClickX       float64                   `json:"clickX"`
	ClickY       float64                   `json:"clickY"`
	FindingIDs   datatypes.JSONSlice[uint] `json:"findingIds"`
	DiagnosisIDs datatypes.JSONSlice[uint] `json:"diagnosisIds"`
}

func (AttemptResult) TableName() string {
	return "attempt_results"
}

func (a *AttemptResult) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = GenerateUUID()
	}
	return
}
