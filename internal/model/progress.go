package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

type ProgressStatus string

const (
	StatusUnseen           ProgressStatus = "UNSEEN"
	StatusCorrect          ProgressStatus = "CORRECT"
	StatusWrong            ProgressStatus = "WRONG"
	StatusReattemptCorrect ProgressStatus = "REATTEMPT_CORRECT"
)

// legacyUnattempted was written by older clients for cases that were never answered.
const legacyUnattempted = "UNATTEMPTED"

// ParseProgressStatus normalizes stored or client supplied values. Empty and the
// legacy UNATTEMPTED value both map to StatusUnseen.
func ParseProgressStatus(s string) (ProgressStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(StatusUnseen), legacyUnattempted:
		return StatusUnseen, nil
	case string(StatusCorrect):
		return StatusCorrect, nil
	case string(StatusWrong):
		return StatusWrong, nil
	case string(StatusReattemptCorrect):
		return StatusReattemptCorrect, nil
	}
	return "", fmt.Errorf("unknown progress status %q", s)
}

// Next is the mastery transition for one attempt. A correct answer after a wrong one is a
// reattempt success; any wrong answer resets to WRONG.
func (s ProgressStatus) Next(isCorrect bool) ProgressStatus {
	if !isCorrect {
		return StatusWrong
	}
	switch s {
	case StatusWrong, StatusReattemptCorrect:
		return StatusReattemptCorrect
	default:
		return StatusCorrect
	}
}

func (s *ProgressStatus) Scan(value any) error {
	var raw string
	switch v := value.(type) {
	case nil:
		raw = ""
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into ProgressStatus", value)
	}
	parsed, err := ParseProgressStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s ProgressStatus) Value() (driver.Value, error) {
	if s == "" {
		return string(StatusUnseen), nil
	}
	return string(s), nil
}

// swagger:model ProgressRecord
// ProgressRecord is the current mastery state of one user on one case. It is a
// projection of the attempt history.
type ProgressRecord struct {
	BaseModel

	UserID        uint           `gorm:"uniqueIndex:idx_progress_user_case;not null" json:"userId"`
	CaseID        uint           `gorm:"uniqueIndex:idx_progress_user_case;not null" json:"caseId"`
	Status        ProgressStatus `gorm:"type:varchar(32);not null;default:'UNSEEN'" json:"status"`
	CorrectCount  int            `gorm:"not null;default:0" json:"correctCount"`
	WrongCount    int            `gorm:"not null;default:0" json:"wrongCount"`
	LastAttemptID *string        `gorm:"type:varchar(36)" json:"lastAttemptId,omitempty"`
	LastScore     *float64       `json:"lastScore,omitempty"`
	LastAttemptAt *time.Time     `json:"lastAttemptAt,omitempty"`
}

func (ProgressRecord) TableName() string {
	return "progress_records"
}

// Apply records one attempt: the status transitions, exactly one counter is incremented
// and the last-attempt fields are overwritten.
func (p *ProgressRecord) Apply(attempt *AttemptResult) {
	p.Status = p.Status.Next(attempt.IsCorrect)
	if attempt.IsCorrect {
		p.CorrectCount++
	} else {
		p.WrongCount++
	}
	id := attempt.ID
	score := attempt.FinalScore
	at := attempt.SubmittedAt
	p.LastAttemptID = &id
	p.LastScore = &score
	p.LastAttemptAt = &at
}
