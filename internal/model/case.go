package model

import "gorm.io/datatypes"

// swagger:model Case
// Case is owned by the catalog. Version is bumped by the catalog on any change that
// affects grading.
type Case struct {
	BaseModel

	Title          string          `gorm:"size:255;not null" json:"title"`
	Description    string          `gorm:"type:text" json:"description"`
	ImageURL       string          `gorm:"size:255" json:"imageUrl"`
	Version        uint            `gorm:"not null;default:1" json:"version"`
	LesionGeometry datatypes.JSON  `json:"lesionGeometry"`
	Findings       []CaseFinding   `gorm:"foreignKey:CaseID" json:"findings,omitempty"`
	Diagnoses      []CaseDiagnosis `gorm:"foreignKey:CaseID" json:"diagnoses,omitempty"`
}

func (Case) TableName() string {
	return "cases"
}

// swagger:model CaseFinding
type CaseFinding struct {
	BaseModel

	CaseID   uint   `gorm:"index;not null" json:"caseId"`
	Label    string `gorm:"size:255;not null" json:"label"`
	Required bool   `gorm:"default:false" json:"required"`
}

func (CaseFinding) TableName() string {
	return "case_findings"
}

// swagger:model CaseDiagnosis
type CaseDiagnosis struct {
	BaseModel

	CaseID uint    `gorm:"index;not null" json:"caseId"`
	Name   string  `gorm:"size:255;not null" json:"name"`
	Weight float64 `gorm:"not null;default:1" json:"weight"`
}

func (CaseDiagnosis) TableName() string {
	return "case_diagnoses"
}
