package grading

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidSubmission = errors.New("invalid submission")
	ErrInvalidCase       = errors.New("invalid case definition")
)

type FindingOption struct {
	ID       uint
	Label    string
	Required bool
}

type DiagnosisOption struct {
	ID     uint
	Name   string
	Weight float64
}

// CaseSnapshot is the read-only case definition an attempt is graded against.
type CaseSnapshot struct {
	ID        uint
	Version   uint
	Lesion    Geometry
	Findings  []FindingOption
	Diagnoses []DiagnosisOption
}

type Submission struct {
	CaseID       uint
	CaseVersion  uint
	FindingIDs   []uint
	DiagnosisIDs []uint
	ClickX       float64
	ClickY       float64
}

// Validate rejects case definitions that cannot be scored.
func (s CaseSnapshot) Validate() error {
	if err := ValidateGeometry(s.Lesion); err != nil {
		return err
	}
	// An empty diagnosis list is allowed and scores 0; a listed diagnosis must carry weight.
	var total float64
	for _, d := range s.Diagnoses {
		if !finite(d.Weight) || d.Weight <= 0 {
			return fmt.Errorf("%w: diagnosis %d has weight %v", ErrInvalidCase, d.ID, d.Weight)
		}
		total += d.Weight
	}
	if len(s.Diagnoses) > 0 && (total <= 0 || math.IsInf(total, 0)) {
		return fmt.Errorf("%w: diagnosis weights sum to %v", ErrInvalidCase, total)
	}
	return nil
}

func validateClick(x, y float64) error {
	if math.IsNaN(x) || math.IsNaN(y) || !unit(x) || !unit(y) {
		return fmt.Errorf("%w: click (%v, %v) outside [0,1]", ErrInvalidSubmission, x, y)
	}
	return nil
}
