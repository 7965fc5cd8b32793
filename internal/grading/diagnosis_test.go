package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGradeDiagnoses(t *testing.T) {
	opts := []DiagnosisOption{
		{ID: 1, Name: "Invasive ductal carcinoma", Weight: 0.1},
		{ID: 2, Name: "DCIS", Weight: 0.2},
		{ID: 3, Name: "Fibroadenoma", Weight: 0.3},
	}

	t.Run("none selected", func(t *testing.T) {
		res := GradeDiagnoses(opts, nil)
		assert.Equal(t, 0.0, res.Score)
		assert.Equal(t, []string{"Invasive ductal carcinoma", "DCIS", "Fibroadenoma"}, res.CorrectDiagnoses)
	})

	t.Run("all selected in any order", func(t *testing.T) {
		res := GradeDiagnoses(opts, []uint{3, 1, 2, 2})
		assert.Equal(t, 100.0, res.Score)
		assert.Equal(t, 0, res.InvalidCount)
	})

	t.Run("proportional", func(t *testing.T) {
		res := GradeDiagnoses(opts, []uint{2})
		assert.Equal(t, res.SelectedWeight/res.TotalWeight*100, res.Score)
		assert.InDelta(t, 100.0/3.0, res.Score, 1e-9)
	})

	t.Run("unknown ids count as invalid", func(t *testing.T) {
		res := GradeDiagnoses(opts, []uint{3, 42, 43})
		assert.Equal(t, 2, res.InvalidCount)
		assert.InDelta(t, 50.0, res.Score, 1e-9)
	})
}

func TestGradeDiagnoses_Degenerate(t *testing.T) {
	res := GradeDiagnoses(nil, []uint{1})
	assert.Equal(t, 0.0, res.Score)
	assert.Empty(t, res.CorrectDiagnoses)
	assert.Equal(t, 1, res.InvalidCount)

	res = GradeDiagnoses([]DiagnosisOption{{ID: 1, Name: "x", Weight: 0}}, []uint{1})
	assert.Equal(t, 0.0, res.Score)
	assert.Empty(t, res.CorrectDiagnoses)
}

func TestCaseSnapshotValidate_DiagnosisWeights(t *testing.T) {
	base := CaseSnapshot{Lesion: Circle{CX: 0.5, CY: 0.5, R: 0.1}}

	tests := []struct {
		name      string
		diagnoses []DiagnosisOption
		wantErr   bool
	}{
		{"no diagnoses", nil, false},
		{"positive weights", []DiagnosisOption{{ID: 1, Weight: 0.5}, {ID: 2, Weight: 2}}, false},
		{"zero weight", []DiagnosisOption{{ID: 7, Name: "D", Weight: 0}}, true},
		{"one zero among positive", []DiagnosisOption{{ID: 1, Weight: 1}, {ID: 2, Weight: 0}}, true},
		{"negative weight", []DiagnosisOption{{ID: 1, Weight: -0.5}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := base
			snap.Diagnoses = tt.diagnoses
			err := snap.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCase)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEvaluate_ZeroWeightDiagnosisRejected(t *testing.T) {
	snap := CaseSnapshot{
		Lesion:    Circle{CX: 0.5, CY: 0.5, R: 0.1},
		Findings:  []FindingOption{{ID: 1, Label: "Mass", Required: true}},
		Diagnoses: []DiagnosisOption{{ID: 7, Name: "D", Weight: 0}},
	}
	_, err := Evaluate(snap, Submission{FindingIDs: []uint{1}, DiagnosisIDs: []uint{7}, ClickX: 0.5, ClickY: 0.5})
	assert.ErrorIs(t, err, ErrInvalidCase)
}
