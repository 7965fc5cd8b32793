package grading

import "math"

type DiagnosisResult struct {
	Score            float64
	SelectedWeight   float64
	TotalWeight      float64
	InvalidCount     int
	CorrectDiagnoses []string
}

// GradeDiagnoses scores the share of the case's diagnostic weight captured by the selection.
// Every diagnosis on the case is reported as correct since credit is proportional.
func GradeDiagnoses(options []DiagnosisOption, selected []uint) DiagnosisResult {
	sel := toSet(selected)
	known := make(map[uint]struct{}, len(options))
	res := DiagnosisResult{CorrectDiagnoses: []string{}}

	// Both sums walk the options in the same order so that selecting everything
	// yields exactly the total.
	var names []string
	for _, d := range options {
		if _, dup := known[d.ID]; dup {
			continue
		}
		known[d.ID] = struct{}{}
		names = append(names, d.Name)
		res.TotalWeight += d.Weight
		if _, ok := sel[d.ID]; ok {
			res.SelectedWeight += d.Weight
		}
	}
	for id := range sel {
		if _, ok := known[id]; !ok {
			res.InvalidCount++
		}
	}

	if res.TotalWeight <= 0 {
		res.SelectedWeight = 0
		return res
	}
	res.CorrectDiagnoses = names
	res.Score = math.Min(100, math.Max(0, res.SelectedWeight/res.TotalWeight*100))
	return res
}
