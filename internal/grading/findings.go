package grading

import "math"

const wrongFindingPenalty = 0.5

type FindingsResult struct {
	Score           float64
	CorrectCount    int
	WrongCount      int
	InvalidCount    int
	RequiredCount   int
	CorrectFindings []string
}

// GradeFindings awards the share of required findings selected and deducts half the share
// of selections that are not required. A case without required findings always scores 0.
func GradeFindings(options []FindingOption, selected []uint) FindingsResult {
	required := make(map[uint]struct{})
	all := make(map[uint]struct{}, len(options))
	var res FindingsResult
	for _, f := range options {
		all[f.ID] = struct{}{}
		if f.Required {
			if _, dup := required[f.ID]; !dup {
				res.CorrectFindings = append(res.CorrectFindings, f.Label)
			}
			required[f.ID] = struct{}{}
		}
	}
	res.RequiredCount = len(required)

	sel := toSet(selected)
	for id := range sel {
		if _, ok := required[id]; ok {
			res.CorrectCount++
		} else {
			res.WrongCount++
		}
		if _, ok := all[id]; !ok {
			res.InvalidCount++
		}
	}

	var correctRate, wrongRate float64
	if res.RequiredCount > 0 {
		correctRate = float64(res.CorrectCount) / float64(res.RequiredCount)
	}
	if len(sel) > 0 {
		wrongRate = float64(res.WrongCount) / float64(len(sel))
	}
	res.Score = math.Max(0, correctRate-wrongFindingPenalty*wrongRate) * 100
	if res.CorrectFindings == nil {
		res.CorrectFindings = []string{}
	}
	return res
}

func toSet(ids []uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
