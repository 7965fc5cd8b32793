package grading

import (
	"fmt"
	"strings"
)

// CorrectThreshold is the final score at or above which an attempt counts as correct.
const CorrectThreshold = 70.0

const (
	findingsWeight  = 0.3
	locationWeight  = 0.3
	diagnosisWeight = 0.4
)

// ComposeScore weights diagnosis highest. The conversions keep each product rounded on
// its own so the result does not depend on FMA availability.
func ComposeScore(findings, location, diagnosis float64) float64 {
	return float64(findingsWeight*findings) + float64(locationWeight*location) + float64(diagnosisWeight*diagnosis)
}

func IsCorrect(finalScore float64) bool {
	return finalScore >= CorrectThreshold
}

type Evaluation struct {
	Location  LocationResult
	Findings  FindingsResult
	Diagnosis DiagnosisResult

	FinalScore  float64
	IsCorrect   bool
	Explanation string
}

// Evaluate grades a submission against a case snapshot. It does not check the case version;
// callers reject stale submissions before grading.
func Evaluate(snap CaseSnapshot, sub Submission) (Evaluation, error) {
	if err := snap.Validate(); err != nil {
		return Evaluation{}, err
	}
	loc, err := GradeLocation(snap.Lesion, sub.ClickX, sub.ClickY)
	if err != nil {
		return Evaluation{}, err
	}
	findings := GradeFindings(snap.Findings, sub.FindingIDs)
	diagnosis := GradeDiagnoses(snap.Diagnoses, sub.DiagnosisIDs)

	final := ComposeScore(findings.Score, loc.Score, diagnosis.Score)
	ev := Evaluation{
		Location:   loc,
		Findings:   findings,
		Diagnosis:  diagnosis,
		FinalScore: final,
		IsCorrect:  IsCorrect(final),
	}
	ev.Explanation = explain(ev)
	return ev, nil
}

func explain(ev Evaluation) string {
	var b strings.Builder
	b.WriteString(ev.Location.Explanation)

	f := ev.Findings
	if f.RequiredCount == 0 {
		b.WriteString(" Findings: this case defines no required findings.")
	} else {
		fmt.Fprintf(&b, " Findings: %d of %d required findings identified", f.CorrectCount, f.RequiredCount)
		if f.WrongCount > 0 {
			fmt.Fprintf(&b, ", %d incorrect selection(s)", f.WrongCount)
		}
		b.WriteString(".")
		if f.CorrectCount < f.RequiredCount {
			fmt.Fprintf(&b, " Required findings: %s.", strings.Join(f.CorrectFindings, ", "))
		}
	}

	d := ev.Diagnosis
	if d.TotalWeight <= 0 {
		b.WriteString(" Diagnosis: this case defines no weighted diagnoses.")
	} else {
		fmt.Fprintf(&b, " Diagnosis: %.0f%% of the diagnostic weight captured.", d.Score)
	}

	verdict := "below"
	if ev.IsCorrect {
		verdict = "at or above"
	}
	fmt.Fprintf(&b, " Final score %.1f is %s the %.0f point threshold.", ev.FinalScore, verdict, CorrectThreshold)
	return b.String()
}
