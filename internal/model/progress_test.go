package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func replay(outcomes ...bool) ProgressStatus {
	s := StatusUnseen
	for _, ok := range outcomes {
		s = s.Next(ok)
	}
	return s
}

func TestProgressStatus_Next(t *testing.T) {
	tests := []struct {
		prior ProgressStatus
		ok    bool
		want  ProgressStatus
	}{
		{StatusUnseen, true, StatusCorrect},
		{StatusUnseen, false, StatusWrong},
		{"", true, StatusCorrect},
		{"", false, StatusWrong},
		{StatusCorrect, true, StatusCorrect},
		{StatusCorrect, false, StatusWrong},
		{StatusWrong, true, StatusReattemptCorrect},
		{StatusWrong, false, StatusWrong},
		{StatusReattemptCorrect, true, StatusReattemptCorrect},
		{StatusReattemptCorrect, false, StatusWrong},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.prior.Next(tt.ok), "%q after ok=%v", tt.prior, tt.ok)
	}
}

func TestProgressStatus_Sequences(t *testing.T) {
	assert.Equal(t, StatusReattemptCorrect, replay(false, true))
	assert.Equal(t, StatusWrong, replay(true, false))
	assert.Equal(t, StatusWrong, replay(false, false))
	assert.Equal(t, StatusCorrect, replay(true))
	assert.Equal(t, StatusCorrect, replay(true, true))
	assert.Equal(t, StatusReattemptCorrect, replay(true, false, true, true))
	assert.Equal(t, StatusUnseen, replay())
}

func TestParseProgressStatus(t *testing.T) {
	for in, want := range map[string]ProgressStatus{
		"":                  StatusUnseen,
		"UNSEEN":            StatusUnseen,
		"UNATTEMPTED":       StatusUnseen,
		"unattempted":       StatusUnseen,
		"CORRECT":           StatusCorrect,
		" wrong ":           StatusWrong,
		"REATTEMPT_CORRECT": StatusReattemptCorrect,
	} {
		got, err := ParseProgressStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseProgressStatus("MASTERED")
	assert.Error(t, err)
}

func TestProgressStatus_ScanNormalizesLegacy(t *testing.T) {
	var s ProgressStatus
	require.NoError(t, s.Scan([]byte("UNATTEMPTED")))
	assert.Equal(t, StatusUnseen, s)

	require.NoError(t, s.Scan("WRONG"))
	assert.Equal(t, StatusWrong, s)

	require.NoError(t, s.Scan(nil))
	assert.Equal(t, StatusUnseen, s)

	assert.Error(t, s.Scan(42))

	v, err := ProgressStatus("").Value()
	require.NoError(t, err)
	assert.Equal(t, "UNSEEN", v)
}

func TestProgressRecord_Apply(t *testing.T) {
	p := &ProgressRecord{UserID: 1, CaseID: 2, Status: StatusUnseen}
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	p.Apply(&AttemptResult{ID: "a1", FinalScore: 40, IsCorrect: false, SubmittedAt: at})
	assert.Equal(t, StatusWrong, p.Status)
	assert.Equal(t, 0, p.CorrectCount)
	assert.Equal(t, 1, p.WrongCount)

	later := at.Add(time.Minute)
	p.Apply(&AttemptResult{ID: "a2", FinalScore: 85, IsCorrect: true, SubmittedAt: later})
	assert.Equal(t, StatusReattemptCorrect, p.Status)
	assert.Equal(t, 1, p.CorrectCount)
	assert.Equal(t, 1, p.WrongCount)
	require.NotNil(t, p.LastAttemptID)
	assert.Equal(t, "a2", *p.LastAttemptID)
	assert.Equal(t, 85.0, *p.LastScore)
	assert.True(t, later.Equal(*p.LastAttemptAt))
}
