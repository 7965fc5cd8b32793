package service

import (
	"casegrader/internal/grading"
	"casegrader/internal/model"
	"casegrader/internal/repository"
	"casegrader/internal/util"
	"casegrader/pkg/logger"
	"casegrader/pkg/monitoring"
	"casegrader/pkg/tracing"
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EvaluationService struct {
	DB           *gorm.DB
	CaseRepo     *repository.CaseRepository
	AttemptRepo  *repository.AttemptRepository
	ProgressRepo *repository.ProgressRepository
	Cache        *repository.ProgressCache

	// Now is overridable in tests.
	Now func() time.Time
}

func NewEvaluationService(
	db *gorm.DB,
	caseRepo *repository.CaseRepository,
	attemptRepo *repository.AttemptRepository,
	progressRepo *repository.ProgressRepository,
	cache *repository.ProgressCache,
) *EvaluationService {
	return &EvaluationService{
		DB:           db,
		CaseRepo:     caseRepo,
		AttemptRepo:  attemptRepo,
		ProgressRepo: progressRepo,
		Cache:        cache,
		Now:          time.Now,
	}
}

type SubmitAttemptRequest struct {
	CaseID       uint     `json:"caseId" binding:"required"`
	CaseVersion  *uint    `json:"caseVersion" binding:"required"`
	FindingIDs   []uint   `json:"findingIds" binding:"required"`
	DiagnosisIDs []uint   `json:"diagnosisIds" binding:"required"`
	ClickX       *float64 `json:"clickX" binding:"required,min=0,max=1"`
	ClickY       *float64 `json:"clickY" binding:"required,min=0,max=1"`
}

func (r SubmitAttemptRequest) Submission() grading.Submission {
	sub := grading.Submission{
		CaseID:       r.CaseID,
		FindingIDs:   r.FindingIDs,
		DiagnosisIDs: r.DiagnosisIDs,
	}
	if r.CaseVersion != nil {
		sub.CaseVersion = *r.CaseVersion
	}
	if r.ClickX != nil {
		sub.ClickX = *r.ClickX
	}
	if r.ClickY != nil {
		sub.ClickY = *r.ClickY
	}
	return sub
}

type AttemptResponse struct {
	AttemptID        string   `json:"attemptId"`
	CaseID           uint     `json:"caseId"`
	CaseVersion      uint     `json:"caseVersion"`
	FindingsScore    float64  `json:"findingsScore"`
	LocationScore    float64  `json:"locationScore"`
	DiagnosisScore   float64  `json:"diagnosisScore"`
	FinalScore       float64  `json:"finalScore"`
	Explanation      string   `json:"explanation"`
	LocationGrade    string   `json:"locationGrade"`
	CorrectFindings  []string `json:"correctFindings"`
	CorrectDiagnoses []string `json:"correctDiagnoses"`
	IsCorrect        bool     `json:"isCorrect"`
	ProgressStatus   string   `json:"progressStatus"`
}

type EvaluationResult struct {
	Attempt     *model.AttemptResult
	Progress    *model.ProgressRecord
	PriorStatus model.ProgressStatus
	Evaluation  grading.Evaluation
}

func (r *EvaluationResult) Response() AttemptResponse {
	return AttemptResponse{
		AttemptID:        r.Attempt.ID,
		CaseID:           r.Attempt.CaseID,
		CaseVersion:      r.Attempt.CaseVersion,
		FindingsScore:    r.Attempt.FindingsScore,
		LocationScore:    r.Attempt.LocationScore,
		DiagnosisScore:   r.Attempt.DiagnosisScore,
		FinalScore:       r.Attempt.FinalScore,
		Explanation:      r.Attempt.Explanation,
		LocationGrade:    r.Attempt.LocationGrade,
		CorrectFindings:  r.Evaluation.Findings.CorrectFindings,
		CorrectDiagnoses: r.Evaluation.Diagnosis.CorrectDiagnoses,
		IsCorrect:        r.Attempt.IsCorrect,
		ProgressStatus:   string(r.Progress.Status),
	}
}

// Snapshot converts a catalog row into the immutable value graded against.
func Snapshot(c *model.Case) (grading.CaseSnapshot, error) {
	lesion, err := grading.ParseGeometry(c.LesionGeometry)
	if err != nil {
		return grading.CaseSnapshot{}, err
	}
	snap := grading.CaseSnapshot{
		ID:        c.ID,
		Version:   c.Version,
		Lesion:    lesion,
		Findings:  make([]grading.FindingOption, 0, len(c.Findings)),
		Diagnoses: make([]grading.DiagnosisOption, 0, len(c.Diagnoses)),
	}
	for _, f := range c.Findings {
		snap.Findings = append(snap.Findings, grading.FindingOption{ID: f.ID, Label: f.Label, Required: f.Required})
	}
	for _, d := range c.Diagnoses {
		snap.Diagnoses = append(snap.Diagnoses, grading.DiagnosisOption{ID: d.ID, Name: d.Name, Weight: d.Weight})
	}
	return snap, nil
}

// Submit grades one attempt and advances the learner's progress. The version check,
// grading, attempt insert and progress update share one transaction; any error leaves
// no trace in the database.
func (s *EvaluationService) Submit(ctx context.Context, userID uint, sub grading.Submission) (*EvaluationResult, error) {
	ctx, span := tracing.Tracer.Start(ctx, "EvaluationService.Submit")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("case.id", int64(sub.CaseID)),
		attribute.Int64("case.version", int64(sub.CaseVersion)),
	)

	var result *EvaluationResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := s.CaseRepo.WithTx(tx).FindForGrading(ctx, sub.CaseID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrCaseNotFound
		}
		if err != nil {
			return err
		}
		if c.Version != sub.CaseVersion {
			return fmt.Errorf("%w: submitted %d, current %d", util.ErrVersionConflict, sub.CaseVersion, c.Version)
		}

		snap, err := Snapshot(c)
		if err != nil {
			return invalidInput(err)
		}
		ev, err := grading.Evaluate(snap, sub)
		if err != nil {
			return invalidInput(err)
		}

		now := s.Now()
		attempt := &model.AttemptResult{
			UserID:         userID,
			CaseID:         c.ID,
			CaseVersion:    c.Version,
			SubmittedAt:    now,
			FindingsScore:  ev.Findings.Score,
			LocationScore:  ev.Location.Score,
			DiagnosisScore: ev.Diagnosis.Score,
			FinalScore:     ev.FinalScore,
			LocationGrade:  string(ev.Location.Grade),
			IsCorrect:      ev.IsCorrect,
			Explanation:    ev.Explanation,
			ClickX:         sub.ClickX,
			ClickY:         sub.ClickY,
			FindingIDs:     datatypes.JSONSlice[uint](uniqueIDs(sub.FindingIDs)),
			DiagnosisIDs:   datatypes.JSONSlice[uint](uniqueIDs(sub.DiagnosisIDs)),
		}
		if err := s.AttemptRepo.WithTx(tx).Create(ctx, attempt); err != nil {
			return err
		}

		progressRepo := s.ProgressRepo.WithTx(tx)
		progress, err := progressRepo.LockForAttempt(ctx, userID, c.ID)
		if err != nil {
			return err
		}
		prior := progress.Status
		progress.Apply(attempt)
		if err := progressRepo.Save(ctx, progress); err != nil {
			return err
		}

		result = &EvaluationResult{Attempt: attempt, Progress: progress, PriorStatus: prior, Evaluation: ev}
		return nil
	})
	if err != nil {
		s.reject(userID, sub, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	logger.Log.Info("Attempt graded",
		zap.Uint("userId", userID),
		zap.Uint("caseId", result.Attempt.CaseID),
		zap.Uint("caseVersion", result.Attempt.CaseVersion),
		zap.String("attemptId", result.Attempt.ID),
		zap.String("locationGrade", result.Attempt.LocationGrade),
		zap.Float64("finalScore", result.Attempt.FinalScore),
		zap.String("priorStatus", string(result.PriorStatus)),
		zap.String("status", string(result.Progress.Status)),
		zap.Int("invalidFindings", result.Evaluation.Findings.InvalidCount),
		zap.Int("invalidDiagnoses", result.Evaluation.Diagnosis.InvalidCount),
	)
	monitoring.ObserveAttempt(result.Attempt.LocationGrade, result.Attempt.IsCorrect, result.Attempt.FinalScore)
	// A concurrent submit may already have cached a later record; Set keeps whichever
	// has seen more attempts.
	if _, err := s.Cache.Set(ctx, result.Progress); err != nil {
		logger.Log.Warn("Failed to cache progress", zap.Uint("userId", userID), zap.Uint("caseId", sub.CaseID), zap.Error(err))
		if err := s.Cache.Invalidate(ctx, userID, sub.CaseID); err != nil {
			logger.Log.Warn("Failed to invalidate cached progress", zap.Uint("userId", userID), zap.Uint("caseId", sub.CaseID), zap.Error(err))
		}
	}
	span.SetAttributes(
		attribute.String("attempt.grade", result.Attempt.LocationGrade),
		attribute.Float64("attempt.final_score", result.Attempt.FinalScore),
	)
	return result, nil
}

func (s *EvaluationService) reject(userID uint, sub grading.Submission, err error) {
	reason := "internal"
	switch {
	case errors.Is(err, util.ErrCaseNotFound):
		reason = "case_not_found"
	case errors.Is(err, util.ErrVersionConflict):
		reason = "version_conflict"
	case errors.Is(err, util.ErrInvalidInput):
		reason = "invalid_input"
	}
	monitoring.ObserveRejected(reason)

	fields := []zap.Field{
		zap.Uint("userId", userID),
		zap.Uint("caseId", sub.CaseID),
		zap.Uint("caseVersion", sub.CaseVersion),
		zap.String("reason", reason),
		zap.Error(err),
	}
	if reason == "internal" || reason == "invalid_input" {
		// invalid_input here usually means a broken catalog entry
		logger.Log.Warn("Attempt rejected", fields...)
		return
	}
	logger.Log.Debug("Attempt rejected", fields...)
}

func invalidInput(err error) error {
	return fmt.Errorf("%w: %w", util.ErrInvalidInput, err)
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
