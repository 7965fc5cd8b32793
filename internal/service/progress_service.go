package service

import (
	"casegrader/internal/model"
	"casegrader/internal/repository"
	"casegrader/internal/util"
	"casegrader/pkg/logger"
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProgressService answers "current learner state" reads. Writes only happen in
// EvaluationService.Submit.
type ProgressService struct {
	CaseRepo     *repository.CaseRepository
	AttemptRepo  *repository.AttemptRepository
	ProgressRepo *repository.ProgressRepository
	Cache        *repository.ProgressCache
}

func NewProgressService(
	caseRepo *repository.CaseRepository,
	attemptRepo *repository.AttemptRepository,
	progressRepo *repository.ProgressRepository,
	cache *repository.ProgressCache,
) *ProgressService {
	return &ProgressService{
		CaseRepo:     caseRepo,
		AttemptRepo:  attemptRepo,
		ProgressRepo: progressRepo,
		Cache:        cache,
	}
}

// GetProgress never creates a row; a learner who has not attempted the case gets an
// UNSEEN record with zero counters.
func (s *ProgressService) GetProgress(ctx context.Context, userID, caseID uint) (*model.ProgressRecord, error) {
	if rec, ok, err := s.Cache.Get(ctx, userID, caseID); err != nil {
		logger.Log.Warn("Progress cache read failed", zap.Uint("userId", userID), zap.Uint("caseId", caseID), zap.Error(err))
	} else if ok {
		return rec, nil
	}

	rec, err := s.ProgressRepo.FindByUserAndCase(ctx, userID, caseID)
	if err == nil {
		if _, err := s.Cache.Set(ctx, rec); err != nil {
			logger.Log.Warn("Failed to cache progress", zap.Uint("userId", userID), zap.Uint("caseId", caseID), zap.Error(err))
		}
		return rec, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if _, err := s.CaseRepo.FindByID(ctx, caseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCaseNotFound
		}
		return nil, err
	}
	return &model.ProgressRecord{UserID: userID, CaseID: caseID, Status: model.StatusUnseen}, nil
}

// GetAttempt only returns attempts owned by userID.
func (s *ProgressService) GetAttempt(ctx context.Context, userID uint, attemptID string) (*model.AttemptResult, error) {
	a, err := s.AttemptRepo.FindByID(ctx, attemptID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrAttemptNotFound
	}
	if err != nil {
		return nil, err
	}
	if a.UserID != userID {
		return nil, util.ErrAttemptNotFound
	}
	return a, nil
}
