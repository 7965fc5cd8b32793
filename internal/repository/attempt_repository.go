package repository

import (
	"casegrader/internal/model"
	"context"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) WithTx(tx *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: tx}
}

func (r *AttemptRepository) Create(ctx context.Context, attempt *model.AttemptResult) error {
	return r.DB.WithContext(ctx).Create(attempt).Error
}

func (r *AttemptRepository) FindByID(ctx context.Context, id string) (*model.AttemptResult, error) {
	var a model.AttemptResult
	if err := r.DB.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AttemptRepository) CountByUserAndCase(ctx context.Context, userID, caseID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.AttemptResult{}).
		Where("user_id = ? AND case_id = ?", userID, caseID).
		Count(&count).Error
	return count, err
}
