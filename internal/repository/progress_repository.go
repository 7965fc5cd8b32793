package repository

import (
	"casegrader/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) WithTx(tx *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: tx}
}

// LockForAttempt makes sure the (user, case) row exists and reads it with FOR UPDATE.
// Must run inside a transaction. Inserting first means two concurrent first attempts
// still serialize on the same row instead of racing on the insert.
func (r *ProgressRepository) LockForAttempt(ctx context.Context, userID, caseID uint) (*model.ProgressRecord, error) {
	db := r.DB.WithContext(ctx)

	seed := model.ProgressRecord{UserID: userID, CaseID: caseID, Status: model.StatusUnseen}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return nil, err
	}

	var rec model.ProgressRecord
	err := db.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("user_id = ? AND case_id = ?", userID, caseID).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *ProgressRepository) Save(ctx context.Context, rec *model.ProgressRecord) error {
	return r.DB.WithContext(ctx).Save(rec).Error
}

func (r *ProgressRepository) FindByUserAndCase(ctx context.Context, userID, caseID uint) (*model.ProgressRecord, error) {
	var rec model.ProgressRecord
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND case_id = ?", userID, caseID).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
