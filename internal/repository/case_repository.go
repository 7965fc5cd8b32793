package repository

import (
	"casegrader/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CaseRepository is the read side of the case catalog plus the fixture import used by
// the import-cases command.
type CaseRepository struct {
	DB *gorm.DB
}

func NewCaseRepository(db *gorm.DB) *CaseRepository {
	return &CaseRepository{DB: db}
}

func (r *CaseRepository) WithTx(tx *gorm.DB) *CaseRepository {
	return &CaseRepository{DB: tx}
}

// FindForGrading loads a case with its options under a shared lock so the version
// cannot change while an attempt is graded in the same transaction.
func (r *CaseRepository) FindForGrading(ctx context.Context, id uint) (*model.Case, error) {
	var c model.Case
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthShare}).
		First(&c, id).Error
	if err != nil {
		return nil, err
	}

	if err := r.DB.WithContext(ctx).Where("case_id = ?", id).Order("id").Find(&c.Findings).Error; err != nil {
		return nil, err
	}
	if err := r.DB.WithContext(ctx).Where("case_id = ?", id).Order("id").Find(&c.Diagnoses).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CaseRepository) FindByID(ctx context.Context, id uint) (*model.Case, error) {
	var c model.Case
	err := r.DB.WithContext(ctx).
		Preload("Findings", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Diagnoses", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&c, id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a case together with its findings and diagnoses.
func (r *CaseRepository) Create(ctx context.Context, c *model.Case) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(c).Error
	})
}
