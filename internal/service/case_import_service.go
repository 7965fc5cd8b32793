package service

import (
	"casegrader/internal/grading"
	"casegrader/internal/model"
	"casegrader/internal/repository"
	"casegrader/pkg/logger"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CaseFixture is the YAML shape accepted by the import-cases command.
type CaseFixture struct {
	Title       string                 `yaml:"title"`
	Description string                 `yaml:"description"`
	ImageURL    string                 `yaml:"imageUrl"`
	Version     uint                   `yaml:"version"`
	Lesion      map[string]interface{} `yaml:"lesion"`
	Findings    []struct {
		Label    string `yaml:"label"`
		Required bool   `yaml:"required"`
	} `yaml:"findings"`
	Diagnoses []struct {
		Name   string  `yaml:"name"`
		Weight float64 `yaml:"weight"`
	} `yaml:"diagnoses"`
}

type CaseImportService struct {
	CaseRepo *repository.CaseRepository
}

func NewCaseImportService(caseRepo *repository.CaseRepository) *CaseImportService {
	return &CaseImportService{CaseRepo: caseRepo}
}

// ParseCaseFixtures decodes a `cases:` list and checks every case is gradable.
func ParseCaseFixtures(data []byte) ([]*model.Case, error) {
	var doc struct {
		Cases []CaseFixture `yaml:"cases"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	cases := make([]*model.Case, 0, len(doc.Cases))
	for i, f := range doc.Cases {
		c, err := f.toModel()
		if err != nil {
			return nil, fmt.Errorf("case %d (%s): %w", i, f.Title, err)
		}
		cases = append(cases, c)
	}
	return cases, nil
}

func (f CaseFixture) toModel() (*model.Case, error) {
	if f.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	raw, err := json.Marshal(f.Lesion)
	if err != nil {
		return nil, err
	}
	lesion, err := grading.ParseGeometry(raw)
	if err != nil {
		return nil, err
	}
	// stored in canonical form
	geometry, err := grading.MarshalGeometry(lesion)
	if err != nil {
		return nil, err
	}

	c := &model.Case{
		Title:          f.Title,
		Description:    f.Description,
		ImageURL:       f.ImageURL,
		Version:        f.Version,
		LesionGeometry: datatypes.JSON(geometry),
	}
	if c.Version == 0 {
		c.Version = 1
	}
	for _, fd := range f.Findings {
		c.Findings = append(c.Findings, model.CaseFinding{Label: fd.Label, Required: fd.Required})
	}
	for _, d := range f.Diagnoses {
		c.Diagnoses = append(c.Diagnoses, model.CaseDiagnosis{Name: d.Name, Weight: d.Weight})
	}

	snap, err := Snapshot(c)
	if err != nil {
		return nil, err
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ImportFile inserts every case in path. Nothing is inserted when any case is invalid.
func (s *CaseImportService) ImportFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	cases, err := ParseCaseFixtures(data)
	if err != nil {
		return 0, err
	}

	err = s.CaseRepo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.CaseRepo.WithTx(tx)
		for _, c := range cases {
			if err := repo.Create(ctx, c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, c := range cases {
		logger.Log.Info("Case imported", zap.Uint("caseId", c.ID), zap.String("title", c.Title), zap.Uint("version", c.Version))
	}
	return len(cases), nil
}
