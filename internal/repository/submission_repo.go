package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-grader-api/internal/models"
)

// SubmissionRepository provides persistence helpers for submissions and
// their grading units.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	AddUnit(ctx context.Context, unit *models.GradingUnit) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository builds a gorm-backed submission repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).Preload("Units").First(&submission, id).Error
	return submission, err
}

func (r *submissionRepository) AddUnit(ctx context.Context, unit *models.GradingUnit) error {
	return r.db.WithContext(ctx).Create(unit).Error
}
