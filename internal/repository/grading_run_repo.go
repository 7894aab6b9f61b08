package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-grader-api/internal/models"
)

// GradingRunRepository persists run reports.
type GradingRunRepository interface {
	Create(ctx context.Context, run *models.GradingRun) error
	GetByUID(ctx context.Context, uid string) (models.GradingRun, error)
}

type gradingRunRepository struct {
	db *gorm.DB
}

// NewGradingRunRepository builds a gorm-backed run report repository.
func NewGradingRunRepository(db *gorm.DB) GradingRunRepository {
	return &gradingRunRepository{db: db}
}

func (r *gradingRunRepository) Create(ctx context.Context, run *models.GradingRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *gradingRunRepository) GetByUID(ctx context.Context, uid string) (models.GradingRun, error) {
	var run models.GradingRun
	err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&run).Error
	return run, err
}
