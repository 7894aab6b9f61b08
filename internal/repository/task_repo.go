package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-grader-api/internal/models"
)

// TaskRepository provides persistence helpers for task definitions.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByExternalRef(ctx context.Context, externalRef string) (models.Task, error)
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository builds a gorm-backed task repository.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *taskRepository) GetByExternalRef(ctx context.Context, externalRef string) (models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).Where("external_ref = ?", externalRef).First(&task).Error
	return task, err
}
