package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-grader-api/internal/dto"
	"github.com/noah-isme/gema-grader-api/internal/fingerprint"
	"github.com/noah-isme/gema-grader-api/internal/models"
	"github.com/noah-isme/gema-grader-api/internal/repository"
)

// ErrTaskNotFound indicates the task definition cannot be located.
var ErrTaskNotFound = errors.New("task not found")

// TaskService manages task definitions: the reference answer and blank
// template each grading unit is assessed against.
type TaskService interface {
	Create(ctx context.Context, payload dto.TaskCreateRequest) (dto.TaskResponse, error)
	Get(ctx context.Context, externalRef string) (dto.TaskResponse, error)
}

type taskService struct {
	tasks     repository.TaskRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewTaskService constructs the task service.
func NewTaskService(tasks repository.TaskRepository, validate *validator.Validate, logger zerolog.Logger) TaskService {
	return &taskService{
		tasks:     tasks,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "task_service").Logger(),
	}
}

func (s *taskService) Create(ctx context.Context, payload dto.TaskCreateRequest) (dto.TaskResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TaskResponse{}, err
	}

	// Reference and template are sanitized with the same policy applied to
	// student responses at ingest, so the not-attempted equality check
	// compares like with like.
	reference := s.sanitizer.Sanitize(payload.ReferenceContent)
	template := s.sanitizer.Sanitize(payload.TemplateContent)

	task := models.Task{
		ExternalRef:          strings.TrimSpace(payload.ExternalRef),
		Type:                 payload.Type,
		ReferenceContent:     reference,
		TemplateContent:      template,
		ReferenceFingerprint: fingerprint.Content(reference),
		TemplateFingerprint:  fingerprint.Content(template),
	}

	if err := s.tasks.Create(ctx, &task); err != nil {
		return dto.TaskResponse{}, err
	}

	s.logger.Info().Str("external_ref", task.ExternalRef).Str("type", task.Type).Msg("task registered")
	return dto.NewTaskResponse(task), nil
}

func (s *taskService) Get(ctx context.Context, externalRef string) (dto.TaskResponse, error) {
	task, err := s.tasks.GetByExternalRef(ctx, externalRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TaskResponse{}, ErrTaskNotFound
		}
		return dto.TaskResponse{}, err
	}

	return dto.NewTaskResponse(task), nil
}
