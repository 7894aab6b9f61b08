package service

import (
	"context"
	"errors"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-grader-api/internal/dto"
	"github.com/noah-isme/gema-grader-api/internal/fingerprint"
	"github.com/noah-isme/gema-grader-api/internal/models"
	"github.com/noah-isme/gema-grader-api/internal/repository"
)

// ErrSubmissionNotFound indicates the submission cannot be located.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrUnsupportedArtifactType indicates an uploaded artifact is not text.
var ErrUnsupportedArtifactType = errors.New("unsupported artifact content type")

// SubmissionService materializes submissions and their grading units from
// already-extracted artifacts. Document parsing happens upstream; the grader
// only sees extracted content.
type SubmissionService interface {
	Create(ctx context.Context, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error)
	Get(ctx context.Context, id uint) (dto.SubmissionResponse, error)
	AttachArtifact(ctx context.Context, submissionID uint, taskRef, filename string, data []byte) (dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	tasks       repository.TaskRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
}

// NewSubmissionService constructs the submission service.
func NewSubmissionService(submissions repository.SubmissionRepository, tasks repository.TaskRepository, validate *validator.Validate, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: submissions,
		tasks:       tasks,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "submission_service").Logger(),
	}
}

func (s *submissionService) Create(ctx context.Context, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission := models.Submission{
		AssignmentRef: strings.TrimSpace(payload.AssignmentRef),
		StudentRef:    strings.TrimSpace(payload.StudentRef),
		Status:        models.SubmissionStatusPending,
	}

	for _, artifact := range payload.Artifacts {
		task, err := s.tasks.GetByExternalRef(ctx, artifact.TaskRef)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.SubmissionResponse{}, ErrTaskNotFound
			}
			return dto.SubmissionResponse{}, err
		}
		submission.Units = append(submission.Units, s.buildUnit(task, artifact.Content))
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Str("assignment_ref", submission.AssignmentRef).
		Int("units", len(submission.Units)).
		Msg("submission registered")
	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) Get(ctx context.Context, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

// AttachArtifact ingests one extracted artifact uploaded as a file. Only
// text payloads are accepted; binary documents must go through extraction
// upstream.
func (s *submissionService) AttachArtifact(ctx context.Context, submissionID uint, taskRef, filename string, data []byte) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "text/") {
		s.logger.Warn().
			Uint("submission_id", submissionID).
			Str("filename", filename).
			Str("mime", mime.String()).
			Msg("rejected non-text artifact upload")
		return dto.SubmissionResponse{}, ErrUnsupportedArtifactType
	}

	task, err := s.tasks.GetByExternalRef(ctx, taskRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrTaskNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	unit := s.buildUnit(task, string(data))
	unit.SubmissionID = submission.ID
	if err := s.submissions.AddUnit(ctx, &unit); err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission.Units = append(submission.Units, unit)
	return dto.NewSubmissionResponse(submission), nil
}

// buildUnit snapshots the task definition into the unit and fingerprints
// the sanitized response. Fingerprints are computed from the full content
// exactly once, before any grading takes place.
func (s *submissionService) buildUnit(task models.Task, content string) models.GradingUnit {
	sanitized := s.sanitizer.Sanitize(content)

	return models.GradingUnit{
		UID:                  uuid.NewString(),
		TaskID:               task.ID,
		TaskType:             task.Type,
		ReferenceContent:     task.ReferenceContent,
		TemplateContent:      task.TemplateContent,
		ResponseContent:      sanitized,
		ReferenceFingerprint: task.ReferenceFingerprint,
		TemplateFingerprint:  task.TemplateFingerprint,
		ResponseFingerprint:  fingerprint.Content(sanitized),
		Status:               models.UnitStatusPending,
	}
}
