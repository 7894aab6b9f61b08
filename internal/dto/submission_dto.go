package dto

import (
	"time"

	"github.com/noah-isme/gema-grader-api/internal/models"
)

// ArtifactPayload is one extracted artifact keyed to its task.
type ArtifactPayload struct {
	TaskRef string `json:"task_ref" validate:"required"`
	Content string `json:"content"`
}

// SubmissionCreateRequest registers one student's extracted work for an
// assignment. Artifact extraction itself happens upstream; the grader only
// receives the already-extracted content.
type SubmissionCreateRequest struct {
	AssignmentRef string            `json:"assignment_ref" validate:"required,max=128"`
	StudentRef    string            `json:"student_ref" validate:"required,max=128"`
	Artifacts     []ArtifactPayload `json:"artifacts" validate:"dive"`
}

// GradingUnitResponse is the API shape of a grading unit.
type GradingUnitResponse struct {
	UID                 string               `json:"uid"`
	TaskType            string               `json:"task_type"`
	Status              string               `json:"status"`
	ResponseFingerprint string               `json:"response_fingerprint"`
	Assessments         models.AssessmentSet `json:"assessments,omitempty"`
	Feedback            map[string]any       `json:"feedback,omitempty"`
	FailureClass        string               `json:"failure_class,omitempty"`
}

// SubmissionResponse is the API shape of a submission with its units.
type SubmissionResponse struct {
	ID            uint                  `json:"id"`
	AssignmentRef string                `json:"assignment_ref"`
	StudentRef    string                `json:"student_ref"`
	Status        string                `json:"status"`
	Units         []GradingUnitResponse `json:"units"`
	CreatedAt     time.Time             `json:"created_at"`
}

// NewGradingUnitResponse maps a grading unit to its API shape.
func NewGradingUnitResponse(unit models.GradingUnit) GradingUnitResponse {
	return GradingUnitResponse{
		UID:                 unit.UID,
		TaskType:            unit.TaskType,
		Status:              unit.Status,
		ResponseFingerprint: unit.ResponseFingerprint,
		Assessments:         unit.Assessments,
		Feedback:            unit.Feedback,
		FailureClass:        unit.FailureClass,
	}
}

// NewSubmissionResponse maps a submission and its units to the API shape.
func NewSubmissionResponse(submission models.Submission) SubmissionResponse {
	units := make([]GradingUnitResponse, 0, len(submission.Units))
	for _, unit := range submission.Units {
		units = append(units, NewGradingUnitResponse(unit))
	}

	return SubmissionResponse{
		ID:            submission.ID,
		AssignmentRef: submission.AssignmentRef,
		StudentRef:    submission.StudentRef,
		Status:        submission.Status,
		Units:         units,
		CreatedAt:     submission.CreatedAt,
	}
}
