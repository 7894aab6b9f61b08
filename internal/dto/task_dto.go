package dto

import (
	"time"

	"github.com/noah-isme/gema-grader-api/internal/models"
)

// TaskCreateRequest registers a gradable task with its reference answer and
// blank template.
type TaskCreateRequest struct {
	ExternalRef      string `json:"external_ref" validate:"required,max=128"`
	Type             string `json:"type" validate:"required,oneof=FREE_TEXT TABLE IMAGE_TEXT"`
	ReferenceContent string `json:"reference_content" validate:"required"`
	TemplateContent  string `json:"template_content"`
}

// TaskResponse is the API shape of a task definition.
type TaskResponse struct {
	ID                   uint      `json:"id"`
	ExternalRef          string    `json:"external_ref"`
	Type                 string    `json:"type"`
	ReferenceFingerprint string    `json:"reference_fingerprint"`
	TemplateFingerprint  string    `json:"template_fingerprint"`
	CreatedAt            time.Time `json:"created_at"`
}

// NewTaskResponse maps a task model to its API shape.
func NewTaskResponse(task models.Task) TaskResponse {
	return TaskResponse{
		ID:                   task.ID,
		ExternalRef:          task.ExternalRef,
		Type:                 task.Type,
		ReferenceFingerprint: task.ReferenceFingerprint,
		TemplateFingerprint:  task.TemplateFingerprint,
		CreatedAt:            task.CreatedAt,
	}
}
