package models

import (
	"time"

	"gorm.io/datatypes"
)

// Grading unit statuses.
const (
	// UnitStatusPending indicates the unit has not been through a grading run yet.
	UnitStatusPending = "pending"
	// UnitStatusGraded indicates a fresh backend assessment was written.
	UnitStatusGraded = "graded"
	// UnitStatusNotAttempted indicates the response matched the blank template.
	UnitStatusNotAttempted = "not_attempted"
	// UnitStatusCacheHit indicates the assessment was reused from the cache.
	UnitStatusCacheHit = "cache_hit"
	// UnitStatusFailed indicates a terminal per-unit failure; no assessment was written.
	UnitStatusFailed = "failed"
	// UnitStatusSkipped indicates the unit was excluded from planning.
	UnitStatusSkipped = "skipped"
)

// GradingUnit pairs one task with one student's response awaiting assessment.
// The UID correlates dispatched requests back to their responses for the
// lifetime of a run.
type GradingUnit struct {
	ID                   uint              `gorm:"primaryKey" json:"id"`
	SubmissionID         uint              `gorm:"not null;index" json:"submission_id"`
	TaskID               uint              `gorm:"not null;index" json:"task_id"`
	UID                  string            `gorm:"size:36;uniqueIndex;not null" json:"uid"`
	TaskType             string            `gorm:"size:32;not null" json:"task_type"`
	ReferenceContent     string            `gorm:"type:text" json:"-"`
	TemplateContent      string            `gorm:"type:text" json:"-"`
	ResponseContent      string            `gorm:"type:text" json:"response_content"`
	ReferenceFingerprint string            `gorm:"size:64;index" json:"reference_fingerprint"`
	TemplateFingerprint  string            `gorm:"size:64" json:"template_fingerprint"`
	ResponseFingerprint  string            `gorm:"size:64;index" json:"response_fingerprint"`
	Status               string            `gorm:"size:32;not null" json:"status"`
	Assessments          AssessmentSet     `gorm:"serializer:json" json:"assessments"`
	Feedback             datatypes.JSONMap `json:"feedback"`
	FailureClass         string            `gorm:"size:32" json:"failure_class,omitempty"`
	FailureDetail        string            `gorm:"type:text" json:"-"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// NotAttempted reports whether the response is byte-identical to the task
// template. A student who retypes the template verbatim is indistinguishable
// from a non-attempt; the check is pure content equality.
func (u GradingUnit) NotAttempted() bool {
	return u.ResponseFingerprint == u.TemplateFingerprint
}

// Resolved reports whether the unit carries a final assessment.
func (u GradingUnit) Resolved() bool {
	switch u.Status {
	case UnitStatusGraded, UnitStatusCacheHit, UnitStatusNotAttempted:
		return true
	}
	return false
}
