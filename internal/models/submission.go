package models

import "time"

// Submission represents one student's extracted work for an assignment. It
// owns its grading units for the duration of a run; only the grading
// pipeline's result writer mutates them.
type Submission struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	AssignmentRef string        `gorm:"size:128;index;not null" json:"assignment_ref"`
	StudentRef    string        `gorm:"size:128;index;not null" json:"student_ref"`
	Status        string        `gorm:"size:32;not null" json:"status"`
	Units         []GradingUnit `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"units"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

const (
	// SubmissionStatusPending indicates no grading run has resolved the submission yet.
	SubmissionStatusPending = "pending"
	// SubmissionStatusGraded indicates every unit carries a final assessment.
	SubmissionStatusGraded = "graded"
	// SubmissionStatusPartiallyGraded indicates some units resolved and some did not.
	SubmissionStatusPartiallyGraded = "partially_graded"
)

// IsGraded reports whether every unit of the submission has been resolved.
func (s Submission) IsGraded() bool {
	return s.Status == SubmissionStatusGraded
}
