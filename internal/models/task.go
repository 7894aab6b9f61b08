package models

import "time"

// Task types recognised by the assessor backend.
const (
	TaskTypeFreeText  = "FREE_TEXT"
	TaskTypeTable     = "TABLE"
	TaskTypeImageText = "IMAGE_TEXT"
)

// KnownTaskType reports whether the provided task type is supported.
func KnownTaskType(taskType string) bool {
	switch taskType {
	case TaskTypeFreeText, TaskTypeTable, TaskTypeImageText:
		return true
	}
	return false
}

// Task describes one gradable question: the model answer and the blank
// template handed to students. Fingerprints are computed once at creation
// and treated as immutable.
type Task struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	ExternalRef          string    `gorm:"size:128;uniqueIndex;not null" json:"external_ref"`
	Type                 string    `gorm:"size:32;not null" json:"type"`
	ReferenceContent     string    `gorm:"type:text" json:"reference_content"`
	TemplateContent      string    `gorm:"type:text" json:"template_content"`
	ReferenceFingerprint string    `gorm:"size:64;index" json:"reference_fingerprint"`
	TemplateFingerprint  string    `gorm:"size:64" json:"template_fingerprint"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}
