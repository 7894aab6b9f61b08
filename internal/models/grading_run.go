package models

import "time"

// GradingRun records the outcome of one batch grading execution. The run
// report survives the in-memory RunContext, which is discarded when the run
// finishes.
type GradingRun struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	UID           string `gorm:"size:36;uniqueIndex;not null" json:"uid"`
	AssignmentRef string `gorm:"size:128;index" json:"assignment_ref"`

	Planned     int `json:"planned"`
	Synthesized int `json:"synthesized"`
	Cached      int `json:"cached"`
	Dispatched  int `json:"dispatched"`
	Succeeded   int `json:"succeeded"`
	Failed      int `json:"failed"`
	Excluded    int `json:"excluded"`

	Aborted                    bool   `json:"aborted"`
	AbortReason                string `gorm:"size:255" json:"abort_reason,omitempty"`
	MaxConsecutiveServerErrors int    `json:"max_consecutive_server_errors"`

	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
}
