package dto

import (
	"time"

	"github.com/noah-isme/gema-grader-api/internal/models"
)

// GradingRunRequest triggers a grading run over an assignment's pending units.
type GradingRunRequest struct {
	AssignmentRef string `json:"assignment_ref" validate:"required,max=128"`
}

// GradingRunResponse reports the outcome counts of one run. Partial results
// recorded before an abort are retained, so the counts remain meaningful for
// aborted runs.
type GradingRunResponse struct {
	UID           string `json:"uid"`
	AssignmentRef string `json:"assignment_ref"`

	Planned     int `json:"planned"`
	Synthesized int `json:"synthesized"`
	Cached      int `json:"cached"`
	Dispatched  int `json:"dispatched"`
	Succeeded   int `json:"succeeded"`
	Failed      int `json:"failed"`
	Excluded    int `json:"excluded"`

	Aborted                    bool   `json:"aborted"`
	AbortReason                string `json:"abort_reason,omitempty"`
	MaxConsecutiveServerErrors int    `json:"max_consecutive_server_errors"`

	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
}

// NewGradingRunResponse maps a run report to its API shape.
func NewGradingRunResponse(run models.GradingRun) GradingRunResponse {
	return GradingRunResponse{
		UID:                        run.UID,
		AssignmentRef:              run.AssignmentRef,
		Planned:                    run.Planned,
		Synthesized:                run.Synthesized,
		Cached:                     run.Cached,
		Dispatched:                 run.Dispatched,
		Succeeded:                  run.Succeeded,
		Failed:                     run.Failed,
		Excluded:                   run.Excluded,
		Aborted:                    run.Aborted,
		AbortReason:                run.AbortReason,
		MaxConsecutiveServerErrors: run.MaxConsecutiveServerErrors,
		StartedAt:                  run.StartedAt,
		FinishedAt:                 run.FinishedAt,
	}
}
