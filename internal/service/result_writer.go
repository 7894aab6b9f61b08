package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-grader-api/internal/cache"
	"github.com/noah-isme/gema-grader-api/internal/models"
)

// UnitCommitter persists a mutated grading unit back into its owning
// submission. The grading pipeline is the only writer of unit state.
type UnitCommitter interface {
	CommitUnit(ctx context.Context, unit *models.GradingUnit) error
}

// ResultWriter applies grading outcomes to units and populates the
// assessment cache for future runs.
type ResultWriter struct {
	cache     cache.AssessmentCache
	committer UnitCommitter
	logger    zerolog.Logger
}

// NewResultWriter builds the writer.
func NewResultWriter(assessments cache.AssessmentCache, committer UnitCommitter, logger zerolog.Logger) *ResultWriter {
	return &ResultWriter{
		cache:     assessments,
		committer: committer,
		logger:    logger.With().Str("component", "result_writer").Logger(),
	}
}

// WriteSuccess commits a freshly graded assessment. The cache is written
// before the unit: it is the durable side of the commit, and a failed cache
// write only costs one duplicate backend call in a later run.
func (w *ResultWriter) WriteSuccess(ctx context.Context, unit *models.GradingUnit, assessments models.AssessmentSet) error {
	if err := w.cache.Put(ctx, unit.ReferenceFingerprint, unit.ResponseFingerprint, assessments); err != nil {
		w.logger.Warn().Err(err).Str("uid", unit.UID).Msg("failed to populate assessment cache")
	}

	unit.Assessments = assessments
	unit.Status = models.UnitStatusGraded
	unit.FailureClass = ""
	unit.FailureDetail = ""
	return w.commit(ctx, unit)
}

// WriteCached assigns a cache-resolved assessment. The cache is not
// re-written with data it already holds.
func (w *ResultWriter) WriteCached(ctx context.Context, unit *models.GradingUnit, assessments models.AssessmentSet) error {
	unit.Assessments = assessments
	unit.Status = models.UnitStatusCacheHit
	return w.commit(ctx, unit)
}

// WriteNotAttempted assigns the synthesized sentinel result. Synthesized
// results are never cached: they are reference-independent and free to
// recompute.
func (w *ResultWriter) WriteNotAttempted(ctx context.Context, unit *models.GradingUnit) error {
	unit.Assessments = models.NotAttemptedAssessments()
	unit.Status = models.UnitStatusNotAttempted
	return w.commit(ctx, unit)
}

// WriteFailure records a terminal failure. No assessment is invented for
// the unit; it stays ungraded with the failure class attached.
func (w *ResultWriter) WriteFailure(ctx context.Context, unit *models.GradingUnit, classification Classification) error {
	unit.Status = models.UnitStatusFailed
	unit.FailureClass = classification.Outcome
	unit.FailureDetail = fmt.Sprintf("status=%d %s", classification.StatusCode, classification.Detail)
	return w.commit(ctx, unit)
}

// WriteSkipped marks a unit excluded from planning, e.g. when its task
// definition is missing.
func (w *ResultWriter) WriteSkipped(ctx context.Context, unit *models.GradingUnit, reason string) error {
	unit.Status = models.UnitStatusSkipped
	unit.FailureDetail = reason
	return w.commit(ctx, unit)
}

func (w *ResultWriter) commit(ctx context.Context, unit *models.GradingUnit) error {
	if w.committer == nil {
		return nil
	}
	if err := w.committer.CommitUnit(ctx, unit); err != nil {
		return fmt.Errorf("commit grading unit %s: %w", unit.UID, err)
	}
	return nil
}
