package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-grader-api/internal/models"
)

// GradingUnitRepository loads the units a grading run operates on and
// commits their outcomes back into the owning submissions.
type GradingUnitRepository interface {
	ListPending(ctx context.Context, assignmentRef string) ([]*models.GradingUnit, error)
	CommitUnit(ctx context.Context, unit *models.GradingUnit) error
	RefreshSubmissionStatuses(ctx context.Context, assignmentRef string) error
}

type gradingUnitRepository struct {
	db *gorm.DB
}

// NewGradingUnitRepository builds a gorm-backed grading unit repository.
func NewGradingUnitRepository(db *gorm.DB) GradingUnitRepository {
	return &gradingUnitRepository{db: db}
}

// ListPending returns the assignment's ungraded units in stable id order,
// so batches are formed deterministically across retries of a run.
func (r *gradingUnitRepository) ListPending(ctx context.Context, assignmentRef string) ([]*models.GradingUnit, error) {
	var units []*models.GradingUnit
	err := r.db.WithContext(ctx).
		Joins("JOIN submissions ON submissions.id = grading_units.submission_id").
		Where("submissions.assignment_ref = ? AND grading_units.status = ?", assignmentRef, models.UnitStatusPending).
		Order("grading_units.id ASC").
		Find(&units).Error
	return units, err
}

func (r *gradingUnitRepository) CommitUnit(ctx context.Context, unit *models.GradingUnit) error {
	return r.db.WithContext(ctx).Save(unit).Error
}

// RefreshSubmissionStatuses recomputes each submission's status from its
// units after a run.
func (r *gradingUnitRepository) RefreshSubmissionStatuses(ctx context.Context, assignmentRef string) error {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).Preload("Units").Where("assignment_ref = ?", assignmentRef).Find(&submissions).Error; err != nil {
		return err
	}

	for i := range submissions {
		status := submissionStatusFor(submissions[i].Units)
		if status == submissions[i].Status {
			continue
		}
		if err := r.db.WithContext(ctx).Model(&submissions[i]).Update("status", status).Error; err != nil {
			return err
		}
	}

	return nil
}

func submissionStatusFor(units []models.GradingUnit) string {
	if len(units) == 0 {
		return models.SubmissionStatusPending
	}

	resolved := 0
	pending := 0
	for _, unit := range units {
		switch {
		case unit.Resolved():
			resolved++
		case unit.Status == models.UnitStatusPending:
			pending++
		}
	}

	switch {
	case resolved == len(units):
		return models.SubmissionStatusGraded
	case pending == len(units):
		return models.SubmissionStatusPending
	default:
		return models.SubmissionStatusPartiallyGraded
	}
}
