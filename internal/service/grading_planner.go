package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-grader-api/internal/cache"
	"github.com/noah-isme/gema-grader-api/internal/models"
	"github.com/noah-isme/gema-grader-api/internal/observability"
	"github.com/noah-isme/gema-grader-api/pkg/assessor"
)

// DispatchRequest pairs a unit with the wire request that will grade it.
type DispatchRequest struct {
	Unit    *models.GradingUnit
	Request assessor.Request
}

// PlanOutcome splits a run's units into synthesized, cache-assigned,
// pending-dispatch and excluded sets. Every unit lands in exactly one.
type PlanOutcome struct {
	Synthesized []*models.GradingUnit
	Cached      []*models.GradingUnit
	Pending     []DispatchRequest
	Excluded    []*models.GradingUnit
}

// GradingPlanner routes each unit to its cheapest resolution path before any
// backend call is made.
type GradingPlanner struct {
	cache  cache.AssessmentCache
	writer *ResultWriter
	logger zerolog.Logger
}

// NewGradingPlanner builds the planner.
func NewGradingPlanner(assessments cache.AssessmentCache, writer *ResultWriter, logger zerolog.Logger) *GradingPlanner {
	return &GradingPlanner{
		cache:  assessments,
		writer: writer,
		logger: logger.With().Str("component", "grading_planner").Logger(),
	}
}

// Plan routes the units in order. Template-identical responses are
// synthesized without a cache lookup or dispatch; cached pairs are assigned
// directly; the rest become dispatch requests. Units without a usable task
// definition are logged and excluded rather than silently dropped.
func (p *GradingPlanner) Plan(ctx context.Context, units []*models.GradingUnit) (PlanOutcome, error) {
	outcome := PlanOutcome{}

	for _, unit := range units {
		if !models.KnownTaskType(unit.TaskType) || unit.ReferenceFingerprint == "" {
			p.logger.Error().
				Str("uid", unit.UID).
				Str("task_type", unit.TaskType).
				Msg("unit has no usable task definition, excluding from run")
			if err := p.writer.WriteSkipped(ctx, unit, "missing task definition"); err != nil {
				return outcome, err
			}
			outcome.Excluded = append(outcome.Excluded, unit)
			continue
		}

		if unit.NotAttempted() {
			if err := p.writer.WriteNotAttempted(ctx, unit); err != nil {
				return outcome, err
			}
			observability.SynthesizedResults().Inc()
			outcome.Synthesized = append(outcome.Synthesized, unit)
			continue
		}

		cached, err := p.cache.Get(ctx, unit.ReferenceFingerprint, unit.ResponseFingerprint)
		switch {
		case err == nil:
			if err := p.writer.WriteCached(ctx, unit, cached); err != nil {
				return outcome, err
			}
			observability.CacheHits().Inc()
			outcome.Cached = append(outcome.Cached, unit)
			continue
		case errors.Is(err, cache.ErrMiss):
		default:
			// A cache outage must not block grading; treat it as a miss.
			p.logger.Warn().Err(err).Str("uid", unit.UID).Msg("assessment cache unavailable, dispatching")
		}

		observability.CacheMisses().Inc()
		outcome.Pending = append(outcome.Pending, DispatchRequest{
			Unit: unit,
			Request: assessor.Request{
				TaskType:        strings.ToUpper(unit.TaskType),
				Reference:       unit.ReferenceContent,
				Template:        unit.TemplateContent,
				StudentResponse: unit.ResponseContent,
			},
		})
	}

	return outcome, nil
}
