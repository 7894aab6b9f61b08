package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-grader-api/internal/dto"
	"github.com/noah-isme/gema-grader-api/internal/events"
	"github.com/noah-isme/gema-grader-api/internal/models"
	"github.com/noah-isme/gema-grader-api/internal/observability"
	"github.com/noah-isme/gema-grader-api/internal/repository"
)

// ErrRunNotFound indicates no run report exists for the requested uid.
var ErrRunNotFound = errors.New("grading run not found")

// GradingRunService executes grading runs over an assignment's pending
// units. A run is single-flight per assignment: the platform scheduler holds
// an external lock over the owning document, so the service does not lock.
type GradingRunService interface {
	Run(ctx context.Context, assignmentRef string) (dto.GradingRunResponse, error)
	Get(ctx context.Context, uid string) (dto.GradingRunResponse, error)
}

type gradingRunService struct {
	units      repository.GradingUnitRepository
	runs       repository.GradingRunRepository
	planner    *GradingPlanner
	dispatcher *BatchDispatcher
	classifier *ResponseClassifier
	retries    *RetryCoordinator
	writer     *ResultWriter
	retryLimit int
	events     *events.Publisher
	logger     zerolog.Logger
	now        func() time.Time
}

// GradingRunConfig carries the pipeline knobs.
type GradingRunConfig struct {
	RetryLimit int
}

// NewGradingRunService wires the pipeline stages together.
func NewGradingRunService(
	units repository.GradingUnitRepository,
	runs repository.GradingRunRepository,
	planner *GradingPlanner,
	dispatcher *BatchDispatcher,
	classifier *ResponseClassifier,
	retries *RetryCoordinator,
	writer *ResultWriter,
	cfg GradingRunConfig,
	publisher *events.Publisher,
	logger zerolog.Logger,
) GradingRunService {
	return &gradingRunService{
		units:      units,
		runs:       runs,
		planner:    planner,
		dispatcher: dispatcher,
		classifier: classifier,
		retries:    retries,
		writer:     writer,
		retryLimit: cfg.RetryLimit,
		events:     publisher,
		logger:     logger.With().Str("component", "grading_run_service").Logger(),
		now:        time.Now,
	}
}

func (s *gradingRunService) Run(ctx context.Context, assignmentRef string) (dto.GradingRunResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/gema-grader-api/internal/service/grading_run")
	ctx, span := tracer.Start(ctx, "grading.run")
	span.SetAttributes(attribute.String("grading.assignment_ref", assignmentRef))
	defer span.End()

	units, err := s.units.ListPending(ctx, assignmentRef)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unit_listing_failed")
		return dto.GradingRunResponse{}, err
	}

	run := &models.GradingRun{
		UID:           uuid.NewString(),
		AssignmentRef: assignmentRef,
		Planned:       len(units),
		StartedAt:     s.now(),
	}
	runCtx := NewRunContext(s.retryLimit)

	s.events.RunStarted(run.UID, assignmentRef, len(units))
	s.logger.Info().
		Str("run_uid", run.UID).
		Str("assignment_ref", assignmentRef).
		Int("units", len(units)).
		Msg("grading run started")

	outcome, err := s.planner.Plan(ctx, units)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "planning_failed")
		return dto.GradingRunResponse{}, err
	}
	run.Synthesized = len(outcome.Synthesized)
	run.Cached = len(outcome.Cached)
	run.Excluded = len(outcome.Excluded)

	batches := s.dispatcher.Batches(outcome.Pending)
	span.SetAttributes(
		attribute.Int("grading.pending", len(outcome.Pending)),
		attribute.Int("grading.batches", len(batches)),
	)

	for index, batch := range batches {
		if runCtx.Aborted() {
			break
		}

		batchCtx, batchSpan := tracer.Start(ctx, "grading.batch", trace.WithAttributes(
			attribute.Int("grading.batch_index", index),
			attribute.Int("grading.batch_size", len(batch)),
		))

		// Every request in the batch runs to classification even if one of
		// them aborts the run: completed backend work is never discarded.
		results := s.dispatcher.Dispatch(batchCtx, batch)
		for _, result := range results {
			classification := s.classifier.Classify(result.Response, result.Err)
			classification = s.retries.Resolve(batchCtx, runCtx, result.Request, classification)
			run.Dispatched++

			if classification.Outcome == OutcomeSuccess {
				if err := s.writer.WriteSuccess(batchCtx, result.Request.Unit, classification.Assessments); err != nil {
					batchSpan.RecordError(err)
					s.logger.Error().Err(err).Str("uid", result.Request.Unit.UID).Msg("failed to commit graded unit")
					run.Failed++
					continue
				}
				run.Succeeded++
				continue
			}

			run.Failed++
			if err := s.writer.WriteFailure(batchCtx, result.Request.Unit, classification); err != nil {
				batchSpan.RecordError(err)
				s.logger.Error().Err(err).Str("uid", result.Request.Unit.UID).Msg("failed to record unit failure")
			}
		}

		batchSpan.End()
	}

	run.Aborted = runCtx.Aborted()
	run.AbortReason = runCtx.AbortReason()
	run.MaxConsecutiveServerErrors = runCtx.MaxServerErrorStreak()
	finished := s.now()
	run.FinishedAt = &finished

	if err := s.runs.Create(ctx, run); err != nil {
		span.RecordError(err)
		s.logger.Error().Err(err).Str("run_uid", run.UID).Msg("failed to persist run report")
	}

	if err := s.units.RefreshSubmissionStatuses(ctx, assignmentRef); err != nil {
		span.RecordError(err)
		s.logger.Error().Err(err).Str("assignment_ref", assignmentRef).Msg("failed to refresh submission statuses")
	}

	observability.RunDuration().Observe(finished.Sub(run.StartedAt).Seconds())

	if run.Aborted {
		ungraded := run.Planned - run.Synthesized - run.Cached - run.Excluded - run.Succeeded - run.Failed
		s.logger.Error().
			Str("run_uid", run.UID).
			Str("reason", run.AbortReason).
			Int("ungraded", ungraded).
			Msg("grading run stopped early due to authorization failure")
		s.events.RunAborted(run.UID, assignmentRef, run.AbortReason)
		span.SetStatus(codes.Error, "aborted")
	} else {
		s.logger.Info().
			Str("run_uid", run.UID).
			Int("succeeded", run.Succeeded).
			Int("failed", run.Failed).
			Int("cached", run.Cached).
			Int("synthesized", run.Synthesized).
			Msg("grading run completed")
		s.events.RunCompleted(run.UID, assignmentRef, run.Succeeded, run.Failed)
	}

	span.SetAttributes(
		attribute.Int("grading.succeeded", run.Succeeded),
		attribute.Int("grading.failed", run.Failed),
		attribute.Bool("grading.aborted", run.Aborted),
	)

	return dto.NewGradingRunResponse(*run), nil
}

func (s *gradingRunService) Get(ctx context.Context, uid string) (dto.GradingRunResponse, error) {
	run, err := s.runs.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GradingRunResponse{}, ErrRunNotFound
		}
		return dto.GradingRunResponse{}, err
	}

	return dto.NewGradingRunResponse(run), nil
}
