package service

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-grader-api/internal/observability"
	"github.com/noah-isme/gema-grader-api/pkg/assessor"
)

// RetryCoordinator drives each classification to a terminal state.
// SchemaInvalid and TransportError are assumed transient and earn a bounded
// number of single-request retries; Unauthorized means the whole run's
// credentials are bad, so it aborts instead of retrying; BadRequest and
// UnknownError will not succeed on retry and are terminally logged.
type RetryCoordinator struct {
	client     assessor.Client
	classifier *ResponseClassifier
	logger     zerolog.Logger
}

// NewRetryCoordinator builds the coordinator.
func NewRetryCoordinator(client assessor.Client, classifier *ResponseClassifier, logger zerolog.Logger) *RetryCoordinator {
	return &RetryCoordinator{
		client:     client,
		classifier: classifier,
		logger:     logger.With().Str("component", "retry_coordinator").Logger(),
	}
}

// Resolve returns either a success or the terminal failure left after the
// retry budget ran out. Retries re-issue a single fresh request for the unit
// alone and re-classify the result, recursing until success or exhaustion.
// No retries are issued once the run is aborted.
func (r *RetryCoordinator) Resolve(ctx context.Context, run *RunContext, request DispatchRequest, classification Classification) Classification {
	uid := request.Unit.UID

	switch classification.Outcome {
	case OutcomeSuccess:
		run.ResetServerErrors()
		return classification

	case OutcomeUnauthorized:
		r.logger.Error().
			Str("uid", uid).
			Int("status", classification.StatusCode).
			Msg("backend rejected run credentials, aborting grading run")
		run.Abort("authorization failure reported by grading backend")
		return classification

	case OutcomeSchemaInvalid, OutcomeTransportError:
		if run.Aborted() || !run.CanRetry(uid) {
			observability.TerminalFailures().WithLabelValues(classification.Outcome).Inc()
			r.logger.Error().
				Str("uid", uid).
				Str("outcome", classification.Outcome).
				Str("detail", classification.Detail).
				Msg("retry budget exhausted, leaving unit ungraded")
			return classification
		}

		run.RecordRetry(uid)
		observability.Retries().Inc()
		r.logger.Warn().
			Str("uid", uid).
			Str("outcome", classification.Outcome).
			Int("attempt", run.Attempts(uid)).
			Msg("retrying grading request")

		response, err := r.client.Assess(ctx, request.Request)
		return r.Resolve(ctx, run, request, r.classifier.Classify(response, err))

	default:
		if classification.StatusCode >= http.StatusInternalServerError {
			run.RecordServerError()
		}
		observability.TerminalFailures().WithLabelValues(classification.Outcome).Inc()
		r.logger.Error().
			Str("uid", uid).
			Int("status", classification.StatusCode).
			Str("outcome", classification.Outcome).
			Str("detail", classification.Detail).
			Msg("backend rejected grading request, leaving unit ungraded")
		return classification
	}
}
