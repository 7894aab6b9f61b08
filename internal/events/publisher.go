// Package events publishes grading run lifecycle notifications over NATS so
// the platform can react to run completion without polling the grader.
package events

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Subjects used for run lifecycle events.
const (
	SubjectRunStarted   = "grading.run.started"
	SubjectRunCompleted = "grading.run.completed"
	SubjectRunAborted   = "grading.run.aborted"
)

// RunEvent is the payload published for every lifecycle transition.
type RunEvent struct {
	RunUID        string    `json:"run_uid"`
	AssignmentRef string    `json:"assignment_ref,omitempty"`
	Units         int       `json:"units,omitempty"`
	Succeeded     int       `json:"succeeded,omitempty"`
	Failed        int       `json:"failed,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Publisher emits run lifecycle events. A nil NATS connection disables
// publishing entirely; event delivery is best-effort and never interrupts a
// grading run.
type Publisher struct {
	conn   *nats.Conn
	logger zerolog.Logger
}

// NewPublisher wraps the provided NATS connection.
func NewPublisher(conn *nats.Conn, logger zerolog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger.With().Str("component", "run_events").Logger(),
	}
}

// RunStarted announces a new grading run.
func (p *Publisher) RunStarted(runUID, assignmentRef string, units int) {
	p.publish(SubjectRunStarted, RunEvent{RunUID: runUID, AssignmentRef: assignmentRef, Units: units})
}

// RunCompleted announces a run that processed every unit it planned.
func (p *Publisher) RunCompleted(runUID, assignmentRef string, succeeded, failed int) {
	p.publish(SubjectRunCompleted, RunEvent{RunUID: runUID, AssignmentRef: assignmentRef, Succeeded: succeeded, Failed: failed})
}

// RunAborted announces a run stopped early, with the abort reason.
func (p *Publisher) RunAborted(runUID, assignmentRef, reason string) {
	p.publish(SubjectRunAborted, RunEvent{RunUID: runUID, AssignmentRef: assignmentRef, Reason: reason})
}

func (p *Publisher) publish(subject string, event RunEvent) {
	if p == nil || p.conn == nil {
		return
	}

	event.OccurredAt = time.Now().UTC()
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to encode run event")
		return
	}

	if err := p.conn.Publish(subject, payload); err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish run event")
	}
}
