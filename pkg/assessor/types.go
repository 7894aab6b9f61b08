// Package assessor talks to the grading backend that scores student work
// against a reference answer.
package assessor

import "context"

// Request is the wire payload sent for one grading unit.
type Request struct {
	TaskType        string `json:"taskType"`
	Reference       string `json:"reference"`
	Template        string `json:"template"`
	StudentResponse string `json:"studentResponse"`
}

// RawResponse carries the untouched backend reply. Classifying the status
// code and body is the pipeline's job, not the transport's.
type RawResponse struct {
	StatusCode int
	Body       []byte
}

// Client issues a single grading request. A non-nil error means no response
// reached the caller at all; HTTP-level failures are reported through
// RawResponse so the pipeline can tell a 400 from a 401.
type Client interface {
	Assess(ctx context.Context, req Request) (*RawResponse, error)
}
