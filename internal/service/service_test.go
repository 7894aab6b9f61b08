package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-grader-api/internal/fingerprint"
	"github.com/noah-isme/gema-grader-api/internal/models"
	"github.com/noah-isme/gema-grader-api/pkg/assessor"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// fakeAssessor scripts backend replies per call. Safe for the concurrent
// dispatch path.
type fakeAssessor struct {
	mu       sync.Mutex
	calls    int
	requests []assessor.Request
	handler  func(call int, req assessor.Request) (*assessor.RawResponse, error)
}

func (f *fakeAssessor) Assess(ctx context.Context, req assessor.Request) (*assessor.RawResponse, error) {
	f.mu.Lock()
	call := f.calls
	f.calls++
	f.requests = append(f.requests, req)
	handler := f.handler
	f.mu.Unlock()
	return handler(call, req)
}

func (f *fakeAssessor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// recordingCommitter captures committed unit snapshots in commit order.
type recordingCommitter struct {
	mu        sync.Mutex
	committed []models.GradingUnit
	err       error
}

func (c *recordingCommitter) CommitUnit(ctx context.Context, unit *models.GradingUnit) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.committed = append(c.committed, *unit)
	return nil
}

// countingCache wraps another cache and counts lookups.
type countingCache struct {
	inner interface {
		Get(ctx context.Context, referenceFingerprint, responseFingerprint string) (models.AssessmentSet, error)
		Put(ctx context.Context, referenceFingerprint, responseFingerprint string, assessments models.AssessmentSet) error
	}
	gets int
	puts int
}

func (c *countingCache) Get(ctx context.Context, ref, resp string) (models.AssessmentSet, error) {
	c.gets++
	return c.inner.Get(ctx, ref, resp)
}

func (c *countingCache) Put(ctx context.Context, ref, resp string, assessments models.AssessmentSet) error {
	c.puts++
	return c.inner.Put(ctx, ref, resp, assessments)
}

// failingCache simulates a cache outage on every operation.
type failingCache struct {
	err error
}

func (c *failingCache) Get(ctx context.Context, ref, resp string) (models.AssessmentSet, error) {
	return nil, c.err
}

func (c *failingCache) Put(ctx context.Context, ref, resp string, assessments models.AssessmentSet) error {
	return c.err
}

type fakeUnitRepo struct {
	units     []*models.GradingUnit
	refreshed []string
}

func (r *fakeUnitRepo) ListPending(ctx context.Context, assignmentRef string) ([]*models.GradingUnit, error) {
	return r.units, nil
}

func (r *fakeUnitRepo) CommitUnit(ctx context.Context, unit *models.GradingUnit) error {
	return nil
}

func (r *fakeUnitRepo) RefreshSubmissionStatuses(ctx context.Context, assignmentRef string) error {
	r.refreshed = append(r.refreshed, assignmentRef)
	return nil
}

type fakeRunRepo struct {
	created []*models.GradingRun
}

func (r *fakeRunRepo) Create(ctx context.Context, run *models.GradingRun) error {
	r.created = append(r.created, run)
	return nil
}

func (r *fakeRunRepo) GetByUID(ctx context.Context, uid string) (models.GradingRun, error) {
	for _, run := range r.created {
		if run.UID == uid {
			return *run, nil
		}
	}
	return models.GradingRun{}, gorm.ErrRecordNotFound
}

type fakeTaskRepo struct {
	tasks  map[string]models.Task
	nextID uint
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[string]models.Task)}
}

func (r *fakeTaskRepo) Create(ctx context.Context, task *models.Task) error {
	r.nextID++
	task.ID = r.nextID
	r.tasks[task.ExternalRef] = *task
	return nil
}

func (r *fakeTaskRepo) GetByExternalRef(ctx context.Context, externalRef string) (models.Task, error) {
	task, ok := r.tasks[externalRef]
	if !ok {
		return models.Task{}, gorm.ErrRecordNotFound
	}
	return task, nil
}

type fakeSubmissionRepo struct {
	submissions map[uint]*models.Submission
	nextID      uint
	addedUnits  []models.GradingUnit
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{submissions: make(map[uint]*models.Submission)}
}

func (r *fakeSubmissionRepo) Create(ctx context.Context, submission *models.Submission) error {
	r.nextID++
	submission.ID = r.nextID
	r.submissions[submission.ID] = submission
	return nil
}

func (r *fakeSubmissionRepo) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	submission, ok := r.submissions[id]
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return *submission, nil
}

func (r *fakeSubmissionRepo) AddUnit(ctx context.Context, unit *models.GradingUnit) error {
	r.addedUnits = append(r.addedUnits, *unit)
	return nil
}

const (
	testReference = "The mitochondria is the powerhouse of the cell."
	testTemplate  = "Explain the role of the mitochondria:"
)

// newUnit builds a pending free-text unit with consistent fingerprints.
func newUnit(response string) *models.GradingUnit {
	return &models.GradingUnit{
		UID:                  uuid.NewString(),
		TaskType:             models.TaskTypeFreeText,
		ReferenceContent:     testReference,
		TemplateContent:      testTemplate,
		ResponseContent:      response,
		ReferenceFingerprint: fingerprint.Content(testReference),
		TemplateFingerprint:  fingerprint.Content(testTemplate),
		ResponseFingerprint:  fingerprint.Content(response),
		Status:               models.UnitStatusPending,
	}
}

func successBody(score float64) []byte {
	body, _ := json.Marshal(map[string]map[string]any{
		"completeness": {"score": score, "reasoning": "covers the main points"},
		"accuracy":     {"score": score, "reasoning": "factually correct"},
		"spag":         {"score": score, "reasoning": "clean writing"},
	})
	return body
}

func okResponse(body []byte) *assessor.RawResponse {
	return &assessor.RawResponse{StatusCode: 200, Body: body}
}

func statusResponse(code int, detail string) *assessor.RawResponse {
	return &assessor.RawResponse{StatusCode: code, Body: []byte(fmt.Sprintf(`{"error":%q}`, detail))}
}
