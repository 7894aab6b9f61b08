package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-grader-api/internal/dto"
	"github.com/noah-isme/gema-grader-api/internal/fingerprint"
	"github.com/noah-isme/gema-grader-api/internal/models"
)

func submissionFixture(t *testing.T) (SubmissionService, *fakeSubmissionRepo, *fakeTaskRepo) {
	t.Helper()

	tasks := newFakeTaskRepo()
	require.NoError(t, tasks.Create(context.Background(), &models.Task{
		ExternalRef:          "bio-q1",
		Type:                 models.TaskTypeFreeText,
		ReferenceContent:     testReference,
		TemplateContent:      testTemplate,
		ReferenceFingerprint: fingerprint.Content(testReference),
		TemplateFingerprint:  fingerprint.Content(testTemplate),
	}))

	submissions := newFakeSubmissionRepo()
	return NewSubmissionService(submissions, tasks, validator.New(), testLogger()), submissions, tasks
}

func TestSubmissionCreateBuildsUnitsFromArtifacts(t *testing.T) {
	svc, submissions, _ := submissionFixture(t)

	created, err := svc.Create(context.Background(), dto.SubmissionCreateRequest{
		AssignmentRef: "assignment-1",
		StudentRef:    "student-1",
		Artifacts: []dto.ArtifactPayload{
			{TaskRef: "bio-q1", Content: "The mitochondria produces ATP."},
		},
	})
	require.NoError(t, err)

	require.Equal(t, models.SubmissionStatusPending, created.Status)
	require.Len(t, created.Units, 1)

	unit := created.Units[0]
	require.NotEmpty(t, unit.UID)
	require.Equal(t, models.TaskTypeFreeText, unit.TaskType)
	require.Equal(t, models.UnitStatusPending, unit.Status)
	require.Equal(t, fingerprint.Content("The mitochondria produces ATP."), unit.ResponseFingerprint)

	stored, err := submissions.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, fingerprint.Content(testReference), stored.Units[0].ReferenceFingerprint)
	require.Equal(t, fingerprint.Content(testTemplate), stored.Units[0].TemplateFingerprint)
}

func TestSubmissionCreateSanitizesResponses(t *testing.T) {
	svc, submissions, _ := submissionFixture(t)

	created, err := svc.Create(context.Background(), dto.SubmissionCreateRequest{
		AssignmentRef: "assignment-1",
		StudentRef:    "student-1",
		Artifacts: []dto.ArtifactPayload{
			{TaskRef: "bio-q1", Content: "<script>alert(1)</script>" + testTemplate},
		},
	})
	require.NoError(t, err)

	stored, err := submissions.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	// Markup is stripped before fingerprinting, so a template padded with
	// markup still counts as not attempted.
	require.Equal(t, testTemplate, stored.Units[0].ResponseContent)
	require.True(t, stored.Units[0].NotAttempted())
}

func TestSubmissionCreateUnknownTaskRef(t *testing.T) {
	svc, _, _ := submissionFixture(t)

	_, err := svc.Create(context.Background(), dto.SubmissionCreateRequest{
		AssignmentRef: "assignment-1",
		StudentRef:    "student-1",
		Artifacts: []dto.ArtifactPayload{
			{TaskRef: "missing-task", Content: "answer"},
		},
	})
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestAttachArtifactAcceptsTextOnly(t *testing.T) {
	svc, submissions, _ := submissionFixture(t)

	created, err := svc.Create(context.Background(), dto.SubmissionCreateRequest{
		AssignmentRef: "assignment-1",
		StudentRef:    "student-1",
	})
	require.NoError(t, err)

	updated, err := svc.AttachArtifact(context.Background(), created.ID, "bio-q1", "answer.txt", []byte("The mitochondria produces ATP."))
	require.NoError(t, err)
	require.Len(t, updated.Units, 1)
	require.Len(t, submissions.addedUnits, 1)

	// A PDF upload is rejected: extraction happens upstream, not here.
	pdf := []byte("%PDF-1.7\n1 0 obj\n<< /Type /Catalog >>")
	_, err = svc.AttachArtifact(context.Background(), created.ID, "bio-q1", "answer.pdf", pdf)
	require.ErrorIs(t, err, ErrUnsupportedArtifactType)
	require.Len(t, submissions.addedUnits, 1)
}

func TestAttachArtifactUnknownSubmission(t *testing.T) {
	svc, _, _ := submissionFixture(t)

	_, err := svc.AttachArtifact(context.Background(), 99, "bio-q1", "answer.txt", []byte("answer"))
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}
