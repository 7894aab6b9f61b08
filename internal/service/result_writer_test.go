package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-grader-api/internal/cache"
	"github.com/noah-isme/gema-grader-api/internal/models"
)

func TestWriteSuccessPopulatesCacheBeforeCommit(t *testing.T) {
	memory := cache.NewMemoryCache()
	committer := &recordingCommitter{}
	writer := NewResultWriter(memory, committer, testLogger())

	unit := newUnit("The mitochondria produces ATP.")
	assessments := models.AssessmentSet{
		models.CriterionCompleteness: {Score: 4, Reasoning: "good"},
		models.CriterionAccuracy:     {Score: 5, Reasoning: "correct"},
		models.CriterionSPAG:         {Score: 4, Reasoning: "minor typos"},
	}

	require.NoError(t, writer.WriteSuccess(context.Background(), unit, assessments))

	require.Equal(t, models.UnitStatusGraded, unit.Status)
	require.Equal(t, assessments, unit.Assessments)
	require.Len(t, committer.committed, 1)

	cached, err := memory.Get(context.Background(), unit.ReferenceFingerprint, unit.ResponseFingerprint)
	require.NoError(t, err)
	require.Equal(t, assessments, cached)
}

func TestWriteSuccessToleratesCacheOutage(t *testing.T) {
	committer := &recordingCommitter{}
	writer := NewResultWriter(&failingCache{err: errors.New("write timeout")}, committer, testLogger())

	unit := newUnit("answer")
	require.NoError(t, writer.WriteSuccess(context.Background(), unit, models.NotAttemptedAssessments()))
	require.Equal(t, models.UnitStatusGraded, unit.Status)
	require.Len(t, committer.committed, 1)
}

func TestWriteSuccessClearsPriorFailure(t *testing.T) {
	writer := NewResultWriter(cache.NewMemoryCache(), &recordingCommitter{}, testLogger())

	unit := newUnit("answer")
	unit.FailureClass = OutcomeTransportError
	unit.FailureDetail = "status=0 no response from backend"

	require.NoError(t, writer.WriteSuccess(context.Background(), unit, models.NotAttemptedAssessments()))
	require.Empty(t, unit.FailureClass)
	require.Empty(t, unit.FailureDetail)
}

func TestWriteCachedDoesNotRewriteCache(t *testing.T) {
	assessments := &countingCache{inner: cache.NewMemoryCache()}
	writer := NewResultWriter(assessments, &recordingCommitter{}, testLogger())

	unit := newUnit("answer")
	require.NoError(t, writer.WriteCached(context.Background(), unit, models.NotAttemptedAssessments()))
	require.Equal(t, models.UnitStatusCacheHit, unit.Status)
	require.Zero(t, assessments.puts)
}

func TestWriteNotAttemptedNeverCaches(t *testing.T) {
	assessments := &countingCache{inner: cache.NewMemoryCache()}
	writer := NewResultWriter(assessments, &recordingCommitter{}, testLogger())

	unit := newUnit(testTemplate)
	require.NoError(t, writer.WriteNotAttempted(context.Background(), unit))

	require.Equal(t, models.UnitStatusNotAttempted, unit.Status)
	for _, criterion := range models.Criteria {
		require.Equal(t, float64(models.NotAttemptedScore), unit.Assessments[criterion].Score)
		require.Equal(t, models.NotAttemptedReasoning, unit.Assessments[criterion].Reasoning)
	}
	require.Zero(t, assessments.puts)
}

func TestWriteFailureRecordsClassAndDetail(t *testing.T) {
	writer := NewResultWriter(cache.NewMemoryCache(), &recordingCommitter{}, testLogger())

	unit := newUnit("answer")
	require.NoError(t, writer.WriteFailure(context.Background(), unit, Classification{
		Outcome:    OutcomeUnknownError,
		StatusCode: 503,
		Detail:     "service unavailable",
	}))

	require.Equal(t, models.UnitStatusFailed, unit.Status)
	require.Equal(t, OutcomeUnknownError, unit.FailureClass)
	require.Equal(t, "status=503 service unavailable", unit.FailureDetail)
	require.Nil(t, unit.Assessments)
}

func TestWriteFailureSurfacesCommitErrors(t *testing.T) {
	committer := &recordingCommitter{err: errors.New("database is locked")}
	writer := NewResultWriter(cache.NewMemoryCache(), committer, testLogger())

	unit := newUnit("answer")
	err := writer.WriteFailure(context.Background(), unit, Classification{Outcome: OutcomeBadRequest, StatusCode: 400})
	require.Error(t, err)
	require.Contains(t, err.Error(), unit.UID)
}
