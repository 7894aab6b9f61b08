package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-grader-api/internal/models"
	"github.com/noah-isme/gema-grader-api/pkg/assessor"
)

func pendingRequests(n int) []DispatchRequest {
	requests := make([]DispatchRequest, 0, n)
	for i := 0; i < n; i++ {
		unit := newUnit(fmt.Sprintf("answer %d", i))
		requests = append(requests, DispatchRequest{
			Unit: unit,
			Request: assessor.Request{
				TaskType:        models.TaskTypeFreeText,
				Reference:       unit.ReferenceContent,
				Template:        unit.TemplateContent,
				StudentResponse: unit.ResponseContent,
			},
		})
	}
	return requests
}

func TestBatchesPartitionsByConfiguredSize(t *testing.T) {
	dispatcher := NewBatchDispatcher(&fakeAssessor{}, 10, testLogger())

	tests := []struct {
		pending int
		batches int
	}{
		{0, 0},
		{1, 1},
		{10, 1},
		{11, 2},
		{25, 3},
	}
	for _, tc := range tests {
		batches := dispatcher.Batches(pendingRequests(tc.pending))
		require.Len(t, batches, tc.batches, "pending=%d", tc.pending)

		total := 0
		for i, batch := range batches {
			require.LessOrEqual(t, len(batch), 10)
			if i < len(batches)-1 {
				require.Len(t, batch, 10)
			}
			total += len(batch)
		}
		require.Equal(t, tc.pending, total)
	}
}

func TestNewBatchDispatcherDefaultsBatchSize(t *testing.T) {
	dispatcher := NewBatchDispatcher(&fakeAssessor{}, 0, testLogger())
	batches := dispatcher.Batches(pendingRequests(DefaultBatchSize + 1))
	require.Len(t, batches, 2)
	require.Len(t, batches[0], DefaultBatchSize)
}

func TestDispatchKeepsPositionalCorrespondence(t *testing.T) {
	client := &fakeAssessor{handler: func(call int, req assessor.Request) (*assessor.RawResponse, error) {
		return okResponse([]byte(req.StudentResponse)), nil
	}}
	dispatcher := NewBatchDispatcher(client, 10, testLogger())

	batch := pendingRequests(7)
	results := dispatcher.Dispatch(context.Background(), batch)

	require.Len(t, results, len(batch))
	for i, result := range results {
		require.Same(t, batch[i].Unit, result.Request.Unit)
		require.NoError(t, result.Err)
		require.Equal(t, batch[i].Request.StudentResponse, string(result.Response.Body))
	}
}

func TestDispatchCapturesTransportFailuresInPlace(t *testing.T) {
	boom := errors.New("dial tcp: connection refused")
	client := &fakeAssessor{handler: func(call int, req assessor.Request) (*assessor.RawResponse, error) {
		if req.StudentResponse == "answer 1" {
			return nil, boom
		}
		return okResponse(successBody(4)), nil
	}}
	dispatcher := NewBatchDispatcher(client, 10, testLogger())

	results := dispatcher.Dispatch(context.Background(), pendingRequests(3))

	require.Len(t, results, 3)
	require.NoError(t, results[0].Err)
	require.ErrorIs(t, results[1].Err, boom)
	require.Nil(t, results[1].Response)
	require.NoError(t, results[2].Err)
}
