package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-grader-api/pkg/assessor"
)

// DefaultBatchSize bounds how many grading requests go out per batch.
const DefaultBatchSize = 25

// BatchResult pairs a dispatch request with the raw backend reply. Err is
// non-nil only for transport failures where no response arrived at all; it
// stands in for the reply instead of aborting the batch.
type BatchResult struct {
	Request  DispatchRequest
	Response *assessor.RawResponse
	Err      error
}

// BatchDispatcher sends pending requests to the backend in consecutive
// bounded-size batches. Batches run strictly in order; requests inside a
// batch run concurrently with no relative ordering guarantee.
type BatchDispatcher struct {
	client    assessor.Client
	batchSize int
	logger    zerolog.Logger
}

// NewBatchDispatcher builds a dispatcher with the given batch size.
func NewBatchDispatcher(client assessor.Client, batchSize int, logger zerolog.Logger) *BatchDispatcher {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &BatchDispatcher{
		client:    client,
		batchSize: batchSize,
		logger:    logger.With().Str("component", "batch_dispatcher").Logger(),
	}
}

// Batches partitions the pending requests into consecutive groups of at
// most the configured size.
func (d *BatchDispatcher) Batches(pending []DispatchRequest) [][]DispatchRequest {
	if len(pending) == 0 {
		return nil
	}

	batches := make([][]DispatchRequest, 0, (len(pending)+d.batchSize-1)/d.batchSize)
	for start := 0; start < len(pending); start += d.batchSize {
		end := start + d.batchSize
		if end > len(pending) {
			end = len(pending)
		}
		batches = append(batches, pending[start:end])
	}

	return batches
}

// Dispatch issues every request in the batch concurrently and waits for all
// of them; the batch boundary is the join point. Results keep the positional
// order of the batch so each reply correlates back to its request.
func (d *BatchDispatcher) Dispatch(ctx context.Context, batch []DispatchRequest) []BatchResult {
	results := make([]BatchResult, len(batch))

	var wg sync.WaitGroup
	for i, request := range batch {
		wg.Add(1)
		go func(i int, request DispatchRequest) {
			defer wg.Done()
			response, err := d.client.Assess(ctx, request.Request)
			results[i] = BatchResult{Request: request, Response: response, Err: err}
		}(i, request)
	}
	wg.Wait()

	return results
}
