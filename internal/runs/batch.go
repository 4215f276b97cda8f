package runs

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// BatchRequest is one dataset-and-params pair submitted as part of a batch.
type BatchRequest struct {
	OwnerID string      `json:"owner_id"`
	Dataset [][]float64 `json:"dataset"`
	Params  Params      `json:"params"`
}

// BatchResult is the outcome of a batch run submission.
type BatchResult struct {
	TotalProcessed int      `json:"total_processed"`
	SuccessCount   int      `json:"success_count"`
	FailureCount   int      `json:"failure_count"`
	Errors         []error  `json:"-"`
	RunIDs         []string `json:"run_ids"`
}

// ProgressCallback is called during a batch submission to report progress.
type ProgressCallback func(processed, total int)

// BatchSubmit runs a batch of OPTICS requests through a fixed worker pool,
// each worker calling Store.Submit independently (every request gets its
// own PointStore, so the runs are safe to execute concurrently).
func (s *Store) BatchSubmit(requests []BatchRequest, progressCb ProgressCallback) *BatchResult {
	result := &BatchResult{
		TotalProcessed: len(requests),
		Errors:         make([]error, 0),
		RunIDs:         make([]string, len(requests)),
	}

	if len(requests) == 0 {
		return result
	}

	const numWorkers = 8
	jobs := make(chan int, len(requests))
	var wg sync.WaitGroup

	var successCount, failureCount int64
	var errMu sync.Mutex
	var progressMu sync.Mutex

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				req := requests[i]

				run, err := s.Submit(req.OwnerID, req.Dataset, req.Params)
				if err != nil {
					errMu.Lock()
					result.Errors = append(result.Errors, fmt.Errorf("request %d: %w", i, err))
					errMu.Unlock()
					atomic.AddInt64(&failureCount, 1)
				} else if run.Status == StatusFailed {
					errMu.Lock()
					result.Errors = append(result.Errors, fmt.Errorf("request %d: %s", i, run.Err))
					errMu.Unlock()
					result.RunIDs[i] = run.ID
					atomic.AddInt64(&failureCount, 1)
				} else {
					result.RunIDs[i] = run.ID
					atomic.AddInt64(&successCount, 1)
				}

				if progressCb != nil {
					progressMu.Lock()
					processed := int(atomic.LoadInt64(&successCount) + atomic.LoadInt64(&failureCount))
					progressCb(processed, len(requests))
					progressMu.Unlock()
				}
			}
		}()
	}

	for i := range requests {
		jobs <- i
	}
	close(jobs)

	wg.Wait()

	result.SuccessCount = int(successCount)
	result.FailureCount = int(failureCount)

	return result
}
