// Package worker processes queued analysis requests for documents held in object storage.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/jonathan/resume-coach/internal/ingestion"
	"github.com/jonathan/resume-coach/internal/types"
)

// Fetcher downloads a stored document.
type Fetcher interface {
	Download(ctx context.Context, bucket, key string) ([]byte, error)
}

// DocumentAnalyzer turns a document into an analysis result.
type DocumentAnalyzer interface {
	AnalyzeDocument(ctx context.Context, doc ingestion.Document, jobRole string) (*types.AnalysisResult, error)
}

// Processor runs one job from download to result.
type Processor struct {
	fetcher  Fetcher
	analyzer DocumentAnalyzer
	attempts int
	backoff  time.Duration
}

// NewProcessor creates a Processor that retries downloads three times with linear backoff.
func NewProcessor(fetcher Fetcher, analyzer DocumentAnalyzer) *Processor {
	return &Processor{
		fetcher:  fetcher,
		analyzer: analyzer,
		attempts: 3,
		backoff:  500 * time.Millisecond,
	}
}

// DecodeJob parses and validates a queued message body.
func DecodeJob(body []byte) (types.AnalysisJob, error) {
	var job types.AnalysisJob
	if err := json.Unmarshal(body, &job); err != nil {
		return job, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	if err := job.Validate(); err != nil {
		return job, fmt.Errorf("invalid job: %w", err)
	}
	return job, nil
}

// Process downloads, extracts and analyzes the job's document. Failures are reported in the
// returned result rather than as an error so that every job yields exactly one result.
func (p *Processor) Process(ctx context.Context, job types.AnalysisJob) types.AnalysisJobResult {
	failed := func(format string, args ...any) types.AnalysisJobResult {
		msg := fmt.Sprintf(format, args...)
		log.Printf("[worker] request %s failed: %s", job.RequestID, msg)
		return types.AnalysisJobResult{RequestID: job.RequestID, Status: types.JobStatusFailed, Error: msg}
	}

	data, err := retry(ctx, p.attempts, p.backoff, func() ([]byte, error) {
		return p.fetcher.Download(ctx, job.Bucket, job.ObjectKey)
	})
	if err != nil {
		return failed("file download error: %v", err)
	}

	result, err := p.analyzer.AnalyzeDocument(ctx, ingestion.Document{Filename: job.Filename, Data: data}, job.JobRole)
	if err != nil {
		return failed("text extraction error: %v", err)
	}

	log.Printf("[worker] request %s analyzed: ats=%d match=%.1f", job.RequestID, result.ATS.TotalScore, result.MatchScore)
	return types.AnalysisJobResult{RequestID: job.RequestID, Status: types.JobStatusCompleted, Result: result}
}

// retry calls fn up to attempts times, waiting backoff*(i+1) between tries.
func retry[T any](ctx context.Context, attempts int, backoff time.Duration, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for i := 0; i < attempts; i++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(backoff * time.Duration(i+1)):
		}
	}
	return zero, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}
