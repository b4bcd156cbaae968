package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonathan/resume-coach/internal/analyzer"
	"github.com/jonathan/resume-coach/internal/ingestion"
	"github.com/jonathan/resume-coach/internal/types"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	data     []byte
	failures int
	calls    int
}

func (f *fakeFetcher) Download(_ context.Context, _, _ string) ([]byte, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("connection reset")
	}
	return f.data, nil
}

// textBackend treats the document bytes as already-extracted text.
type textBackend struct{}

func (textBackend) Name() string { return "text" }

func (textBackend) Available() error { return nil }

func (textBackend) Extract(_ context.Context, data []byte) (string, error) {
	return string(data), nil
}

type fakePublisher struct {
	results []types.AnalysisJobResult
	err     error
}

func (p *fakePublisher) Publish(_ context.Context, result types.AnalysisJobResult) error {
	if p.err != nil {
		return p.err
	}
	p.results = append(p.results, result)
	return nil
}

type fakeAcknowledger struct {
	acked    bool
	nacked   bool
	requeued bool
	rejected bool
}

func (a *fakeAcknowledger) Ack(uint64, bool) error { a.acked = true; return nil }
func (a *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked = true
	a.requeued = requeue
	return nil
}
func (a *fakeAcknowledger) Reject(_ uint64, requeue bool) error {
	a.rejected = true
	a.requeued = requeue
	return nil
}

func newTestProcessor(fetcher Fetcher) *Processor {
	extractor := ingestion.NewExtractorWithBackends(map[ingestion.Format]ingestion.Backend{
		ingestion.FormatPDF:  textBackend{},
		ingestion.FormatDOCX: textBackend{},
	})
	p := NewProcessor(fetcher, analyzer.New(extractor, analyzer.Options{}))
	p.backoff = time.Millisecond
	return p
}

const resumeText = "Education\nSkills: Python, Django, SQL, Git\nExperience\nDeveloped 3 services used by 500 users."

func validJob() types.AnalysisJob {
	return types.AnalysisJob{
		RequestID: "req-1",
		Bucket:    "resumes",
		ObjectKey: "alice.pdf",
		Filename:  "alice.pdf",
		JobRole:   "python developer",
	}
}

func TestDecodeJob(t *testing.T) {
	job, err := DecodeJob([]byte(`{"request_id":"r","bucket":"b","object_key":"k.pdf","filename":"k.pdf","job_role":"qa engineer"}`))
	require.NoError(t, err)
	assert.Equal(t, "qa engineer", job.JobRole)

	_, err = DecodeJob([]byte(`not json`))
	assert.Error(t, err)

	_, err = DecodeJob([]byte(`{"request_id":"r"}`))
	assert.Error(t, err)
}

func TestProcess_Completed(t *testing.T) {
	fetcher := &fakeFetcher{data: []byte(resumeText)}
	result := newTestProcessor(fetcher).Process(context.Background(), validJob())

	assert.Equal(t, types.JobStatusCompleted, result.Status)
	assert.Equal(t, "req-1", result.RequestID)
	require.NotNil(t, result.Result)
	assert.Equal(t, "python developer", result.Result.ResolvedRole)
	assert.Contains(t, result.Result.MatchingSkills, "Django")
	assert.Empty(t, result.Error)
}

func TestProcess_RetriesDownload(t *testing.T) {
	fetcher := &fakeFetcher{data: []byte(resumeText), failures: 2}
	result := newTestProcessor(fetcher).Process(context.Background(), validJob())

	assert.Equal(t, types.JobStatusCompleted, result.Status)
	assert.Equal(t, 3, fetcher.calls)
}

func TestProcess_DownloadFails(t *testing.T) {
	fetcher := &fakeFetcher{failures: 10}
	result := newTestProcessor(fetcher).Process(context.Background(), validJob())

	assert.Equal(t, types.JobStatusFailed, result.Status)
	assert.Contains(t, result.Error, "file download error")
	assert.Contains(t, result.Error, "after 3 attempts")
	assert.Nil(t, result.Result)
	assert.Equal(t, 3, fetcher.calls)
}

func TestProcess_UnsupportedFormat(t *testing.T) {
	job := validJob()
	job.Filename = "alice.txt"

	result := newTestProcessor(&fakeFetcher{data: []byte(resumeText)}).Process(context.Background(), job)

	assert.Equal(t, types.JobStatusFailed, result.Status)
	assert.Contains(t, result.Error, "unsupported file type")
}

func TestRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := retry(ctx, 3, time.Hour, func() (int, error) {
		calls++
		return 0, errors.New("boom")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestHandleDelivery_AcksAfterPublish(t *testing.T) {
	ack := &fakeAcknowledger{}
	publisher := &fakePublisher{}
	d := amqp.Delivery{
		Acknowledger: ack,
		DeliveryTag:  1,
		Body:         []byte(`{"request_id":"r1","bucket":"b","object_key":"k.pdf","filename":"k.pdf","job_role":"python developer"}`),
	}

	HandleDelivery(context.Background(), d, newTestProcessor(&fakeFetcher{data: []byte(resumeText)}), publisher)

	assert.True(t, ack.acked)
	assert.False(t, ack.nacked)
	require.Len(t, publisher.results, 1)
	assert.Equal(t, "r1", publisher.results[0].RequestID)
	assert.Equal(t, types.JobStatusCompleted, publisher.results[0].Status)
}

func TestHandleDelivery_PublishesFailures(t *testing.T) {
	ack := &fakeAcknowledger{}
	publisher := &fakePublisher{}
	d := amqp.Delivery{
		Acknowledger: ack,
		Body:         []byte(`{"request_id":"r2","bucket":"b","object_key":"k.odt","filename":"k.odt","job_role":"qa engineer"}`),
	}

	HandleDelivery(context.Background(), d, newTestProcessor(&fakeFetcher{data: []byte("x")}), publisher)

	assert.True(t, ack.acked)
	require.Len(t, publisher.results, 1)
	assert.Equal(t, types.JobStatusFailed, publisher.results[0].Status)
}

func TestHandleDelivery_RejectsMalformed(t *testing.T) {
	ack := &fakeAcknowledger{}
	publisher := &fakePublisher{}
	d := amqp.Delivery{Acknowledger: ack, Body: []byte(`{oops`)}

	HandleDelivery(context.Background(), d, newTestProcessor(&fakeFetcher{}), publisher)

	assert.True(t, ack.rejected)
	assert.False(t, ack.requeued)
	assert.False(t, ack.acked)
	assert.Empty(t, publisher.results)
}

func TestHandleDelivery_RequeuesWhenPublishFails(t *testing.T) {
	ack := &fakeAcknowledger{}
	publisher := &fakePublisher{err: errors.New("channel closed")}
	d := amqp.Delivery{
		Acknowledger: ack,
		Body:         []byte(`{"request_id":"r3","bucket":"b","object_key":"k.pdf","filename":"k.pdf","job_role":"qa engineer"}`),
	}

	HandleDelivery(context.Background(), d, newTestProcessor(&fakeFetcher{data: []byte(resumeText)}), publisher)

	assert.True(t, ack.nacked)
	assert.True(t, ack.requeued)
	assert.False(t, ack.acked)
}

func TestHandleDelivery_RequeuesOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ack := &fakeAcknowledger{}
	publisher := &fakePublisher{}
	d := amqp.Delivery{
		Acknowledger: ack,
		Body:         []byte(`{"request_id":"r4","bucket":"b","object_key":"k.pdf","filename":"k.pdf","job_role":"qa engineer"}`),
	}

	HandleDelivery(ctx, d, newTestProcessor(&fakeFetcher{failures: 10}), publisher)

	assert.True(t, ack.nacked)
	assert.True(t, ack.requeued)
	assert.False(t, ack.acked)
	assert.Empty(t, publisher.results)
}

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "analysis.abc-123", RoutingKey("abc-123"))
}
