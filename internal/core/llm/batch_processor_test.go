package llm

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubClient はプロンプトに応じて成功・失敗を切り替えるテスト用クライアント
type stubClient struct {
	mu       sync.Mutex
	calls    int
	active   int32
	peak     int32
	delay    time.Duration
	failWith map[string]error
}

func (c *stubClient) GenerateCompletion(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	cur := atomic.AddInt32(&c.active, 1)
	defer atomic.AddInt32(&c.active, -1)
	for {
		peak := atomic.LoadInt32(&c.peak)
		if cur <= peak || atomic.CompareAndSwapInt32(&c.peak, peak, cur) {
			break
		}
	}

	c.mu.Lock()
	c.calls++
	c.mu.Unlock()

	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	if err, ok := c.failWith[req.Prompt]; ok {
		return CompletionResponse{}, err
	}
	return CompletionResponse{Content: "echo:" + req.Prompt, Model: "stub"}, nil
}

func requestsFor(prompts ...string) []BatchRequest {
	reqs := make([]BatchRequest, 0, len(prompts))
	for _, p := range prompts {
		reqs = append(reqs, BatchRequest{ID: p, Request: CompletionRequest{Prompt: p}})
	}
	return reqs
}

func TestBatchProcessor_PreservesOrder(t *testing.T) {
	client := &stubClient{delay: 5 * time.Millisecond}
	bp := NewBatchProcessor(client, BatchProcessorConfig{MaxConcurrency: 4})

	results := bp.ProcessBatch(context.Background(), requestsFor("a", "b", "c", "d", "e", "f"))

	require.Len(t, results, 6)
	for i, want := range []string{"a", "b", "c", "d", "e", "f"} {
		assert.Equal(t, want, results[i].ID)
		assert.NoError(t, results[i].Error)
		assert.Equal(t, "echo:"+want, results[i].Response.Content)
	}
}

func TestBatchProcessor_IsolatesFailures(t *testing.T) {
	boom := errors.New("boom")
	client := &stubClient{failWith: map[string]error{"b": boom}}
	bp := NewBatchProcessor(client, BatchProcessorConfig{MaxConcurrency: 2})

	results := bp.ProcessBatch(context.Background(), requestsFor("a", "b", "c"))

	require.Len(t, results, 3)
	assert.NoError(t, results[0].Error)
	assert.ErrorIs(t, results[1].Error, boom)
	assert.NoError(t, results[2].Error)
	assert.Equal(t, 3, client.calls)
}

func TestBatchProcessor_RespectsConcurrencyLimit(t *testing.T) {
	client := &stubClient{delay: 10 * time.Millisecond}
	bp := NewBatchProcessor(client, BatchProcessorConfig{MaxConcurrency: 2})

	bp.ProcessBatch(context.Background(), requestsFor("1", "2", "3", "4", "5", "6"))

	assert.LessOrEqual(t, atomic.LoadInt32(&client.peak), int32(2))
}

func TestBatchProcessor_DefaultIsSequential(t *testing.T) {
	bp := NewBatchProcessor(&stubClient{}, BatchProcessorConfig{})
	assert.Equal(t, 1, bp.config.MaxConcurrency)

	client := &stubClient{delay: 2 * time.Millisecond}
	bp = NewBatchProcessor(client, BatchProcessorConfig{})
	bp.ProcessBatch(context.Background(), requestsFor("1", "2", "3"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&client.peak))
}

func TestBatchProcessor_CanceledContext(t *testing.T) {
	client := &stubClient{}
	bp := NewBatchProcessor(client, BatchProcessorConfig{MaxConcurrency: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := bp.ProcessBatch(ctx, requestsFor("a", "b"))
	require.Len(t, results, 2)
	for _, r := range results {
		assert.ErrorIs(t, r.Error, context.Canceled)
	}
	assert.Equal(t, 0, client.calls)
}

func TestBatchProcessor_ProgressCallback(t *testing.T) {
	var mu sync.Mutex
	var last BatchProgress
	calls := 0

	bp := NewBatchProcessor(&stubClient{failWith: map[string]error{"x": errors.New("fail")}}, BatchProcessorConfig{
		MaxConcurrency: 3,
		ProgressCallback: func(p BatchProgress) {
			mu.Lock()
			defer mu.Unlock()
			calls++
			if p.Completed > last.Completed {
				last = p
			}
		},
	})

	bp.ProcessBatch(context.Background(), requestsFor("a", "x", "c"))

	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, last.Total)
	assert.Equal(t, 3, last.Completed)
	assert.Equal(t, 1, last.Failed)
	assert.True(t, strings.HasPrefix(last.String(), "Progress: 3/3 (100.0%)"))
}

func TestBatchProcessor_EmptyBatch(t *testing.T) {
	bp := NewBatchProcessor(&stubClient{}, BatchProcessorConfig{})
	assert.Empty(t, bp.ProcessBatch(context.Background(), nil))
}

func TestCalculateBatchStats(t *testing.T) {
	results := []BatchResult{
		{ID: "a", Duration: 10 * time.Millisecond},
		{ID: "b", Duration: 30 * time.Millisecond},
		{ID: "c", Error: errors.New("fail")},
	}

	stats := CalculateBatchStats(results)

	assert.Equal(t, 3, stats.TotalRequests)
	assert.Equal(t, 2, stats.SuccessCount)
	assert.Equal(t, 1, stats.FailureCount)
	assert.Equal(t, []string{"c"}, stats.FailedRequests)
	assert.Equal(t, 10*time.Millisecond, stats.MinDuration)
	assert.Equal(t, 30*time.Millisecond, stats.MaxDuration)
	assert.Equal(t, 20*time.Millisecond, stats.AverageDuration)
	assert.Contains(t, stats.String(), "Success=2")
}
