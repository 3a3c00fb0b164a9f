package llm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// BatchRequest は単一のバッチリクエスト項目
type BatchRequest struct {
	// ID は項目の識別子（ログ・トラッキング用）
	ID string
	// Request はLLMへのリクエスト
	Request CompletionRequest
}

// BatchResult は単一のバッチ処理結果
type BatchResult struct {
	// ID はリクエストの識別子
	ID string
	// Response はLLMからのレスポンス（成功時）
	Response CompletionResponse
	// Error はエラー情報（失敗時）
	Error error
	// Duration は処理時間
	Duration time.Duration
}

// BatchProcessorConfig はバッチ処理の設定
type BatchProcessorConfig struct {
	// MaxConcurrency は同時実行数の上限（1の場合は逐次実行）
	MaxConcurrency int
	// ProgressCallback はプログレス更新時に呼ばれるコールバック
	ProgressCallback func(progress BatchProgress)
}

// BatchProgress はバッチ処理の進捗状況
type BatchProgress struct {
	// Total は総リクエスト数
	Total int
	// Completed は完了したリクエスト数
	Completed int
	// Failed は失敗したリクエスト数
	Failed int
	// ElapsedTime は経過時間
	ElapsedTime time.Duration
	// EstimatedTimeRemaining は推定残り時間
	EstimatedTimeRemaining time.Duration
}

// String はプログレスを文字列表現で返す
func (p BatchProgress) String() string {
	percentage := 0.0
	if p.Total > 0 {
		percentage = float64(p.Completed) / float64(p.Total) * 100
	}

	eta := "N/A"
	if p.EstimatedTimeRemaining > 0 {
		eta = p.EstimatedTimeRemaining.Round(time.Second).String()
	}

	return fmt.Sprintf(
		"Progress: %d/%d (%.1f%%) | Failed: %d | Elapsed: %s | ETA: %s",
		p.Completed,
		p.Total,
		percentage,
		p.Failed,
		p.ElapsedTime.Round(time.Second),
		eta,
	)
}

// BatchProcessor は複数のLLMリクエストを並列度を制限して実行する
type BatchProcessor struct {
	client Client
	config BatchProcessorConfig
}

// NewBatchProcessor は新しいBatchProcessorを作成する
func NewBatchProcessor(client Client, config BatchProcessorConfig) *BatchProcessor {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 1
	}

	return &BatchProcessor{
		client: client,
		config: config,
	}
}

// ProcessBatch は複数のリクエストを実行し、リクエストと同じ順序で結果を返す
// 一部のリクエストが失敗しても残りのリクエストは継続される
// contextがキャンセルされた場合、未実行のリクエストは ctx.Err() で失敗扱いになる
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, requests []BatchRequest) []BatchResult {
	total := len(requests)
	if total == 0 {
		return []BatchResult{}
	}

	var mu sync.Mutex
	completed := 0
	failed := 0
	startTime := time.Now()

	results := make([]BatchResult, total)

	// ゴルーチンはエラーを返さないため、1件の失敗で他がキャンセルされることはない
	var g errgroup.Group
	g.SetLimit(bp.config.MaxConcurrency)

	for i, req := range requests {
		g.Go(func() error {
			var result BatchResult
			if err := ctx.Err(); err != nil {
				result = BatchResult{ID: req.ID, Error: err}
			} else {
				reqStartTime := time.Now()
				resp, err := bp.client.GenerateCompletion(ctx, req.Request)
				result = BatchResult{
					ID:       req.ID,
					Response: resp,
					Error:    err,
					Duration: time.Since(reqStartTime),
				}
			}
			results[i] = result

			mu.Lock()
			completed++
			if result.Error != nil {
				failed++
			}
			progress := bp.progress(total, completed, failed, startTime)
			mu.Unlock()

			if bp.config.ProgressCallback != nil {
				bp.config.ProgressCallback(progress)
			}
			return nil
		})
	}

	_ = g.Wait()

	return results
}

// progress は現在の進捗状況を計算する
func (bp *BatchProcessor) progress(total, completed, failed int, startTime time.Time) BatchProgress {
	elapsed := time.Since(startTime)

	var eta time.Duration
	if completed > 0 {
		avgTimePerRequest := elapsed / time.Duration(completed)
		eta = avgTimePerRequest * time.Duration(total-completed)
	}

	return BatchProgress{
		Total:                  total,
		Completed:              completed,
		Failed:                 failed,
		ElapsedTime:            elapsed,
		EstimatedTimeRemaining: eta,
	}
}

// BatchStats はバッチ処理の統計情報
type BatchStats struct {
	TotalRequests   int
	SuccessCount    int
	FailureCount    int
	TotalDuration   time.Duration
	AverageDuration time.Duration
	MinDuration     time.Duration
	MaxDuration     time.Duration
	// FailedRequests は失敗したリクエストのIDリスト
	FailedRequests []string
}

// CalculateBatchStats はバッチ結果から統計情報を計算する
func CalculateBatchStats(results []BatchResult) BatchStats {
	stats := BatchStats{TotalRequests: len(results)}

	for _, result := range results {
		if result.Error != nil {
			stats.FailureCount++
			stats.FailedRequests = append(stats.FailedRequests, result.ID)
			continue
		}

		if stats.SuccessCount == 0 || result.Duration < stats.MinDuration {
			stats.MinDuration = result.Duration
		}
		if result.Duration > stats.MaxDuration {
			stats.MaxDuration = result.Duration
		}
		stats.SuccessCount++
		stats.TotalDuration += result.Duration
	}

	if stats.SuccessCount > 0 {
		stats.AverageDuration = stats.TotalDuration / time.Duration(stats.SuccessCount)
	}

	return stats
}

// String は統計情報を文字列表現で返す
func (s BatchStats) String() string {
	return fmt.Sprintf(
		"Batch Stats: Total=%d, Success=%d, Failed=%d, AvgDuration=%s, MinDuration=%s, MaxDuration=%s",
		s.TotalRequests,
		s.SuccessCount,
		s.FailureCount,
		s.AverageDuration.Round(time.Millisecond),
		s.MinDuration.Round(time.Millisecond),
		s.MaxDuration.Round(time.Millisecond),
	)
}
