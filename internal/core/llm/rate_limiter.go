package llm

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// RateLimiter は1分あたりのリクエスト数をトークンバケットで制限する
type RateLimiter struct {
	mu sync.Mutex

	// maxRequests はウィンドウあたりの最大リクエスト数
	maxRequests int

	// window はトークンを補充する間隔
	window time.Duration

	// tokens はトークンバケット
	tokens int

	// lastRefill は最後にトークンを補充した時刻
	lastRefill time.Time

	// waitQueue は待機中のリクエスト数
	waitQueue int
}

// NewRateLimiter は新しいRateLimiterを作成する
func NewRateLimiter(maxRequestsPerMinute int) *RateLimiter {
	return &RateLimiter{
		maxRequests: maxRequestsPerMinute,
		window:      time.Minute,
		tokens:      maxRequestsPerMinute,
		lastRefill:  time.Now(),
	}
}

// Wait はレート制限に従って待機し、実行権限を取得する
// contextがキャンセルされた場合はエラーを返す
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		rl.mu.Lock()
		rl.refillTokens()

		if rl.tokens > 0 {
			rl.tokens--
			rl.mu.Unlock()
			return nil
		}

		// 次の補充時刻まで待機
		waitDuration := time.Until(rl.lastRefill.Add(rl.window))
		rl.waitQueue++
		rl.mu.Unlock()

		select {
		case <-time.After(waitDuration):
		case <-ctx.Done():
			rl.mu.Lock()
			rl.waitQueue--
			rl.mu.Unlock()
			return ctx.Err()
		}

		rl.mu.Lock()
		rl.waitQueue--
		rl.mu.Unlock()
	}
}

// refillTokens はトークンを補充する
// 呼び出し側でロックを取得していることを前提とする
func (rl *RateLimiter) refillTokens() {
	elapsed := time.Since(rl.lastRefill)
	if elapsed < rl.window {
		return
	}

	windows := int(elapsed / rl.window)
	rl.tokens = min(rl.tokens+windows*rl.maxRequests, rl.maxRequests)
	rl.lastRefill = rl.lastRefill.Add(time.Duration(windows) * rl.window)
}

// GetStatus は現在の状態を返す（デバッグ・監視用）
func (rl *RateLimiter) GetStatus() RateLimiterStatus {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refillTokens()

	return RateLimiterStatus{
		MaxRequestsPerMinute: rl.maxRequests,
		AvailableTokens:      rl.tokens,
		WaitingRequests:      rl.waitQueue,
	}
}

// RateLimiterStatus はレート制限の状態
type RateLimiterStatus struct {
	MaxRequestsPerMinute int
	AvailableTokens      int
	WaitingRequests      int
}

// String はステータスを文字列表現で返す
func (s RateLimiterStatus) String() string {
	return fmt.Sprintf(
		"RateLimiter: max=%d/min, available=%d, waiting=%d",
		s.MaxRequestsPerMinute,
		s.AvailableTokens,
		s.WaitingRequests,
	)
}

// ThrottledClient はレート制限付きのLLMクライアント
type ThrottledClient struct {
	client      Client
	rateLimiter *RateLimiter
}

// NewThrottledClient はレート制限付きのLLMクライアントを作成する
// maxRequestsPerMinute が0以下の場合はレート制限を行わず client をそのまま返す
func NewThrottledClient(client Client, maxRequestsPerMinute int) Client {
	if maxRequestsPerMinute <= 0 {
		return client
	}
	return &ThrottledClient{
		client:      client,
		rateLimiter: NewRateLimiter(maxRequestsPerMinute),
	}
}

// GenerateCompletion はレート制限に従ってLLM APIを呼び出す
func (tc *ThrottledClient) GenerateCompletion(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	if err := tc.rateLimiter.Wait(ctx); err != nil {
		return CompletionResponse{}, fmt.Errorf("rate limiter wait failed: %w", err)
	}
	return tc.client.GenerateCompletion(ctx, req)
}

// GetRateLimiterStatus はレート制限の状態を返す
func (tc *ThrottledClient) GetRateLimiterStatus() RateLimiterStatus {
	return tc.rateLimiter.GetStatus()
}

var _ Client = (*ThrottledClient)(nil)
