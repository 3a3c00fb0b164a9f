package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrorType はエラーの種類を表します
type ErrorType string

const (
	// ErrorTypeParseFailed はレスポンスの解析エラー
	ErrorTypeParseFailed ErrorType = "parse_failed"
	// ErrorTypeRateLimitExceeded はレート制限エラー
	ErrorTypeRateLimitExceeded ErrorType = "rate_limit_exceeded"
	// ErrorTypeTimeout はタイムアウト・キャンセル
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeUnknown は不明なエラー
	ErrorTypeUnknown ErrorType = "unknown"
)

// ClassifyError はエラーの種類を判定します
func ClassifyError(err error) ErrorType {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrorTypeTimeout
	case errors.Is(err, ErrRateLimitExceeded), errors.Is(err, ErrMaxRetriesExceeded):
		return ErrorTypeRateLimitExceeded
	default:
		return ErrorTypeUnknown
	}
}

// FailureRecord は失敗した生成処理のログレコードです
type FailureRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	ErrorType    ErrorType `json:"error_type"`
	ItemID       string    `json:"item_id"`
	Prompt       string    `json:"prompt"`
	Response     string    `json:"response"`
	ErrorMessage string    `json:"error_message"`
}

// FailureLog は失敗した生成処理をJSONL形式で記録します
type FailureLog struct {
	logFile  *os.File
	logMutex sync.Mutex
	enabled  bool
	logger   *slog.Logger
}

// NewFailureLog は新しいFailureLogを作成します
// logDir が空の場合は記録を行いません
func NewFailureLog(logDir string, logger *slog.Logger) (*FailureLog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if logDir == "" {
		return &FailureLog{enabled: false, logger: logger}, nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// 日付でローテーション
	logFileName := fmt.Sprintf("generation_failures_%s.jsonl", time.Now().Format("2006-01-02"))
	logFile, err := os.OpenFile(filepath.Join(logDir, logFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return &FailureLog{
		logFile: logFile,
		enabled: true,
		logger:  logger,
	}, nil
}

// Path はログファイルのパスを返します（無効時は空文字）
func (l *FailureLog) Path() string {
	if l == nil || l.logFile == nil {
		return ""
	}
	return l.logFile.Name()
}

// Close はログファイルを閉じます
func (l *FailureLog) Close() error {
	if l != nil && l.logFile != nil {
		return l.logFile.Close()
	}
	return nil
}

// Record は失敗をログに記録します
func (l *FailureLog) Record(record FailureRecord) error {
	if l == nil || !l.enabled {
		return nil
	}

	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	record.Prompt = TruncateString(record.Prompt, 500)
	record.Response = TruncateString(record.Response, 2000)

	l.logMutex.Lock()
	defer l.logMutex.Unlock()

	jsonBytes, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal failure record: %w", err)
	}

	if _, err := l.logFile.Write(append(jsonBytes, '\n')); err != nil {
		return fmt.Errorf("failed to write log: %w", err)
	}

	l.logger.Debug("generation failure recorded", "item", record.ItemID, "type", record.ErrorType)

	return nil
}

// TruncateString は文字列を指定された長さに切り詰めます（ログ記録用）
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "... (truncated)"
}
