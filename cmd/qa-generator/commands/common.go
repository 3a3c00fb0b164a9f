package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/ndiwawan/qa-generator-with-human-review/internal/core/llm"
	"github.com/ndiwawan/qa-generator-with-human-review/internal/infra/openai"
	"github.com/ndiwawan/qa-generator-with-human-review/internal/platform/config"
	"github.com/ndiwawan/qa-generator-with-human-review/internal/platform/logger"
	"github.com/ndiwawan/qa-generator-with-human-review/internal/platform/metrics"
)

// ClientFactory は設定からLLMクライアントを作成する
type ClientFactory func(cfg *config.Config) (llm.Client, error)

// AppContext はコマンド実行に必要な共通コンテキストを保持する
type AppContext struct {
	Config    *config.Config
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	NewClient ClientFactory
	// Out は結果表示の出力先
	Out io.Writer
}

// NewAppContext は設定を読み込み、ロガーを初期化して AppContext を作成する
func NewAppContext(configPath, envFile string) (*AppContext, error) {
	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		return nil, fmt.Errorf("設定の読み込みに失敗: %w", err)
	}

	appLogger := logger.New(cfg.Logger())
	if cfg.Source != "" {
		appLogger.Debug("config loaded", "path", cfg.Source)
	}

	return &AppContext{
		Config:    cfg,
		Logger:    appLogger,
		Metrics:   metrics.New(),
		NewClient: NewOpenAIClient,
		Out:       os.Stdout,
	}, nil
}

// appContextFromCommand は共通フラグ（--config, --env）から AppContext を作成する
func appContextFromCommand(cmd *cli.Command) (*AppContext, error) {
	return NewAppContext(cmd.String("config"), cmd.String("env"))
}

// NewOpenAIClient は設定に従ってOpenAI互換クライアントを作成する
// requests_per_minute が設定されている場合はレート制限を適用する
func NewOpenAIClient(cfg *config.Config) (llm.Client, error) {
	client, err := openai.NewClient(openai.Options{
		APIKey:  cfg.API.APIKey,
		BaseURL: cfg.API.BaseURL,
		Model:   cfg.API.Model,
		Timeout: cfg.API.Timeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("LLMクライアントの初期化に失敗: %w", err)
	}

	return llm.NewThrottledClient(client, cfg.Generation.RequestsPerMinute), nil
}

// writeMetrics はメトリクスファイルが指定されている場合に書き出す
func (ac *AppContext) writeMetrics(path string) {
	if path == "" || ac.Metrics == nil {
		return
	}
	if err := ac.Metrics.WriteTextfile(path); err != nil {
		ac.Logger.Warn("failed to write metrics", "path", path, "error", err)
		return
	}
	ac.Logger.Info("metrics written", "path", path)
}

// WithCommonFlags はすべてのコマンドが受け付けるフラグ（--env, --config）を先頭に付与する
func WithCommonFlags(flags ...cli.Flag) []cli.Flag {
	return append([]cli.Flag{
		&cli.StringFlag{
			Name:  "env",
			Usage: "環境変数ファイルパス",
			Value: ".env",
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "設定ファイルパス",
			Value: config.DefaultConfigPath,
		},
	}, flags...)
}
