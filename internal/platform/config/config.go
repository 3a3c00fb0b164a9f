package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ndiwawan/qa-generator-with-human-review/internal/core/chunk"
	"github.com/ndiwawan/qa-generator-with-human-review/internal/core/qa"
	"github.com/ndiwawan/qa-generator-with-human-review/internal/platform/logger"
)

// DefaultConfigPath は設定ファイルの既定パス
const DefaultConfigPath = "configs/config.yaml"

// ErrInvalidConfig は設定値が不正な場合のエラー
var ErrInvalidConfig = errors.New("invalid config")

// Config はアプリケーション全体の設定を保持します
type Config struct {
	API        APIConfig        `yaml:"api-endpoint"`
	Generation GenerationConfig `yaml:"generation"`
	Logging    LoggingConfig    `yaml:"logging"`

	// FailureLogDir は生成失敗ログの出力先（空の場合は記録しない）
	FailureLogDir string `yaml:"failure_log_dir"`

	// Source は読み込んだ設定ファイルのパス（ファイルがない場合は空）
	Source string `yaml:"-"`
}

// APIConfig はOpenAI互換APIの接続設定
type APIConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"api_base"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout はAPI呼び出しのタイムアウトを返す
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GenerationConfig は分割・生成処理の設定
type GenerationConfig struct {
	ChunkSize         int     `yaml:"chunk_size"`
	Overlap           int     `yaml:"overlap"`
	NumPairs          int     `yaml:"num_pairs"`
	Temperature       float64 `yaml:"temperature"`
	MaxTokens         int     `yaml:"max_tokens"`
	Concurrency       int     `yaml:"concurrency"`
	RequestsPerMinute int     `yaml:"requests_per_minute"`
}

// LoggingConfig はログ出力の設定
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default は既定値のみを設定した Config を返す
func Default() *Config {
	return &Config{
		API: APIConfig{
			Model:          "gpt-4o-mini",
			TimeoutSeconds: 60,
		},
		Generation: GenerationConfig{
			ChunkSize:   chunk.DefaultSize,
			Overlap:     chunk.DefaultOverlap,
			NumPairs:    qa.DefaultNumPairs,
			Temperature: qa.DefaultTemperature,
			Concurrency: 1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load は既定値、設定ファイル、環境変数（.envファイルを含む）の順に設定を読み込みます
// 設定ファイルや.envファイルが存在しない場合はスキップします
func Load(configPath, envFilePath string) (*Config, error) {
	// .envファイルが存在する場合は読み込む
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			// ファイルが存在しない場合はエラーとしない（環境変数のみで動作可能）
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load .env file: %w", err)
			}
		}
	}

	cfg := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
			}
			cfg.Source = configPath
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	cfg.applyEnv()

	return cfg, nil
}

// applyEnv は環境変数で設定を上書きします
func (c *Config) applyEnv() {
	c.API.APIKey = getEnv("OPENAI_API_KEY", c.API.APIKey)
	c.API.BaseURL = getEnv("QA_API_BASE", c.API.BaseURL)
	c.API.Model = getEnv("QA_MODEL", c.API.Model)
	c.API.TimeoutSeconds = getEnvAsInt("QA_API_TIMEOUT_SECONDS", c.API.TimeoutSeconds)

	c.Generation.ChunkSize = getEnvAsInt("QA_CHUNK_SIZE", c.Generation.ChunkSize)
	c.Generation.Overlap = getEnvAsInt("QA_OVERLAP", c.Generation.Overlap)
	c.Generation.NumPairs = getEnvAsInt("QA_NUM_PAIRS", c.Generation.NumPairs)
	c.Generation.Temperature = getEnvAsFloat("QA_TEMPERATURE", c.Generation.Temperature)
	c.Generation.MaxTokens = getEnvAsInt("QA_MAX_TOKENS", c.Generation.MaxTokens)
	c.Generation.Concurrency = getEnvAsInt("QA_CONCURRENCY", c.Generation.Concurrency)
	c.Generation.RequestsPerMinute = getEnvAsInt("QA_REQUESTS_PER_MINUTE", c.Generation.RequestsPerMinute)

	c.Logging.Level = getEnv("QA_LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("QA_LOG_FORMAT", c.Logging.Format)

	c.FailureLogDir = getEnv("QA_FAILURE_LOG_DIR", c.FailureLogDir)
}

// Validate は設定値の整合性を検証します
// 分割設定の不正は生成処理の前に検出する
func (c *Config) Validate() error {
	if err := chunk.Validate(c.Generation.ChunkSize, c.Generation.Overlap); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Generation.NumPairs <= 0 {
		return fmt.Errorf("%w: num_pairs must be positive, got %d", ErrInvalidConfig, c.Generation.NumPairs)
	}
	if c.Generation.Temperature < 0 || c.Generation.Temperature > 2 {
		return fmt.Errorf("%w: temperature must be between 0 and 2, got %g", ErrInvalidConfig, c.Generation.Temperature)
	}
	if c.Generation.MaxTokens < 0 {
		return fmt.Errorf("%w: max_tokens must not be negative, got %d", ErrInvalidConfig, c.Generation.MaxTokens)
	}
	if c.Generation.Concurrency <= 0 {
		return fmt.Errorf("%w: concurrency must be positive, got %d", ErrInvalidConfig, c.Generation.Concurrency)
	}
	if c.Generation.RequestsPerMinute < 0 {
		return fmt.Errorf("%w: requests_per_minute must not be negative, got %d", ErrInvalidConfig, c.Generation.RequestsPerMinute)
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("%w: logging.format must be json or text, got %q", ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}

// Logger はロガー設定を返します（不正なレベルは info として扱います）
func (c *Config) Logger() logger.Config {
	level, _ := logger.ParseLevel(c.Logging.Level)
	return logger.Config{
		Level:  level,
		Format: c.Logging.Format,
	}
}

// GeneratorConfig は生成処理の設定を返します
func (c *Config) GeneratorConfig() qa.GeneratorConfig {
	return qa.GeneratorConfig{
		NumPairs:    c.Generation.NumPairs,
		Temperature: c.Generation.Temperature,
		MaxTokens:   c.Generation.MaxTokens,
		Model:       c.API.Model,
		Concurrency: c.Generation.Concurrency,
	}
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt は環境変数を整数として取得します
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat は環境変数を浮動小数点数として取得します
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}
