package qa

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/ndiwawan/qa-generator-with-human-review/internal/core/chunk"
	"github.com/ndiwawan/qa-generator-with-human-review/internal/core/llm"
	"github.com/ndiwawan/qa-generator-with-human-review/internal/core/reference"
)

const (
	DefaultNumPairs    = 5
	DefaultTemperature = 0.7
)

// GeneratorConfig は生成処理の設定
type GeneratorConfig struct {
	NumPairs    int
	Temperature float64
	MaxTokens   int
	Model       string
	// Concurrency は同時に処理するチャンク数（1の場合は逐次実行）
	Concurrency int
}

// Recorder はチャンク単位の生成結果を受け取る
type Recorder interface {
	ObserveChunk(outcome ChunkOutcome)
}

// Generator はチャンクから質問・回答ペアを生成するビジネスロジックを提供する
type Generator struct {
	client   llm.Client
	config   GeneratorConfig
	logger   *slog.Logger
	tokens   *llm.TokenCounter
	failures *llm.FailureLog
	recorder Recorder
	progress func(llm.BatchProgress)
}

type GeneratorOption func(*Generator)

// WithGeneratorLogger は Generator にロガーを設定する
func WithGeneratorLogger(logger *slog.Logger) GeneratorOption {
	return func(g *Generator) {
		g.logger = logger
	}
}

// WithTokenCounter はプロンプトのトークン数計測に使う TokenCounter を設定する
func WithTokenCounter(tc *llm.TokenCounter) GeneratorOption {
	return func(g *Generator) {
		g.tokens = tc
	}
}

// WithFailureLog は失敗記録先を設定する
func WithFailureLog(fl *llm.FailureLog) GeneratorOption {
	return func(g *Generator) {
		g.failures = fl
	}
}

// WithRecorder はチャンク結果の記録先を設定する
func WithRecorder(r Recorder) GeneratorOption {
	return func(g *Generator) {
		g.recorder = r
	}
}

// WithProgress は進捗コールバックを設定する
func WithProgress(fn func(llm.BatchProgress)) GeneratorOption {
	return func(g *Generator) {
		g.progress = fn
	}
}

// NewGenerator は新しいGeneratorを作成する
func NewGenerator(client llm.Client, cfg GeneratorConfig, opts ...GeneratorOption) *Generator {
	if cfg.NumPairs <= 0 {
		cfg.NumPairs = DefaultNumPairs
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}

	g := &Generator{
		client: client,
		config: cfg,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.logger == nil {
		g.logger = slog.Default()
	}

	return g
}

// Config は適用済みの設定を返す
func (g *Generator) Config() GeneratorConfig {
	return g.config
}

// GenerateForChunk は1チャンク分の質問・回答ペアを生成する
func (g *Generator) GenerateForChunk(ctx context.Context, c chunk.Chunk) ([]Pair, error) {
	resp, err := g.client.GenerateCompletion(ctx, g.request(c))
	if err != nil {
		return nil, fmt.Errorf("failed to generate completion for chunk %d: %w", c.ID, err)
	}

	generated, err := ParseResponse(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("chunk %d: %w", c.ID, err)
	}

	return attach(c, generated), nil
}

// GenerateAll はすべてのチャンクについて質問・回答ペアを生成する
// 失敗したチャンクはログに記録されペア0件として扱われ、残りのチャンクは継続される
func (g *Generator) GenerateAll(ctx context.Context, chunks []chunk.Chunk) *Result {
	requests := make([]llm.BatchRequest, len(chunks))
	for i, c := range chunks {
		requests[i] = llm.BatchRequest{ID: strconv.Itoa(c.ID), Request: g.request(c)}
	}

	processor := llm.NewBatchProcessor(g.client, llm.BatchProcessorConfig{
		MaxConcurrency:   g.config.Concurrency,
		ProgressCallback: g.progress,
	})

	g.logger.Info("generating qa pairs",
		"chunks", len(chunks),
		"numPairs", g.config.NumPairs,
		"concurrency", g.config.Concurrency,
	)

	results := processor.ProcessBatch(ctx, requests)

	out := &Result{
		Pairs:    []Pair{},
		Outcomes: make([]ChunkOutcome, 0, len(chunks)),
	}

	for i, res := range results {
		c := chunks[i]
		pairs, outcome := g.collect(c, requests[i].Request, res)
		out.Pairs = append(out.Pairs, pairs...)
		out.Outcomes = append(out.Outcomes, outcome)

		if g.recorder != nil {
			g.recorder.ObserveChunk(outcome)
		}
	}

	stats := llm.CalculateBatchStats(results)
	g.logger.Info("generation finished",
		"pairs", len(out.Pairs),
		"failedChunks", stats.FailureCount,
		"avgDuration", stats.AverageDuration.Round(time.Millisecond),
	)

	return out
}

func (g *Generator) collect(c chunk.Chunk, req llm.CompletionRequest, res llm.BatchResult) ([]Pair, ChunkOutcome) {
	outcome := ChunkOutcome{
		ChunkID:      c.ID,
		Duration:     res.Duration,
		PromptTokens: g.tokens.CountTokens(req.SystemPrompt + req.Prompt),
	}

	if res.Error != nil {
		outcome.Err = res.Error
		outcome.ErrorType = llm.ClassifyError(res.Error)
		g.recordFailure(c, req, "", outcome)
		return nil, outcome
	}

	generated, err := ParseResponse(res.Response.Content)
	if err != nil {
		outcome.Err = err
		outcome.ErrorType = llm.ErrorTypeParseFailed
		g.recordFailure(c, req, res.Response.Content, outcome)
		return nil, outcome
	}

	pairs := attach(c, generated)
	outcome.Pairs = len(pairs)
	for _, p := range pairs {
		if p.Reference.Located() {
			outcome.Located++
		}
	}

	g.logger.Debug("chunk processed", "chunk", c.ID, "pairs", outcome.Pairs, "located", outcome.Located)

	return pairs, outcome
}

func (g *Generator) recordFailure(c chunk.Chunk, req llm.CompletionRequest, response string, outcome ChunkOutcome) {
	g.logger.Warn("failed to generate qa pairs for chunk",
		"chunk", c.ID,
		"type", outcome.ErrorType,
		"error", outcome.Err,
	)

	if err := g.failures.Record(llm.FailureRecord{
		ErrorType:    outcome.ErrorType,
		ItemID:       fmt.Sprintf("chunk-%d", c.ID),
		Prompt:       req.Prompt,
		Response:     response,
		ErrorMessage: outcome.Err.Error(),
	}); err != nil {
		g.logger.Warn("failed to record generation failure", "chunk", c.ID, "error", err)
	}
}

func (g *Generator) request(c chunk.Chunk) llm.CompletionRequest {
	return llm.CompletionRequest{
		SystemPrompt: SystemPrompt,
		Prompt:       BuildPrompt(c.Text, g.config.NumPairs),
		Temperature:  g.config.Temperature,
		MaxTokens:    g.config.MaxTokens,
		Model:        g.config.Model,
	}
}

func attach(c chunk.Chunk, generated []Generated) []Pair {
	pairs := make([]Pair, 0, len(generated))
	for _, item := range generated {
		pairs = append(pairs, Pair{
			Question:  item.Question,
			Answer:    item.Answer,
			Reference: reference.New(c, item.Answer),
		})
	}
	return pairs
}
