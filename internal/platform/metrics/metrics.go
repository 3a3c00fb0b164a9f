package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ndiwawan/qa-generator-with-human-review/internal/core/qa"
)

const namespace = "qagen"

// Metrics は1回の実行で集計するメトリクス
// 実行ごとに専用のレジストリを持ち、node_exporter の textfile 形式で書き出す
type Metrics struct {
	registry *prometheus.Registry

	chunksTotal   *prometheus.CounterVec
	failuresTotal *prometheus.CounterVec
	pairsTotal    *prometheus.CounterVec
	promptTokens  prometheus.Counter
	chunkDuration prometheus.Histogram
	reviewTotal   *prometheus.CounterVec
	runInfo       *prometheus.GaugeVec
}

// New は新しいMetricsを作成する
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		chunksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chunks_processed_total",
				Help:      "Count of chunks sent for generation",
			},
			[]string{"status"},
		),
		failuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generation_failures_total",
				Help:      "Count of failed chunk generations by error type",
			},
			[]string{"error_type"},
		),
		pairsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "qa_pairs_generated_total",
				Help:      "Count of generated QA pairs by whether the answer was located",
			},
			[]string{"located"},
		),
		promptTokens: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "prompt_tokens_total",
				Help:      "Estimated prompt tokens sent to the model",
			},
		),
		chunkDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "chunk_generation_duration_seconds",
				Help:      "Time spent generating QA pairs for a chunk",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
			},
		),
		reviewTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "review_items_total",
				Help:      "Count of review items by outcome",
			},
			[]string{"outcome"},
		),
		runInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "run_info",
				Help:      "Run metadata",
			},
			[]string{"run_id", "command"},
		),
	}

	m.registry.MustRegister(
		m.chunksTotal,
		m.failuresTotal,
		m.pairsTotal,
		m.promptTokens,
		m.chunkDuration,
		m.reviewTotal,
		m.runInfo,
	)

	return m
}

// Registry はメトリクスのレジストリを返す
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// SetRunInfo は実行IDとコマンド名を記録する
func (m *Metrics) SetRunInfo(runID, command string) {
	m.runInfo.WithLabelValues(runID, command).Set(1)
}

// ObserveChunk はチャンク単位の生成結果を記録する
func (m *Metrics) ObserveChunk(o qa.ChunkOutcome) {
	m.chunkDuration.Observe(o.Duration.Seconds())
	m.promptTokens.Add(float64(o.PromptTokens))

	if o.Failed() {
		m.chunksTotal.WithLabelValues("failed").Inc()
		m.failuresTotal.WithLabelValues(string(o.ErrorType)).Inc()
		return
	}

	m.chunksTotal.WithLabelValues("ok").Inc()
	m.pairsTotal.WithLabelValues("true").Add(float64(o.Located))
	m.pairsTotal.WithLabelValues("false").Add(float64(o.Pairs - o.Located))
}

// ReviewCounts はレビュー処理の件数
type ReviewCounts struct {
	Accepted    int
	Rejected    int
	Unannotated int
	Unmatched   int
}

// ObserveReview はレビュー処理の結果を記録する
func (m *Metrics) ObserveReview(c ReviewCounts) {
	m.reviewTotal.WithLabelValues("accepted").Add(float64(c.Accepted))
	m.reviewTotal.WithLabelValues("rejected").Add(float64(c.Rejected))
	m.reviewTotal.WithLabelValues("unannotated").Add(float64(c.Unannotated))
	m.reviewTotal.WithLabelValues("unmatched").Add(float64(c.Unmatched))
}

// WriteTextfile はメトリクスを textfile 形式でファイルに書き出す
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

var _ qa.Recorder = (*Metrics)(nil)
