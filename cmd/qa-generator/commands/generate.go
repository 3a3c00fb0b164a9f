package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/ndiwawan/qa-generator-with-human-review/internal/core/chunk"
	"github.com/ndiwawan/qa-generator-with-human-review/internal/core/llm"
	"github.com/ndiwawan/qa-generator-with-human-review/internal/core/qa"
	"github.com/ndiwawan/qa-generator-with-human-review/internal/infra/document"
	"github.com/ndiwawan/qa-generator-with-human-review/internal/infra/reviewfiles"
)

const (
	defaultGeneratedDir = "data/generated"
	defaultReviewDir    = "data/review"
)

// generateOptions は generate コマンドの入力
type generateOptions struct {
	DocPath     string
	OutDir      string
	ReviewDir   string
	MetricsFile string
}

// generateOutput は generate コマンドが書き出したファイル
type generateOutput struct {
	Run       *qa.Run
	PairsFile string
	RunFile   string
	Review    *reviewfiles.ReviewSet
}

// GenerateAction はドキュメントからQAペアを生成するコマンドのアクション
func GenerateAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := appContextFromCommand(cmd)
	if err != nil {
		return err
	}
	applyGenerationFlags(cmd, appCtx)

	_, err = runGenerate(ctx, appCtx, generateOptions{
		DocPath:     cmd.String("doc"),
		OutDir:      cmd.String("out-dir"),
		ReviewDir:   cmd.String("review-dir"),
		MetricsFile: cmd.String("metrics-file"),
	})
	return err
}

// applyGenerationFlags は明示的に指定されたフラグで設定を上書きする
func applyGenerationFlags(cmd *cli.Command, appCtx *AppContext) {
	gen := &appCtx.Config.Generation
	if cmd.IsSet("chunk-size") {
		gen.ChunkSize = int(cmd.Int("chunk-size"))
	}
	if cmd.IsSet("overlap") {
		gen.Overlap = int(cmd.Int("overlap"))
	}
	if cmd.IsSet("num-pairs") {
		gen.NumPairs = int(cmd.Int("num-pairs"))
	}
	if cmd.IsSet("concurrency") {
		gen.Concurrency = int(cmd.Int("concurrency"))
	}
}

func runGenerate(ctx context.Context, appCtx *AppContext, opts generateOptions) (*generateOutput, error) {
	if opts.DocPath == "" {
		return nil, fmt.Errorf("--doc を指定してください")
	}
	cfg := appCtx.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	doc, err := document.Read(opts.DocPath)
	if err != nil {
		return nil, err
	}

	chunker, err := chunk.NewChunker(cfg.Generation.ChunkSize, cfg.Generation.Overlap)
	if err != nil {
		return nil, err
	}
	chunks := chunker.Chunk(doc.Text, doc.Name)
	appCtx.Logger.Info("document chunked",
		"document", doc.Name,
		"content_type", doc.ContentType,
		"chunks", len(chunks),
		"chunk_size", chunker.Size(),
		"overlap", chunker.Overlap(),
	)

	client, err := appCtx.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	failureLog, err := llm.NewFailureLog(cfg.FailureLogDir, appCtx.Logger)
	if err != nil {
		return nil, fmt.Errorf("失敗ログの初期化に失敗: %w", err)
	}
	defer failureLog.Close()

	genOpts := []qa.GeneratorOption{
		qa.WithGeneratorLogger(appCtx.Logger),
		qa.WithFailureLog(failureLog),
		qa.WithProgress(func(p llm.BatchProgress) {
			appCtx.Logger.Info("generation progress", "progress", p.String())
		}),
	}
	if tc, err := llm.NewTokenCounter(); err != nil {
		appCtx.Logger.Warn("token counter unavailable, falling back to estimation", "error", err)
	} else {
		genOpts = append(genOpts, qa.WithTokenCounter(tc))
	}
	if appCtx.Metrics != nil {
		genOpts = append(genOpts, qa.WithRecorder(appCtx.Metrics))
	}

	run := qa.NewRun(doc.Name, doc.Path)
	run.Model = cfg.API.Model
	run.ChunkSize = chunker.Size()
	run.Overlap = chunker.Overlap()
	run.NumPairs = cfg.Generation.NumPairs
	if appCtx.Metrics != nil {
		appCtx.Metrics.SetRunInfo(run.RunID.String(), "generate")
	}

	generator := qa.NewGenerator(client, cfg.GeneratorConfig(), genOpts...)
	result := generator.GenerateAll(ctx, chunks)
	run.Finish(result)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("生成処理が中断されました: %w", err)
	}

	outDir := defaultString(opts.OutDir, defaultGeneratedDir)
	reviewDir := defaultString(opts.ReviewDir, defaultReviewDir)

	out := &generateOutput{
		Run:       run,
		PairsFile: filepath.Join(outDir, doc.Stem()+"_qa_pairs_with_refs.json"),
		RunFile:   filepath.Join(outDir, doc.Stem()+"_run.json"),
	}
	run.OutputFile = out.PairsFile

	if err := reviewfiles.WriteJSON(out.PairsFile, result.Pairs); err != nil {
		return nil, err
	}
	review, err := reviewfiles.WriteReviewSet(reviewDir, doc.Stem(), result.Pairs)
	if err != nil {
		return nil, err
	}
	out.Review = review
	if err := reviewfiles.WriteJSON(out.RunFile, run); err != nil {
		return nil, err
	}

	appCtx.Logger.Info("generation completed",
		"run_id", run.RunID,
		"pairs", run.Pairs,
		"failed_chunks", len(run.FailedChunks),
		"duration", run.Duration(),
		"output", out.PairsFile,
	)
	if path := failureLog.Path(); path != "" && len(run.FailedChunks) > 0 {
		appCtx.Logger.Warn("some chunks failed", "failure_log", path, "chunk_ids", run.FailedChunks)
	}

	displayRunSummary(appCtx, out)
	appCtx.writeMetrics(opts.MetricsFile)

	return out, nil
}

func displayRunSummary(appCtx *AppContext, out *generateOutput) {
	run := out.Run

	table := tablewriter.NewWriter(appCtx.Out)
	table.Header("項目", "値")
	table.Append("ドキュメント", run.Document)
	table.Append("チャンク数", fmt.Sprintf("%d", run.Chunks))
	table.Append("QAペア数", fmt.Sprintf("%d", run.Pairs))
	table.Append("回答行を特定", fmt.Sprintf("%d", run.LocatedPairs))
	table.Append("失敗チャンク", fmt.Sprintf("%v", run.FailedChunks))
	table.Append("平均ペア数/チャンク", fmt.Sprintf("%.2f", run.AvgPairsPerChunk))
	table.Append("推定プロンプトトークン", fmt.Sprintf("%d", run.PromptTokens))
	table.Append("QAファイル", out.PairsFile)
	if out.Review != nil {
		table.Append("レビューCSV", out.Review.CSV)
		table.Append("レビューMarkdown", out.Review.Markdown)
	}
	table.Render()
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
