package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/ndiwawan/qa-generator-with-human-review/internal/core/qa"
	"github.com/ndiwawan/qa-generator-with-human-review/internal/core/review"
	"github.com/ndiwawan/qa-generator-with-human-review/internal/infra/labelstudio"
	"github.com/ndiwawan/qa-generator-with-human-review/internal/infra/reviewfiles"
	"github.com/ndiwawan/qa-generator-with-human-review/internal/platform/metrics"
)

const defaultReviewedDir = "data/reviewed"

// 出力ファイル名
const (
	filteredFileName = "filtered_qa_pairs.json"
	rejectedFileName = "rejected_qa_pairs.json"
	reportFileName   = "review_report.md"
	cleanFileName    = "clean_qa_pairs.json"
)

// processOptions は process コマンドの入力
type processOptions struct {
	ExportFile  string
	OriginalQA  string
	MinQuality  string
	OutputDir   string
	MetricsFile string
}

// processOutput は process コマンドの処理結果
type processOutput struct {
	Merge    review.MergeResult
	Accepted []review.ReviewedPair
	Rejected []review.ReviewedPair
	Report   string

	FilteredFile string
	RejectedFile string
	ReportFile   string
	CleanFile    string
}

// ProcessAction はLabel Studioのレビュー結果を取り込むコマンドのアクション
func ProcessAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := appContextFromCommand(cmd)
	if err != nil {
		return err
	}

	_, err = runProcess(appCtx, processOptions{
		ExportFile:  cmd.Args().First(),
		OriginalQA:  cmd.String("original-qa"),
		MinQuality:  cmd.String("min-quality"),
		OutputDir:   cmd.String("output-dir"),
		MetricsFile: cmd.String("metrics-file"),
	})
	return err
}

func runProcess(appCtx *AppContext, opts processOptions) (*processOutput, error) {
	if opts.ExportFile == "" {
		return nil, fmt.Errorf("Label Studioのエクスポートファイルを指定してください")
	}
	if opts.OriginalQA == "" {
		return nil, fmt.Errorf("--original-qa を指定してください")
	}

	threshold := review.DefaultMinQuality
	if opts.MinQuality != "" {
		q, err := review.ParseThreshold(opts.MinQuality)
		if err != nil {
			return nil, fmt.Errorf("--min-quality が不正です: %w", err)
		}
		threshold = q
	}

	items, err := readExport(opts.ExportFile)
	if err != nil {
		return nil, err
	}

	var originals []qa.Pair
	if err := reviewfiles.ReadJSON(opts.OriginalQA, &originals); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("元のQAファイルが見つかりません（先に generate を実行してください）: %s: %w", opts.OriginalQA, err)
		}
		return nil, err
	}

	appCtx.Logger.Info("processing review export", "export", opts.ExportFile, "items", len(items), "originals", len(originals))

	merged := review.Merge(labelstudio.ReviewItems(items), originals)
	for _, id := range merged.Unannotated {
		appCtx.Logger.Warn("no annotations for QA pair", "id", id)
	}
	for _, id := range merged.Unmatched {
		appCtx.Logger.Warn("review item has no matching QA pair", "id", id, "originals", len(originals))
	}

	accepted, rejected := review.Filter(merged.Pairs, threshold)

	dir := defaultString(opts.OutputDir, defaultReviewedDir)
	out := &processOutput{
		Merge:        merged,
		Accepted:     accepted,
		Rejected:     rejected,
		Report:       review.RenderReport(&merged.Stats, len(accepted), len(rejected)),
		FilteredFile: filepath.Join(dir, filteredFileName),
		RejectedFile: filepath.Join(dir, rejectedFileName),
		ReportFile:   filepath.Join(dir, reportFileName),
		CleanFile:    filepath.Join(dir, cleanFileName),
	}

	if err := reviewfiles.WriteJSON(out.FilteredFile, accepted); err != nil {
		return nil, err
	}
	if err := reviewfiles.WriteJSON(out.RejectedFile, rejected); err != nil {
		return nil, err
	}
	if err := reviewfiles.WriteText(out.ReportFile, out.Report); err != nil {
		return nil, err
	}
	if err := reviewfiles.WriteJSON(out.CleanFile, review.Clean(accepted)); err != nil {
		return nil, err
	}

	appCtx.Logger.Info("review processed",
		"min_quality", threshold.String(),
		"accepted", len(accepted),
		"rejected", len(rejected),
		"output_dir", dir,
	)

	fmt.Fprintln(appCtx.Out, out.Report)
	displayReviewTable(appCtx, out)

	if appCtx.Metrics != nil {
		appCtx.Metrics.SetRunInfo(uuid.NewString(), "process")
		appCtx.Metrics.ObserveReview(metrics.ReviewCounts{
			Accepted:    len(accepted),
			Rejected:    len(rejected),
			Unannotated: len(merged.Unannotated),
			Unmatched:   len(merged.Unmatched),
		})
	}
	appCtx.writeMetrics(opts.MetricsFile)

	return out, nil
}

// readExport はエクスポートファイルを読み込み、入力不備を利用者向けのメッセージにする
func readExport(path string) ([]labelstudio.ExportItem, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("エクスポートファイルが見つかりません（Label StudioからJSON形式でエクスポートしてください）: %s: %w", path, err)
		}
		return nil, fmt.Errorf("エクスポートファイルを開けません: %w", err)
	}
	defer f.Close()

	items, err := labelstudio.DecodeExport(f)
	switch {
	case errors.Is(err, labelstudio.ErrEmptyExport):
		return nil, fmt.Errorf("エクスポートファイルが空です（レビュー完了後にエクスポートしてください）: %s: %w", path, err)
	case errors.Is(err, labelstudio.ErrInvalidExport):
		return nil, fmt.Errorf("エクスポートファイルのJSONが不正です（JSON形式でエクスポートしてください）: %s: %w", path, err)
	case err != nil:
		return nil, err
	}
	return items, nil
}

func displayReviewTable(appCtx *AppContext, out *processOutput) {
	stats := out.Merge.Stats

	table := tablewriter.NewWriter(appCtx.Out)
	table.Header("項目", "値")
	table.Append("レビュー対象", fmt.Sprintf("%d", stats.Total))
	table.Append("レビュー済み", fmt.Sprintf("%d (%.1f%%)", stats.Completed, stats.CompletionRate()))
	table.Append("未レビュー", fmt.Sprintf("%d", len(out.Merge.Unannotated)))
	table.Append("対応なし", fmt.Sprintf("%d", len(out.Merge.Unmatched)))
	table.Append("採用", fmt.Sprintf("%d", len(out.Accepted)))
	table.Append("不採用", fmt.Sprintf("%d", len(out.Rejected)))
	table.Append("採用ファイル", out.FilteredFile)
	table.Append("学習用ファイル", out.CleanFile)
	table.Render()
}
