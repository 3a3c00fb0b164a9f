package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/ndiwawan/qa-generator-with-human-review/cmd/qa-generator/commands"
	"github.com/ndiwawan/qa-generator-with-human-review/internal/core/review"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "qa-generator",
		Usage: "ドキュメントからQAペアを生成し、Label Studioでの人手レビューを経て学習データを作成する",
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "ドキュメントを分割し、チャンクごとにQAペアを生成",
				Flags: commands.WithCommonFlags(
					&cli.StringFlag{
						Name:     "doc",
						Usage:    "入力ドキュメント（テキストファイル）",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "out-dir",
						Usage: "QAペアの出力先ディレクトリ",
						Value: "data/generated",
					},
					&cli.StringFlag{
						Name:  "review-dir",
						Usage: "レビュー用ファイル（JSON/CSV/Markdown）の出力先ディレクトリ",
						Value: "data/review",
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "チャンクサイズ（文字数、設定ファイルの値を上書き）",
					},
					&cli.IntFlag{
						Name:  "overlap",
						Usage: "チャンク間のオーバーラップ（文字数、設定ファイルの値を上書き）",
					},
					&cli.IntFlag{
						Name:  "num-pairs",
						Usage: "チャンクあたりのQAペア数（設定ファイルの値を上書き）",
					},
					&cli.IntFlag{
						Name:  "concurrency",
						Usage: "同時に処理するチャンク数（設定ファイルの値を上書き）",
					},
					&cli.StringFlag{
						Name:  "metrics-file",
						Usage: "メトリクスの出力先（Prometheus textfile 形式）",
					},
				),
				Action: commands.GenerateAction,
			},
			{
				Name:  "chunk",
				Usage: "ドキュメントの分割結果を表示",
				Flags: commands.WithCommonFlags(
					&cli.StringFlag{
						Name:     "doc",
						Usage:    "入力ドキュメント（テキストファイル）",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "チャンクサイズ（文字数、設定ファイルの値を上書き）",
					},
					&cli.IntFlag{
						Name:  "overlap",
						Usage: "チャンク間のオーバーラップ（文字数、設定ファイルの値を上書き）",
					},
				),
				Action: commands.ChunkAction,
			},
			{
				Name:  "export",
				Usage: "QAペアをLabel Studioのタスク形式で出力",
				Flags: commands.WithCommonFlags(
					&cli.StringFlag{
						Name:     "qa-file",
						Usage:    "generate が出力したQAペアファイル",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "doc-file",
						Usage:    "QAペアの元ドキュメント",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "output-dir",
						Usage: "出力先ディレクトリ",
						Value: "data/labelstudio",
					},
				),
				Action: commands.ExportAction,
			},
			{
				Name:      "process",
				Usage:     "Label Studioのレビュー結果を取り込み、品質でフィルタリング",
				ArgsUsage: "<export_file>",
				Flags: commands.WithCommonFlags(
					&cli.StringFlag{
						Name:     "original-qa",
						Usage:    "generate が出力した元のQAペアファイル",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "min-quality",
						Usage: "採用する最低品質（Excellent, Good, Fair）",
						Value: review.DefaultMinQuality.String(),
					},
					&cli.StringFlag{
						Name:  "output-dir",
						Usage: "出力先ディレクトリ",
						Value: "data/reviewed",
					},
					&cli.StringFlag{
						Name:  "metrics-file",
						Usage: "メトリクスの出力先（Prometheus textfile 形式）",
					},
				),
				Action: commands.ProcessAction,
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
