package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/ndiwawan/qa-generator-with-human-review/internal/core/qa"
	"github.com/ndiwawan/qa-generator-with-human-review/internal/infra/document"
	"github.com/ndiwawan/qa-generator-with-human-review/internal/infra/labelstudio"
	"github.com/ndiwawan/qa-generator-with-human-review/internal/infra/reviewfiles"
)

const defaultLabelStudioDir = "data/labelstudio"

// exportOptions は export コマンドの入力
type exportOptions struct {
	QAFile    string
	DocFile   string
	OutputDir string
}

// exportOutput は export コマンドが書き出したファイル
type exportOutput struct {
	Tasks      int
	TasksFile  string
	ConfigFile string
	GuideFile  string
}

// ExportAction はQAペアをLabel Studioのタスク形式で出力するコマンドのアクション
func ExportAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := appContextFromCommand(cmd)
	if err != nil {
		return err
	}

	_, err = runExport(appCtx, exportOptions{
		QAFile:    cmd.String("qa-file"),
		DocFile:   cmd.String("doc-file"),
		OutputDir: cmd.String("output-dir"),
	})
	return err
}

func runExport(appCtx *AppContext, opts exportOptions) (*exportOutput, error) {
	if opts.QAFile == "" || opts.DocFile == "" {
		return nil, fmt.Errorf("--qa-file と --doc-file を指定してください")
	}

	var pairs []qa.Pair
	if err := reviewfiles.ReadJSON(opts.QAFile, &pairs); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("QAファイルが見つかりません（先に generate を実行してください）: %s: %w", opts.QAFile, err)
		}
		return nil, err
	}

	doc, err := document.Read(opts.DocFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("ドキュメントが見つかりません: %s: %w", opts.DocFile, err)
		}
		return nil, err
	}

	tasks := labelstudio.BuildTasks(pairs, labelstudio.SourceDocument{
		Name: doc.Name,
		Path: doc.Path,
		Text: doc.Text,
	})

	dir := defaultString(opts.OutputDir, defaultLabelStudioDir)
	out := &exportOutput{
		Tasks:      len(tasks),
		TasksFile:  filepath.Join(dir, labelstudio.TasksFileName),
		ConfigFile: filepath.Join(dir, labelstudio.ConfigFileName),
		GuideFile:  filepath.Join(dir, labelstudio.GuideFileName),
	}

	if err := reviewfiles.WriteJSON(out.TasksFile, tasks); err != nil {
		return nil, err
	}
	appCtx.Logger.Info("tasks saved", "tasks", len(tasks), "path", out.TasksFile)

	if err := reviewfiles.WriteText(out.ConfigFile, labelstudio.LabelConfig()); err != nil {
		return nil, err
	}
	appCtx.Logger.Info("labeling config saved", "path", out.ConfigFile)

	if err := reviewfiles.WriteText(out.GuideFile, labelstudio.ReviewerGuide(len(tasks))); err != nil {
		return nil, err
	}
	appCtx.Logger.Info("reviewer guide saved", "path", out.GuideFile)

	fmt.Fprintf(appCtx.Out, "Label Studio用のファイルを作成しました: %s\n", dir)
	fmt.Fprintf(appCtx.Out, "レビュー手順は %s を参照してください\n", out.GuideFile)

	return out, nil
}
