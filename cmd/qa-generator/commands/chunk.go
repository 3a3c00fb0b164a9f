package commands

import (
	"context"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/ndiwawan/qa-generator-with-human-review/internal/core/chunk"
	"github.com/ndiwawan/qa-generator-with-human-review/internal/infra/document"
)

// ChunkAction はドキュメントの分割結果を表示するコマンドのアクション
func ChunkAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := appContextFromCommand(cmd)
	if err != nil {
		return err
	}
	applyGenerationFlags(cmd, appCtx)

	_, err = runChunk(appCtx, cmd.String("doc"))
	return err
}

func runChunk(appCtx *AppContext, docPath string) ([]chunk.Chunk, error) {
	if docPath == "" {
		return nil, fmt.Errorf("--doc を指定してください")
	}
	gen := appCtx.Config.Generation

	doc, err := document.Read(docPath)
	if err != nil {
		return nil, err
	}
	chunks, err := chunk.Split(doc.Text, gen.ChunkSize, gen.Overlap, doc.Name)
	if err != nil {
		return nil, err
	}

	appCtx.Logger.Info("document chunked",
		"document", doc.Name,
		"chars", len([]rune(doc.Text)),
		"chunks", len(chunks),
	)

	table := tablewriter.NewWriter(appCtx.Out)
	table.Header("Chunk ID", "Chars", "Lines", "Preview")
	for _, c := range chunks {
		table.Append(
			fmt.Sprintf("%d", c.ID),
			fmt.Sprintf("%d-%d", c.CharStart, c.CharEnd),
			fmt.Sprintf("%d-%d", c.LineStart, c.LineEnd),
			c.Preview,
		)
	}
	table.Render()

	return chunks, nil
}
