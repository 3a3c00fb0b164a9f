package reviewfiles

import (
	"fmt"
	"strings"

	"github.com/ndiwawan/qa-generator-with-human-review/internal/core/qa"
)

// RenderMarkdown は読みやすいレビュー用ドキュメントを作成する
func RenderMarkdown(pairs []qa.Pair) string {
	var sb strings.Builder

	sb.WriteString("# QA Pairs Review Document\n\n")
	sb.WriteString(fmt.Sprintf("Total QA pairs: %d\n\n", len(pairs)))

	for i, p := range pairs {
		ref := p.Reference
		sb.WriteString(fmt.Sprintf("## QA Pair %d\n\n", i+1))
		sb.WriteString(fmt.Sprintf("**Question:** %s\n\n", p.Question))
		sb.WriteString(fmt.Sprintf("**Answer:** %s\n\n", p.Answer))
		sb.WriteString("**Source Reference:**\n")
		sb.WriteString(fmt.Sprintf("- Chunk ID: %d\n", ref.ChunkID))
		sb.WriteString(fmt.Sprintf("- Document lines: %s\n", ref.LineRange()))
		if ref.AnswerLineInDoc != nil {
			sb.WriteString(fmt.Sprintf("- Answer approximately at line: %d\n", *ref.AnswerLineInDoc))
		}
		sb.WriteString(fmt.Sprintf("- Chunk preview: *%s*\n\n", ref.ChunkPreview))
		sb.WriteString("---\n\n")
	}

	return sb.String()
}
