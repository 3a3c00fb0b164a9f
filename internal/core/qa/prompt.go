package qa

import (
	"fmt"
	"strings"
)

// SystemPrompt は質問・回答ペア生成時のシステムメッセージ
const SystemPrompt = "You are a helpful assistant that creates high-quality question-answer pairs for training data. " +
	"Try to use direct quotes from the text when possible."

// BuildPrompt はチャンクから質問・回答ペアを生成するためのプロンプトを構築する
func BuildPrompt(chunkText string, numPairs int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Create %d question-answer pairs from this text for LLM training.\n\n", numPairs))

	sb.WriteString("Rules:\n")
	sb.WriteString("1. Questions must be about important facts in the text\n")
	sb.WriteString("2. Answers must be directly supported by the text\n")
	sb.WriteString("3. Try to quote directly from the text when possible\n")
	sb.WriteString("4. Return JSON format only:\n\n")

	sb.WriteString("[\n")
	sb.WriteString("  {\n    \"question\": \"Question 1?\",\n    \"answer\": \"Answer 1.\"\n  },\n")
	sb.WriteString("  {\n    \"question\": \"Question 2?\",\n    \"answer\": \"Answer 2.\"\n  }\n")
	sb.WriteString("]\n\n")

	sb.WriteString("Text:\n")
	sb.WriteString(chunkText)
	sb.WriteString("\n")

	return sb.String()
}
