package reviewfiles

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ndiwawan/qa-generator-with-human-review/internal/core/qa"
)

// CSVHeader はスプレッドシートレビュー用CSVのヘッダー
var CSVHeader = []string{
	"ID",
	"Question",
	"Answer",
	"Quality (1-5)",
	"Accuracy (Y/N)",
	"Notes",
	"Chunk ID",
	"Lines",
	"Chunk Preview",
}

// ReviewSet はレビュー用に出力したファイルのパス
type ReviewSet struct {
	JSON     string
	CSV      string
	Markdown string
}

// WriteReviewSet は質問・回答ペアをJSON・CSV・Markdownの3形式で出力する
func WriteReviewSet(dir, stem string, pairs []qa.Pair) (*ReviewSet, error) {
	set := &ReviewSet{
		JSON:     filepath.Join(dir, stem+"_with_refs.json"),
		CSV:      filepath.Join(dir, stem+"_review.csv"),
		Markdown: filepath.Join(dir, stem+"_review.md"),
	}

	if err := WriteJSON(set.JSON, pairs); err != nil {
		return nil, err
	}
	if err := WriteCSV(set.CSV, pairs); err != nil {
		return nil, err
	}
	if err := WriteText(set.Markdown, RenderMarkdown(pairs)); err != nil {
		return nil, err
	}

	return set, nil
}

// WriteJSON は値を2スペースインデントのJSONとして書き込む
// 非ASCII文字やHTML特殊文字はエスケープしない
func WriteJSON(path string, v any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("JSONシリアライズに失敗: %w", err)
	}

	return writeFile(path, buf.Bytes())
}

// ReadJSON はJSONファイルを読み込む
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("ファイル読み込みに失敗: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("JSONの解析に失敗 (%s): %w", path, err)
	}
	return nil
}

// WriteCSV はスプレッドシートでレビューするためのCSVを書き込む
// 評価欄は空欄で出力する
func WriteCSV(path string, pairs []qa.Pair) error {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(CSVHeader); err != nil {
		return fmt.Errorf("ヘッダー書き込みに失敗: %w", err)
	}

	for i, p := range pairs {
		ref := p.Reference
		row := []string{
			strconv.Itoa(i + 1),
			p.Question,
			p.Answer,
			"",
			"",
			"",
			strconv.Itoa(ref.ChunkID),
			ref.LineRange(),
			ref.ChunkPreview,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("データ書き込みに失敗: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("CSVの書き込みに失敗: %w", err)
	}

	return writeFile(path, buf.Bytes())
}

// WriteText はテキストをファイルに書き込む
func WriteText(path, content string) error {
	return writeFile(path, []byte(content))
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("ディレクトリ作成に失敗: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("ファイル書き込みに失敗: %w", err)
	}
	return nil
}
