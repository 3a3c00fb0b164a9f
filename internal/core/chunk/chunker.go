package chunk

import (
	"fmt"
	"strings"
)

const (
	// DefaultSize はデフォルトのチャンクサイズ（文字数）
	DefaultSize = 2000

	// DefaultOverlap はデフォルトのオーバーラップ文字数
	DefaultOverlap = 200
)

// Chunker はテキストを重なりのある固定長ウィンドウに分割する
type Chunker struct {
	size    int
	overlap int
}

// Validate はチャンクサイズとオーバーラップの組み合わせを検証する
// overlap >= size の場合はカーソルが前進しないため拒否する
func Validate(size, overlap int) error {
	if size <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidChunkSize, size)
	}
	if overlap < 0 || overlap >= size {
		return fmt.Errorf("%w: overlap=%d, chunk_size=%d", ErrInvalidOverlap, overlap, size)
	}
	return nil
}

// NewChunker は新しいChunkerを作成する
func NewChunker(size, overlap int) (*Chunker, error) {
	if err := Validate(size, overlap); err != nil {
		return nil, err
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Size はチャンクサイズを返す
func (c *Chunker) Size() int { return c.size }

// Overlap はオーバーラップ文字数を返す
func (c *Chunker) Overlap() int { return c.overlap }

// Chunk はテキストをチャンク化する
// 最後のチャンク以外は size 文字で、次のチャンクと overlap 文字だけ重なる
// 最後のチャンクの CharEnd は常にテキスト長と一致する
func (c *Chunker) Chunk(text, sourceDocument string) []Chunk {
	runes := []rune(text)
	length := len(runes)

	var chunks []Chunk

	// start は単調増加するため、改行数は前回位置からの差分だけ数える
	linesBefore := 0
	counted := 0

	start := 0
	for start < length {
		end := min(start+c.size, length)
		window := runes[start:end]

		linesBefore += countNewlines(runes[counted:start])
		counted = start

		lineStart := linesBefore + 1
		chunks = append(chunks, Chunk{
			ID:             len(chunks),
			Text:           string(window),
			CharStart:      start,
			CharEnd:        end,
			LineStart:      lineStart,
			LineEnd:        lineStart + countNewlines(window),
			Preview:        buildPreview(window),
			SourceDocument: sourceDocument,
		})

		if end < length {
			start = end - c.overlap
		} else {
			start = end
		}
	}

	return chunks
}

// Split は Chunker を生成してテキストを一度だけチャンク化するためのヘルパー
func Split(text string, size, overlap int, sourceDocument string) ([]Chunk, error) {
	chunker, err := NewChunker(size, overlap)
	if err != nil {
		return nil, err
	}
	return chunker.Chunk(text, sourceDocument), nil
}

// buildPreview は先頭100文字の改行をスペースに置き換え、省略記号を付ける
func buildPreview(window []rune) string {
	head := window[:min(len(window), PreviewLength)]
	return strings.ReplaceAll(string(head), "\n", " ") + PreviewSuffix
}

func countNewlines(runes []rune) int {
	n := 0
	for _, r := range runes {
		if r == '\n' {
			n++
		}
	}
	return n
}
