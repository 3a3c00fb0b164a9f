package reference

import (
	"fmt"

	"github.com/ndiwawan/qa-generator-with-human-review/internal/core/chunk"
)

// Reference はQAペアの出典情報を表す
// AnswerLineInChunk / AnswerLineInDoc は回答位置が特定できた場合のみ設定され、
// それ以外はJSONのキー自体が出力されない
type Reference struct {
	ChunkID           int    `json:"chunk_id"`
	CharStart         int    `json:"char_start"`
	CharEnd           int    `json:"char_end"`
	LineStart         int    `json:"line_start"`
	LineEnd           int    `json:"line_end"`
	ChunkPreview      string `json:"chunk_preview"`
	SourceDocument    string `json:"source_document"`
	AnswerLineInChunk *int   `json:"answer_line_in_chunk,omitempty"`
	AnswerLineInDoc   *int   `json:"answer_line_in_doc,omitempty"`
}

// New はチャンクの位置情報から Reference を作成し、回答位置を推定して付与する
func New(c chunk.Chunk, answer string) Reference {
	ref := Reference{
		ChunkID:        c.ID,
		CharStart:      c.CharStart,
		CharEnd:        c.CharEnd,
		LineStart:      c.LineStart,
		LineEnd:        c.LineEnd,
		ChunkPreview:   c.Preview,
		SourceDocument: c.SourceDocument,
	}

	if offset, ok := Locate(answer, c.Text).Get(); ok {
		inDoc := c.LineStart + offset
		ref.AnswerLineInChunk = &offset
		ref.AnswerLineInDoc = &inDoc
	}

	return ref
}

// Located は回答位置が特定できたかどうかを返す
func (r Reference) Located() bool {
	return r.AnswerLineInDoc != nil
}

// LineRange は "開始-終了" 形式の行範囲を返す
func (r Reference) LineRange() string {
	return fmt.Sprintf("%d-%d", r.LineStart, r.LineEnd)
}

// CharRange は "開始-終了" 形式の文字範囲を返す
func (r Reference) CharRange() string {
	return fmt.Sprintf("%d-%d", r.CharStart, r.CharEnd)
}
