package chunk

// PreviewLength はプレビューに含める先頭の文字数
const PreviewLength = 100

// PreviewSuffix はプレビュー末尾に必ず付与される省略記号
const PreviewSuffix = "..."

// Chunk はドキュメントの連続した一部分と、その位置情報を表す
// オフセットはすべて文字（コードポイント）単位で、ドキュメント全体を座標系とする
type Chunk struct {
	ID             int    `json:"id"`
	Text           string `json:"text"`
	CharStart      int    `json:"char_start"`
	CharEnd        int    `json:"char_end"`
	LineStart      int    `json:"line_start"` // 1始まり
	LineEnd        int    `json:"line_end"`
	Preview        string `json:"preview"`
	SourceDocument string `json:"source_document,omitempty"`
}

// Len はチャンクの文字数を返す
func (c Chunk) Len() int {
	return c.CharEnd - c.CharStart
}
