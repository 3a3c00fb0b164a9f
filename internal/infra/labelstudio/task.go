package labelstudio

import (
	"strconv"

	"github.com/ndiwawan/qa-generator-with-human-review/internal/core/qa"
)

// Task はLabel Studioにインポートするレビュータスク
type Task struct {
	ID   int      `json:"id"`
	Data TaskData `json:"data"`
}

// TaskData はタスクに表示するデータ
type TaskData struct {
	Question       string `json:"question"`
	Answer         string `json:"answer"`
	Context        string `json:"context"`
	SourceDocument string `json:"source_document"`
	DocumentPath   string `json:"document_path"`
	ChunkID        int    `json:"chunk_id"`
	LineRange      string `json:"line_range"`
	CharRange      string `json:"char_range"`
	QAPairID       string `json:"qa_pair_id"`
	ChunkPreview   string `json:"chunk_preview"`
}

// SourceDocument はタスクに埋め込む元ドキュメントの情報
type SourceDocument struct {
	Name string
	Path string
	Text string
}

// BuildTasks は質問・回答ペアごとにレビュータスクを作成する
// タスクIDは 1 始まりで、ペアの並び順と一致する
func BuildTasks(pairs []qa.Pair, doc SourceDocument) []Task {
	runes := []rune(doc.Text)
	tasks := make([]Task, 0, len(pairs))

	for i, p := range pairs {
		ref := p.Reference
		tasks = append(tasks, Task{
			ID: i + 1,
			Data: TaskData{
				Question:       p.Question,
				Answer:         p.Answer,
				Context:        sliceRunes(runes, ref.CharStart, ref.CharEnd),
				SourceDocument: doc.Name,
				DocumentPath:   doc.Path,
				ChunkID:        ref.ChunkID,
				LineRange:      ref.LineRange(),
				CharRange:      ref.CharRange(),
				QAPairID:       PairID(i + 1),
				ChunkPreview:   ref.ChunkPreview,
			},
		})
	}

	return tasks
}

// sliceRunes は [start, end) を文書の範囲に収めて切り出す
func sliceRunes(runes []rune, start, end int) string {
	start = max(0, min(start, len(runes)))
	end = max(start, min(end, len(runes)))
	return string(runes[start:end])
}

// PairID はタスクIDからレビュー画面に表示するペアIDを作成する
func PairID(taskID int) string {
	return "QA_" + strconv.Itoa(taskID)
}
