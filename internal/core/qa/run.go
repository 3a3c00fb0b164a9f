package qa

import (
	"time"

	"github.com/google/uuid"
)

// Run は1回の生成処理の記録（マニフェスト）
type Run struct {
	RunID            uuid.UUID `json:"run_id"`
	Document         string    `json:"document"`
	DocumentPath     string    `json:"document_path"`
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at"`
	Model            string    `json:"model"`
	ChunkSize        int       `json:"chunk_size"`
	Overlap          int       `json:"overlap"`
	NumPairs         int       `json:"num_pairs"`
	Chunks           int       `json:"chunks"`
	Pairs            int       `json:"pairs"`
	LocatedPairs     int       `json:"located_pairs"`
	FailedChunks     []int     `json:"failed_chunks"`
	PromptTokens     int       `json:"prompt_tokens"`
	AvgPairsPerChunk float64   `json:"avg_pairs_per_chunk"`
	OutputFile       string    `json:"output_file,omitempty"`
}

// NewRun は実行IDを採番して Run を開始する
func NewRun(document, path string) *Run {
	return &Run{
		RunID:        uuid.New(),
		Document:     document,
		DocumentPath: path,
		StartedAt:    time.Now().UTC(),
		FailedChunks: []int{},
	}
}

// Finish は生成結果を記録して Run を終了する
func (r *Run) Finish(result *Result) {
	r.FinishedAt = time.Now().UTC()
	r.Chunks = len(result.Outcomes)
	r.Pairs = len(result.Pairs)
	r.FailedChunks = result.FailedChunks()
	r.PromptTokens = result.PromptTokens()
	r.AvgPairsPerChunk = result.AveragePairsPerChunk()

	r.LocatedPairs = 0
	for _, p := range result.Pairs {
		if p.Reference.Located() {
			r.LocatedPairs++
		}
	}
}

// Duration は処理時間を返す
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
