package qa

import (
	"time"

	"github.com/ndiwawan/qa-generator-with-human-review/internal/core/llm"
	"github.com/ndiwawan/qa-generator-with-human-review/internal/core/reference"
)

// Pair は学習用の質問・回答ペアと出典情報を表す
type Pair struct {
	Question  string              `json:"question"`
	Answer    string              `json:"answer"`
	Reference reference.Reference `json:"reference"`
}

// Generated はLLMが返す質問・回答ペア（出典情報付与前）
type Generated struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ChunkOutcome はチャンク単位の生成結果
type ChunkOutcome struct {
	ChunkID      int
	Pairs        int
	Located      int // 回答位置を特定できたペア数
	PromptTokens int
	Duration     time.Duration
	Err          error
	ErrorType    llm.ErrorType
}

// Failed はチャンクの生成に失敗したかどうかを返す
func (o ChunkOutcome) Failed() bool {
	return o.Err != nil
}

// Result はドキュメント全体の生成結果
// Pairs はチャンクID順に並ぶ
type Result struct {
	Pairs    []Pair
	Outcomes []ChunkOutcome
}

// FailedChunks は生成に失敗したチャンクIDの一覧を返す
func (r *Result) FailedChunks() []int {
	failed := []int{}
	for _, o := range r.Outcomes {
		if o.Failed() {
			failed = append(failed, o.ChunkID)
		}
	}
	return failed
}

// PromptTokens はプロンプトの合計トークン数を返す
func (r *Result) PromptTokens() int {
	total := 0
	for _, o := range r.Outcomes {
		total += o.PromptTokens
	}
	return total
}

// AveragePairsPerChunk はチャンクあたりの平均ペア数を返す
func (r *Result) AveragePairsPerChunk() float64 {
	if len(r.Outcomes) == 0 {
		return 0
	}
	return float64(len(r.Pairs)) / float64(len(r.Outcomes))
}
