package review

import (
	"github.com/samber/mo"

	"github.com/ndiwawan/qa-generator-with-human-review/internal/core/qa"
)

// 正確性の選択肢
const (
	AccuracyAccurate          = "Accurate"
	AccuracyPartiallyAccurate = "Partially Accurate"
	AccuracyInaccurate        = "Inaccurate"
	AccuracyCannotDetermine   = "Cannot Determine"
)

// ラベル付けで使う選択肢（表示順）
var (
	AccuracyChoices = []string{
		AccuracyAccurate,
		AccuracyPartiallyAccurate,
		AccuracyInaccurate,
		AccuracyCannotDetermine,
	}
	RelevanceChoices = []string{"Highly Relevant", "Relevant", "Somewhat Relevant", "Not Relevant"}
	QualityChoices   = []string{"Excellent", "Good", "Fair", "Poor"}
	IssueChoices     = []string{
		"Answer too long",
		"Answer too short",
		"Grammar issues",
		"Factual error",
		"Ambiguous question",
		"Answer not in context",
		"Too specific",
		"Too general",
	}
)

// Labels はレビュアーが付与したラベル
// 未回答の項目は None となり、JSONでは null として出力される
type Labels struct {
	Accuracy  mo.Option[string] `json:"accuracy"`
	Relevance mo.Option[string] `json:"relevance"`
	Quality   mo.Option[string] `json:"quality"`
	Issues    []string          `json:"issues"`
	Notes     mo.Option[string] `json:"notes"`
}

// NewLabels は未回答状態の Labels を作成する
func NewLabels() Labels {
	return Labels{
		Accuracy:  mo.None[string](),
		Relevance: mo.None[string](),
		Quality:   mo.None[string](),
		Issues:    []string{},
		Notes:     mo.None[string](),
	}
}

// EffectiveQuality はフィルタ判定に使う品質を返す
// 未回答・不明な値は Fair として扱う
func (l Labels) EffectiveQuality() Quality {
	if v, ok := l.Quality.Get(); ok {
		if q, err := ParseQuality(v); err == nil {
			return q
		}
	}
	return QualityFair
}

// EffectiveAccuracy はフィルタ判定に使う正確性を返す
// 未回答・不明な値は Partially Accurate として扱う
func (l Labels) EffectiveAccuracy() string {
	if v, ok := l.Accuracy.Get(); ok {
		for _, c := range AccuracyChoices {
			if v == c {
				return v
			}
		}
	}
	return AccuracyPartiallyAccurate
}

// Annotation はひとつのレビュー結果
type Annotation struct {
	Labels     Labels
	ReviewerID string
	CreatedAt  string
}

// Item はアノテーションツールから取り込んだレビュー項目
// ID はエクスポート時に振った 1 始まりの番号
type Item struct {
	ID          int
	Annotations []Annotation
}

// Latest は最新のレビュー結果を返す
func (i Item) Latest() mo.Option[Annotation] {
	if len(i.Annotations) == 0 {
		return mo.None[Annotation]()
	}
	return mo.Some(i.Annotations[len(i.Annotations)-1])
}

// ReviewedPair はレビュー結果を付与した質問・回答ペア
type ReviewedPair struct {
	qa.Pair
	Review     Labels `json:"review"`
	ReviewerID string `json:"reviewer_id"`
	ReviewDate string `json:"review_date"`
}

// CleanPair はメタデータを除いた学習用の質問・回答ペア
type CleanPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
