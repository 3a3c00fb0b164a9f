package review

import (
	"github.com/ndiwawan/qa-generator-with-human-review/internal/core/qa"
)

// DefaultReviewerID はレビュアーが不明な場合のID
const DefaultReviewerID = "unknown"

// MergeResult はレビュー結果と元のペアを突き合わせた結果
type MergeResult struct {
	Pairs []ReviewedPair
	Stats Stats
	// Unannotated はレビューが1件もなかった項目のID
	Unannotated []int
	// Unmatched はレビュー済みだが元のペアが見つからなかった項目のID
	Unmatched []int
}

// Merge はレビュー結果を元の質問・回答ペアに結合する
// 各項目の最新のレビューを採用し、ID-1 を元のペアの添字として扱う
// 集計は元のペアが見つからない項目も含めて行う
func Merge(items []Item, originals []qa.Pair) MergeResult {
	result := MergeResult{
		Pairs:       []ReviewedPair{},
		Stats:       Stats{Total: len(items)},
		Unannotated: []int{},
		Unmatched:   []int{},
	}

	for _, item := range items {
		annotation, ok := item.Latest().Get()
		if !ok {
			result.Unannotated = append(result.Unannotated, item.ID)
			continue
		}

		labels := annotation.Labels
		if labels.Issues == nil {
			labels.Issues = []string{}
		}
		result.Stats.Observe(labels)

		index := item.ID - 1
		if index < 0 || index >= len(originals) {
			result.Unmatched = append(result.Unmatched, item.ID)
			continue
		}

		reviewer := annotation.ReviewerID
		if reviewer == "" {
			reviewer = DefaultReviewerID
		}

		result.Pairs = append(result.Pairs, ReviewedPair{
			Pair:       originals[index],
			Review:     labels,
			ReviewerID: reviewer,
			ReviewDate: annotation.CreatedAt,
		})
	}

	return result
}
