package review

import (
	"slices"
)

// UnspecifiedLabel は未回答のラベルを集計する際のキー
const UnspecifiedLabel = "Unspecified"

// Count はラベルと出現回数の組
type Count struct {
	Label string
	Count int
}

// Counter はラベルの出現回数を初出順を保って数える
// ゼロ値のまま利用できる
type Counter struct {
	order  []string
	counts map[string]int
}

// Add はラベルの出現回数を1増やす
func (c *Counter) Add(label string) {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	if _, ok := c.counts[label]; !ok {
		c.order = append(c.order, label)
	}
	c.counts[label]++
}

// Get はラベルの出現回数を返す
func (c *Counter) Get(label string) int {
	return c.counts[label]
}

// Len は異なるラベルの数を返す
func (c *Counter) Len() int {
	return len(c.order)
}

// MostCommon は出現回数の多い順にラベルを返す（同数の場合は初出順）
func (c *Counter) MostCommon() []Count {
	out := make([]Count, 0, len(c.order))
	for _, label := range c.order {
		out = append(out, Count{Label: label, Count: c.counts[label]})
	}
	slices.SortStableFunc(out, func(a, b Count) int {
		return b.Count - a.Count
	})
	return out
}

// Stats はレビュー結果の集計
type Stats struct {
	Total     int
	Completed int
	Accuracy  Counter
	Relevance Counter
	Quality   Counter
	Issues    Counter
}

// Observe はひとつのレビュー結果を集計に加える
func (s *Stats) Observe(labels Labels) {
	s.Completed++
	s.Accuracy.Add(labels.Accuracy.OrElse(UnspecifiedLabel))
	s.Relevance.Add(labels.Relevance.OrElse(UnspecifiedLabel))
	s.Quality.Add(labels.Quality.OrElse(UnspecifiedLabel))
	for _, issue := range labels.Issues {
		s.Issues.Add(issue)
	}
}

// CompletionRate はレビュー済みの割合（%）を返す
func (s *Stats) CompletionRate() float64 {
	return percent(s.Completed, s.Total)
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
