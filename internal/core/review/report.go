package review

import (
	"fmt"
	"strings"
)

// RenderReport はレビュー結果の概要をMarkdownで出力する
func RenderReport(stats *Stats, acceptedCount, rejectedCount int) string {
	var sb strings.Builder

	sb.WriteString("# QA Review Summary Report\n\n")

	sb.WriteString("## Overview\n")
	sb.WriteString(fmt.Sprintf("- Total QA pairs: %d\n", stats.Total))
	sb.WriteString(fmt.Sprintf("- Reviewed: %d (%.1f%%)\n", stats.Completed, stats.CompletionRate()))
	sb.WriteString(fmt.Sprintf("- Accepted: %d\n", acceptedCount))
	sb.WriteString(fmt.Sprintf("- Rejected: %d\n", rejectedCount))

	writeDistribution(&sb, "Accuracy Distribution", &stats.Accuracy, stats.Completed)
	writeDistribution(&sb, "Relevance Distribution", &stats.Relevance, stats.Completed)
	writeDistribution(&sb, "Quality Distribution", &stats.Quality, stats.Completed)

	if stats.Issues.Len() > 0 {
		sb.WriteString("\n## Common Issues\n")
		for _, c := range stats.Issues.MostCommon() {
			sb.WriteString(fmt.Sprintf("- %s: %d\n", c.Label, c.Count))
		}
	}

	return sb.String()
}

func writeDistribution(sb *strings.Builder, title string, counter *Counter, completed int) {
	sb.WriteString(fmt.Sprintf("\n## %s\n", title))
	for _, c := range counter.MostCommon() {
		sb.WriteString(fmt.Sprintf("- %s: %d (%.1f%%)\n", c.Label, c.Count, percent(c.Count, completed)))
	}
}
