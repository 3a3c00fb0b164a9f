package review

import (
	"errors"
	"fmt"
)

// ErrUnknownQuality は品質ラベルが不明な場合のエラー
var ErrUnknownQuality = errors.New("unknown quality level")

// Quality は品質の段階（大きいほど高品質）
type Quality int

const (
	QualityPoor Quality = iota + 1
	QualityFair
	QualityGood
	QualityExcellent
)

// DefaultMinQuality は採用に必要な品質の既定値
const DefaultMinQuality = QualityGood

// ThresholdChoices はしきい値として指定できる品質
var ThresholdChoices = []string{"Excellent", "Good", "Fair"}

var qualityNames = map[Quality]string{
	QualityPoor:      "Poor",
	QualityFair:      "Fair",
	QualityGood:      "Good",
	QualityExcellent: "Excellent",
}

// ParseQuality は品質ラベルを Quality に変換する
func ParseQuality(s string) (Quality, error) {
	for q, name := range qualityNames {
		if name == s {
			return q, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownQuality, s)
}

// ParseThreshold はしきい値として指定された品質を変換する
func ParseThreshold(s string) (Quality, error) {
	for _, c := range ThresholdChoices {
		if c == s {
			return ParseQuality(s)
		}
	}
	return 0, fmt.Errorf("%w: %q (choose from %v)", ErrUnknownQuality, s, ThresholdChoices)
}

// String は品質ラベルを返す
func (q Quality) String() string {
	if name, ok := qualityNames[q]; ok {
		return name
	}
	return fmt.Sprintf("Quality(%d)", int(q))
}

// Accepts はペアがしきい値を満たすかどうかを判定する
// 品質がしきい値以上で、かつ正確性が Accurate か Partially Accurate の場合に採用する
func Accepts(labels Labels, threshold Quality) bool {
	if labels.EffectiveQuality() < threshold {
		return false
	}
	switch labels.EffectiveAccuracy() {
	case AccuracyAccurate, AccuracyPartiallyAccurate:
		return true
	default:
		return false
	}
}

// Filter はレビュー済みペアを採用と不採用に振り分ける
// 入力の順序はそれぞれの結果で保たれる
func Filter(pairs []ReviewedPair, threshold Quality) (accepted, rejected []ReviewedPair) {
	accepted = []ReviewedPair{}
	rejected = []ReviewedPair{}
	for _, p := range pairs {
		if Accepts(p.Review, threshold) {
			accepted = append(accepted, p)
		} else {
			rejected = append(rejected, p)
		}
	}
	return accepted, rejected
}

// Clean はメタデータを除いた学習用データに変換する
func Clean(pairs []ReviewedPair) []CleanPair {
	out := make([]CleanPair, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, CleanPair{Question: p.Question, Answer: p.Answer})
	}
	return out
}
