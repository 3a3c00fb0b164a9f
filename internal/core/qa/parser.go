package qa

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedResponse はLLMのレスポンスから質問・回答ペアを取り出せない場合のエラー
var ErrMalformedResponse = errors.New("malformed generation response")

const fence = "```"

// candidate はレスポンスから切り出したJSON候補
type candidate struct {
	strategy string
	body     string
}

// ParseResponse はLLMのレスポンスを質問・回答ペアとして解析する
// コードフェンスの除去、レスポンス全体、最外の [...] の順に試し、最初にJSON配列として
// 解釈できたものを採用する。質問か回答が空の項目は捨てる
func ParseResponse(content string) ([]Generated, error) {
	var lastErr error
	for _, c := range candidates(content) {
		var items []Generated
		if err := json.Unmarshal([]byte(c.body), &items); err != nil {
			lastErr = fmt.Errorf("%s: %w", c.strategy, err)
			continue
		}
		return sanitize(items), nil
	}

	if lastErr == nil {
		lastErr = errors.New("empty response")
	}
	return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, lastErr)
}

func candidates(content string) []candidate {
	var out []candidate

	if block, ok := fencedBlock(content); ok {
		out = append(out, candidate{strategy: "fenced", body: block})
	}

	if trimmed := strings.TrimSpace(content); trimmed != "" {
		out = append(out, candidate{strategy: "direct", body: trimmed})
	}

	if start, end := strings.Index(content, "["), strings.LastIndex(content, "]"); start != -1 && end > start {
		out = append(out, candidate{strategy: "bracket", body: content[start : end+1]})
	}

	return out
}

// fencedBlock は ```json ブロック、なければ最初の ``` ブロックの中身を返す
func fencedBlock(content string) (string, bool) {
	if _, after, ok := strings.Cut(content, fence+"json"); ok {
		body, _, _ := strings.Cut(after, fence)
		return strings.TrimSpace(body), true
	}

	if _, after, ok := strings.Cut(content, fence); ok {
		body, _, _ := strings.Cut(after, fence)
		return strings.TrimSpace(dropLanguageTag(body)), true
	}

	return "", false
}

// dropLanguageTag は ```JSON や ```javascript のような言語指定の行を取り除く
func dropLanguageTag(body string) string {
	first, rest, ok := strings.Cut(body, "\n")
	if !ok {
		return body
	}
	tag := strings.TrimSpace(first)
	if tag != "" && !strings.ContainsAny(tag, "[{\"") && !strings.ContainsAny(tag, " \t") {
		return rest
	}
	return body
}

func sanitize(items []Generated) []Generated {
	out := make([]Generated, 0, len(items))
	for _, item := range items {
		q := strings.TrimSpace(item.Question)
		a := strings.TrimSpace(item.Answer)
		if q == "" || a == "" {
			continue
		}
		out = append(out, Generated{Question: q, Answer: a})
	}
	return out
}
