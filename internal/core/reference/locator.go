package reference

import (
	"strings"

	"github.com/samber/mo"
)

// ProbeWords はプローブ文字列に使う回答先頭の単語数
const ProbeWords = 5

// Probe は回答の先頭5単語を小文字化し、半角スペースで連結した検索キーを返す
func Probe(answer string) string {
	words := strings.Fields(strings.ToLower(answer))
	if len(words) > ProbeWords {
		words = words[:ProbeWords]
	}
	return strings.Join(words, " ")
}

// Locate はチャンク内で回答のおおよその位置を探し、チャンク先頭からの行オフセット（0始まり）を返す
// 単純な部分文字列検索によるヒューリスティックのため、言い換えられた回答は見つからず、
// ありふれた語の偶然の一致を拾うこともある
func Locate(answer, chunkText string) mo.Option[int] {
	probe := Probe(answer)
	if probe == "" {
		return mo.None[int]()
	}

	// 小文字化しても改行は変化しないため、小文字化後の文字列で改行を数えてよい
	lowered := strings.ToLower(chunkText)
	pos := strings.Index(lowered, probe)
	if pos == -1 {
		return mo.None[int]()
	}

	return mo.Some(strings.Count(lowered[:pos], "\n"))
}
