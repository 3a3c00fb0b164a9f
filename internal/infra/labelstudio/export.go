package labelstudio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/samber/mo"

	"github.com/ndiwawan/qa-generator-with-human-review/internal/core/review"
)

var (
	// ErrEmptyExport はエクスポートファイルが空の場合のエラー
	ErrEmptyExport = errors.New("export is empty")
	// ErrInvalidExport はエクスポートがJSON配列として解釈できない場合のエラー
	ErrInvalidExport = errors.New("invalid export")
)

// ExportItem はLabel StudioのJSONエクスポートの1項目
type ExportItem struct {
	ID          int                `json:"id"`
	Data        map[string]any     `json:"data"`
	Annotations []ExportAnnotation `json:"annotations"`
}

// ExportAnnotation はひとつのアノテーション
type ExportAnnotation struct {
	Result      []Result `json:"result"`
	CompletedBy Reviewer `json:"completed_by"`
	CreatedAt   string   `json:"created_at"`
}

// Result はアノテーション内の1コントロール分の回答
type Result struct {
	FromName string      `json:"from_name"`
	ToName   string      `json:"to_name,omitempty"`
	Type     string      `json:"type,omitempty"`
	Value    ResultValue `json:"value"`
}

// ResultValue は選択肢またはテキストの回答値
type ResultValue struct {
	Choices []string `json:"choices,omitempty"`
	Text    []string `json:"text,omitempty"`
}

// Reviewer はアノテーションを行ったユーザーの識別子
// エクスポートでは数値ID、文字列、{id, email} オブジェクトのいずれかで表現される
type Reviewer string

// UnmarshalJSON は completed_by のいずれの表現も受け付ける
func (r *Reviewer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = Reviewer(s)
	case '{':
		var obj struct {
			ID    json.Number `json:"id"`
			Email string      `json:"email"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		if obj.Email != "" {
			*r = Reviewer(obj.Email)
		} else {
			*r = Reviewer(obj.ID.String())
		}
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("unsupported completed_by value %s: %w", data, err)
		}
		*r = Reviewer(n.String())
	}
	return nil
}

// DecodeExport はLabel StudioのJSONエクスポートを読み込む
func DecodeExport(r io.Reader) ([]ExportItem, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyExport
	}

	var items []ExportItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExport, err)
	}

	return items, nil
}

// ReviewItems はエクスポート項目をレビュー項目に変換する
func ReviewItems(items []ExportItem) []review.Item {
	out := make([]review.Item, 0, len(items))
	for _, item := range items {
		ri := review.Item{ID: item.ID, Annotations: make([]review.Annotation, 0, len(item.Annotations))}
		for _, a := range item.Annotations {
			ri.Annotations = append(ri.Annotations, review.Annotation{
				Labels:     ExtractLabels(a.Result),
				ReviewerID: string(a.CompletedBy),
				CreatedAt:  a.CreatedAt,
			})
		}
		out = append(out, ri)
	}
	return out
}

// ExtractLabels はアノテーション結果からレビューラベルを取り出す
// 未知のコントロールは無視する
func ExtractLabels(results []Result) review.Labels {
	labels := review.NewLabels()
	for _, res := range results {
		switch res.FromName {
		case "accuracy":
			labels.Accuracy = first(res.Value.Choices)
		case "relevance":
			labels.Relevance = first(res.Value.Choices)
		case "quality":
			labels.Quality = first(res.Value.Choices)
		case "issues":
			labels.Issues = append([]string{}, res.Value.Choices...)
		case "notes":
			labels.Notes = first(res.Value.Text)
		}
	}
	return labels
}

func first(values []string) mo.Option[string] {
	if len(values) == 0 {
		return mo.None[string]()
	}
	return mo.Some(values[0])
}
