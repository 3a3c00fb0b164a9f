package labelstudio

import (
	"fmt"
	"strings"

	"github.com/ndiwawan/qa-generator-with-human-review/internal/core/review"
)

const boxStyle = "box-shadow: 2px 2px 5px #999; padding: 20px; margin-top: 2em; border-radius: 5px;"

// choiceGroup は <Choices> 要素ひとつ分の定義
type choiceGroup struct {
	name     string
	toName   string
	multiple bool
	header   string
	choices  []string
}

var choiceGroups = []choiceGroup{
	{name: "accuracy", toName: "question", header: "Is the answer accurate based on the context?", choices: review.AccuracyChoices},
	{name: "relevance", toName: "question", header: "Is the question relevant and well-formed?", choices: review.RelevanceChoices},
	{name: "quality", toName: "answer", header: "Overall quality of the QA pair for training?", choices: review.QualityChoices},
	{name: "issues", toName: "answer", multiple: true, header: "Select any issues (multiple allowed):", choices: review.IssueChoices},
}

// LabelConfig はレビュー画面のラベリング設定（XML）を返す
func LabelConfig() string {
	var choices strings.Builder
	for _, g := range choiceGroups {
		mode := "single"
		if g.multiple {
			mode = "multiple"
		}
		fmt.Fprintf(&choices, "    <Choices name=\"%s\" toName=\"%s\" choice=\"%s\" showInLine=\"true\">\n", g.name, g.toName, mode)
		fmt.Fprintf(&choices, "      <Header value=\"%s\" />\n", g.header)
		for _, c := range g.choices {
			fmt.Fprintf(&choices, "      <Choice value=\"%s\" />\n", c)
		}
		choices.WriteString("    </Choices>\n\n")
	}

	return fmt.Sprintf(`<View>
  <Header value="QA Pair Review" />

  <View style="%[1]s background-color: #e8f4f8;">
    <Header value="Source Document" />
    <Text name="source_doc" value="$source_document" />
  </View>

  <View style="%[1]s">
    <Header value="Question" />
    <Text name="question" value="$question" />

    <Header value="Answer" />
    <Text name="answer" value="$answer" />

    <Header value="Source Context" />
    <Text name="context" value="$context" />
  </View>

  <View style="%[1]s">
    <Header value="Review Questions" />

%[2]s    <TextArea name="notes" toName="answer" rows="3" placeholder="Additional notes or suggested improvements..." />
  </View>

  <View style="%[1]s background-color: #f5f5f5;">
    <Header value="Metadata" />
    <Text name="qa_id" value="QA Pair ID: $qa_pair_id" />
    <Text name="chunk_info" value="Chunk $chunk_id (Lines: $line_range)" />
    <Text name="doc_path" value="Path: $document_path" />
  </View>
</View>
`, boxStyle, choices.String())
}
