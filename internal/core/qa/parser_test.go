package qa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []Generated
	}{
		{
			name:    "json fence",
			content: "Here you go:\n```json\n[{\"question\": \"Q?\", \"answer\": \"A.\"}]\n```\nThanks",
			want:    []Generated{{Question: "Q?", Answer: "A."}},
		},
		{
			name:    "plain fence",
			content: "```\n[{\"question\": \"Q?\", \"answer\": \"A.\"}]\n```",
			want:    []Generated{{Question: "Q?", Answer: "A."}},
		},
		{
			name:    "fence with other language tag",
			content: "```JSON\n[{\"question\": \"Q?\", \"answer\": \"A.\"}]\n```",
			want:    []Generated{{Question: "Q?", Answer: "A."}},
		},
		{
			name:    "raw array",
			content: "  [{\"question\": \"Q?\", \"answer\": \"A.\"}]  ",
			want:    []Generated{{Question: "Q?", Answer: "A."}},
		},
		{
			name:    "array embedded in prose",
			content: "Sure! [{\"question\": \"Q?\", \"answer\": \"A.\"}] Hope this helps.",
			want:    []Generated{{Question: "Q?", Answer: "A."}},
		},
		{
			name:    "drops empty entries",
			content: `[{"question": "Q1?", "answer": ""}, {"question": " ", "answer": "A"}, {"question": "Q3?", "answer": " A3 "}]`,
			want:    []Generated{{Question: "Q3?", Answer: "A3"}},
		},
		{
			name:    "empty array",
			content: "[]",
			want:    []Generated{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseResponse(tt.content)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseResponse_Malformed(t *testing.T) {
	for _, content := range []string{
		"",
		"no json here",
		`{"question": "Q?", "answer": "A."}`,
		"```json\n[{\"question\": \n```",
	} {
		_, err := ParseResponse(content)
		assert.ErrorIs(t, err, ErrMalformedResponse, content)
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("Some source text.", 4)

	assert.Contains(t, prompt, "Create 4 question-answer pairs from this text for LLM training.")
	assert.Contains(t, prompt, "important facts")
	assert.Contains(t, prompt, "quote directly")
	assert.Contains(t, prompt, "Return JSON format only")
	assert.Contains(t, prompt, "Text:\nSome source text.")
}
