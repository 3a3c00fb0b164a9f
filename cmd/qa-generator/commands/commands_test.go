package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/ndiwawan/qa-generator-with-human-review/internal/core/llm"
	"github.com/ndiwawan/qa-generator-with-human-review/internal/core/qa"
	"github.com/ndiwawan/qa-generator-with-human-review/internal/core/review"
	"github.com/ndiwawan/qa-generator-with-human-review/internal/infra/labelstudio"
	"github.com/ndiwawan/qa-generator-with-human-review/internal/platform/config"
	"github.com/ndiwawan/qa-generator-with-human-review/internal/platform/metrics"
)

// stubClient はプロンプトに含まれる語で応答を切り替えるテスト用クライアント
type stubClient struct {
	calls int
}

func (c *stubClient) GenerateCompletion(_ context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	c.calls++
	if strings.Contains(req.Prompt, "broken") {
		return llm.CompletionResponse{Content: "sorry, no JSON here"}, nil
	}
	return llm.CompletionResponse{
		Content: "```json\n[{\"question\": \"What color is the sky?\", \"answer\": \"The sky is blue\"}]\n```",
		Model:   "stub",
	}, nil
}

func newTestAppContext(t *testing.T, client llm.Client) (*AppContext, *bytes.Buffer) {
	t.Helper()

	cfg := config.Default()
	out := &bytes.Buffer{}
	return &AppContext{
		Config:  cfg,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics: metrics.New(),
		NewClient: func(*config.Config) (llm.Client, error) {
			return client, nil
		},
		Out: out,
	}, out
}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRunGenerate(t *testing.T) {
	dir := t.TempDir()
	docPath := writeDoc(t, dir, "sky.txt", "The sky is blue now\nThe sky is blue now\nbroken stuff here ok")

	client := &stubClient{}
	appCtx, out := newTestAppContext(t, client)
	appCtx.Config.Generation.ChunkSize = 20
	appCtx.Config.Generation.Overlap = 0

	metricsFile := filepath.Join(dir, "metrics", "qagen.prom")
	result, err := runGenerate(context.Background(), appCtx, generateOptions{
		DocPath:     docPath,
		OutDir:      filepath.Join(dir, "generated"),
		ReviewDir:   filepath.Join(dir, "review"),
		MetricsFile: metricsFile,
	})
	require.NoError(t, err)

	// 1行ずつ3チャンクに分割され、最後のチャンクは解析に失敗する
	assert.Equal(t, 3, client.calls)
	assert.Equal(t, 3, result.Run.Chunks)
	assert.Equal(t, []int{2}, result.Run.FailedChunks)
	assert.Equal(t, 2, result.Run.Pairs)
	assert.Equal(t, filepath.Join(dir, "generated", "sky_qa_pairs_with_refs.json"), result.PairsFile)

	var pairs []qa.Pair
	data, err := os.ReadFile(result.PairsFile)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &pairs))
	require.Len(t, pairs, 2)
	assert.Equal(t, 0, pairs[0].Reference.ChunkID)
	assert.Equal(t, "sky.txt", pairs[0].Reference.SourceDocument)
	require.NotNil(t, pairs[0].Reference.AnswerLineInDoc)
	assert.Equal(t, 1, *pairs[0].Reference.AnswerLineInDoc)
	require.NotNil(t, pairs[1].Reference.AnswerLineInDoc)
	assert.Equal(t, 2, *pairs[1].Reference.AnswerLineInDoc)

	for _, path := range []string{result.RunFile, result.Review.JSON, result.Review.CSV, result.Review.Markdown, metricsFile} {
		assert.FileExists(t, path)
	}
	assert.Equal(t, filepath.Join(dir, "review", "sky_review.csv"), result.Review.CSV)

	var run qa.Run
	data, err = os.ReadFile(result.RunFile)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &run))
	assert.Equal(t, result.Run.RunID, run.RunID)
	assert.Equal(t, result.PairsFile, run.OutputFile)

	assert.Contains(t, out.String(), "sky.txt")
}

func TestRunGenerate_InvalidConfigBeforeChunking(t *testing.T) {
	dir := t.TempDir()
	docPath := writeDoc(t, dir, "doc.txt", "some text")

	client := &stubClient{}
	appCtx, _ := newTestAppContext(t, client)
	appCtx.Config.Generation.ChunkSize = 100
	appCtx.Config.Generation.Overlap = 100

	_, err := runGenerate(context.Background(), appCtx, generateOptions{DocPath: docPath, OutDir: dir, ReviewDir: dir})
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
	assert.Zero(t, client.calls)

	_, statErr := os.Stat(filepath.Join(dir, "doc_qa_pairs_with_refs.json"))
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestRunGenerate_Errors(t *testing.T) {
	appCtx, _ := newTestAppContext(t, &stubClient{})

	_, err := runGenerate(context.Background(), appCtx, generateOptions{})
	assert.Error(t, err)

	_, err = runGenerate(context.Background(), appCtx, generateOptions{DocPath: filepath.Join(t.TempDir(), "missing.txt")})
	assert.ErrorIs(t, err, os.ErrNotExist)

	factoryErr := errors.New("no key")
	appCtx.NewClient = func(*config.Config) (llm.Client, error) { return nil, factoryErr }
	docPath := writeDoc(t, t.TempDir(), "doc.txt", "text")
	_, err = runGenerate(context.Background(), appCtx, generateOptions{DocPath: docPath})
	assert.ErrorIs(t, err, factoryErr)
}

func TestRunGenerate_EmptyDocument(t *testing.T) {
	dir := t.TempDir()
	docPath := writeDoc(t, dir, "empty.txt", "")

	client := &stubClient{}
	appCtx, _ := newTestAppContext(t, client)

	result, err := runGenerate(context.Background(), appCtx, generateOptions{
		DocPath:   docPath,
		OutDir:    filepath.Join(dir, "generated"),
		ReviewDir: filepath.Join(dir, "review"),
	})
	require.NoError(t, err)
	assert.Zero(t, client.calls)
	assert.Equal(t, 0, result.Run.Chunks)

	data, err := os.ReadFile(result.PairsFile)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestRunChunk(t *testing.T) {
	dir := t.TempDir()
	docPath := writeDoc(t, dir, "doc.txt", "line1\nline2\nline3\n")

	appCtx, out := newTestAppContext(t, nil)
	appCtx.Config.Generation.ChunkSize = 10
	appCtx.Config.Generation.Overlap = 2

	chunks, err := runChunk(appCtx, docPath)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, 8, chunks[1].CharStart)
	assert.Equal(t, 18, chunks[1].CharEnd)
	assert.Equal(t, 2, chunks[1].LineStart)
	assert.Contains(t, out.String(), "line1")

	appCtx.Config.Generation.Overlap = 10
	_, err = runChunk(appCtx, docPath)
	assert.Error(t, err)
}

func samplePairs() []qa.Pair {
	return []qa.Pair{
		{Question: "Q1", Answer: "A1"},
		{Question: "Q2", Answer: "A2"},
		{Question: "Q3", Answer: "A3"},
	}
}

func writeJSONFile(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func TestRunExport(t *testing.T) {
	dir := t.TempDir()
	docPath := writeDoc(t, dir, "doc.txt", "0123456789abcdef")

	pairs := samplePairs()
	pairs[0].Reference.CharStart = 2
	pairs[0].Reference.CharEnd = 6
	pairs[0].Reference.LineStart = 1
	pairs[0].Reference.LineEnd = 1
	qaFile := filepath.Join(dir, "qa.json")
	writeJSONFile(t, qaFile, pairs)

	appCtx, _ := newTestAppContext(t, nil)
	out, err := runExport(appCtx, exportOptions{QAFile: qaFile, DocFile: docPath, OutputDir: filepath.Join(dir, "ls")})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Tasks)

	var tasks []labelstudio.Task
	data, err := os.ReadFile(out.TasksFile)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &tasks))
	require.Len(t, tasks, 3)
	assert.Equal(t, 1, tasks[0].ID)
	assert.Equal(t, "2345", tasks[0].Data.Context)
	assert.Equal(t, "QA_3", tasks[2].Data.QAPairID)
	assert.Equal(t, "doc.txt", tasks[0].Data.SourceDocument)

	guide, err := os.ReadFile(out.GuideFile)
	require.NoError(t, err)
	assert.Contains(t, string(guide), "(3 tasks)")
	assert.FileExists(t, out.ConfigFile)
}

func TestRunExport_MissingInputs(t *testing.T) {
	dir := t.TempDir()
	appCtx, _ := newTestAppContext(t, nil)

	_, err := runExport(appCtx, exportOptions{QAFile: filepath.Join(dir, "none.json"), DocFile: filepath.Join(dir, "none.txt")})
	assert.ErrorIs(t, err, os.ErrNotExist)

	qaFile := filepath.Join(dir, "qa.json")
	writeJSONFile(t, qaFile, samplePairs())
	_, err = runExport(appCtx, exportOptions{QAFile: qaFile, DocFile: filepath.Join(dir, "none.txt")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

const sampleExport = `[
  {"id": 1, "data": {}, "annotations": [
    {"result": [
      {"from_name": "accuracy", "value": {"choices": ["Accurate"]}},
      {"from_name": "quality", "value": {"choices": ["Excellent"]}}
    ], "completed_by": 7, "created_at": "2024-01-01T00:00:00Z"}
  ]},
  {"id": 2, "data": {}, "annotations": [
    {"result": [
      {"from_name": "quality", "value": {"choices": ["Good"]}},
      {"from_name": "issues", "value": {"choices": ["Too vague"]}}
    ], "completed_by": {"id": 3, "email": "r@example.com"}, "created_at": "2024-01-02T00:00:00Z"}
  ]},
  {"id": 3, "data": {}, "annotations": []},
  {"id": 9, "data": {}, "annotations": [
    {"result": [{"from_name": "quality", "value": {"choices": ["Poor"]}}], "completed_by": "x", "created_at": "2024-01-03T00:00:00Z"}
  ]}
]`

func TestRunProcess(t *testing.T) {
	dir := t.TempDir()
	exportFile := writeDoc(t, dir, "export.json", sampleExport)
	qaFile := filepath.Join(dir, "qa.json")
	writeJSONFile(t, qaFile, samplePairs())

	appCtx, out := newTestAppContext(t, nil)
	outDir := filepath.Join(dir, "reviewed")
	metricsFile := filepath.Join(dir, "review.prom")
	result, err := runProcess(appCtx, processOptions{
		ExportFile:  exportFile,
		OriginalQA:  qaFile,
		MinQuality:  "Excellent",
		OutputDir:   outDir,
		MetricsFile: metricsFile,
	})
	require.NoError(t, err)

	assert.Equal(t, []int{3}, result.Merge.Unannotated)
	assert.Equal(t, []int{9}, result.Merge.Unmatched)
	require.Len(t, result.Accepted, 1)
	assert.Equal(t, "Q1", result.Accepted[0].Question)
	assert.Equal(t, "7", result.Accepted[0].ReviewerID)
	require.Len(t, result.Rejected, 1)
	assert.Equal(t, "r@example.com", result.Rejected[0].ReviewerID)

	var clean []review.CleanPair
	data, err := os.ReadFile(filepath.Join(outDir, cleanFileName))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &clean))
	assert.Equal(t, []review.CleanPair{{Question: "Q1", Answer: "A1"}}, clean)

	report, err := os.ReadFile(filepath.Join(outDir, reportFileName))
	require.NoError(t, err)
	assert.Contains(t, string(report), "- Total QA pairs: 4")
	assert.Contains(t, string(report), "- Reviewed: 3 (75.0%)")
	assert.Contains(t, string(report), "- Accepted: 1\n- Rejected: 1")
	assert.Contains(t, out.String(), "# QA Review Summary Report")

	assert.FileExists(t, filepath.Join(outDir, filteredFileName))
	assert.FileExists(t, filepath.Join(outDir, rejectedFileName))
	assert.FileExists(t, metricsFile)
}

func TestRunProcess_DefaultThreshold(t *testing.T) {
	dir := t.TempDir()
	exportFile := writeDoc(t, dir, "export.json", sampleExport)
	qaFile := filepath.Join(dir, "qa.json")
	writeJSONFile(t, qaFile, samplePairs())

	appCtx, _ := newTestAppContext(t, nil)
	result, err := runProcess(appCtx, processOptions{ExportFile: exportFile, OriginalQA: qaFile, OutputDir: dir})
	require.NoError(t, err)

	// Good 以上かつ Inaccurate でないものを採用する
	assert.Len(t, result.Accepted, 2)
	assert.Empty(t, result.Rejected)
}

func TestRunProcess_InputErrors(t *testing.T) {
	dir := t.TempDir()
	qaFile := filepath.Join(dir, "qa.json")
	writeJSONFile(t, qaFile, samplePairs())
	appCtx, _ := newTestAppContext(t, nil)

	tests := []struct {
		name    string
		export  string
		qaFile  string
		quality string
		wantErr error
	}{
		{name: "missing export", export: "", qaFile: qaFile, wantErr: os.ErrNotExist},
		{name: "empty export", export: "  \n", qaFile: qaFile, wantErr: labelstudio.ErrEmptyExport},
		{name: "invalid export", export: "{not json", qaFile: qaFile, wantErr: labelstudio.ErrInvalidExport},
		{name: "missing originals", export: "[]", qaFile: filepath.Join(dir, "none.json"), wantErr: os.ErrNotExist},
		{name: "unknown threshold", export: "[]", qaFile: qaFile, quality: "Poor", wantErr: review.ErrUnknownQuality},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exportFile := filepath.Join(dir, "missing_export.json")
			if tt.export != "" {
				exportFile = writeDoc(t, dir, filepath.Base(t.Name())+".json", tt.export)
			}
			_, err := runProcess(appCtx, processOptions{
				ExportFile: exportFile,
				OriginalQA: tt.qaFile,
				MinQuality: tt.quality,
				OutputDir:  filepath.Join(dir, "out", string(rune('a'+i))),
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestWithCommonFlags(t *testing.T) {
	flags := WithCommonFlags(&cli.StringFlag{Name: "doc"})
	require.Len(t, flags, 3)

	names := make([]string, 0, len(flags))
	for _, f := range flags {
		names = append(names, f.Names()[0])
	}
	assert.Equal(t, []string{"env", "config", "doc"}, names)
}
