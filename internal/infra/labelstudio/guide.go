package labelstudio

import "fmt"

// 出力ファイル名
const (
	TasksFileName  = "qa_review_tasks.json"
	ConfigFileName = "label_config.xml"
	GuideFileName  = "REVIEWER_GUIDE.md"
)

// ReviewerGuide はレビュアー向けの手順書（Markdown）を返す
func ReviewerGuide(taskCount int) string {
	return fmt.Sprintf(reviewerGuideTemplate, TasksFileName, taskCount, ConfigFileName, GuideFileName,
		ConfigFileName, TasksFileName)
}

const reviewerGuideTemplate = `# QA Review Guide for Label Studio

This guide is for reviewers using Label Studio to validate QA pairs.

## Files in This Directory

- ` + "`%s`" + ` - The QA pairs to review (%d tasks)
- ` + "`%s`" + ` - The review interface configuration
- ` + "`%s`" + ` - This file

## Quick Start

### 1. Access Label Studio

Open http://localhost:8080 in your browser (or the URL provided by your administrator)

### 2. Project Setup (if not already done)

1. Click "Create Project" and name it "QA Pairs Review"
2. Go to Settings > Labeling Interface > Code
3. Copy ALL content from ` + "`%s`" + ` and paste it
4. Save the configuration

### 3. Import Review Tasks

1. Go to "Data Import"
2. Upload ` + "`%s`" + `
3. Click "Import"

### 4. Review Process

For each QA pair, you will evaluate:

**Accuracy** - Is the answer factually correct based on the context?
- Accurate - Answer is fully supported by the text
- Partially Accurate - Some details are correct but incomplete
- Inaccurate - Answer contains errors or unsupported claims
- Cannot Determine - Not enough context to verify

**Relevance** - Is the question well-formed and meaningful?
- Highly Relevant - Important question for understanding the document
- Relevant - Good question but not critical
- Somewhat Relevant - Acceptable but could be better
- Not Relevant - Poor question or too trivial

**Quality** - Overall rating for training purposes
- Excellent - Perfect for model training
- Good - Suitable with minor issues
- Fair - Usable but needs improvement
- Poor - Should not be used for training

**Common Issues to Flag:**
- Answer too long/short
- Grammar or spelling errors
- Factual errors
- Ambiguous questions
- Answer not found in context
- Too specific or too general

### 5. Export Results

After completing reviews:
1. Go to "Export"
2. Select "JSON" format
3. Download and share with the project team

## Review Tips

1. **Read the full context** before evaluating
2. **Check line references** to verify answer location
3. **Be consistent** in your ratings across all QA pairs
4. **Use notes** to explain your reasoning for Poor/Fair ratings
5. **Flag issues** even for Good/Excellent pairs to help improve future generation
`
