package document

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// ContentTypeDetector はドキュメントの種別（MIMEタイプ）を判定する。
type ContentTypeDetector struct{}

// NewContentTypeDetector は ContentTypeDetector を生成する。
func NewContentTypeDetector() *ContentTypeDetector {
	return &ContentTypeDetector{}
}

// DetectContentType はファイルパスと内容からMIMEタイプを判定する。
func (d *ContentTypeDetector) DetectContentType(path string, content []byte) string {
	language := enry.GetLanguage(filepath.Base(path), content)

	if mime, ok := textTypes[language]; ok {
		return mime
	}

	if len(content) > 0 {
		detected := http.DetectContentType(content)
		if idx := strings.Index(detected, ";"); idx != -1 {
			detected = detected[:idx]
		}
		return strings.TrimSpace(detected)
	}

	return "text/plain"
}

// textTypes は質問生成の入力として想定する文書形式
var textTypes = map[string]string{
	"Text":             "text/plain",
	"Markdown":         "text/markdown",
	"reStructuredText": "text/x-rst",
	"AsciiDoc":         "text/asciidoc",
	"HTML":             "text/html",
	"XML":              "text/xml",
	"JSON":             "application/json",
	"YAML":             "text/x-yaml",
	"TeX":              "text/x-tex",
}
