package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/go-enry/go-enry/v2"
)

var (
	// ErrBinaryDocument はバイナリファイルが指定された場合のエラー
	ErrBinaryDocument = errors.New("document is binary")
	// ErrInvalidEncoding はUTF-8として読めない場合のエラー
	ErrInvalidEncoding = errors.New("document is not valid UTF-8")
)

// Document は読み込んだテキストドキュメント
type Document struct {
	// Name はファイル名（ディレクトリを除く）
	Name string
	// Path は指定されたパス
	Path string
	// AbsPath は絶対パス
	AbsPath string
	// Text は改行を LF に正規化した本文
	Text string
	// ContentType は推定したMIMEタイプ
	ContentType string
}

// Stem はファイル名から最後の拡張子を除いたものを返す
func (d *Document) Stem() string {
	return strings.TrimSuffix(d.Name, filepath.Ext(d.Name))
}

// Read はテキストドキュメントを読み込む
func Read(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", path, err)
	}

	if enry.IsBinary(content) {
		return nil, fmt.Errorf("%w: %s", ErrBinaryDocument, path)
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEncoding, path)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	return &Document{
		Name:        filepath.Base(path),
		Path:        path,
		AbsPath:     absPath,
		Text:        normalizeNewlines(string(content)),
		ContentType: NewContentTypeDetector().DetectContentType(path, content),
	}, nil
}

// normalizeNewlines は CRLF と単独の CR を LF に変換する
func normalizeNewlines(s string) string {
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
